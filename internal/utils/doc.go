// Package utils hosts the ambient plumbing shared by the buildexec commands.
//
// ConfigurationLoader layers embedded defaults, configuration files, and
// BUILDEXEC_* environment overrides through Viper; LoggerFactory builds the
// zap loggers that render the severity-tagged diagnostic stream.
package utils
