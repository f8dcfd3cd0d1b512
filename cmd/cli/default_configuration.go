package cli

import (
	"bytes"
	_ "embed"
)

// builtinConfigurationYAML holds the defaults for every buildexec configuration section.
//
//go:embed default_config.yaml
var builtinConfigurationYAML []byte

// BuiltinConfiguration returns a private copy of the buildexec defaults and their viper config type.
// Config files and BUILDEXEC_* variables are layered over it by the loader.
func BuiltinConfiguration() ([]byte, string) {
	return bytes.Clone(builtinConfigurationYAML), configurationTypeConstant
}
