package run

import (
	"strings"

	"github.com/temirov/buildexec/internal/execshell"
)

const (
	shellPathConfigurationKeyConstant         = "shell_path"
	chrootEntryScriptConfigurationKeyConstant = "chroot_entry_script"
	announceConfigurationKeyConstant          = "announce"
	suppressInterruptConfigurationKeyConstant = "suppress_interrupt"
	retryCountConfigurationKeyConstant        = "retry_count"
	configurationKeySeparatorConstant         = "."
)

// Configuration captures the execution defaults shared by run and legacy-run.
type Configuration struct {
	ShellPath         string `mapstructure:"shell_path"`
	ChrootEntryScript string `mapstructure:"chroot_entry_script"`
	Announce          bool   `mapstructure:"announce"`
	SuppressInterrupt bool   `mapstructure:"suppress_interrupt"`
	RetryCount        int    `mapstructure:"retry_count"`
}

// DefaultConfiguration provides baseline execution settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		ShellPath:         execshell.DefaultShellPath,
		ChrootEntryScript: execshell.DefaultChrootEntryScript,
		Announce:          true,
	}
}

// DefaultConfigurationValues returns the defaults keyed below prefix for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		prefix + configurationKeySeparatorConstant + shellPathConfigurationKeyConstant:         defaults.ShellPath,
		prefix + configurationKeySeparatorConstant + chrootEntryScriptConfigurationKeyConstant: defaults.ChrootEntryScript,
		prefix + configurationKeySeparatorConstant + announceConfigurationKeyConstant:          defaults.Announce,
		prefix + configurationKeySeparatorConstant + suppressInterruptConfigurationKeyConstant: defaults.SuppressInterrupt,
		prefix + configurationKeySeparatorConstant + retryCountConfigurationKeyConstant:        defaults.RetryCount,
	}
}

func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	sanitized.ShellPath = strings.TrimSpace(configuration.ShellPath)
	sanitized.ChrootEntryScript = strings.TrimSpace(configuration.ChrootEntryScript)
	if sanitized.RetryCount < 0 {
		sanitized.RetryCount = 0
	}
	return sanitized
}
