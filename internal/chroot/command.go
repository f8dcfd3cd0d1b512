package chroot

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/buildexec/internal/filesystem"
	"github.com/temirov/buildexec/internal/ui"
)

const (
	commandUseConstant                      = "chroot"
	commandShortDescriptionConstant         = "Inspect the build chroot and the checkout mounted into it"
	statusCommandUseConstant                = "status"
	statusCommandShortDescriptionConstant   = "Report whether buildexec runs inside the chroot and where the checkout lives"
	pathCommandUseConstant                  = "path <path>"
	pathCommandShortDescriptionConstant     = "Print the chroot path of a file in the checkout"
	insideChrootLineConstant                = "inside chroot: %t\n"
	repositoryLineTemplateConstant          = "repository: %s\n"
	repositoryUnavailableLineConstant       = "repository: unavailable\n"
	pathLineTemplateConstant                = "%s\n"
	repositoryLookupFailedTemplateConstant  = "repository lookup failed: %v"
	layoutConfigurationKeySeparatorConstant = "."
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// LayoutProvider returns the configured chroot layout.
type LayoutProvider func() Layout

// CommandBuilder assembles the chroot command group.
type CommandBuilder struct {
	LoggerProvider    LoggerProvider
	LayoutProvider    LayoutProvider
	FileSystem        filesystem.FileSystem
	EnvironmentLookup EnvironmentLookup
}

// DefaultConfigurationValues returns the layout defaults keyed below prefix for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultLayout()
	return map[string]any{
		prefix + layoutConfigurationKeySeparatorConstant + "marker_path":     defaults.MarkerPath,
		prefix + layoutConfigurationKeySeparatorConstant + "home_root":       defaults.HomeRoot,
		prefix + layoutConfigurationKeySeparatorConstant + "trunk_directory": defaults.TrunkDirectory,
		prefix + layoutConfigurationKeySeparatorConstant + "user_variable":   defaults.UserVariable,
	}
}

// Build constructs the chroot command with its status and path subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
	}

	statusCommand := &cobra.Command{
		Use:   statusCommandUseConstant,
		Short: statusCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runStatus,
	}

	pathCommand := &cobra.Command{
		Use:   pathCommandUseConstant,
		Short: pathCommandShortDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runPath,
	}

	command.AddCommand(statusCommand, pathCommand)
	return command, nil
}

func (builder *CommandBuilder) runStatus(command *cobra.Command, arguments []string) error {
	locator := builder.resolveLocator()
	output := command.OutOrStdout()

	if _, writeError := fmt.Fprintf(output, insideChrootLineConstant, locator.IsInsideChroot()); writeError != nil {
		return writeError
	}

	repositoryDirectory, lookupError := locator.FindRepositoryDirectory("")
	if lookupError != nil {
		ui.NewDiagnosticConsole(builder.resolveLogger()).Warning(fmt.Sprintf(repositoryLookupFailedTemplateConstant, lookupError))
		_, writeError := fmt.Fprint(output, repositoryUnavailableLineConstant)
		return writeError
	}

	_, writeError := fmt.Fprintf(output, repositoryLineTemplateConstant, repositoryDirectory)
	return writeError
}

func (builder *CommandBuilder) runPath(command *cobra.Command, arguments []string) error {
	chrootPath, reinterpretError := builder.resolveLocator().ReinterpretPath(filesystem.NewHomeExpander().Expand(arguments[0]))
	if reinterpretError != nil {
		return reinterpretError
	}

	_, writeError := fmt.Fprintf(command.OutOrStdout(), pathLineTemplateConstant, chrootPath)
	return writeError
}

func (builder *CommandBuilder) resolveLocator() *Locator {
	layout := DefaultLayout()
	if builder.LayoutProvider != nil {
		layout = builder.LayoutProvider()
	}
	return NewLocator(layout, builder.FileSystem, builder.EnvironmentLookup)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}
