package sourcetree

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/buildexec/internal/execshell"
	"github.com/temirov/buildexec/internal/filesystem"
)

const (
	filesCommandUseConstant                   = "files <directory>"
	filesCommandShortDescriptionConstant      = "List regular files below a directory"
	matchFlagNameConstant                     = "match"
	matchFlagDescriptionConstant              = "Glob selecting files by name, or by relative path when it contains /"
	imageCommandUseConstant                   = "image-dir --board <board> -- <version command> [arguments...]"
	imageCommandShortDescriptionConstant      = "Print the output image directory of a board build"
	imageCommandLongDescriptionConstant       = "image-dir runs the given command, reads CHROMEOS_VERSION_STRING from its output and prints where build_image places the image for the board."
	boardFlagNameConstant                     = "board"
	boardFlagDescriptionConstant              = "Board the image is built for"
	sourceRootFlagNameConstant                = "source-root"
	sourceRootFlagDescriptionConstant         = "Path inside the src/scripts directory (defaults to the working directory)"
	enterChrootFlagNameConstant               = "enter-chroot"
	enterChrootFlagDescriptionConstant        = "Run the version command inside the build chroot"
	lineTemplateConstant                      = "%s\n"
	missingBoardMessageConstant               = "--board is required"
	missingVersionCommandMessageConstant      = "a version command is required after --"
	versionNotFoundTemplateConstant           = "%w in output of %s"
	executorConstructionErrorTemplateConstant = "unable to construct executor: %w"
	imageDirectoryResolvedLogConstant         = "resolved image directory"
	boardFieldNameConstant                    = "board"
	versionFieldNameConstant                  = "version"
	directoryFieldNameConstant                = "directory"
)

var (
	// ErrVersionNotFound indicates output without a CHROMEOS_VERSION_STRING assignment.
	ErrVersionNotFound = errors.New("CHROMEOS_VERSION_STRING not found")

	errMissingBoard          = errors.New(missingBoardMessageConstant)
	errMissingVersionCommand = errors.New(missingVersionCommandMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandExecutor runs the version command.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.CommandSpec, options execshell.ExecutionOptions) (execshell.CommandResult, error)
}

// ExecutorFactory constructs the executor used when none is injected.
type ExecutorFactory func(logger *zap.Logger) (CommandExecutor, error)

// FilesCommandBuilder assembles the files command.
type FilesCommandBuilder struct {
	FileSystem filesystem.FileSystem
}

// Build constructs the files command.
func (builder *FilesCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   filesCommandUseConstant,
		Short: filesCommandShortDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}
	command.Flags().String(matchFlagNameConstant, "", matchFlagDescriptionConstant)
	return command, nil
}

func (builder *FilesCommandBuilder) run(command *cobra.Command, arguments []string) error {
	pattern, _ := command.Flags().GetString(matchFlagNameConstant)

	files, listError := NewFileLister(builder.FileSystem).ListFiles(filesystem.NewHomeExpander().Expand(arguments[0]), pattern)
	if listError != nil {
		return listError
	}

	for _, filePath := range files {
		if _, writeError := fmt.Fprintf(command.OutOrStdout(), lineTemplateConstant, filePath); writeError != nil {
			return writeError
		}
	}
	return nil
}

// ImageDirectoryCommandBuilder assembles the image-dir command.
type ImageDirectoryCommandBuilder struct {
	LoggerProvider  LoggerProvider
	Executor        CommandExecutor
	ExecutorFactory ExecutorFactory
	FileSystem      filesystem.FileSystem
}

// Build constructs the image-dir command.
func (builder *ImageDirectoryCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   imageCommandUseConstant,
		Short: imageCommandShortDescriptionConstant,
		Long:  imageCommandLongDescriptionConstant,
		RunE:  builder.run,
	}
	command.Flags().String(boardFlagNameConstant, "", boardFlagDescriptionConstant)
	command.Flags().String(sourceRootFlagNameConstant, "", sourceRootFlagDescriptionConstant)
	command.Flags().Bool(enterChrootFlagNameConstant, false, enterChrootFlagDescriptionConstant)
	return command, nil
}

func (builder *ImageDirectoryCommandBuilder) run(command *cobra.Command, arguments []string) error {
	boardValue, _ := command.Flags().GetString(boardFlagNameConstant)
	board := strings.TrimSpace(boardValue)
	if len(board) == 0 {
		return errMissingBoard
	}
	if len(arguments) == 0 {
		return errMissingVersionCommand
	}
	sourceRootPath, _ := command.Flags().GetString(sourceRootFlagNameConstant)
	enterChroot, _ := command.Flags().GetBool(enterChrootFlagNameConstant)

	sourceRoot, sourceRootError := SourceRoot(builder.FileSystem, filesystem.NewHomeExpander().Expand(strings.TrimSpace(sourceRootPath)))
	if sourceRootError != nil {
		return sourceRootError
	}

	logger := builder.resolveLogger()
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	versionCommand := execshell.NewArgumentListCommand(arguments...)
	versionCommand.EnterChroot = enterChroot
	result, executionError := executor.Execute(command.Context(), versionCommand, execshell.ExecutionOptions{CaptureStandardOutput: true})
	if executionError != nil {
		return executionError
	}

	version, versionFound := ParseVersionString(string(result.StandardOutput))
	if !versionFound {
		return fmt.Errorf(versionNotFoundTemplateConstant, ErrVersionNotFound, versionCommand.Render())
	}

	imageDirectory := OutputImageDirectory(sourceRoot, board, version)
	logger.Debug(imageDirectoryResolvedLogConstant, zap.String(boardFieldNameConstant, board), zap.String(versionFieldNameConstant, version), zap.String(directoryFieldNameConstant, imageDirectory))

	_, writeError := fmt.Fprintf(command.OutOrStdout(), lineTemplateConstant, imageDirectory)
	return writeError
}

func (builder *ImageDirectoryCommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *ImageDirectoryCommandBuilder) resolveExecutor(logger *zap.Logger) (CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}
	if builder.ExecutorFactory != nil {
		return builder.ExecutorFactory(logger)
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), execshell.ExecutorSettings{})
	if creationError != nil {
		return nil, fmt.Errorf(executorConstructionErrorTemplateConstant, creationError)
	}
	return shellExecutor, nil
}
