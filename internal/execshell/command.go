package execshell

import (
	"fmt"
	"sort"
	"strings"
)

const (
	commandArgumentsJoinSeparatorConstant = " "
	chrootEntrySeparatorConstant          = "--"
	shellCommandFlagConstant              = "-c"
	environmentAssignmentTemplateConstant = "%s=%s"
	// DefaultChrootEntryScript is the wrapper invoked to enter the build chroot.
	DefaultChrootEntryScript = "./enter_chroot.sh"
	// DefaultShellPath is the interpreter used for shell commands.
	DefaultShellPath = "/bin/sh"
)

// CommandForm distinguishes the two representations of a command.
type CommandForm int

// Supported command forms.
const (
	CommandFormUnspecified CommandForm = iota
	CommandFormShellString
	CommandFormArgumentList
)

// String returns a readable form label.
func (form CommandForm) String() string {
	switch form {
	case CommandFormShellString:
		return "shell_string"
	case CommandFormArgumentList:
		return "argument_list"
	default:
		return "unspecified"
	}
}

// CommandSpec describes the command to run.
type CommandSpec struct {
	Form             CommandForm
	ShellString      string
	Arguments        []string
	UseShell         bool
	WorkingDirectory string
	// Environment replaces the parent environment when non-nil.
	Environment map[string]string
	EnterChroot bool
}

// NewShellStringCommand builds a command from a single string.
func NewShellStringCommand(commandText string) CommandSpec {
	return CommandSpec{Form: CommandFormShellString, ShellString: commandText}
}

// NewArgumentListCommand builds a command from ordered argument tokens.
func NewArgumentListCommand(arguments ...string) CommandSpec {
	return CommandSpec{Form: CommandFormArgumentList, Arguments: append([]string{}, arguments...)}
}

// IsEmpty reports whether the command has nothing to run.
func (command CommandSpec) IsEmpty() bool {
	switch command.Form {
	case CommandFormShellString:
		return len(strings.TrimSpace(command.ShellString)) == 0
	case CommandFormArgumentList:
		return len(command.Arguments) == 0 || len(strings.TrimSpace(command.Arguments[0])) == 0
	default:
		return true
	}
}

// Render returns the single-line form used in traces and failure messages.
func (command CommandSpec) Render() string {
	if command.Form == CommandFormShellString {
		return command.ShellString
	}
	return strings.Join(command.Arguments, commandArgumentsJoinSeparatorConstant)
}

// WithChrootEntry prefixes the command with the chroot entry invocation, keeping its form.
func (command CommandSpec) WithChrootEntry(entryScript string) CommandSpec {
	rewritten := command.clone()
	rewritten.EnterChroot = false
	switch command.Form {
	case CommandFormShellString:
		rewritten.ShellString = entryScript + commandArgumentsJoinSeparatorConstant + chrootEntrySeparatorConstant + commandArgumentsJoinSeparatorConstant + command.ShellString
	case CommandFormArgumentList:
		rewritten.Arguments = append([]string{entryScript, chrootEntrySeparatorConstant}, command.Arguments...)
	}
	return rewritten
}

// processArguments resolves the executable and its arguments for the spawning primitive.
func (command CommandSpec) processArguments(shellPath string) (string, []string) {
	if command.UseShell {
		shellArguments := []string{shellCommandFlagConstant}
		if command.Form == CommandFormShellString {
			return shellPath, append(shellArguments, command.ShellString)
		}
		return shellPath, append(shellArguments, command.Arguments...)
	}

	tokens := command.Arguments
	if command.Form == CommandFormShellString {
		tokens = strings.Fields(command.ShellString)
	}
	return tokens[0], append([]string{}, tokens[1:]...)
}

// environmentAssignments renders the environment as sorted KEY=VALUE pairs; nil means inherit.
func (command CommandSpec) environmentAssignments() []string {
	if command.Environment == nil {
		return nil
	}

	environmentKeys := make([]string, 0, len(command.Environment))
	for environmentKey := range command.Environment {
		environmentKeys = append(environmentKeys, environmentKey)
	}
	sort.Strings(environmentKeys)

	assignments := make([]string, 0, len(environmentKeys))
	for _, environmentKey := range environmentKeys {
		assignments = append(assignments, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, command.Environment[environmentKey]))
	}
	return assignments
}

func (command CommandSpec) clone() CommandSpec {
	cloned := command
	if command.Arguments != nil {
		cloned.Arguments = append([]string{}, command.Arguments...)
	}
	if command.Environment != nil {
		cloned.Environment = make(map[string]string, len(command.Environment))
		for environmentKey, environmentValue := range command.Environment {
			cloned.Environment[environmentKey] = environmentValue
		}
	}
	return cloned
}
