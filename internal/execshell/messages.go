package execshell

import (
	"fmt"
	"strings"
)

const (
	startedMessageTemplateConstant          = "Running %s"
	successMessageTemplateConstant          = "Completed %s"
	failureMessageTemplateConstant          = "%s failed with exit code %d%s"
	executionFailureMessageTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
)

const (
	gitLogSubcommandNameConstant        = "log"
	gitCheckoutSubcommandNameConstant   = "checkout"
	gitCherryPickSubcommandNameConstant = "cherry-pick"
	gitRevParseSubcommandNameConstant   = "rev-parse"
)

const (
	gitLogDescriptionTemplateConstant        = "history scan%s"
	gitCheckoutDescriptionTemplateConstant   = "checkout %s%s"
	gitCherryPickDescriptionTemplateConstant = "cherry-pick %s%s"
	gitRevParseDescriptionTemplateConstant   = "revision lookup%s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(startedMessageTemplateConstant, formatter.describeCommand(command))
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return fmt.Sprintf(successMessageTemplateConstant, formatter.describeCommand(command))
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return fmt.Sprintf(
		failureMessageTemplateConstant,
		formatter.describeCommand(command),
		result.ExitCode,
		formatter.formatStandardErrorSuffix(result.StandardError),
	)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(executionFailureMessageTemplateConstant, formatter.describeCommand(command), failureMessage)
}

func (formatter CommandMessageFormatter) describeCommand(command ShellCommand) string {
	if command.Name == CommandGit {
		if description, described := formatter.describeGitCommand(command); described {
			return description
		}
	}
	return formatter.formatCommandLabel(command)
}

func (formatter CommandMessageFormatter) describeGitCommand(command ShellCommand) (string, bool) {
	if len(command.Details.Arguments) == 0 {
		return emptyStringConstant, false
	}

	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	subcommandName := command.Details.Arguments[0]
	subcommandArguments := command.Details.Arguments[1:]

	switch subcommandName {
	case gitLogSubcommandNameConstant:
		return fmt.Sprintf(gitLogDescriptionTemplateConstant, workingDirectorySuffix), true
	case gitRevParseSubcommandNameConstant:
		return fmt.Sprintf(gitRevParseDescriptionTemplateConstant, workingDirectorySuffix), true
	case gitCheckoutSubcommandNameConstant:
		if len(subcommandArguments) == 1 {
			return fmt.Sprintf(gitCheckoutDescriptionTemplateConstant, subcommandArguments[0], workingDirectorySuffix), true
		}
	case gitCherryPickSubcommandNameConstant:
		if len(subcommandArguments) > 0 {
			return fmt.Sprintf(gitCherryPickDescriptionTemplateConstant, strings.Join(subcommandArguments, commandArgumentsJoinSeparatorConstant), workingDirectorySuffix), true
		}
	}

	return emptyStringConstant, false
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}
