package execshell

import (
	"fmt"
	"strings"
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	defaultWorkingDirectoryLabelConstant    = "current directory"
)

const (
	gitFetchSubcommandNameConstant = "fetch"
	gitPullSubcommandNameConstant  = "pull"
	gitPushSubcommandNameConstant  = "push"
)

const (
	gitFetchStartTemplateConstant   = "Fetching from remotes in %s"
	gitFetchSuccessTemplateConstant = "Fetched from remotes in %s"
	gitPullStartTemplateConstant    = "Pulling upstream changes in %s"
	gitPullSuccessTemplateConstant  = "Pulled upstream changes in %s"
	gitPushStartTemplateConstant    = "Pushing local commits from %s"
	gitPushSuccessTemplateConstant  = "Pushed local commits from %s"
)

type gitMessageTemplates struct {
	start   string
	success string
}

var gitSubcommandMessageTemplates = map[string]gitMessageTemplates{
	gitFetchSubcommandNameConstant: {start: gitFetchStartTemplateConstant, success: gitFetchSuccessTemplateConstant},
	gitPullSubcommandNameConstant:  {start: gitPullStartTemplateConstant, success: gitPullSuccessTemplateConstant},
	gitPushSubcommandNameConstant:  {start: gitPushStartTemplateConstant, success: gitPushSuccessTemplateConstant},
}

// CommandMessageFormatter builds human-readable log messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	if templates, known := formatter.knownGitTemplates(command); known {
		return fmt.Sprintf(templates.start, formatter.workingDirectoryLabel(command))
	}
	return fmt.Sprintf(genericStartTemplateConstant, formatter.commandLabel(command))
}

// BuildSuccessMessage describes a command that completed with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	if templates, known := formatter.knownGitTemplates(command); known {
		return fmt.Sprintf(templates.success, formatter.workingDirectoryLabel(command))
	}
	return fmt.Sprintf(genericSuccessTemplateConstant, formatter.commandLabel(command))
}

// BuildFailureMessage describes a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return fmt.Sprintf(genericFailureTemplateConstant, formatter.commandLabel(command), result.ExitCode, formatter.standardErrorSuffix(result.StandardError))
}

// BuildExecutionFailureMessage describes a command that could not run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(genericExecutionFailureTemplateConstant, formatter.commandLabel(command), failureMessage)
}

func (formatter CommandMessageFormatter) knownGitTemplates(command ShellCommand) (gitMessageTemplates, bool) {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return gitMessageTemplates{}, false
	}
	templates, known := gitSubcommandMessageTemplates[command.Details.Arguments[0]]
	return templates, known
}

func (formatter CommandMessageFormatter) commandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := ""
	if trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(trimmedWorkingDirectory) > 0 {
		workingDirectorySuffix = fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, strings.Join(commandParts, commandArgumentsJoinSeparatorConstant), workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) workingDirectoryLabel(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) standardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}
