package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/reposcan/internal/execshell"
	"github.com/temirov/reposcan/internal/repos/shared"
)

const (
	gitFetchSubcommandConstant                  = "fetch"
	gitFetchPruneFlagConstant                   = "--prune"
	gitPullSubcommandConstant                   = "pull"
	gitPullFastForwardFlagConstant              = "--ff-only"
	gitPushSubcommandConstant                   = "push"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	pullAlreadyUpToDateMarkerConstant           = "already up to date"
	pullAlreadyUpToDateLegacyMarkerConstant     = "already up-to-date"
	pullFastForwardMarkerConstant               = "fast-forward"
	pushEverythingUpToDateMarkerConstant        = "everything up-to-date"
	remoteFailureErrorTemplateConstant          = "%w: %s"
	remoteTimeoutErrorTemplateConstant          = "%w: %w"
)

var authenticationFailureMarkers = []string{
	"authentication failed",
	"could not read username",
	"could not read password",
	"terminal prompts disabled",
	"permission denied (publickey",
	"invalid username or password",
	"access denied",
}

var noUpstreamMarkers = []string{
	"no tracking information",
	"has no upstream branch",
	"no remote repository specified",
	"no configured push destination",
}

var remoteRejectionMarkers = []string{
	"not possible to fast-forward",
	"non-fast-forward",
	"[rejected]",
	"failed to push some refs",
	"diverging branches",
	"would be overwritten by merge",
}

// Fetch updates remote-tracking references from all configured remotes.
func (repository *Repository) Fetch(executionContext context.Context) (shared.RemoteOutcome, error) {
	executionResult, executionError := repository.runRemoteCommand(executionContext, gitFetchSubcommandConstant, gitFetchPruneFlagConstant)
	if executionError != nil {
		return "", executionError
	}
	if len(strings.TrimSpace(executionResult.StandardOutput+executionResult.StandardError)) == 0 {
		return shared.RemoteOutcomeUpToDate, nil
	}
	return shared.RemoteOutcomeFetched, nil
}

// Pull fast-forwards the current branch to its upstream.
func (repository *Repository) Pull(executionContext context.Context) (shared.RemoteOutcome, error) {
	executionResult, executionError := repository.runRemoteCommand(executionContext, gitPullSubcommandConstant, gitPullFastForwardFlagConstant)
	if executionError != nil {
		return "", executionError
	}
	combinedOutput := strings.ToLower(executionResult.StandardOutput + executionResult.StandardError)
	switch {
	case strings.Contains(combinedOutput, pullAlreadyUpToDateMarkerConstant), strings.Contains(combinedOutput, pullAlreadyUpToDateLegacyMarkerConstant):
		return shared.RemoteOutcomeUpToDate, nil
	case strings.Contains(combinedOutput, pullFastForwardMarkerConstant):
		return shared.RemoteOutcomeFastForwarded, nil
	default:
		return shared.RemoteOutcomePulled, nil
	}
}

// Push publishes local commits of the current branch to its upstream.
func (repository *Repository) Push(executionContext context.Context) (shared.RemoteOutcome, error) {
	executionResult, executionError := repository.runRemoteCommand(executionContext, gitPushSubcommandConstant)
	if executionError != nil {
		return "", executionError
	}
	combinedOutput := strings.ToLower(executionResult.StandardOutput + executionResult.StandardError)
	if strings.Contains(combinedOutput, pushEverythingUpToDateMarkerConstant) {
		return shared.RemoteOutcomeUpToDate, nil
	}
	return shared.RemoteOutcomePushed, nil
}

func (repository *Repository) runRemoteCommand(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	if repository.executor == nil {
		return execshell.ExecutionResult{}, shared.ErrNotImplemented
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repository.workdir,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant,
		},
	}

	executionResult, executionError := repository.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return execshell.ExecutionResult{}, classifyRemoteError(executionContext, executionError)
	}
	return executionResult, nil
}

func classifyRemoteError(executionContext context.Context, executionError error) error {
	if errors.Is(executionError, context.DeadlineExceeded) || errors.Is(executionContext.Err(), context.DeadlineExceeded) {
		return fmt.Errorf(remoteTimeoutErrorTemplateConstant, shared.ErrRemoteOperationTimedOut, executionError)
	}

	var commandFailure execshell.CommandFailedError
	if !errors.As(executionError, &commandFailure) {
		return executionError
	}

	standardError := strings.TrimSpace(commandFailure.Result.StandardError)
	normalizedStandardError := strings.ToLower(standardError)
	summary := firstLine(standardError)

	if containsAny(normalizedStandardError, authenticationFailureMarkers) {
		return fmt.Errorf(remoteFailureErrorTemplateConstant, shared.ErrAuthenticationFailed, summary)
	}
	if containsAny(normalizedStandardError, noUpstreamMarkers) {
		return fmt.Errorf(remoteFailureErrorTemplateConstant, shared.ErrNoUpstream, summary)
	}
	if containsAny(normalizedStandardError, remoteRejectionMarkers) {
		return fmt.Errorf(remoteFailureErrorTemplateConstant, shared.ErrRemoteRejected, summary)
	}
	return executionError
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func firstLine(text string) string {
	trimmedText := strings.TrimSpace(text)
	if newlineIndex := strings.IndexByte(trimmedText, '\n'); newlineIndex >= 0 {
		return strings.TrimSpace(trimmedText[:newlineIndex])
	}
	return trimmedText
}
