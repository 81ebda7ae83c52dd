package testsupport

import (
	"context"
	"sync"

	"github.com/temirov/reposcan/internal/execshell"
)

// GitExecutorResponse is the canned reply of GitExecutorStub.
type GitExecutorResponse struct {
	Result execshell.ExecutionResult
	Error  error
}

// GitExecutorStub records git invocations and replays configured responses in order.
// The last response repeats once the queue is exhausted.
type GitExecutorStub struct {
	Responses []GitExecutorResponse

	mutex            sync.Mutex
	executedCommands []execshell.CommandDetails
}

// ExecuteGit records details and returns the next configured response.
func (executor *GitExecutorStub) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()

	executor.executedCommands = append(executor.executedCommands, details)
	if contextError := executionContext.Err(); contextError != nil {
		return execshell.ExecutionResult{}, execshell.CommandExecutionError{Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: details}, Cause: contextError}
	}
	if len(executor.Responses) == 0 {
		return execshell.ExecutionResult{}, nil
	}

	responseIndex := len(executor.executedCommands) - 1
	if responseIndex >= len(executor.Responses) {
		responseIndex = len(executor.Responses) - 1
	}
	response := executor.Responses[responseIndex]
	return response.Result, response.Error
}

// ExecutedCommands returns a copy of the recorded invocations.
func (executor *GitExecutorStub) ExecutedCommands() []execshell.CommandDetails {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()

	return append([]execshell.CommandDetails{}, executor.executedCommands...)
}

// FailedGitResponse builds a response that mimics a git command exiting with a failure.
func FailedGitResponse(standardError string) GitExecutorResponse {
	return GitExecutorResponse{
		Error: execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandGit},
			Result:  execshell.ExecutionResult{ExitCode: 128, StandardError: standardError},
		},
	}
}
