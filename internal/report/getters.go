package report

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/reposcan/internal/repos/shared"
	"github.com/temirov/reposcan/internal/ui"
)

const (
	unknownBranchTextConstant           = "unknown"
	unknownStatusTextConstant           = "unknown"
	remoteAttemptFailedMessageConstant  = "remote operation attempt failed"
	remoteRetryScheduledMessageConstant = "retrying remote operation"
	logFieldRepositoryConstant          = "repository"
	logFieldOperationConstant           = "operation"
	logFieldAttemptConstant             = "attempt"
)

// InfoGetter describes one opened repository for the report.
type InfoGetter interface {
	Describe(executionContext context.Context, repository shared.Repository) ui.TaggedText
}

// InfoGetterFunc adapts a function to InfoGetter.
type InfoGetterFunc func(executionContext context.Context, repository shared.Repository) ui.TaggedText

// Describe calls the wrapped function.
func (getter InfoGetterFunc) Describe(executionContext context.Context, repository shared.Repository) ui.TaggedText {
	return getter(executionContext, repository)
}

// InfoGetters maps every action to the getter that serves it.
type InfoGetters map[Action]InfoGetter

// Select returns the getter registered for action, falling back to the name-only getter.
func (getters InfoGetters) Select(action Action) InfoGetter {
	if getter, registered := getters[action]; registered && getter != nil {
		return getter
	}
	return NameOnlyGetter()
}

// GetterOptions configures the getters built by NewInfoGetters.
type GetterOptions struct {
	ExperimentalActions bool
	RemoteTimeout       time.Duration
	RemoteRetries       int
	RetryBackoff        time.Duration
	Logger              *zap.Logger
}

// NewInfoGetters builds the getter registry. Status and remote actions report
// shared.ErrNotImplemented unless experimental actions are enabled.
func NewInfoGetters(options GetterOptions) InfoGetters {
	getters := InfoGetters{
		ActionList:   NameOnlyGetter(),
		ActionBranch: BranchGetter(),
		ActionStatus: NotImplementedGetter(),
		ActionFetch:  NotImplementedGetter(),
		ActionPull:   NotImplementedGetter(),
		ActionPush:   NotImplementedGetter(),
	}
	if !options.ExperimentalActions {
		return getters
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	getters[ActionStatus] = StatusGetter()
	for action, operation := range remoteOperationsByAction {
		getters[action] = &RemoteGetter{
			operation:    operation,
			timeout:      options.RemoteTimeout,
			retries:      options.RemoteRetries,
			retryBackoff: options.RetryBackoff,
			logger:       logger,
		}
	}
	return getters
}

// NameOnlyGetter returns a getter that contributes no information beyond the display name.
func NameOnlyGetter() InfoGetter {
	return InfoGetterFunc(func(context.Context, shared.Repository) ui.TaggedText {
		return ui.TaggedText{}
	})
}

// NotImplementedGetter returns a getter for actions without a backing implementation.
func NotImplementedGetter() InfoGetter {
	return InfoGetterFunc(func(context.Context, shared.Repository) ui.TaggedText {
		return ui.TaggedText{Text: shared.ErrNotImplemented.Error(), Tag: ui.TagError}
	})
}

// BranchGetter returns a getter reporting the checked out branch.
func BranchGetter() InfoGetter {
	return InfoGetterFunc(func(_ context.Context, repository shared.Repository) ui.TaggedText {
		branchName, branchError := repository.CurrentBranchName()
		switch {
		case branchError == nil:
			return ui.TaggedText{Text: branchName, Tag: ui.TagSuccess}
		case errors.Is(branchError, shared.ErrUnbornBranch):
			return ui.TaggedText{Text: shared.ErrUnbornBranch.Error(), Tag: ui.TagDim}
		default:
			return ui.TaggedText{Text: unknownBranchTextConstant, Tag: ui.TagWarning}
		}
	})
}

// StatusGetter returns a getter summarizing the working tree.
func StatusGetter() InfoGetter {
	return InfoGetterFunc(func(executionContext context.Context, repository shared.Repository) ui.TaggedText {
		worktreeStatus, statusError := repository.Status(executionContext)
		if statusError != nil {
			return ui.TaggedText{Text: unknownStatusTextConstant, Tag: ui.TagWarning}
		}
		return SummarizeStatus(worktreeStatus)
	})
}

var remoteOperationsByAction = map[Action]shared.RemoteOperation{
	ActionFetch: shared.RemoteOperationFetch,
	ActionPull:  shared.RemoteOperationPull,
	ActionPush:  shared.RemoteOperationPush,
}

// RemoteGetter runs a network operation under a per-repository deadline with bounded retries.
type RemoteGetter struct {
	operation    shared.RemoteOperation
	timeout      time.Duration
	retries      int
	retryBackoff time.Duration
	logger       *zap.Logger
}

// Describe performs the remote operation and reports its outcome or failure.
func (getter *RemoteGetter) Describe(executionContext context.Context, repository shared.Repository) ui.TaggedText {
	operationContext := executionContext
	if getter.timeout > 0 {
		var cancel context.CancelFunc
		operationContext, cancel = context.WithTimeout(executionContext, getter.timeout)
		defer cancel()
	}

	var operationError error
	for attempt := 0; attempt <= getter.retries; attempt++ {
		if attempt > 0 {
			getter.logger.Debug(
				remoteRetryScheduledMessageConstant,
				zap.String(logFieldRepositoryConstant, repository.Workdir()),
				zap.String(logFieldOperationConstant, string(getter.operation)),
				zap.Int(logFieldAttemptConstant, attempt+1),
			)
			if !waitForRetry(operationContext, getter.retryBackoff*time.Duration(attempt)) {
				operationError = errors.Join(shared.ErrRemoteOperationTimedOut, operationContext.Err())
				break
			}
		}

		var outcome shared.RemoteOutcome
		outcome, operationError = getter.run(operationContext, repository)
		if operationError == nil {
			return describeOutcome(outcome)
		}

		getter.logger.Debug(
			remoteAttemptFailedMessageConstant,
			zap.String(logFieldRepositoryConstant, repository.Workdir()),
			zap.String(logFieldOperationConstant, string(getter.operation)),
			zap.Int(logFieldAttemptConstant, attempt+1),
			zap.Error(operationError),
		)
		if !retryable(operationError) {
			break
		}
	}
	return describeRemoteFailure(operationError)
}

func (getter *RemoteGetter) run(executionContext context.Context, repository shared.Repository) (shared.RemoteOutcome, error) {
	switch getter.operation {
	case shared.RemoteOperationFetch:
		return repository.Fetch(executionContext)
	case shared.RemoteOperationPull:
		return repository.Pull(executionContext)
	case shared.RemoteOperationPush:
		return repository.Push(executionContext)
	default:
		return "", shared.ErrNotImplemented
	}
}

func waitForRetry(executionContext context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return executionContext.Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-executionContext.Done():
		return false
	case <-timer.C:
		return true
	}
}

func retryable(operationError error) bool {
	for _, permanentError := range []error{
		shared.ErrAuthenticationFailed,
		shared.ErrNoUpstream,
		shared.ErrRemoteRejected,
		shared.ErrNotImplemented,
		shared.ErrRemoteOperationTimedOut,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(operationError, permanentError) {
			return false
		}
	}
	return true
}

func describeOutcome(outcome shared.RemoteOutcome) ui.TaggedText {
	if outcome == shared.RemoteOutcomeUpToDate {
		return ui.TaggedText{Text: string(outcome), Tag: ui.TagSuccess}
	}
	return ui.TaggedText{Text: string(outcome), Tag: ui.TagInfo}
}

func describeRemoteFailure(operationError error) ui.TaggedText {
	switch {
	case errors.Is(operationError, shared.ErrRemoteOperationTimedOut), errors.Is(operationError, context.DeadlineExceeded):
		return ui.TaggedText{Text: shared.ErrRemoteOperationTimedOut.Error(), Tag: ui.TagError}
	case errors.Is(operationError, shared.ErrNotImplemented):
		return ui.TaggedText{Text: shared.ErrNotImplemented.Error(), Tag: ui.TagError}
	default:
		return ui.TaggedText{Text: firstLine(operationError.Error()), Tag: ui.TagError}
	}
}

func firstLine(text string) string {
	trimmedText := strings.TrimSpace(text)
	if newlineIndex := strings.IndexByte(trimmedText, '\n'); newlineIndex >= 0 {
		return strings.TrimSpace(trimmedText[:newlineIndex])
	}
	return trimmedText
}
