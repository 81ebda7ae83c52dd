package shared

import (
	"context"
	"errors"

	"github.com/temirov/reposcan/internal/execshell"
)

const (
	// GitMetadataDirectoryNameConstant is the repository marker searched for during discovery.
	GitMetadataDirectoryNameConstant = ".git"

	unbornBranchMessageConstant            = "not on a branch"
	repositoryNotOpenedMessageConstant     = "repository could not be opened"
	notImplementedMessageConstant          = "not implemented yet"
	noUpstreamConfiguredMessageConstant    = "no upstream configured"
	authenticationFailedMessageConstant    = "authentication failed"
	remoteOperationTimedOutMessageConstant = "timed out"
	remoteRejectedMessageConstant          = "rejected by remote"
)

// ErrUnbornBranch indicates HEAD does not resolve to a branch with commits.
var ErrUnbornBranch = errors.New(unbornBranchMessageConstant)

// ErrRepositoryNotOpened indicates a candidate directory is not a usable repository.
var ErrRepositoryNotOpened = errors.New(repositoryNotOpenedMessageConstant)

// ErrNotImplemented marks actions that are not backed by real logic.
var ErrNotImplemented = errors.New(notImplementedMessageConstant)

// ErrNoUpstream indicates the current branch does not track a remote branch.
var ErrNoUpstream = errors.New(noUpstreamConfiguredMessageConstant)

// ErrAuthenticationFailed indicates a remote rejected the configured credentials.
var ErrAuthenticationFailed = errors.New(authenticationFailedMessageConstant)

// ErrRemoteOperationTimedOut indicates a remote operation exceeded its deadline.
var ErrRemoteOperationTimedOut = errors.New(remoteOperationTimedOutMessageConstant)

// ErrRemoteRejected indicates git refused the operation for a reason a retry cannot change.
var ErrRemoteRejected = errors.New(remoteRejectedMessageConstant)

// RepositoryHandle identifies a discovered repository by its working directory.
type RepositoryHandle struct {
	Path string
}

// RemoteOperation enumerates network operations performed against a repository remote.
type RemoteOperation string

// Supported remote operations.
const (
	RemoteOperationFetch RemoteOperation = "fetch"
	RemoteOperationPull  RemoteOperation = "pull"
	RemoteOperationPush  RemoteOperation = "push"
)

// RemoteOutcome summarizes the result of a successful remote operation.
type RemoteOutcome string

// Remote outcomes reported to users.
const (
	RemoteOutcomeUpToDate      RemoteOutcome = "up to date"
	RemoteOutcomeFetched       RemoteOutcome = "fetched"
	RemoteOutcomeFastForwarded RemoteOutcome = "fast-forwarded"
	RemoteOutcomePulled        RemoteOutcome = "pulled"
	RemoteOutcomePushed        RemoteOutcome = "pushed"
)

// WorktreeStatus captures the working tree classification of a repository.
type WorktreeStatus struct {
	BranchName      string
	DetachedHead    bool
	UntrackedFiles  bool
	UnstagedChanges bool
	StagedChanges   bool
	AheadOfUpstream bool
}

// Repository exposes the live state of an opened repository.
type Repository interface {
	Workdir() string
	CurrentBranchName() (string, error)
	Status(executionContext context.Context) (WorktreeStatus, error)
	Fetch(executionContext context.Context) (RemoteOutcome, error)
	Pull(executionContext context.Context) (RemoteOutcome, error)
	Push(executionContext context.Context) (RemoteOutcome, error)
}

// RepositoryOpener opens repositories rooted at working directory paths.
type RepositoryOpener interface {
	Open(repositoryPath string) (Repository, error)
}

// RepositoryDiscoverer locates repositories beneath a root directory.
type RepositoryDiscoverer interface {
	DiscoverRepositories(executionContext context.Context, root string) ([]RepositoryHandle, error)
}

// GitExecutor exposes the subset of shell execution used by repository services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}
