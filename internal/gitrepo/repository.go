package gitrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/temirov/reposcan/internal/repos/shared"
)

const (
	repositoryOpenErrorTemplateConstant     = "%w: %s: %v"
	repositoryWorktreeErrorTemplateConstant = "%w: %s has no working tree: %v"
	headLookupErrorTemplateConstant         = "unable to read HEAD in %s: %w"
	detachedHeadErrorTemplateConstant       = "%w: HEAD is detached in %s"
	worktreeStatusErrorTemplateConstant     = "unable to read working tree status in %s: %w"
	upstreamLookupErrorTemplateConstant     = "unable to compare %s with its upstream: %w"
	detachedHeadBranchLabelConstant         = "HEAD"
	localRemoteNameConstant                 = "."
)

// Opener opens git repositories with go-git and attaches a git executor for remote operations.
type Opener struct {
	executor shared.GitExecutor
}

// NewOpener constructs an Opener. A nil executor leaves remote operations unavailable.
func NewOpener(executor shared.GitExecutor) *Opener {
	return &Opener{executor: executor}
}

// Open opens the working directory at repositoryPath.
func (opener *Opener) Open(repositoryPath string) (shared.Repository, error) {
	repository, openError := git.PlainOpen(repositoryPath)
	if openError != nil {
		return nil, fmt.Errorf(repositoryOpenErrorTemplateConstant, shared.ErrRepositoryNotOpened, repositoryPath, openError)
	}

	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		return nil, fmt.Errorf(repositoryWorktreeErrorTemplateConstant, shared.ErrRepositoryNotOpened, repositoryPath, worktreeError)
	}

	var executor shared.GitExecutor
	if opener != nil {
		executor = opener.executor
	}

	return &Repository{
		repository: repository,
		workdir:    worktree.Filesystem.Root(),
		executor:   executor,
	}, nil
}

// Repository is a go-git backed shared.Repository.
type Repository struct {
	repository *git.Repository
	workdir    string
	executor   shared.GitExecutor
}

// Workdir returns the working directory root.
func (repository *Repository) Workdir() string {
	return repository.workdir
}

// CurrentBranchName returns the short name of the checked out branch.
// Unborn and detached HEADs report shared.ErrUnbornBranch.
func (repository *Repository) CurrentBranchName() (string, error) {
	headReference, headError := repository.repository.Head()
	if headError != nil {
		if errors.Is(headError, plumbing.ErrReferenceNotFound) {
			return "", shared.ErrUnbornBranch
		}
		return "", fmt.Errorf(headLookupErrorTemplateConstant, repository.workdir, headError)
	}

	if !headReference.Name().IsBranch() {
		return "", fmt.Errorf(detachedHeadErrorTemplateConstant, shared.ErrUnbornBranch, repository.workdir)
	}

	return headReference.Name().Short(), nil
}

// Status classifies the working tree and compares the current branch with its upstream.
func (repository *Repository) Status(executionContext context.Context) (shared.WorktreeStatus, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return shared.WorktreeStatus{}, contextError
	}

	worktree, worktreeError := repository.repository.Worktree()
	if worktreeError != nil {
		return shared.WorktreeStatus{}, fmt.Errorf(worktreeStatusErrorTemplateConstant, repository.workdir, worktreeError)
	}

	fileStatuses, statusError := worktree.Status()
	if statusError != nil {
		return shared.WorktreeStatus{}, fmt.Errorf(worktreeStatusErrorTemplateConstant, repository.workdir, statusError)
	}

	worktreeStatus := classifyFileStatuses(fileStatuses)
	worktreeStatus.BranchName, worktreeStatus.DetachedHead = repository.headBranchLabel()

	branchName, branchError := repository.CurrentBranchName()
	if branchError != nil {
		return worktreeStatus, nil
	}

	aheadOfUpstream, aheadError := repository.aheadOfUpstream(branchName)
	if aheadError != nil {
		return shared.WorktreeStatus{}, fmt.Errorf(upstreamLookupErrorTemplateConstant, branchName, aheadError)
	}
	worktreeStatus.AheadOfUpstream = aheadOfUpstream

	return worktreeStatus, nil
}

func classifyFileStatuses(fileStatuses git.Status) shared.WorktreeStatus {
	var worktreeStatus shared.WorktreeStatus
	for _, fileStatus := range fileStatuses {
		if fileStatus.Worktree == git.Untracked {
			worktreeStatus.UntrackedFiles = true
			continue
		}
		if fileStatus.Worktree != git.Unmodified {
			worktreeStatus.UnstagedChanges = true
		}
		if fileStatus.Staging != git.Unmodified {
			worktreeStatus.StagedChanges = true
		}
	}
	return worktreeStatus
}

// headBranchLabel names the branch HEAD points at, including unborn branches, and reports a detached HEAD.
func (repository *Repository) headBranchLabel() (string, bool) {
	headReference, referenceError := repository.repository.Reference(plumbing.HEAD, false)
	if referenceError != nil {
		return "", false
	}
	if headReference.Type() == plumbing.SymbolicReference {
		return headReference.Target().Short(), false
	}
	return detachedHeadBranchLabelConstant, true
}

func (repository *Repository) aheadOfUpstream(branchName string) (bool, error) {
	branchConfiguration, branchError := repository.repository.Branch(branchName)
	if branchError != nil {
		if errors.Is(branchError, git.ErrBranchNotFound) {
			return false, nil
		}
		return false, branchError
	}

	if len(branchConfiguration.Remote) == 0 || len(branchConfiguration.Merge) == 0 {
		return false, nil
	}

	upstreamReferenceName := branchConfiguration.Merge
	if branchConfiguration.Remote != localRemoteNameConstant {
		upstreamReferenceName = plumbing.NewRemoteReferenceName(branchConfiguration.Remote, branchConfiguration.Merge.Short())
	}

	upstreamReference, upstreamError := repository.repository.Reference(upstreamReferenceName, true)
	if upstreamError != nil {
		if errors.Is(upstreamError, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, upstreamError
	}

	headReference, headError := repository.repository.Head()
	if headError != nil {
		return false, headError
	}

	if headReference.Hash() == upstreamReference.Hash() {
		return false, nil
	}

	localCommit, localCommitError := repository.repository.CommitObject(headReference.Hash())
	if localCommitError != nil {
		return false, localCommitError
	}

	upstreamCommit, upstreamCommitError := repository.repository.CommitObject(upstreamReference.Hash())
	if upstreamCommitError != nil {
		return false, upstreamCommitError
	}

	return upstreamCommit.IsAncestor(localCommit)
}
