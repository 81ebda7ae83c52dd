package report_test

import (
	"context"
	"errors"
	"sync"

	"github.com/temirov/reposcan/internal/repos/shared"
)

var errRepositoryMissing = errors.New("repository missing")

type remoteResponse struct {
	outcome shared.RemoteOutcome
	err     error
}

// fakeRepository serves canned answers for every shared.Repository method.
type fakeRepository struct {
	workdir     string
	branchName  string
	branchError error
	status      shared.WorktreeStatus
	statusError error

	mutex           sync.Mutex
	remoteResponses []remoteResponse
	remoteCalls     []shared.RemoteOperation
	blockUntilDone  bool
}

func (repository *fakeRepository) Workdir() string {
	return repository.workdir
}

func (repository *fakeRepository) CurrentBranchName() (string, error) {
	return repository.branchName, repository.branchError
}

func (repository *fakeRepository) Status(context.Context) (shared.WorktreeStatus, error) {
	return repository.status, repository.statusError
}

func (repository *fakeRepository) Fetch(executionContext context.Context) (shared.RemoteOutcome, error) {
	return repository.remote(executionContext, shared.RemoteOperationFetch)
}

func (repository *fakeRepository) Pull(executionContext context.Context) (shared.RemoteOutcome, error) {
	return repository.remote(executionContext, shared.RemoteOperationPull)
}

func (repository *fakeRepository) Push(executionContext context.Context) (shared.RemoteOutcome, error) {
	return repository.remote(executionContext, shared.RemoteOperationPush)
}

func (repository *fakeRepository) remote(executionContext context.Context, operation shared.RemoteOperation) (shared.RemoteOutcome, error) {
	repository.mutex.Lock()
	repository.remoteCalls = append(repository.remoteCalls, operation)
	callIndex := len(repository.remoteCalls) - 1
	repository.mutex.Unlock()

	if repository.blockUntilDone {
		<-executionContext.Done()
		return "", executionContext.Err()
	}
	if len(repository.remoteResponses) == 0 {
		return shared.RemoteOutcomeUpToDate, nil
	}
	if callIndex >= len(repository.remoteResponses) {
		callIndex = len(repository.remoteResponses) - 1
	}
	response := repository.remoteResponses[callIndex]
	return response.outcome, response.err
}

func (repository *fakeRepository) calls() []shared.RemoteOperation {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	return append([]shared.RemoteOperation{}, repository.remoteCalls...)
}

// fakeOpener hands out registered repositories and fails for everything else.
type fakeOpener struct {
	repositories map[string]shared.Repository
}

func (opener fakeOpener) Open(repositoryPath string) (shared.Repository, error) {
	repository, registered := opener.repositories[repositoryPath]
	if !registered {
		return nil, errRepositoryMissing
	}
	return repository, nil
}
