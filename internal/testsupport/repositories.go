// Package testsupport provides fixtures shared by package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

const (
	fixtureAuthorNameConstant       = "Fixture Author"
	fixtureAuthorEmailConstant      = "fixture@example.com"
	fixtureDirectoryPermissions     = 0o755
	fixtureFilePermissions          = 0o644
	fixtureRemoteURLConstant        = "https://example.invalid/fixture.git"
	fixtureGitMetadataDirectoryName = ".git"
)

// InitRepository creates an empty repository whose HEAD points at branchName.
func InitRepository(testingInstance testing.TB, repositoryPath string, branchName string) *git.Repository {
	testingInstance.Helper()

	require.NoError(testingInstance, os.MkdirAll(repositoryPath, fixtureDirectoryPermissions))
	repository, initError := git.PlainInitWithOptions(repositoryPath, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(branchName)},
	})
	require.NoError(testingInstance, initError)
	return repository
}

// CommitFile writes content to relativePath, stages it, and records a commit.
func CommitFile(testingInstance testing.TB, repository *git.Repository, relativePath string, content string) plumbing.Hash {
	testingInstance.Helper()

	worktree, worktreeError := repository.Worktree()
	require.NoError(testingInstance, worktreeError)

	WriteFile(testingInstance, filepath.Join(worktree.Filesystem.Root(), relativePath), content)

	_, addError := worktree.Add(relativePath)
	require.NoError(testingInstance, addError)

	commitHash, commitError := worktree.Commit("update "+relativePath, &git.CommitOptions{
		Author: &object.Signature{Name: fixtureAuthorNameConstant, Email: fixtureAuthorEmailConstant, When: time.Now()},
	})
	require.NoError(testingInstance, commitError)
	return commitHash
}

// WriteFile writes content to an absolute path, creating parent directories.
func WriteFile(testingInstance testing.TB, absolutePath string, content string) {
	testingInstance.Helper()

	require.NoError(testingInstance, os.MkdirAll(filepath.Dir(absolutePath), fixtureDirectoryPermissions))
	require.NoError(testingInstance, os.WriteFile(absolutePath, []byte(content), fixtureFilePermissions))
}

// TrackUpstream configures branchName to track origin and points the remote-tracking reference at upstreamHash.
func TrackUpstream(testingInstance testing.TB, repository *git.Repository, branchName string, upstreamHash plumbing.Hash) {
	testingInstance.Helper()

	repositoryConfiguration, configurationError := repository.Config()
	require.NoError(testingInstance, configurationError)

	repositoryConfiguration.Remotes["origin"] = &config.RemoteConfig{
		Name: "origin",
		URLs: []string{fixtureRemoteURLConstant},
	}
	repositoryConfiguration.Branches[branchName] = &config.Branch{
		Name:   branchName,
		Remote: "origin",
		Merge:  plumbing.NewBranchReferenceName(branchName),
	}
	require.NoError(testingInstance, repository.SetConfig(repositoryConfiguration))

	remoteReference := plumbing.NewHashReference(plumbing.NewRemoteReferenceName("origin", branchName), upstreamHash)
	require.NoError(testingInstance, repository.Storer.SetReference(remoteReference))
}

// CreateInvalidMarker creates an empty .git directory that go-git cannot open.
func CreateInvalidMarker(testingInstance testing.TB, repositoryPath string) {
	testingInstance.Helper()

	require.NoError(testingInstance, os.MkdirAll(filepath.Join(repositoryPath, fixtureGitMetadataDirectoryName), fixtureDirectoryPermissions))
}

// CanonicalTempDir returns a temporary directory with symlinks resolved.
func CanonicalTempDir(testingInstance testing.TB) string {
	testingInstance.Helper()

	resolvedDirectory, resolveError := filepath.EvalSymlinks(testingInstance.TempDir())
	require.NoError(testingInstance, resolveError)
	return resolvedDirectory
}
