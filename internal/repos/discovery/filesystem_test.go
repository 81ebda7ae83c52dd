package discovery_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/reposcan/internal/gitrepo"
	"github.com/temirov/reposcan/internal/repos/discovery"
	"github.com/temirov/reposcan/internal/repos/shared"
	"github.com/temirov/reposcan/internal/testsupport"
)

const (
	memoryRootDirectoryPath        = "/work"
	developerDirectoryName         = "Dev"
	engineeringGroupDirectoryName  = "Group1"
	applicationRepositoryName      = "Repo1"
	serviceRepositoryName          = "Repo2"
	vendoredRepositoryName         = "vendored"
	brokenRepositoryName           = "broken"
	gitMetadataDirectoryName       = ".git"
	gitHeadFileName                = "HEAD"
	gitHeadFileContents            = "ref: refs/heads/main\n"
	repositoryDirectoryPermissions = 0o755
	repositoryFilePermissions      = 0o644
	droppedCandidateLogMessage     = "dropping repository candidate"
	skippedDirectoryLogMessage     = "skipping unreadable directory"
	lockedDirectoryName            = "locked"
)

var errMissingHead = errors.New("missing HEAD")

// headFileOpener accepts candidates whose marker directory contains a HEAD file.
type headFileOpener struct {
	fileSystem afero.Fs
}

func (opener headFileOpener) Open(repositoryPath string) (shared.Repository, error) {
	exists, existsError := afero.Exists(opener.fileSystem, filepath.Join(repositoryPath, gitMetadataDirectoryName, gitHeadFileName))
	if existsError != nil {
		return nil, existsError
	}
	if !exists {
		return nil, errMissingHead
	}
	return nil, nil
}

type memoryRepositoryDefinition struct {
	directorySegments []string
	valid             bool
}

func (definition memoryRepositoryDefinition) repositoryPath() string {
	segments := append([]string{memoryRootDirectoryPath}, definition.directorySegments...)
	return filepath.Join(segments...)
}

func (definition memoryRepositoryDefinition) create(testInstance *testing.T, fileSystem afero.Fs) {
	testInstance.Helper()

	markerPath := filepath.Join(definition.repositoryPath(), gitMetadataDirectoryName)
	require.NoError(testInstance, fileSystem.MkdirAll(markerPath, repositoryDirectoryPermissions))
	if definition.valid {
		require.NoError(testInstance, afero.WriteFile(fileSystem, filepath.Join(markerPath, gitHeadFileName), []byte(gitHeadFileContents), repositoryFilePermissions))
	}
}

func TestFilesystemRepositoryDiscovererKeepsOnlyOpenableRepositories(testInstance *testing.T) {
	testCases := []struct {
		name        string
		definitions []memoryRepositoryDefinition
	}{
		{
			name: "valid_repositories_only",
			definitions: []memoryRepositoryDefinition{
				{directorySegments: []string{developerDirectoryName, engineeringGroupDirectoryName, applicationRepositoryName}, valid: true},
				{directorySegments: []string{developerDirectoryName, serviceRepositoryName}, valid: true},
			},
		},
		{
			name: "valid_and_invalid_markers",
			definitions: []memoryRepositoryDefinition{
				{directorySegments: []string{applicationRepositoryName}, valid: true},
				{directorySegments: []string{brokenRepositoryName}, valid: false},
				{directorySegments: []string{developerDirectoryName, brokenRepositoryName}, valid: false},
				{directorySegments: []string{serviceRepositoryName}, valid: true},
			},
		},
		{
			name: "nested_repositories",
			definitions: []memoryRepositoryDefinition{
				{directorySegments: []string{applicationRepositoryName}, valid: true},
				{directorySegments: []string{applicationRepositoryName, vendoredRepositoryName}, valid: true},
				{directorySegments: []string{applicationRepositoryName, vendoredRepositoryName, brokenRepositoryName}, valid: false},
			},
		},
		{
			name:        "no_repositories",
			definitions: nil,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fileSystem := afero.NewMemMapFs()
			require.NoError(testInstance, fileSystem.MkdirAll(memoryRootDirectoryPath, repositoryDirectoryPermissions))

			expectedHandles := []shared.RepositoryHandle{}
			for _, definition := range testCase.definitions {
				definition.create(testInstance, fileSystem)
				if definition.valid {
					expectedHandles = append(expectedHandles, shared.RepositoryHandle{Path: definition.repositoryPath()})
				}
			}

			discoverer := discovery.NewFilesystemRepositoryDiscoverer(fileSystem, headFileOpener{fileSystem: fileSystem}, zap.NewNop())
			handles, discoveryError := discoverer.DiscoverRepositories(context.Background(), memoryRootDirectoryPath)
			require.NoError(testInstance, discoveryError)
			require.ElementsMatch(testInstance, expectedHandles, handles)
			require.IsIncreasing(testInstance, handlePaths(handles))
		})
	}
}

func TestFilesystemRepositoryDiscovererLogsDroppedCandidates(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	memoryRepositoryDefinition{directorySegments: []string{brokenRepositoryName}}.create(testInstance, fileSystem)

	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	discoverer := discovery.NewFilesystemRepositoryDiscoverer(fileSystem, headFileOpener{fileSystem: fileSystem}, zap.New(observerCore))

	handles, discoveryError := discoverer.DiscoverRepositories(context.Background(), memoryRootDirectoryPath)
	require.NoError(testInstance, discoveryError)
	require.Empty(testInstance, handles)

	droppedEntries := observedLogs.FilterMessage(droppedCandidateLogMessage).All()
	require.Len(testInstance, droppedEntries, 1)
	require.Equal(testInstance, filepath.Join(memoryRootDirectoryPath, brokenRepositoryName), droppedEntries[0].ContextMap()["path"])
}

// unreadableDirectoryFs refuses to open one directory, as a permission-restricted folder would.
type unreadableDirectoryFs struct {
	afero.Fs
	unreadablePath string
}

func (fileSystem unreadableDirectoryFs) Open(name string) (afero.File, error) {
	if filepath.Clean(name) == fileSystem.unreadablePath {
		return nil, &fs.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return fileSystem.Fs.Open(name)
}

func TestFilesystemRepositoryDiscovererSkipsUnreadableDirectories(testInstance *testing.T) {
	memoryFileSystem := afero.NewMemMapFs()
	firstDefinition := memoryRepositoryDefinition{directorySegments: []string{applicationRepositoryName}, valid: true}
	hiddenDefinition := memoryRepositoryDefinition{directorySegments: []string{lockedDirectoryName, brokenRepositoryName}, valid: true}
	lastDefinition := memoryRepositoryDefinition{directorySegments: []string{serviceRepositoryName}, valid: true}
	for _, definition := range []memoryRepositoryDefinition{firstDefinition, hiddenDefinition, lastDefinition} {
		definition.create(testInstance, memoryFileSystem)
	}

	unreadablePath := filepath.Join(memoryRootDirectoryPath, lockedDirectoryName)
	fileSystem := unreadableDirectoryFs{Fs: memoryFileSystem, unreadablePath: unreadablePath}
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	discoverer := discovery.NewFilesystemRepositoryDiscoverer(fileSystem, headFileOpener{fileSystem: memoryFileSystem}, zap.New(observerCore))

	handles, discoveryError := discoverer.DiscoverRepositories(context.Background(), memoryRootDirectoryPath)
	require.NoError(testInstance, discoveryError)
	require.Equal(testInstance, []shared.RepositoryHandle{
		{Path: firstDefinition.repositoryPath()},
		{Path: lastDefinition.repositoryPath()},
	}, handles)

	skippedEntries := observedLogs.FilterMessage(skippedDirectoryLogMessage).All()
	require.Len(testInstance, skippedEntries, 1)
	require.Equal(testInstance, unreadablePath, skippedEntries[0].ContextMap()["path"])
}

func TestFilesystemRepositoryDiscovererHonorsMarkerOverride(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, fileSystem.MkdirAll(filepath.Join(memoryRootDirectoryPath, applicationRepositoryName, ".hg"), repositoryDirectoryPermissions))
	require.NoError(testInstance, fileSystem.MkdirAll(filepath.Join(memoryRootDirectoryPath, serviceRepositoryName, gitMetadataDirectoryName), repositoryDirectoryPermissions))

	discoverer := discovery.NewFilesystemRepositoryDiscoverer(fileSystem, nil, nil, discovery.WithMarkerDirectoryName(".hg"))
	handles, discoveryError := discoverer.DiscoverRepositories(context.Background(), memoryRootDirectoryPath)
	require.NoError(testInstance, discoveryError)
	require.Equal(testInstance, []shared.RepositoryHandle{{Path: filepath.Join(memoryRootDirectoryPath, applicationRepositoryName)}}, handles)
}

func TestFilesystemRepositoryDiscovererRootFailures(testInstance *testing.T) {
	testCases := []struct {
		name           string
		createRootFile bool
		expectedErrno  syscall.Errno
	}{
		{name: "missing_root", expectedErrno: syscall.ENOENT},
		{name: "root_is_a_file", createRootFile: true, expectedErrno: syscall.ENOTDIR},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fileSystem := afero.NewOsFs()
			rootDirectory := filepath.Join(testInstance.TempDir(), "root")
			if testCase.createRootFile {
				require.NoError(testInstance, afero.WriteFile(fileSystem, rootDirectory, []byte("not a directory"), repositoryFilePermissions))
			}

			discoverer := discovery.NewFilesystemRepositoryDiscoverer(fileSystem, nil, nil)
			handles, discoveryError := discoverer.DiscoverRepositories(context.Background(), rootDirectory)
			require.Error(testInstance, discoveryError)
			require.Nil(testInstance, handles)

			var pathError *fs.PathError
			require.ErrorAs(testInstance, discoveryError, &pathError)
			require.ErrorIs(testInstance, discoveryError, testCase.expectedErrno)
		})
	}
}

func TestFilesystemRepositoryDiscovererStopsOnCancelledContext(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	memoryRepositoryDefinition{directorySegments: []string{applicationRepositoryName}, valid: true}.create(testInstance, fileSystem)

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	discoverer := discovery.NewFilesystemRepositoryDiscoverer(fileSystem, headFileOpener{fileSystem: fileSystem}, nil)
	_, discoveryError := discoverer.DiscoverRepositories(cancelledContext, memoryRootDirectoryPath)
	require.ErrorIs(testInstance, discoveryError, context.Canceled)
}

func TestFilesystemRepositoryDiscovererWithGitRepositories(testInstance *testing.T) {
	rootDirectory := testsupport.CanonicalTempDir(testInstance)

	committedRepositoryPath := filepath.Join(rootDirectory, applicationRepositoryName)
	committedRepository := testsupport.InitRepository(testInstance, committedRepositoryPath, "main")
	testsupport.CommitFile(testInstance, committedRepository, "README.md", "hello\n")

	emptyRepositoryPath := filepath.Join(rootDirectory, serviceRepositoryName)
	testsupport.InitRepository(testInstance, emptyRepositoryPath, "main")

	testsupport.CreateInvalidMarker(testInstance, filepath.Join(rootDirectory, brokenRepositoryName))

	discoverer := discovery.NewFilesystemRepositoryDiscoverer(afero.NewOsFs(), gitrepo.NewOpener(nil), nil)
	handles, discoveryError := discoverer.DiscoverRepositories(context.Background(), rootDirectory)
	require.NoError(testInstance, discoveryError)
	require.Equal(testInstance, []shared.RepositoryHandle{
		{Path: committedRepositoryPath},
		{Path: emptyRepositoryPath},
	}, handles)
}

func handlePaths(handles []shared.RepositoryHandle) []string {
	paths := make([]string, 0, len(handles))
	for _, handle := range handles {
		paths = append(paths, handle.Path)
	}
	return paths
}
