package dependencies

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/reposcan/internal/execshell"
	"github.com/temirov/reposcan/internal/gitrepo"
	"github.com/temirov/reposcan/internal/repos/discovery"
	"github.com/temirov/reposcan/internal/repos/shared"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing afero.Fs) afero.Fs {
	if existing != nil {
		return existing
	}
	return afero.NewOsFs()
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveRepositoryOpener returns the provided opener or a go-git opener bound to executor.
func ResolveRepositoryOpener(existing shared.RepositoryOpener, executor shared.GitExecutor) shared.RepositoryOpener {
	if existing != nil {
		return existing
	}
	return gitrepo.NewOpener(executor)
}

// ResolveRepositoryDiscoverer returns the provided discoverer or a filesystem-backed default.
func ResolveRepositoryDiscoverer(existing shared.RepositoryDiscoverer, fileSystem afero.Fs, opener shared.RepositoryOpener, logger *zap.Logger, markerDirectoryName string) shared.RepositoryDiscoverer {
	if existing != nil {
		return existing
	}
	return discovery.NewFilesystemRepositoryDiscoverer(ResolveFileSystem(fileSystem), opener, logger, discovery.WithMarkerDirectoryName(markerDirectoryName))
}
