package discovery

import (
	"context"
	"sort"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/reposcan/internal/repos/shared"
)

const (
	droppedCandidateLogMessageConstant = "dropping repository candidate"
	discoveredLogMessageConstant       = "repository discovery completed"
	logFieldRootConstant               = "root"
	logFieldCandidateCountConstant     = "candidates"
	logFieldRepositoryCountConstant    = "repositories"
)

// Option customizes a FilesystemRepositoryDiscoverer.
type Option func(*FilesystemRepositoryDiscoverer)

// WithMarkerDirectoryName overrides the marker directory searched for during the walk.
func WithMarkerDirectoryName(markerDirectoryName string) Option {
	return func(discoverer *FilesystemRepositoryDiscoverer) {
		if len(markerDirectoryName) > 0 {
			discoverer.markerDirectoryName = markerDirectoryName
		}
	}
}

// FilesystemRepositoryDiscoverer locates git repositories on disk and keeps those that open successfully.
type FilesystemRepositoryDiscoverer struct {
	fileSystem          afero.Fs
	opener              shared.RepositoryOpener
	logger              *zap.Logger
	markerDirectoryName string
}

// NewFilesystemRepositoryDiscoverer constructs a repository discoverer backed by afero.Walk.
func NewFilesystemRepositoryDiscoverer(fileSystem afero.Fs, opener shared.RepositoryOpener, logger *zap.Logger, options ...Option) *FilesystemRepositoryDiscoverer {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	discoverer := &FilesystemRepositoryDiscoverer{
		fileSystem:          fileSystem,
		opener:              opener,
		logger:              logger,
		markerDirectoryName: shared.GitMetadataDirectoryNameConstant,
	}
	for _, option := range options {
		option(discoverer)
	}
	return discoverer
}

// DiscoverRepositories walks root and returns one handle per openable repository, sorted by path.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(executionContext context.Context, root string) ([]shared.RepositoryHandle, error) {
	walker := NewDirectoryWalker(discoverer.fileSystem, discoverer.markerDirectoryName, discoverer.logger)
	candidates, walkError := walker.FindCandidates(executionContext, root)
	if walkError != nil {
		return nil, walkError
	}

	seen := make(map[string]struct{}, len(candidates))
	handles := make([]shared.RepositoryHandle, 0, len(candidates))
	for _, candidate := range candidates {
		if _, alreadySeen := seen[candidate]; alreadySeen {
			continue
		}
		seen[candidate] = struct{}{}

		if discoverer.opener != nil {
			if _, openError := discoverer.opener.Open(candidate); openError != nil {
				discoverer.logger.Debug(droppedCandidateLogMessageConstant, zap.String(logFieldPathConstant, candidate), zap.Error(openError))
				continue
			}
		}
		handles = append(handles, shared.RepositoryHandle{Path: candidate})
	}

	sort.Slice(handles, func(firstIndex int, secondIndex int) bool {
		return handles[firstIndex].Path < handles[secondIndex].Path
	})

	discoverer.logger.Debug(
		discoveredLogMessageConstant,
		zap.String(logFieldRootConstant, root),
		zap.Int(logFieldCandidateCountConstant, len(candidates)),
		zap.Int(logFieldRepositoryCountConstant, len(handles)),
	)
	return handles, nil
}
