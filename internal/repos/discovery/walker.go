package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	rootNotDirectoryOperationConstant  = "scan"
	skippedDirectoryLogMessageConstant = "skipping unreadable directory"
	logFieldPathConstant               = "path"
	walkErrorTemplateConstant          = "unable to walk %s: %w"
)

// DirectoryWalker finds marker directories beneath a root on an afero filesystem.
type DirectoryWalker struct {
	fileSystem          afero.Fs
	markerDirectoryName string
	logger              *zap.Logger
}

// NewDirectoryWalker constructs a walker matching directories named markerDirectoryName.
func NewDirectoryWalker(fileSystem afero.Fs, markerDirectoryName string, logger *zap.Logger) *DirectoryWalker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryWalker{fileSystem: fileSystem, markerDirectoryName: markerDirectoryName, logger: logger}
}

// FindCandidates returns the parent directory of every marker found beneath root, in walk order.
// Marker contents are never visited; the rest of the working tree is, so nested repositories are found.
// Failures reading root are returned; unreadable subdirectories are skipped.
func (walker *DirectoryWalker) FindCandidates(executionContext context.Context, root string) ([]string, error) {
	rootInfo, statError := walker.fileSystem.Stat(root)
	if statError != nil {
		return nil, statError
	}
	if !rootInfo.IsDir() {
		return nil, &fs.PathError{Op: rootNotDirectoryOperationConstant, Path: root, Err: syscall.ENOTDIR}
	}

	var candidates []string
	walkError := afero.Walk(walker.fileSystem, root, func(path string, info os.FileInfo, visitError error) error {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		if visitError != nil {
			if path == root {
				return visitError
			}
			walker.logger.Debug(skippedDirectoryLogMessageConstant, zap.String(logFieldPathConstant, path), zap.Error(visitError))
			return nil
		}
		if !info.IsDir() || path == root {
			return nil
		}
		if info.Name() == walker.markerDirectoryName {
			candidates = append(candidates, filepath.Dir(path))
			return filepath.SkipDir
		}
		return nil
	})
	if walkError != nil {
		return nil, fmt.Errorf(walkErrorTemplateConstant, root, walkError)
	}
	return candidates, nil
}
