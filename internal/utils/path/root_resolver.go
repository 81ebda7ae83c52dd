package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// RootResolver turns a user-supplied scan root into a canonical absolute path.
type RootResolver struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewRootResolver constructs a RootResolver using the operating system home lookup.
func NewRootResolver() *RootResolver {
	return NewRootResolverWithProvider(os.UserHomeDir)
}

// NewRootResolverWithProvider constructs a RootResolver with a custom home directory provider.
func NewRootResolverWithProvider(provider HomeDirectoryProvider) *RootResolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &RootResolver{homeDirectoryProvider: provider}
}

// Resolve expands a leading tilde, makes the path absolute, and resolves symbolic links.
// The returned error is the operating system error for a root that cannot be resolved.
func (resolver *RootResolver) Resolve(candidatePath string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(resolver.ExpandHome(candidatePath))
	if absoluteError != nil {
		return "", absoluteError
	}
	return filepath.EvalSymlinks(absolutePath)
}

// ExpandHome resolves a leading ~ or ~/ to the user's home directory.
func (resolver *RootResolver) ExpandHome(candidatePath string) string {
	if resolver == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	homeDirectory := resolver.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}

	switch {
	case candidatePath == tildeSymbolConstant:
		return homeDirectory
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
	case strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix):
		return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix))
	default:
		return candidatePath
	}
}

func (resolver *RootResolver) resolveHomeDirectory() string {
	resolver.initializationGuard.Do(func() {
		resolver.homeDirectory, resolver.homeDirectoryError = resolver.homeDirectoryProvider()
	})
	if resolver.homeDirectoryError != nil {
		return ""
	}
	return resolver.homeDirectory
}
