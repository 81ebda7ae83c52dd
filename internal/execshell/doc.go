// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with zap logging via ShellExecutor and exposes
// OSCommandRunner for default process execution, so that git invocations used
// by remote repository operations stay testable.
package execshell
