// Package report turns discovered repositories into an aligned, sorted report.
//
// A Plan fixes the action, its InfoGetter, and the name column width before any
// repository is described. The Mapper then re-opens each repository on a bounded
// worker pool, so every line reflects the state on disk when it is described.
package report
