// Package cli constructs the reposcan command-line interface. It wires the
// Cobra root command to the configuration loader, the zap logger, and the
// discovery and report pipeline, and maps failures to process exit codes.
package cli
