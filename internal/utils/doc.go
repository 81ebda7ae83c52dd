// Package utils exposes the configuration and logging plumbing shared by the CLI.
//
// ConfigurationLoader layers embedded defaults, configuration files, and
// REPOSCAN_ environment overrides through Viper. LoggerFactory builds zap
// loggers that keep diagnostics off the report stream.
package utils
