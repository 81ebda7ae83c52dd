package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/reposcan/internal/report"
	"github.com/temirov/reposcan/internal/repos/dependencies"
	"github.com/temirov/reposcan/internal/repos/shared"
	"github.com/temirov/reposcan/internal/ui"
	"github.com/temirov/reposcan/internal/utils"
	"github.com/temirov/reposcan/internal/utils/flags"
	pathutils "github.com/temirov/reposcan/internal/utils/path"
)

const (
	applicationNameConstant                 = "reposcan"
	applicationUseConstant                  = applicationNameConstant + " <directory>"
	applicationShortDescriptionConstant     = "Summarize every git repository beneath a directory"
	applicationLongDescriptionConstant      = "reposcan walks a directory tree, finds git working directories, and prints one aligned line per repository with its name and, optionally, its branch, status, or the outcome of a remote operation."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	absoluteFlagNameConstant                = "absolute"
	absoluteFlagShorthandConstant           = "A"
	absoluteFlagUsageConstant               = "Show absolute paths instead of paths relative to the directory."
	branchFlagNameConstant                  = "branch"
	branchFlagShorthandConstant             = "b"
	branchFlagUsageConstant                 = "Show the checked out branch of each repository."
	statusFlagNameConstant                  = "status"
	statusFlagShorthandConstant             = "s"
	statusFlagUsageConstant                 = "Show the working tree status of each repository."
	fetchFlagNameConstant                   = "fetch"
	fetchFlagShorthandConstant              = "f"
	fetchFlagUsageConstant                  = "Fetch every repository from its remotes."
	pullFlagNameConstant                    = "pull"
	pullFlagShorthandConstant               = "p"
	pullFlagUsageConstant                   = "Fast-forward every repository from its upstream."
	pushFlagNameConstant                    = "push"
	pushFlagShorthandConstant               = "P"
	pushFlagUsageConstant                   = "Push local commits of every repository to its upstream."
	environmentPrefixConstant               = "REPOSCAN"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	defaultConfigurationSearchPathConstant  = "."
	configurationInitializedMessageConstant = "configuration initialized"
	reportStartedMessageConstant            = "scanning directory"
	reportCompletedMessageConstant          = "report completed"
	rootFailureMessageConstant              = "directory cannot be scanned"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	logFieldRootConstant                    = "root"
	logFieldActionConstant                  = "action"
	logFieldRepositoryCountConstant         = "repositories"
	logFieldLineCountConstant               = "lines"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	executorCreationErrorTemplateConstant   = "unable to prepare git executor: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	reportWriteErrorTemplateConstant        = "unable to write report: %w"
	reportLineSeparatorConstant             = "\n"
)

// Version is the release identifier printed by --version.
var Version = "dev"

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Report ReportConfiguration            `mapstructure:"report"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ReportConfiguration tunes discovery and the report workers.
type ReportConfiguration struct {
	Workers             int           `mapstructure:"workers"`
	ExperimentalActions bool          `mapstructure:"experimental_actions"`
	RemoteTimeout       time.Duration `mapstructure:"remote_timeout"`
	RemoteRetries       int           `mapstructure:"remote_retries"`
	RetryBackoff        time.Duration `mapstructure:"retry_backoff"`
	Marker              string        `mapstructure:"marker"`
}

// Dependencies overrides collaborators of the report pipeline. Nil fields select production defaults.
type Dependencies struct {
	FileSystem           afero.Fs
	GitExecutor          shared.GitExecutor
	RepositoryOpener     shared.RepositoryOpener
	RepositoryDiscoverer shared.RepositoryDiscoverer
}

type actionFlag struct {
	name   string
	action report.Action
}

var actionFlags = []actionFlag{
	{name: branchFlagNameConstant, action: report.ActionBranch},
	{name: statusFlagNameConstant, action: report.ActionStatus},
	{name: fetchFlagNameConstant, action: report.ActionFetch},
	{name: pullFlagNameConstant, action: report.ActionPull},
	{name: pushFlagNameConstant, action: report.ActionPush},
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelValue         *flags.ChoiceValue
	logFormatValue        *flags.ChoiceValue
	showAbsolutePaths     bool
	rootResolver          *pathutils.RootResolver
	dependencies          Dependencies
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	return NewApplicationWithDependencies(Dependencies{})
}

// NewApplicationWithDependencies assembles an application whose report pipeline uses the supplied collaborators.
func NewApplicationWithDependencies(applicationDependencies Dependencies) *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		logger:              zap.NewNop(),
		logLevelValue:       flags.NewChoiceValue(string(utils.LogLevelWarn), utils.SupportedLogLevels()),
		logFormatValue:      flags.NewChoiceValue(string(utils.LogFormatConsole), utils.SupportedLogFormats()),
		rootResolver:        pathutils.NewRootResolver(),
		dependencies:        applicationDependencies,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationUseConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       Version,
		Args:          requireDirectoryArgument,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runReport(command, arguments[0])
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetFlagErrorFunc(func(command *cobra.Command, flagError error) error {
		return newExitError(exitCodeUsage, flagError, false)
	})
	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.Var(application.logLevelValue, logLevelFlagNameConstant, application.logLevelValue.Usage(logLevelFlagUsageConstant))
	persistentFlags.Var(application.logFormatValue, logFormatFlagNameConstant, application.logFormatValue.Usage(logFormatFlagUsageConstant))

	localFlags := cobraCommand.Flags()
	localFlags.BoolVarP(&application.showAbsolutePaths, absoluteFlagNameConstant, absoluteFlagShorthandConstant, false, absoluteFlagUsageConstant)
	localFlags.BoolP(branchFlagNameConstant, branchFlagShorthandConstant, false, branchFlagUsageConstant)
	localFlags.BoolP(statusFlagNameConstant, statusFlagShorthandConstant, false, statusFlagUsageConstant)
	localFlags.BoolP(fetchFlagNameConstant, fetchFlagShorthandConstant, false, fetchFlagUsageConstant)
	localFlags.BoolP(pullFlagNameConstant, pullFlagShorthandConstant, false, pullFlagUsageConstant)
	localFlags.BoolP(pushFlagNameConstant, pushFlagShorthandConstant, false, pushFlagUsageConstant)
	cobraCommand.MarkFlagsMutuallyExclusive(branchFlagNameConstant, statusFlagNameConstant, fetchFlagNameConstant, pullFlagNameConstant, pushFlagNameConstant)

	application.rootCommand = cobraCommand
	return application
}

// Command exposes the root command so callers can redirect its arguments and streams.
func (application *Application) Command() *cobra.Command {
	return application.rootCommand
}

// Execute runs the root command and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return newExitError(exitCodeSoftware, fmt.Errorf(loggerSyncErrorTemplateConstant, syncError), false)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, nil, &application.configuration)
	if loadError != nil {
		return newExitError(exitCodeConfiguration, fmt.Errorf(configurationLoadErrorTemplateConstant, loadError), false)
	}
	application.configurationMetadata = loadedConfiguration

	if command.Flags().Changed(logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelValue.String()
	}
	if command.Flags().Changed(logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatValue.String()
	}

	logger, loggerCreationError := utils.NewLoggerFactoryWithOutput(command.ErrOrStderr()).CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return newExitError(exitCodeConfiguration, fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError), false)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
	return nil
}

func (application *Application) runReport(command *cobra.Command, directoryArgument string) error {
	executionContext := command.Context()
	output := command.OutOrStdout()

	rootPath, resolveError := application.rootResolver.Resolve(directoryArgument)
	if resolveError != nil {
		return application.reportRootFailure(output, directoryArgument, resolveError)
	}

	action := application.selectedAction(command)
	application.logger.Info(reportStartedMessageConstant, zap.String(logFieldRootConstant, rootPath), zap.String(logFieldActionConstant, string(action)))

	gitExecutor, executorError := dependencies.ResolveGitExecutor(application.dependencies.GitExecutor, application.logger)
	if executorError != nil {
		return newExitError(exitCodeSoftware, fmt.Errorf(executorCreationErrorTemplateConstant, executorError), false)
	}
	repositoryOpener := dependencies.ResolveRepositoryOpener(application.dependencies.RepositoryOpener, gitExecutor)
	repositoryDiscoverer := dependencies.ResolveRepositoryDiscoverer(
		application.dependencies.RepositoryDiscoverer,
		application.dependencies.FileSystem,
		repositoryOpener,
		application.logger,
		application.configuration.Report.Marker,
	)

	handles, discoveryError := repositoryDiscoverer.DiscoverRepositories(executionContext, rootPath)
	if discoveryError != nil {
		return application.reportRootFailure(output, rootPath, discoveryError)
	}

	getters := report.NewInfoGetters(report.GetterOptions{
		ExperimentalActions: application.configuration.Report.ExperimentalActions,
		RemoteTimeout:       application.configuration.Report.RemoteTimeout,
		RemoteRetries:       application.configuration.Report.RemoteRetries,
		RetryBackoff:        application.configuration.Report.RetryBackoff,
		Logger:              application.logger,
	})
	plan := report.NewPlan(action, handles, rootPath, application.showAbsolutePaths, getters)
	mapper := report.NewMapper(repositoryOpener, application.configuration.Report.Workers, application.logger)
	lines := mapper.Map(executionContext, handles, plan, ui.NewEmphasizer(output))

	application.logger.Info(
		reportCompletedMessageConstant,
		zap.Int(logFieldRepositoryCountConstant, len(handles)),
		zap.Int(logFieldLineCountConstant, len(lines)),
	)

	if len(lines) == 0 {
		return nil
	}
	if _, writeError := fmt.Fprintln(output, strings.Join(lines, reportLineSeparatorConstant)); writeError != nil {
		return newExitError(exitCodeSoftware, fmt.Errorf(reportWriteErrorTemplateConstant, writeError), false)
	}
	return nil
}

func requireDirectoryArgument(command *cobra.Command, arguments []string) error {
	if argumentError := cobra.ExactArgs(1)(command, arguments); argumentError != nil {
		return newExitError(exitCodeUsage, argumentError, false)
	}
	return nil
}

func (application *Application) selectedAction(command *cobra.Command) report.Action {
	for _, candidate := range actionFlags {
		enabled, lookupError := command.Flags().GetBool(candidate.name)
		if lookupError == nil && enabled {
			return candidate.action
		}
	}
	return report.ActionList
}

// reportRootFailure prints the failure on the report stream and maps it to the OS error code.
func (application *Application) reportRootFailure(output io.Writer, rootPath string, rootError error) error {
	application.logger.Debug(rootFailureMessageConstant, zap.String(logFieldRootConstant, rootPath), zap.Error(rootError))
	fmt.Fprintln(output, rootError.Error())

	exitCode := exitCodeSoftware
	var errorNumber syscall.Errno
	if errors.As(rootError, &errorNumber) && errorNumber != 0 {
		exitCode = int(errorNumber)
	}
	return newExitError(exitCode, rootError, true)
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}
