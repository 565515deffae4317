package dispatch

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/cherrypick"
	"github.com/temirov/relpick/internal/dependencies"
	"github.com/temirov/relpick/internal/shared"
	"github.com/temirov/relpick/internal/utils"
)

const (
	releaseCommandUseConstant              = "release"
	releaseCommandShortDescriptionConstant = "Promote a release across every configured repository"
	releaseCommandLongDescriptionConstant  = "release walks the configured repositories in order and invokes the cherry-pick delegate for each one that exists on disk. Missing directories are skipped with a warning and delegate failures do not stop the run."

	releaseFlagNameConstant            = "release"
	releaseFlagUsageConstant           = "Release version to promote"
	sourceFlagNameConstant             = "source"
	sourceFlagUsageConstant            = "Source branch holding the release commits"
	targetFlagNameConstant             = "target"
	targetFlagUsageConstant            = "Target branch receiving the cherry-picks"
	taskFileFlagNameConstant           = "task-file"
	taskFileFlagUsageConstant          = "File listing task keys, one per line"
	reposFlagNameConstant              = "repos"
	reposFlagUsageConstant             = "Repository paths to process, in order"
	planFlagNameConstant               = "plan"
	planFlagUsageConstant              = "Release plan manifest overriding configured values"
	delegateFlagNameConstant           = "delegate"
	delegateFlagUsageConstant          = "External delegate command; omit to use the built-in cherry-pick engine"
	failOnErrorFlagNameConstant        = "fail-on-error"
	failOnErrorFlagUsageConstant       = "Exit non-zero when any delegate invocation fails"
	syncTasksFlagNameConstant          = "sync-tasks"
	syncTasksFlagUsageConstant         = "Refresh the task file from the issue tracker before dispatching"
	dispatchOnConflictFlagName         = "on-conflict"
	dispatchOnConflictFlagUsage        = "Conflict strategy for the built-in engine (abort, skip, ours, theirs)"
	dispatchDryRunFlagNameConstant     = "dry-run"
	dispatchDryRunFlagUsageConstant    = "List selected commits without applying them (built-in engine only)"
	noRepositoriesMessageConstant      = "no repositories were configured"
	synchronizerMissingMessageConstant = "task synchronization requested but no tracker is configured"
)

// TaskSynchronizer refreshes the task file from an issue tracker before dispatching.
type TaskSynchronizer interface {
	Sync(executionContext context.Context, releaseVersion string, taskFilePath string) error
}

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the release dispatcher command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	FileSystem                   shared.FileSystem
	ToolExecutor                 shared.ToolExecutor
	GitExecutor                  shared.GitExecutor
	GitRepositoryManager         shared.GitRepositoryManager
	TaskSynchronizer             TaskSynchronizer
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() RunConfiguration
}

// Build constructs the release command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   releaseCommandUseConstant,
		Short: releaseCommandShortDescriptionConstant,
		Long:  releaseCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	configuration := builder.resolveConfiguration()
	command.Flags().String(releaseFlagNameConstant, configuration.ReleaseVersion, releaseFlagUsageConstant)
	command.Flags().String(sourceFlagNameConstant, configuration.SourceBranch, sourceFlagUsageConstant)
	command.Flags().String(targetFlagNameConstant, configuration.TargetBranch, targetFlagUsageConstant)
	command.Flags().String(taskFileFlagNameConstant, configuration.TaskFile, taskFileFlagUsageConstant)
	command.Flags().StringSlice(reposFlagNameConstant, configuration.Repositories, reposFlagUsageConstant)
	command.Flags().String(planFlagNameConstant, "", planFlagUsageConstant)
	command.Flags().String(delegateFlagNameConstant, configuration.DelegateCommand, delegateFlagUsageConstant)
	command.Flags().Bool(failOnErrorFlagNameConstant, configuration.FailOnError, failOnErrorFlagUsageConstant)
	command.Flags().Bool(syncTasksFlagNameConstant, configuration.SyncTasks, syncTasksFlagUsageConstant)
	command.Flags().String(dispatchOnConflictFlagName, string(cherrypick.ConflictStrategyAbort), dispatchOnConflictFlagUsage)
	command.Flags().Bool(dispatchDryRunFlagNameConstant, false, dispatchDryRunFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration, configurationError := builder.collectConfiguration(command)
	if configurationError != nil {
		return configurationError
	}
	if len(configuration.Repositories) == 0 {
		return errors.New(noRepositoriesMessageConstant)
	}

	logger := builder.resolveLogger()
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)
	reporter := shared.NewWriterReporter(utils.NewFlushingWriter(command.OutOrStdout()))

	if configuration.SyncTasks {
		if builder.TaskSynchronizer == nil {
			return errors.New(synchronizerMissingMessageConstant)
		}
		if syncError := builder.TaskSynchronizer.Sync(command.Context(), configuration.ReleaseVersion, configuration.TaskFile); syncError != nil {
			return syncError
		}
	}

	invoker, invokerError := builder.resolveInvoker(command, configuration, logger, fileSystem, reporter)
	if invokerError != nil {
		return invokerError
	}

	service, serviceCreationError := NewService(ServiceDependencies{
		Logger:     logger,
		FileSystem: fileSystem,
		Invoker:    invoker,
		Reporter:   reporter,
	})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	_, runError := service.Run(command.Context(), configuration)
	return runError
}

func (builder *CommandBuilder) collectConfiguration(command *cobra.Command) (RunConfiguration, error) {
	configuration := builder.resolveConfiguration()

	planPath, planFlagError := command.Flags().GetString(planFlagNameConstant)
	if planFlagError != nil {
		return RunConfiguration{}, planFlagError
	}
	if len(planPath) > 0 {
		planConfiguration, planError := LoadPlan(dependencies.ResolveFileSystem(builder.FileSystem), planPath)
		if planError != nil {
			return RunConfiguration{}, planError
		}
		configuration = planConfiguration
	}

	if command.Flags().Changed(releaseFlagNameConstant) {
		configuration.ReleaseVersion, _ = command.Flags().GetString(releaseFlagNameConstant)
	}
	if command.Flags().Changed(sourceFlagNameConstant) {
		configuration.SourceBranch, _ = command.Flags().GetString(sourceFlagNameConstant)
	}
	if command.Flags().Changed(targetFlagNameConstant) {
		configuration.TargetBranch, _ = command.Flags().GetString(targetFlagNameConstant)
	}
	if command.Flags().Changed(taskFileFlagNameConstant) {
		configuration.TaskFile, _ = command.Flags().GetString(taskFileFlagNameConstant)
	}
	if command.Flags().Changed(reposFlagNameConstant) {
		configuration.Repositories, _ = command.Flags().GetStringSlice(reposFlagNameConstant)
	}
	if command.Flags().Changed(delegateFlagNameConstant) {
		configuration.DelegateCommand, _ = command.Flags().GetString(delegateFlagNameConstant)
	}
	if command.Flags().Changed(failOnErrorFlagNameConstant) {
		configuration.FailOnError, _ = command.Flags().GetBool(failOnErrorFlagNameConstant)
	}
	if command.Flags().Changed(syncTasksFlagNameConstant) {
		configuration.SyncTasks, _ = command.Flags().GetBool(syncTasksFlagNameConstant)
	}

	return configuration.Sanitize(), nil
}

func (builder *CommandBuilder) resolveInvoker(command *cobra.Command, configuration RunConfiguration, logger *zap.Logger, fileSystem shared.FileSystem, reporter shared.Reporter) (DelegateInvoker, error) {
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	if len(configuration.DelegateCommand) > 0 {
		toolExecutor, executorError := dependencies.ResolveToolExecutor(builder.ToolExecutor, logger, humanReadableLogging)
		if executorError != nil {
			return nil, executorError
		}
		return NewShellDelegateInvoker(toolExecutor, configuration.DelegateCommand)
	}

	onConflictValue, onConflictFlagError := command.Flags().GetString(dispatchOnConflictFlagName)
	if onConflictFlagError != nil {
		return nil, onConflictFlagError
	}
	conflictStrategy, strategyError := cherrypick.ParseConflictStrategy(onConflictValue)
	if strategyError != nil {
		return nil, strategyError
	}
	dryRunRequested, dryRunFlagError := command.Flags().GetBool(dispatchDryRunFlagNameConstant)
	if dryRunFlagError != nil {
		return nil, dryRunFlagError
	}

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, humanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}
	repositoryManager, managerError := dependencies.ResolveGitRepositoryManager(builder.GitRepositoryManager, gitExecutor)
	if managerError != nil {
		return nil, managerError
	}
	engineService, engineServiceError := cherrypick.NewService(cherrypick.Dependencies{
		GitExecutor:       gitExecutor,
		RepositoryManager: repositoryManager,
		Reporter:          reporter,
		Logger:            logger,
	})
	if engineServiceError != nil {
		return nil, engineServiceError
	}
	return NewEngineDelegateInvoker(engineService, fileSystem, conflictStrategy, dryRunRequested)
}

func (builder *CommandBuilder) resolveConfiguration() RunConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultRunConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
