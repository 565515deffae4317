package cherrypick

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/dependencies"
	"github.com/temirov/relpick/internal/shared"
	"github.com/temirov/relpick/internal/tasks"
	"github.com/temirov/relpick/internal/utils"
)

const (
	commandUseConstant              = "cherry-pick <source> <target> <task>..."
	commandShortDescriptionConstant = "Apply task-filtered commits from a source branch onto a target branch"
	commandLongDescriptionConstant  = "cherry-pick scans the source branch for commits referencing the requested task keys, orders them chronologically, and applies them to the target branch. Task arguments may be bare keys, comma-separated lists, or files with one key per line."
	minimumArgumentCountConstant    = 3

	repoDirFlagNameConstant        = "repo-dir"
	repoDirFlagDescriptionConstant = "Repository directory to operate in"
	releaseFlagNameConstant        = "release"
	releaseFlagDescriptionConstant = "Release version being promoted (informational tag)"
	dryRunFlagNameConstant         = "dry-run"
	dryRunFlagDescriptionConstant  = "List the selected commits without applying them"
	onConflictFlagNameConstant     = "on-conflict"
	onConflictFlagUsageConstant    = "Conflict resolution strategy (abort, skip, ours, theirs)"

	noTasksProvidedMessageConstant = "no task keys were provided"
	pickStartedLogMessageConstant  = "cherry-pick started"
	logFieldSourceBranchConstant   = "source_branch"
	logFieldTargetBranchConstant   = "target_branch"
	logFieldReleaseVersionConstant = "release_version"
	logFieldTaskCountConstant      = "task_count"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the cherry-pick command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  shared.GitExecutor
	GitRepositoryManager         shared.GitRepositoryManager
	FileSystem                   shared.FileSystem
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the cherry-pick command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MinimumNArgs(minimumArgumentCountConstant),
		RunE:  builder.run,
	}

	configuration := builder.resolveConfiguration()
	command.Flags().String(repoDirFlagNameConstant, configuration.RepositoryDirectory, repoDirFlagDescriptionConstant)
	command.Flags().String(releaseFlagNameConstant, "", releaseFlagDescriptionConstant)
	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)
	command.Flags().String(onConflictFlagNameConstant, configuration.OnConflict, onConflictFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	repositoryDirectory, repoDirFlagError := command.Flags().GetString(repoDirFlagNameConstant)
	if repoDirFlagError != nil {
		return repoDirFlagError
	}
	releaseVersion, releaseFlagError := command.Flags().GetString(releaseFlagNameConstant)
	if releaseFlagError != nil {
		return releaseFlagError
	}
	dryRunRequested, dryRunFlagError := command.Flags().GetBool(dryRunFlagNameConstant)
	if dryRunFlagError != nil {
		return dryRunFlagError
	}
	onConflictValue, onConflictFlagError := command.Flags().GetString(onConflictFlagNameConstant)
	if onConflictFlagError != nil {
		return onConflictFlagError
	}

	conflictStrategy, strategyError := ParseConflictStrategy(onConflictValue)
	if strategyError != nil {
		return strategyError
	}

	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)
	taskList, taskParseError := tasks.ParseArguments(fileSystem, arguments[2:])
	if taskParseError != nil {
		return taskParseError
	}
	if taskList.Len() == 0 {
		return errors.New(noTasksProvidedMessageConstant)
	}

	logger := builder.resolveLogger()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, humanReadableLogging)
	if executorError != nil {
		return executorError
	}

	repositoryManager, managerError := dependencies.ResolveGitRepositoryManager(builder.GitRepositoryManager, gitExecutor)
	if managerError != nil {
		return managerError
	}

	service, serviceCreationError := NewService(Dependencies{
		GitExecutor:       gitExecutor,
		RepositoryManager: repositoryManager,
		Reporter:          shared.NewWriterReporter(utils.NewFlushingWriter(command.OutOrStdout())),
		Logger:            logger,
	})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	logger.Info(
		pickStartedLogMessageConstant,
		zap.String(logFieldSourceBranchConstant, arguments[0]),
		zap.String(logFieldTargetBranchConstant, arguments[1]),
		zap.String(logFieldReleaseVersionConstant, strings.TrimSpace(releaseVersion)),
		zap.Int(logFieldTaskCountConstant, taskList.Len()),
	)

	_, pickError := service.Pick(command.Context(), Options{
		RepositoryPath: repositoryDirectory,
		SourceBranch:   arguments[0],
		TargetBranch:   arguments[1],
		Tasks:          taskList,
		Strategy:       conflictStrategy,
		DryRun:         dryRunRequested,
	})
	return pickError
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
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
