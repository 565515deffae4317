package dispatch

import (
	"context"
	"errors"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/shared"
)

const (
	serviceLoggerNotConfiguredMessageConstant     = "dispatch service requires a logger"
	serviceFileSystemNotConfiguredMessageConstant = "dispatch service requires a file system"
	serviceInvokerNotConfiguredMessageConstant    = "dispatch service requires a delegate invoker"
	releaseVersionRequiredMessageConstant         = "release version must be provided"

	processingRepositoryTemplateConstant = "Processing repository: %s\n"
	skippedRepositoryTemplateConstant    = "Warning: directory %s does not exist, skipping\n"
	delegateFailureTemplateConstant      = "Delegate failed for %s (exit code %d)\n"

	separatorCharacterConstant = "="
	separatorWidthConstant     = 70

	runStartedLogMessageConstant        = "release run started"
	runCompletedLogMessageConstant      = "release run completed"
	repositorySkippedLogMessageConstant = "repository skipped"
	delegateFailedLogMessageConstant    = "delegate invocation failed"

	runIdentifierLogFieldConstant   = "run_id"
	releaseVersionLogFieldConstant  = "release"
	repositoryCountLogFieldConstant = "repository_count"
	repositoryPathLogFieldConstant  = "repository"
	exitCodeLogFieldConstant        = "exit_code"
	attemptedCountLogFieldConstant  = "attempted"
	skippedCountLogFieldConstant    = "skipped"
	failedCountLogFieldConstant     = "failed"
)

// ErrRunFailed reports delegate failures when fail-on-error is enabled.
var ErrRunFailed = errors.New("release run finished with delegate failures")

// DelegateInvocation carries the per-repository arguments handed to the delegate.
type DelegateInvocation struct {
	SourceBranch   string
	TargetBranch   string
	TaskFile       string
	ReleaseVersion string
	RepositoryPath string
}

// Arguments renders the positional and flag arguments in delegate order.
func (invocation DelegateInvocation) Arguments() []string {
	return []string{
		invocation.SourceBranch,
		invocation.TargetBranch,
		invocation.TaskFile,
		"--release=" + invocation.ReleaseVersion,
		"--repo-dir=" + invocation.RepositoryPath,
	}
}

// DelegateInvoker runs the cherry-pick delegate for one repository and
// reports its exit code. A non-zero exit code is not an error; errors are
// reserved for invocations that could not run at all.
type DelegateInvoker interface {
	Invoke(executionContext context.Context, invocation DelegateInvocation) (int, error)
}

// RepositoryResult records the outcome for a single configured repository.
type RepositoryResult struct {
	Path      string
	Attempted bool
	ExitCode  *int
}

// Failed reports whether the delegate ran and exited non-zero.
func (result RepositoryResult) Failed() bool {
	return result.Attempted && result.ExitCode != nil && *result.ExitCode != 0
}

// RunResult aggregates the outcome of a dispatcher run.
type RunResult struct {
	RunIdentifier uuid.UUID
	Repositories  []RepositoryResult
}

// Counts returns the attempted, skipped, and failed repository totals.
func (result RunResult) Counts() (attemptedCount int, skippedCount int, failedCount int) {
	for _, repositoryResult := range result.Repositories {
		if !repositoryResult.Attempted {
			skippedCount++
			continue
		}
		attemptedCount++
		if repositoryResult.Failed() {
			failedCount++
		}
	}
	return attemptedCount, skippedCount, failedCount
}

// ServiceDependencies enumerates the dispatcher collaborators.
type ServiceDependencies struct {
	Logger     *zap.Logger
	FileSystem shared.FileSystem
	Invoker    DelegateInvoker
	Reporter   shared.Reporter
}

// Service iterates configured repositories in order and invokes the delegate
// for each one that exists on disk. Failures never interrupt the iteration.
type Service struct {
	logger     *zap.Logger
	fileSystem shared.FileSystem
	invoker    DelegateInvoker
	reporter   shared.Reporter
}

// NewService validates dependencies and constructs a dispatcher Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, errors.New(serviceLoggerNotConfiguredMessageConstant)
	}
	if dependencies.FileSystem == nil {
		return nil, errors.New(serviceFileSystemNotConfiguredMessageConstant)
	}
	if dependencies.Invoker == nil {
		return nil, errors.New(serviceInvokerNotConfiguredMessageConstant)
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = shared.NewWriterReporter(nil)
	}
	return &Service{
		logger:     dependencies.Logger,
		fileSystem: dependencies.FileSystem,
		invoker:    dependencies.Invoker,
		reporter:   reporter,
	}, nil
}

// Run processes every configured repository sequentially. Missing directories
// produce a warning line and are skipped; delegate failures are reported and
// recorded but the run continues. The returned error is non-nil only when the
// release version is missing or when FailOnError is set and a delegate failed.
func (service *Service) Run(executionContext context.Context, configuration RunConfiguration) (RunResult, error) {
	sanitizedConfiguration := configuration.Sanitize()
	if len(sanitizedConfiguration.ReleaseVersion) == 0 {
		return RunResult{}, errors.New(releaseVersionRequiredMessageConstant)
	}

	runResult := RunResult{
		RunIdentifier: uuid.New(),
		Repositories:  make([]RepositoryResult, 0, len(sanitizedConfiguration.Repositories)),
	}

	service.logger.Info(runStartedLogMessageConstant,
		zap.String(runIdentifierLogFieldConstant, runResult.RunIdentifier.String()),
		zap.String(releaseVersionLogFieldConstant, sanitizedConfiguration.ReleaseVersion),
		zap.Int(repositoryCountLogFieldConstant, len(sanitizedConfiguration.Repositories)),
	)

	processingStyle := color.New(color.FgCyan, color.Bold)
	warningStyle := color.New(color.FgYellow)
	failureStyle := color.New(color.FgRed)
	separatorLine := strings.Repeat(separatorCharacterConstant, separatorWidthConstant)

	for _, repositoryPath := range sanitizedConfiguration.Repositories {
		fileInfo, statError := service.fileSystem.Stat(repositoryPath)
		if statError != nil || !fileInfo.IsDir() {
			service.reporter.Printf("%s", warningStyle.Sprintf(skippedRepositoryTemplateConstant, repositoryPath))
			service.logger.Warn(repositorySkippedLogMessageConstant,
				zap.String(runIdentifierLogFieldConstant, runResult.RunIdentifier.String()),
				zap.String(repositoryPathLogFieldConstant, repositoryPath),
			)
			runResult.Repositories = append(runResult.Repositories, RepositoryResult{Path: repositoryPath})
			continue
		}

		service.reporter.Printf("%s", processingStyle.Sprintf(processingRepositoryTemplateConstant, repositoryPath))

		invocation := DelegateInvocation{
			SourceBranch:   sanitizedConfiguration.SourceBranch,
			TargetBranch:   sanitizedConfiguration.TargetBranch,
			TaskFile:       sanitizedConfiguration.TaskFile,
			ReleaseVersion: sanitizedConfiguration.ReleaseVersion,
			RepositoryPath: repositoryPath,
		}
		exitCode, invokeError := service.invoker.Invoke(executionContext, invocation)
		if invokeError != nil {
			exitCode = 1
		}
		if exitCode != 0 {
			service.reporter.Printf("%s", failureStyle.Sprintf(delegateFailureTemplateConstant, repositoryPath, exitCode))
			service.logger.Error(delegateFailedLogMessageConstant,
				zap.String(runIdentifierLogFieldConstant, runResult.RunIdentifier.String()),
				zap.String(repositoryPathLogFieldConstant, repositoryPath),
				zap.Int(exitCodeLogFieldConstant, exitCode),
				zap.Error(invokeError),
			)
		}

		recordedExitCode := exitCode
		runResult.Repositories = append(runResult.Repositories, RepositoryResult{
			Path:      repositoryPath,
			Attempted: true,
			ExitCode:  &recordedExitCode,
		})

		service.reporter.Printf("%s\n", separatorLine)
	}

	attemptedCount, skippedCount, failedCount := runResult.Counts()
	service.logger.Info(runCompletedLogMessageConstant,
		zap.String(runIdentifierLogFieldConstant, runResult.RunIdentifier.String()),
		zap.Int(attemptedCountLogFieldConstant, attemptedCount),
		zap.Int(skippedCountLogFieldConstant, skippedCount),
		zap.Int(failedCountLogFieldConstant, failedCount),
	)

	if sanitizedConfiguration.FailOnError && failedCount > 0 {
		return runResult, ErrRunFailed
	}
	return runResult, nil
}
