package cherrypick

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/execshell"
	"github.com/temirov/relpick/internal/shared"
	"github.com/temirov/relpick/internal/tasks"
)

const (
	gitExecutorMissingMessageConstant       = "git executor not configured"
	repositoryManagerMissingMessageConstant = "repository manager not configured"
	repositoryPathRequiredMessageConstant   = "repository path must be provided"
	sourceBranchRequiredMessageConstant     = "source branch must be provided"
	targetBranchRequiredMessageConstant     = "target branch must be provided"
	noTasksRequestedMessageConstant         = "no tasks requested"
	conflictAbortedMessageConstant          = "cherry-pick aborted on conflict"
	sourceBranchMissingTemplateConstant     = "source branch %q does not exist"
	sourceVerificationTemplateConstant      = "failed to verify source branch: %w"
	currentBranchTemplateConstant           = "failed to identify current branch: %w"
	targetCheckoutTemplateConstant          = "failed to checkout target branch %q: %w"

	gitCherryPickSubcommandConstant = "cherry-pick"
	gitCherryPickAbortFlagConstant  = "--abort"
	gitCherryPickSkipFlagConstant   = "--skip"
	gitCherryPickContinueFlag       = "--continue"
	gitCherryPickNoEditFlagConstant = "--no-edit"
	gitDiffSubcommandConstant       = "diff"
	gitDiffNameOnlyFlagConstant     = "--name-only"
	gitDiffUnmergedFilterConstant   = "--diff-filter=U"
	gitCheckoutSubcommandConstant   = "checkout"
	gitCheckoutOursFlagConstant     = "--ours"
	gitCheckoutTheirsFlagConstant   = "--theirs"
	gitAddSubcommandConstant        = "add"

	noCommitsFoundMessageConstant       = "No commits found for the requested tasks.\n"
	commitCountHeaderTemplateConstant   = "Found %d commit(s):\n"
	commitLineTemplateConstant          = "%3d. %s | %s | %s (%s)\n"
	dryRunNoticeMessageConstant         = "Dry run: no changes applied.\n"
	applyProgressTemplateConstant       = "[%d/%d] Applying %s (%s)\n"
	conflictNoticeTemplateConstant      = "Conflict while applying %s; resolving with strategy %q\n"
	applySummaryTemplateConstant        = "Result: %d applied, %d skipped, %d failed\n"
	subjectEllipsisConstant             = "..."
	hashAbbreviationLengthConstant      = 8
	subjectPreviewLengthConstant        = 60
	logFieldRepositoryConstant          = "repository"
	logFieldCommitHashConstant          = "commit_hash"
	logFieldTaskKeyConstant             = "task_key"
	logFieldConflictStrategyConstant    = "conflict_strategy"
	conflictLogMessageConstant          = "cherry-pick conflict"
	continueFallbackLogMessageConstant  = "cherry-pick continue failed, skipping commit"
	branchRestoreFailureMessageConstant = "failed to restore original branch"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRepositoryManagerNotConfigured indicates the repository manager dependency was missing.
var ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)

// ErrRepositoryPathRequired indicates the repository path option was empty.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrSourceBranchRequired indicates the source branch option was empty.
var ErrSourceBranchRequired = errors.New(sourceBranchRequiredMessageConstant)

// ErrTargetBranchRequired indicates the target branch option was empty.
var ErrTargetBranchRequired = errors.New(targetBranchRequiredMessageConstant)

// ErrNoTasksRequested indicates the task list was empty.
var ErrNoTasksRequested = errors.New(noTasksRequestedMessageConstant)

// ErrConflictAborted indicates a conflict stopped the apply pass under the abort strategy.
var ErrConflictAborted = errors.New(conflictAbortedMessageConstant)

// Dependencies enumerates the external collaborators required by the engine.
type Dependencies struct {
	GitExecutor       shared.GitExecutor
	RepositoryManager shared.GitRepositoryManager
	Reporter          shared.Reporter
	Logger            *zap.Logger
}

// Options configures a single cherry-pick pass.
type Options struct {
	RepositoryPath string
	SourceBranch   string
	TargetBranch   string
	Tasks          tasks.List
	Strategy       ConflictStrategy
	DryRun         bool
}

// Service applies task-filtered commits from a source branch onto a target branch.
type Service struct {
	executor          shared.GitExecutor
	repositoryManager shared.GitRepositoryManager
	reporter          shared.Reporter
	logger            *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}

	resolvedReporter := dependencies.Reporter
	if resolvedReporter == nil {
		resolvedReporter = shared.NewWriterReporter(nil)
	}

	resolvedLogger := dependencies.Logger
	if resolvedLogger == nil {
		resolvedLogger = zap.NewNop()
	}

	return &Service{
		executor:          dependencies.GitExecutor,
		repositoryManager: dependencies.RepositoryManager,
		reporter:          resolvedReporter,
		logger:            resolvedLogger,
	}, nil
}

// Pick selects the qualifying commits and, unless dry-running, applies them to the target branch.
func (service *Service) Pick(executionContext context.Context, options Options) (Result, error) {
	trimmedRepositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return Result{}, ErrRepositoryPathRequired
	}

	trimmedSourceBranch := strings.TrimSpace(options.SourceBranch)
	if len(trimmedSourceBranch) == 0 {
		return Result{}, ErrSourceBranchRequired
	}

	trimmedTargetBranch := strings.TrimSpace(options.TargetBranch)
	if len(trimmedTargetBranch) == 0 {
		return Result{}, ErrTargetBranchRequired
	}

	if options.Tasks.Len() == 0 {
		return Result{}, ErrNoTasksRequested
	}

	conflictStrategy := options.Strategy
	if len(conflictStrategy) == 0 {
		conflictStrategy = ConflictStrategyAbort
	}

	sourceExists, verificationError := service.repositoryManager.RevisionExists(executionContext, trimmedRepositoryPath, trimmedSourceBranch)
	if verificationError != nil {
		return Result{}, fmt.Errorf(sourceVerificationTemplateConstant, verificationError)
	}
	if !sourceExists {
		return Result{}, fmt.Errorf(sourceBranchMissingTemplateConstant, trimmedSourceBranch)
	}

	selectedCommits, listError := service.listCommits(executionContext, trimmedRepositoryPath, trimmedSourceBranch, options.Tasks)
	if listError != nil {
		return Result{}, listError
	}

	pickResult := Result{Commits: selectedCommits}

	if len(selectedCommits) == 0 {
		service.reporter.Printf(noCommitsFoundMessageConstant)
		return pickResult, nil
	}

	service.reportSelection(selectedCommits)

	if options.DryRun {
		service.reporter.Printf(dryRunNoticeMessageConstant)
		return pickResult, nil
	}

	originalBranch, branchError := service.repositoryManager.GetCurrentBranch(executionContext, trimmedRepositoryPath)
	if branchError != nil {
		return pickResult, fmt.Errorf(currentBranchTemplateConstant, branchError)
	}

	if trimmedTargetBranch != originalBranch {
		if checkoutError := service.repositoryManager.CheckoutBranch(executionContext, trimmedRepositoryPath, trimmedTargetBranch); checkoutError != nil {
			return pickResult, fmt.Errorf(targetCheckoutTemplateConstant, trimmedTargetBranch, checkoutError)
		}
		defer service.restoreOriginalBranch(executionContext, trimmedRepositoryPath, originalBranch)
	}

	applyError := service.applyCommits(executionContext, trimmedRepositoryPath, selectedCommits, conflictStrategy, &pickResult.Summary)
	service.reporter.Printf(applySummaryTemplateConstant, pickResult.Summary.Applied, pickResult.Summary.Skipped, pickResult.Summary.Failed)
	return pickResult, applyError
}

func (service *Service) applyCommits(executionContext context.Context, repositoryPath string, selectedCommits []Commit, conflictStrategy ConflictStrategy, summary *Summary) error {
	for commitIndex, selectedCommit := range selectedCommits {
		service.reporter.Printf(applyProgressTemplateConstant, commitIndex+1, len(selectedCommits), abbreviateHash(selectedCommit.Hash), selectedCommit.TaskKey)

		pickError := service.executeGit(executionContext, repositoryPath, gitCherryPickSubcommandConstant, selectedCommit.Hash)
		if pickError == nil {
			summary.Applied++
			continue
		}

		failedCommand := execshell.CommandFailedError{}
		if !errors.As(pickError, &failedCommand) {
			return pickError
		}

		service.reporter.Printf(conflictNoticeTemplateConstant, abbreviateHash(selectedCommit.Hash), string(conflictStrategy))
		service.logger.Warn(
			conflictLogMessageConstant,
			zap.String(logFieldRepositoryConstant, repositoryPath),
			zap.String(logFieldCommitHashConstant, selectedCommit.Hash),
			zap.String(logFieldTaskKeyConstant, selectedCommit.TaskKey),
			zap.String(logFieldConflictStrategyConstant, string(conflictStrategy)),
		)

		switch conflictStrategy {
		case ConflictStrategyAbort:
			_ = service.executeGit(executionContext, repositoryPath, gitCherryPickSubcommandConstant, gitCherryPickAbortFlagConstant)
			summary.Failed = len(selectedCommits) - commitIndex
			return ErrConflictAborted
		case ConflictStrategySkip:
			if skipError := service.executeGit(executionContext, repositoryPath, gitCherryPickSubcommandConstant, gitCherryPickSkipFlagConstant); skipError != nil {
				return skipError
			}
			summary.Skipped++
		case ConflictStrategyOurs, ConflictStrategyTheirs:
			resolved, resolveError := service.resolveConflict(executionContext, repositoryPath, conflictStrategy)
			if resolveError != nil {
				return resolveError
			}
			if resolved {
				summary.Applied++
			} else {
				summary.Skipped++
			}
		}
	}

	return nil
}

// resolveConflict applies the ours/theirs checkout to every unmerged file and
// attempts to continue; a failed continue falls back to skipping the commit.
func (service *Service) resolveConflict(executionContext context.Context, repositoryPath string, conflictStrategy ConflictStrategy) (bool, error) {
	checkoutSideFlag := gitCheckoutOursFlagConstant
	if conflictStrategy == ConflictStrategyTheirs {
		checkoutSideFlag = gitCheckoutTheirsFlagConstant
	}

	unmergedResult, unmergedError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitDiffSubcommandConstant, gitDiffNameOnlyFlagConstant, gitDiffUnmergedFilterConstant},
		WorkingDirectory: repositoryPath,
	})
	if unmergedError != nil {
		return false, unmergedError
	}

	for _, unmergedFile := range strings.Split(unmergedResult.StandardOutput, "\n") {
		trimmedFile := strings.TrimSpace(unmergedFile)
		if len(trimmedFile) == 0 {
			continue
		}
		if checkoutError := service.executeGit(executionContext, repositoryPath, gitCheckoutSubcommandConstant, checkoutSideFlag, trimmedFile); checkoutError != nil {
			return false, checkoutError
		}
		if addError := service.executeGit(executionContext, repositoryPath, gitAddSubcommandConstant, trimmedFile); addError != nil {
			return false, addError
		}
	}

	continueError := service.executeGit(executionContext, repositoryPath, gitCherryPickSubcommandConstant, gitCherryPickContinueFlag, gitCherryPickNoEditFlagConstant)
	if continueError == nil {
		return true, nil
	}

	failedCommand := execshell.CommandFailedError{}
	if !errors.As(continueError, &failedCommand) {
		return false, continueError
	}

	service.logger.Warn(continueFallbackLogMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath))
	if skipError := service.executeGit(executionContext, repositoryPath, gitCherryPickSubcommandConstant, gitCherryPickSkipFlagConstant); skipError != nil {
		return false, skipError
	}

	return false, nil
}

func (service *Service) restoreOriginalBranch(executionContext context.Context, repositoryPath string, originalBranch string) {
	if len(strings.TrimSpace(originalBranch)) == 0 {
		return
	}

	currentBranch, branchError := service.repositoryManager.GetCurrentBranch(executionContext, repositoryPath)
	if branchError == nil && currentBranch == originalBranch {
		return
	}

	if restoreError := service.repositoryManager.CheckoutBranch(executionContext, repositoryPath, originalBranch); restoreError != nil {
		service.logger.Warn(
			branchRestoreFailureMessageConstant,
			zap.String(logFieldRepositoryConstant, repositoryPath),
			zap.Error(restoreError),
		)
	}
}

func (service *Service) reportSelection(selectedCommits []Commit) {
	service.reporter.Printf(commitCountHeaderTemplateConstant, len(selectedCommits))
	for commitIndex, selectedCommit := range selectedCommits {
		service.reporter.Printf(
			commitLineTemplateConstant,
			commitIndex+1,
			abbreviateHash(selectedCommit.Hash),
			selectedCommit.CommitDate,
			previewSubject(selectedCommit.Subject),
			selectedCommit.TaskKey,
		)
	}
}

func (service *Service) executeGit(executionContext context.Context, repositoryPath string, arguments ...string) error {
	_, executionError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

func abbreviateHash(commitHash string) string {
	if len(commitHash) <= hashAbbreviationLengthConstant {
		return commitHash
	}
	return commitHash[:hashAbbreviationLengthConstant]
}

func previewSubject(commitSubject string) string {
	if len(commitSubject) <= subjectPreviewLengthConstant {
		return commitSubject
	}
	return commitSubject[:subjectPreviewLengthConstant] + subjectEllipsisConstant
}
