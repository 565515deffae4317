package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/relpick/internal/execshell"
	"github.com/temirov/relpick/internal/shared"
)

const (
	executorNotConfiguredMessageConstant     = "git executor not configured"
	repositoryPathRequiredMessageConstant    = "repository path must be provided"
	branchNameRequiredMessageConstant        = "branch name must be provided"
	revisionRequiredMessageConstant          = "revision must be provided"
	statusFailureTemplateConstant            = "failed to inspect worktree status: %w"
	currentBranchFailureTemplateConstant     = "failed to identify current branch: %w"
	checkoutFailureTemplateConstant          = "failed to checkout branch %q: %w"
	gitStatusSubcommandConstant              = "status"
	gitStatusPorcelainFlagConstant           = "--porcelain"
	gitBranchSubcommandConstant              = "branch"
	gitBranchShowCurrentFlagConstant         = "--show-current"
	gitCheckoutSubcommandConstant            = "checkout"
	gitRevParseSubcommandConstant            = "rev-parse"
	gitRevParseVerifyFlagConstant            = "--verify"
	gitRevParseQuietFlagConstant             = "--quiet"
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisableValueConstant    = "0"
)

// ErrExecutorNotConfigured indicates the git executor dependency was missing.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ErrRepositoryPathRequired indicates a repository path option was empty.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrBranchNameRequired indicates a branch name option was empty.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// ErrRevisionRequired indicates a revision option was empty.
var ErrRevisionRequired = errors.New(revisionRequiredMessageConstant)

// RepositoryManager performs repository-level git operations through a shared.GitExecutor.
type RepositoryManager struct {
	executor shared.GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager around the provided executor.
func NewRepositoryManager(executor shared.GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// CheckCleanWorktree reports whether the repository has no uncommitted changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return false, ErrRepositoryPathRequired
	}

	statusResult, statusError := manager.executeGit(executionContext, trimmedRepositoryPath, gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant)
	if statusError != nil {
		return false, fmt.Errorf(statusFailureTemplateConstant, statusError)
	}

	return len(strings.TrimSpace(statusResult.StandardOutput)) == 0, nil
}

// GetCurrentBranch resolves the branch currently checked out in the repository.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return "", ErrRepositoryPathRequired
	}

	branchResult, branchError := manager.executeGit(executionContext, trimmedRepositoryPath, gitBranchSubcommandConstant, gitBranchShowCurrentFlagConstant)
	if branchError != nil {
		return "", fmt.Errorf(currentBranchFailureTemplateConstant, branchError)
	}

	return strings.TrimSpace(branchResult.StandardOutput), nil
}

// CheckoutBranch switches the repository to the requested branch.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return ErrRepositoryPathRequired
	}

	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return ErrBranchNameRequired
	}

	_, checkoutError := manager.executeGit(executionContext, trimmedRepositoryPath, gitCheckoutSubcommandConstant, trimmedBranchName)
	if checkoutError != nil {
		return fmt.Errorf(checkoutFailureTemplateConstant, trimmedBranchName, checkoutError)
	}

	return nil
}

// RevisionExists reports whether the revision resolves inside the repository.
func (manager *RepositoryManager) RevisionExists(executionContext context.Context, repositoryPath string, revision string) (bool, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return false, ErrRepositoryPathRequired
	}

	trimmedRevision := strings.TrimSpace(revision)
	if len(trimmedRevision) == 0 {
		return false, ErrRevisionRequired
	}

	_, verifyError := manager.executeGit(executionContext, trimmedRepositoryPath, gitRevParseSubcommandConstant, gitRevParseVerifyFlagConstant, gitRevParseQuietFlagConstant, trimmedRevision)
	if verifyError != nil {
		failedCommand := execshell.CommandFailedError{}
		if errors.As(verifyError, &failedCommand) {
			return false, nil
		}
		return false, verifyError
	}

	return true, nil
}

func (manager *RepositoryManager) executeGit(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptDisableValueConstant},
	})
}
