package shared

import (
	"context"
	"io/fs"

	"github.com/temirov/relpick/internal/execshell"
)

// FileSystem exposes the filesystem operations required by release services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}

// GitExecutor exposes the subset of shell execution used by git-backed services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ToolExecutor exposes execution of arbitrary configured tools such as delegate commands.
type ToolExecutor interface {
	ExecuteTool(executionContext context.Context, toolName execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitRepositoryManager exposes repository-level git operations.
type GitRepositoryManager interface {
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error
	RevisionExists(executionContext context.Context, repositoryPath string, revision string) (bool, error)
}
