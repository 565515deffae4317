// Package dependencies provides default wiring for optional service collaborators.
package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/execshell"
	"github.com/temirov/relpick/internal/gitrepo"
	"github.com/temirov/relpick/internal/shared"
	"github.com/temirov/relpick/internal/ui"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return shared.OSFileSystem{}
}

// ResolveShellExecutor returns a shell executor, constructing an OS-backed default when needed.
//
// Human-readable logging attaches a console event observer so command
// lifecycle events render as sentences instead of structured entries.
func ResolveShellExecutor(logger *zap.Logger, humanReadableLogging bool) (*execshell.ShellExecutor, error) {
	commandRunner := execshell.NewOSCommandRunner()
	if humanReadableLogging {
		return execshell.NewShellExecutorWithObserver(logger, commandRunner, ui.NewConsoleCommandEventLogger(logger))
	}
	return execshell.NewShellExecutor(logger, commandRunner)
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, humanReadableLogging bool) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	return ResolveShellExecutor(logger, humanReadableLogging)
}

// ResolveToolExecutor returns the provided tool executor or constructs a shell-backed default.
func ResolveToolExecutor(existing shared.ToolExecutor, logger *zap.Logger, humanReadableLogging bool) (shared.ToolExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	return ResolveShellExecutor(logger, humanReadableLogging)
}

// ResolveGitRepositoryManager returns the provided repository manager or constructs one from the executor.
func ResolveGitRepositoryManager(existing shared.GitRepositoryManager, executor shared.GitExecutor) (shared.GitRepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManager(executor)
}
