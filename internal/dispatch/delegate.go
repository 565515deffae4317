package dispatch

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/relpick/internal/cherrypick"
	"github.com/temirov/relpick/internal/execshell"
	"github.com/temirov/relpick/internal/shared"
	"github.com/temirov/relpick/internal/tasks"
)

const (
	shellInvokerExecutorRequiredMessageConstant = "shell delegate invoker requires a tool executor"
	shellInvokerCommandRequiredMessageConstant  = "shell delegate invoker requires a delegate command"
	engineInvokerServiceRequiredMessageConstant = "engine delegate invoker requires a cherry-pick service"
	engineInvokerFileSystemRequiredMessage      = "engine delegate invoker requires a file system"

	successExitCodeConstant = 0
	failureExitCodeConstant = 1
)

// ShellDelegateInvoker runs an externally configured delegate command with
// the standard delegate argument contract.
type ShellDelegateInvoker struct {
	executor        shared.ToolExecutor
	delegateCommand string
}

// NewShellDelegateInvoker validates its inputs and constructs a ShellDelegateInvoker.
func NewShellDelegateInvoker(executor shared.ToolExecutor, delegateCommand string) (*ShellDelegateInvoker, error) {
	if executor == nil {
		return nil, errors.New(shellInvokerExecutorRequiredMessageConstant)
	}
	trimmedCommand := strings.TrimSpace(delegateCommand)
	if len(trimmedCommand) == 0 {
		return nil, errors.New(shellInvokerCommandRequiredMessageConstant)
	}
	return &ShellDelegateInvoker{executor: executor, delegateCommand: trimmedCommand}, nil
}

// Invoke executes the delegate command and maps a command failure to its exit code.
func (invoker *ShellDelegateInvoker) Invoke(executionContext context.Context, invocation DelegateInvocation) (int, error) {
	commandFields := strings.Fields(invoker.delegateCommand)
	commandName := execshell.CommandName(commandFields[0])
	commandArguments := append(append([]string(nil), commandFields[1:]...), invocation.Arguments()...)

	_, executionError := invoker.executor.ExecuteTool(executionContext, commandName, execshell.CommandDetails{
		Arguments: commandArguments,
	})
	if executionError == nil {
		return successExitCodeConstant, nil
	}

	commandFailure := execshell.CommandFailedError{}
	if errors.As(executionError, &commandFailure) {
		return commandFailure.Result.ExitCode, nil
	}
	return failureExitCodeConstant, executionError
}

// EngineDelegateInvoker satisfies DelegateInvoker with the in-process
// cherry-pick engine. It is used when no external delegate command is configured.
type EngineDelegateInvoker struct {
	service    *cherrypick.Service
	fileSystem shared.FileSystem
	strategy   cherrypick.ConflictStrategy
	dryRun     bool
}

// NewEngineDelegateInvoker validates its inputs and constructs an EngineDelegateInvoker.
func NewEngineDelegateInvoker(service *cherrypick.Service, fileSystem shared.FileSystem, strategy cherrypick.ConflictStrategy, dryRun bool) (*EngineDelegateInvoker, error) {
	if service == nil {
		return nil, errors.New(engineInvokerServiceRequiredMessageConstant)
	}
	if fileSystem == nil {
		return nil, errors.New(engineInvokerFileSystemRequiredMessage)
	}
	return &EngineDelegateInvoker{service: service, fileSystem: fileSystem, strategy: strategy, dryRun: dryRun}, nil
}

// Invoke loads the task list and runs one cherry-pick pass against the repository.
func (invoker *EngineDelegateInvoker) Invoke(executionContext context.Context, invocation DelegateInvocation) (int, error) {
	taskList, parseError := tasks.ParseArguments(invoker.fileSystem, []string{invocation.TaskFile})
	if parseError != nil {
		return failureExitCodeConstant, parseError
	}

	pickResult, pickError := invoker.service.Pick(executionContext, cherrypick.Options{
		RepositoryPath: invocation.RepositoryPath,
		SourceBranch:   invocation.SourceBranch,
		TargetBranch:   invocation.TargetBranch,
		Tasks:          taskList,
		Strategy:       invoker.strategy,
		DryRun:         invoker.dryRun,
	})
	if pickError != nil {
		return failureExitCodeConstant, nil
	}
	if pickResult.Summary.Failed > 0 {
		return failureExitCodeConstant, nil
	}
	return successExitCodeConstant, nil
}
