package execshell

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	commandNameRequiredMessageConstant        = "command name must be provided"
	commandStartedLogMessageConstant          = "shell command started"
	commandCompletedLogMessageConstant        = "shell command completed"
	commandFailedLogMessageConstant           = "shell command failed"
	commandExecutionFailedLogMessageConstant  = "shell command execution failed"
	logFieldCommandConstant                   = "command"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "standard_error"
)

// ErrLoggerNotConfigured indicates a ShellExecutor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates a ShellExecutor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// ErrCommandNameRequired indicates an executable command omitted its tool name.
var ErrCommandNameRequired = errors.New(commandNameRequiredMessageConstant)

// CommandName identifies an executable invoked through the executor.
type CommandName string

// CommandGit is the only tool name fixed at compile time. Delegate commands
// carry configuration-supplied names and go through ExecuteTool.
const CommandGit CommandName = "git"

// CommandDetails describes a single tool invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ShellCommand combines a CommandName with specific invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that completed with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error renders the failure including exit code and trailing standard error output.
func (failure CommandFailedError) Error() string {
	return CommandMessageFormatter{}.BuildFailureMessage(failure.Command, failure.Result)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error renders the execution failure message.
func (failure CommandExecutionError) Error() string {
	return CommandMessageFormatter{}.BuildExecutionFailureMessage(failure.Command, failure.Cause)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As inspection.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ShellExecutor coordinates command execution with structured logging and lifecycle observation.
type ShellExecutor struct {
	logger   *zap.Logger
	runner   CommandRunner
	observer CommandEventObserver
}

// NewShellExecutor builds a ShellExecutor around the provided logger and runner.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithObserver(logger, runner, nil)
}

// NewShellExecutorWithObserver builds a ShellExecutor that additionally notifies the provided observer.
func NewShellExecutorWithObserver(logger *zap.Logger, runner CommandRunner, observer CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	resolvedObserver := observer
	if resolvedObserver == nil {
		resolvedObserver = noopCommandEventObserver{}
	}

	return &ShellExecutor{logger: logger, runner: runner, observer: resolvedObserver}, nil
}

// Execute runs the supplied command and translates failures into typed errors.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(strings.TrimSpace(string(command.Name))) == 0 {
		return ExecutionResult{}, ErrCommandNameRequired
	}

	executor.observer.CommandStarted(command)
	executor.logger.Debug(
		commandStartedLogMessageConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.observer.CommandExecutionFailed(command, runError)
		executor.logger.Error(
			commandExecutionFailedLogMessageConstant,
			zap.String(logFieldCommandConstant, string(command.Name)),
			zap.Error(runError),
		)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Error(
			commandFailedLogMessageConstant,
			zap.String(logFieldCommandConstant, string(command.Name)),
			zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.String(logFieldStandardErrorConstant, strings.TrimSpace(executionResult.StandardError)),
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(
		commandCompletedLogMessageConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
	)

	return executionResult, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteTool runs an arbitrary configured tool with the provided details.
func (executor *ShellExecutor) ExecuteTool(executionContext context.Context, toolName CommandName, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: toolName, Details: details})
}
