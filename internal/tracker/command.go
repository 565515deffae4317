package tracker

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/relpick/internal/dependencies"
	"github.com/temirov/relpick/internal/shared"
	"github.com/temirov/relpick/internal/utils"
)

const (
	commandUseConstant              = "sync-tasks <version>"
	commandShortDescriptionConstant = "Write the task file for a release from the issue tracker"
	commandLongDescriptionConstant  = "sync-tasks resolves the release version in the configured tracker, collects the keys of every issue fixed in it, and rewrites the task file with one key per line."
	exactArgumentCountConstant      = 1

	taskFileFlagNameConstant     = "task-file"
	taskFileFlagUsageConstant    = "File to write the task keys to"
	providerFlagNameConstant     = "provider"
	providerFlagUsageConstant    = "Tracker backend (jira or github)"
	tokenSourceFlagNameConstant  = "token-source"
	tokenSourceFlagUsageConstant = "Credential source, env:NAME or file:PATH"

	unsupportedProviderTemplateConstant = "unsupported tracker provider %q"
	httpTimeoutSecondsConstant          = 30
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the sync-tasks command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	FileSystem            shared.FileSystem
	Backend               Backend
	HTTPClient            HTTPClient
	TokenResolver         *TokenResolver
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the sync-tasks command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.ExactArgs(exactArgumentCountConstant),
		RunE:  builder.run,
	}

	configuration := builder.resolveConfiguration()
	command.Flags().String(taskFileFlagNameConstant, configuration.TaskFile, taskFileFlagUsageConstant)
	command.Flags().String(providerFlagNameConstant, configuration.Provider, providerFlagUsageConstant)
	command.Flags().String(tokenSourceFlagNameConstant, configuration.TokenSource, tokenSourceFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	taskFilePath, taskFileFlagError := command.Flags().GetString(taskFileFlagNameConstant)
	if taskFileFlagError != nil {
		return taskFileFlagError
	}
	providerValue, providerFlagError := command.Flags().GetString(providerFlagNameConstant)
	if providerFlagError != nil {
		return providerFlagError
	}
	tokenSourceValue, tokenSourceFlagError := command.Flags().GetString(tokenSourceFlagNameConstant)
	if tokenSourceFlagError != nil {
		return tokenSourceFlagError
	}
	configuration.TaskFile = taskFilePath
	configuration.Provider = providerValue
	configuration.TokenSource = tokenSourceValue
	configuration = configuration.Sanitize()

	logger := builder.resolveLogger()
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)
	reporter := shared.NewWriterReporter(utils.NewFlushingWriter(command.OutOrStdout()))

	backend, backendError := builder.resolveBackend(command.Context(), logger, configuration, reporter)
	if backendError != nil {
		return backendError
	}

	service, serviceCreationError := NewService(ServiceDependencies{
		Logger:     logger,
		Backend:    backend,
		FileSystem: fileSystem,
		Reporter:   reporter,
	})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	return service.Sync(command.Context(), arguments[0], configuration.TaskFile)
}

func (builder *CommandBuilder) resolveBackend(executionContext context.Context, logger *zap.Logger, configuration CommandConfiguration, reporter shared.Reporter) (Backend, error) {
	if builder.Backend != nil {
		return builder.Backend, nil
	}
	return ResolveBackend(executionContext, logger, configuration, reporter, builder.HTTPClient, builder.TokenResolver)
}

// ResolveBackend constructs the tracker backend described by the configuration.
// The HTTP client and token resolver may be nil; OS-backed defaults are used.
func ResolveBackend(executionContext context.Context, logger *zap.Logger, configuration CommandConfiguration, reporter shared.Reporter, httpClient HTTPClient, tokenResolver *TokenResolver) (Backend, error) {
	resolvedTokenResolver := tokenResolver
	if resolvedTokenResolver == nil {
		resolvedTokenResolver = NewTokenResolver(nil, nil)
	}

	switch Provider(configuration.Provider) {
	case ProviderJira:
		token, tokenError := resolveConfiguredToken(resolvedTokenResolver, configuration.TokenSource)
		if tokenError != nil {
			return nil, tokenError
		}
		resolvedHTTPClient := httpClient
		if resolvedHTTPClient == nil {
			resolvedHTTPClient = &http.Client{Timeout: httpTimeoutSecondsConstant * time.Second}
		}
		return NewJiraBackend(logger, resolvedHTTPClient, JiraConfiguration{
			BaseURL: configuration.JiraBaseURL,
			Project: configuration.JiraProject,
			Token:   token,
		}, reporter)
	case ProviderGitHub:
		// Public repositories work without credentials; an unresolved
		// token falls back to an unauthenticated client.
		token, tokenError := resolveConfiguredToken(resolvedTokenResolver, configuration.TokenSource)
		if tokenError != nil {
			token = ""
		}
		githubClient := NewGitHubClient(executionContext, token)
		return NewGitHubBackend(logger, githubClient, GitHubConfiguration{
			Owner:      configuration.GitHubOwner,
			Repository: configuration.GitHubRepository,
		}, reporter)
	default:
		return nil, fmt.Errorf(unsupportedProviderTemplateConstant, configuration.Provider)
	}
}

func resolveConfiguredToken(tokenResolver *TokenResolver, tokenSourceValue string) (string, error) {
	sourceConfiguration, parseError := ParseTokenSource(tokenSourceValue)
	if parseError != nil {
		return "", parseError
	}
	return tokenResolver.ResolveToken(sourceConfiguration)
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
