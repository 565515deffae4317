package tracker

import (
	"strings"
)

const (
	providerJiraValueConstant   = "jira"
	providerGitHubValueConstant = "github"

	defaultTrackerTaskFileConstant    = "tasks.txt"
	defaultTrackerTokenSourceConstant = "env:RELPICK_TRACKER_TOKEN"

	providerConfigurationKeySuffix         = ".provider"
	taskFileConfigurationKeySuffix         = ".task_file"
	tokenSourceConfigurationKeySuffix      = ".token_source"
	jiraBaseURLConfigurationKeySuffix      = ".jira_base_url"
	jiraProjectConfigurationKeySuffix      = ".jira_project"
	githubOwnerConfigurationKeySuffix      = ".github_owner"
	githubRepositoryConfigurationKeySuffix = ".github_repository"
)

// Provider identifies a supported tracker backend.
type Provider string

// Supported tracker providers.
const (
	ProviderJira   Provider = Provider(providerJiraValueConstant)
	ProviderGitHub Provider = Provider(providerGitHubValueConstant)
)

// CommandConfiguration captures tracker settings from configuration files.
type CommandConfiguration struct {
	Provider         string `mapstructure:"provider"`
	TaskFile         string `mapstructure:"task_file"`
	TokenSource      string `mapstructure:"token_source"`
	JiraBaseURL      string `mapstructure:"jira_base_url"`
	JiraProject      string `mapstructure:"jira_project"`
	GitHubOwner      string `mapstructure:"github_owner"`
	GitHubRepository string `mapstructure:"github_repository"`
}

// DefaultCommandConfiguration returns the built-in tracker defaults.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Provider:    providerJiraValueConstant,
		TaskFile:    defaultTrackerTaskFileConstant,
		TokenSource: defaultTrackerTokenSourceConstant,
	}
}

// Sanitize trims whitespace and fills defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := CommandConfiguration{
		Provider:         strings.ToLower(strings.TrimSpace(configuration.Provider)),
		TaskFile:         strings.TrimSpace(configuration.TaskFile),
		TokenSource:      strings.TrimSpace(configuration.TokenSource),
		JiraBaseURL:      strings.TrimSpace(configuration.JiraBaseURL),
		JiraProject:      strings.TrimSpace(configuration.JiraProject),
		GitHubOwner:      strings.TrimSpace(configuration.GitHubOwner),
		GitHubRepository: strings.TrimSpace(configuration.GitHubRepository),
	}
	if len(sanitized.Provider) == 0 {
		sanitized.Provider = providerJiraValueConstant
	}
	if len(sanitized.TaskFile) == 0 {
		sanitized.TaskFile = defaultTrackerTaskFileConstant
	}
	if len(sanitized.TokenSource) == 0 {
		sanitized.TokenSource = defaultTrackerTokenSourceConstant
	}
	return sanitized
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + providerConfigurationKeySuffix:         providerJiraValueConstant,
		configurationKeyPrefix + taskFileConfigurationKeySuffix:         defaultTrackerTaskFileConstant,
		configurationKeyPrefix + tokenSourceConfigurationKeySuffix:      defaultTrackerTokenSourceConstant,
		configurationKeyPrefix + jiraBaseURLConfigurationKeySuffix:      "",
		configurationKeyPrefix + jiraProjectConfigurationKeySuffix:      "",
		configurationKeyPrefix + githubOwnerConfigurationKeySuffix:      "",
		configurationKeyPrefix + githubRepositoryConfigurationKeySuffix: "",
	}
}
