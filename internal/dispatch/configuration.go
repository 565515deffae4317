package dispatch

import (
	"strings"

	pathutils "github.com/temirov/relpick/internal/utils/path"
)

const (
	defaultSourceBranchConstant = "develop"
	defaultTargetBranchConstant = "main"
	defaultTaskFileConstant     = "tasks.txt"

	releaseVersionConfigurationKeySuffix  = ".release_version"
	sourceBranchConfigurationKeySuffix    = ".source_branch"
	targetBranchConfigurationKeySuffix    = ".target_branch"
	taskFileConfigurationKeySuffix        = ".task_file"
	repositoriesConfigurationKeySuffix    = ".repositories"
	delegateCommandConfigurationKeySuffix = ".delegate_command"
	syncTasksConfigurationKeySuffix       = ".sync_tasks"
	failOnErrorConfigurationKeySuffix     = ".fail_on_error"
)

// RunConfiguration describes one release promotion run. It is immutable for
// the duration of the run; repository order determines processing order.
type RunConfiguration struct {
	ReleaseVersion  string   `mapstructure:"release_version" yaml:"release_version"`
	SourceBranch    string   `mapstructure:"source_branch" yaml:"source_branch"`
	TargetBranch    string   `mapstructure:"target_branch" yaml:"target_branch"`
	TaskFile        string   `mapstructure:"task_file" yaml:"task_file"`
	Repositories    []string `mapstructure:"repositories" yaml:"repositories"`
	DelegateCommand string   `mapstructure:"delegate_command" yaml:"delegate_command"`
	SyncTasks       bool     `mapstructure:"sync_tasks" yaml:"sync_tasks"`
	FailOnError     bool     `mapstructure:"fail_on_error" yaml:"fail_on_error"`
}

// DefaultRunConfiguration returns the built-in dispatcher defaults.
func DefaultRunConfiguration() RunConfiguration {
	return RunConfiguration{
		SourceBranch: defaultSourceBranchConstant,
		TargetBranch: defaultTargetBranchConstant,
		TaskFile:     defaultTaskFileConstant,
	}
}

// Sanitize trims whitespace, expands home shortcuts in repository paths, and fills defaults.
func (configuration RunConfiguration) Sanitize() RunConfiguration {
	sanitized := RunConfiguration{
		ReleaseVersion:  strings.TrimSpace(configuration.ReleaseVersion),
		SourceBranch:    strings.TrimSpace(configuration.SourceBranch),
		TargetBranch:    strings.TrimSpace(configuration.TargetBranch),
		TaskFile:        strings.TrimSpace(configuration.TaskFile),
		Repositories:    pathutils.NewRepositoryPathSanitizer().Sanitize(configuration.Repositories),
		DelegateCommand: strings.TrimSpace(configuration.DelegateCommand),
		SyncTasks:       configuration.SyncTasks,
		FailOnError:     configuration.FailOnError,
	}
	if len(sanitized.SourceBranch) == 0 {
		sanitized.SourceBranch = defaultSourceBranchConstant
	}
	if len(sanitized.TargetBranch) == 0 {
		sanitized.TargetBranch = defaultTargetBranchConstant
	}
	if len(sanitized.TaskFile) == 0 {
		sanitized.TaskFile = defaultTaskFileConstant
	}
	return sanitized
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + releaseVersionConfigurationKeySuffix:  "",
		configurationKeyPrefix + sourceBranchConfigurationKeySuffix:    defaultSourceBranchConstant,
		configurationKeyPrefix + targetBranchConfigurationKeySuffix:    defaultTargetBranchConstant,
		configurationKeyPrefix + taskFileConfigurationKeySuffix:        defaultTaskFileConstant,
		configurationKeyPrefix + repositoriesConfigurationKeySuffix:    []string{},
		configurationKeyPrefix + delegateCommandConfigurationKeySuffix: "",
		configurationKeyPrefix + syncTasksConfigurationKeySuffix:       false,
		configurationKeyPrefix + failOnErrorConfigurationKeySuffix:     false,
	}
}
