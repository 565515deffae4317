package cherrypick

import "strings"

const (
	defaultRepositoryDirectoryConstant = "."
	onConflictConfigurationKeySuffix   = ".on_conflict"
	repoDirConfigurationKeySuffix      = ".repo_dir"
)

// CommandConfiguration captures configuration for the cherry-pick command.
type CommandConfiguration struct {
	OnConflict          string `mapstructure:"on_conflict"`
	RepositoryDirectory string `mapstructure:"repo_dir"`
}

// DefaultCommandConfiguration returns the built-in cherry-pick defaults.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		OnConflict:          string(ConflictStrategyAbort),
		RepositoryDirectory: defaultRepositoryDirectoryConstant,
	}
}

// Sanitize normalizes whitespace and fills defaults for empty values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := CommandConfiguration{
		OnConflict:          strings.TrimSpace(configuration.OnConflict),
		RepositoryDirectory: strings.TrimSpace(configuration.RepositoryDirectory),
	}
	if len(sanitized.OnConflict) == 0 {
		sanitized.OnConflict = string(ConflictStrategyAbort)
	}
	if len(sanitized.RepositoryDirectory) == 0 {
		sanitized.RepositoryDirectory = defaultRepositoryDirectoryConstant
	}
	return sanitized
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + onConflictConfigurationKeySuffix: string(ConflictStrategyAbort),
		configurationKeyPrefix + repoDirConfigurationKeySuffix:    defaultRepositoryDirectoryConstant,
	}
}
