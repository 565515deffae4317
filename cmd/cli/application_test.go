package cli_test

import (
	"bytes"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/relpick/cmd/cli"
	"github.com/temirov/relpick/internal/cherrypick"
	"github.com/temirov/relpick/internal/dispatch"
	"github.com/temirov/relpick/internal/tracker"
	"github.com/temirov/relpick/internal/utils"
)

const (
	embeddedDefaultLogLevelConstant        = string(utils.LogLevelInfo)
	embeddedDefaultLogFormatConstant       = string(utils.LogFormatStructured)
	embeddedDefaultSourceBranchConstant    = "develop"
	embeddedDefaultTargetBranchConstant    = "main"
	embeddedDefaultTaskFileConstant        = "tasks.txt"
	embeddedDefaultConflictConstant        = string(cherrypick.ConflictStrategyAbort)
	embeddedDefaultRepoDirectoryConstant   = "."
	embeddedDefaultTrackerProviderConstant = string(tracker.ProviderJira)
	embeddedDefaultTokenSourceConstant     = "env:RELPICK_TRACKER_TOKEN"
)

func TestEmbeddedDefaultConfigurationDecodes(testInstance *testing.T) {
	configuration := decodeEmbeddedApplicationConfiguration(testInstance)

	assertions := require.New(testInstance)
	assertions.Equal(embeddedDefaultLogLevelConstant, configuration.Common.LogLevel)
	assertions.Equal(embeddedDefaultLogFormatConstant, configuration.Common.LogFormat)
}

func TestEmbeddedDefaultsProvideToolConfigurations(testInstance *testing.T) {
	configuration := decodeEmbeddedApplicationConfiguration(testInstance)

	testCases := []struct {
		name      string
		assertion func(testing.TB)
	}{
		{
			name: "ReleaseDefaults",
			assertion: func(assertionTarget testing.TB) {
				assertionTarget.Helper()

				sanitized := configuration.Tools.Release.Sanitize()

				assertions := require.New(assertionTarget)
				assertions.Equal(embeddedDefaultSourceBranchConstant, sanitized.SourceBranch)
				assertions.Equal(embeddedDefaultTargetBranchConstant, sanitized.TargetBranch)
				assertions.Equal(embeddedDefaultTaskFileConstant, sanitized.TaskFile)
				assertions.Empty(sanitized.Repositories)
				assertions.False(sanitized.FailOnError)
				assertions.False(sanitized.SyncTasks)
			},
		},
		{
			name: "CherryPickDefaults",
			assertion: func(assertionTarget testing.TB) {
				assertionTarget.Helper()

				sanitized := configuration.Tools.CherryPick.Sanitize()

				assertions := require.New(assertionTarget)
				assertions.Equal(embeddedDefaultConflictConstant, sanitized.OnConflict)
				assertions.Equal(embeddedDefaultRepoDirectoryConstant, sanitized.RepositoryDirectory)
			},
		},
		{
			name: "TrackerDefaults",
			assertion: func(assertionTarget testing.TB) {
				assertionTarget.Helper()

				sanitized := configuration.Tools.Tracker.Sanitize()

				assertions := require.New(assertionTarget)
				assertions.Equal(embeddedDefaultTrackerProviderConstant, string(sanitized.Provider))
				assertions.Equal(embeddedDefaultTaskFileConstant, sanitized.TaskFile)
				assertions.Equal(embeddedDefaultTokenSourceConstant, sanitized.TokenSource)
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			testCase.assertion(subTest)
		})
	}
}

func TestRunConfigurationDecodesFromOptionMap(testInstance *testing.T) {
	options := map[string]any{
		"release_version": "25.8.1",
		"source_branch":   "develop",
		"target_branch":   "release/25.8",
		"task_file":       "tasks.txt",
		"repositories":    []string{"/srv/repos/catalog"},
		"fail_on_error":   true,
	}

	var configuration dispatch.RunConfiguration
	decodeToolOptions(testInstance, options, &configuration)

	assertions := require.New(testInstance)
	assertions.Equal("25.8.1", configuration.ReleaseVersion)
	assertions.Equal("release/25.8", configuration.TargetBranch)
	assertions.Equal([]string{"/srv/repos/catalog"}, configuration.Repositories)
	assertions.True(configuration.FailOnError)
}

func decodeToolOptions(testingInstance testing.TB, options map[string]any, target any) {
	testingInstance.Helper()

	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: target})
	require.NoError(testingInstance, decoderError)

	decodeError := decoder.Decode(options)
	require.NoError(testingInstance, decodeError)
}

func decodeEmbeddedApplicationConfiguration(testingInstance testing.TB) cli.ApplicationConfiguration {
	testingInstance.Helper()

	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)

	readError := viperInstance.ReadConfig(bytes.NewReader(configurationData))
	require.NoError(testingInstance, readError)

	var configuration cli.ApplicationConfiguration
	unmarshalError := viperInstance.Unmarshal(&configuration)
	require.NoError(testingInstance, unmarshalError)

	return configuration
}
