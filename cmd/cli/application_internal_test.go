package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewApplicationRegistersSubcommands(t *testing.T) {
	application := NewApplication()

	registeredNames := map[string]bool{}
	for _, registeredCommand := range application.rootCommand.Commands() {
		registeredNames[registeredCommand.Name()] = true
	}

	require.True(t, registeredNames["release"])
	require.True(t, registeredNames["cherry-pick"])
	require.True(t, registeredNames["sync-tasks"])
}

func TestInitializeConfigurationAppliesLoggingFlagOverrides(t *testing.T) {
	application := NewApplication()
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())

	require.NoError(t, rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "debug"))
	require.NoError(t, rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "console"))

	initializationError := application.initializeConfiguration(rootCommand)
	require.NoError(t, initializationError)

	require.Equal(t, "debug", application.configuration.Common.LogLevel)
	require.Equal(t, "console", application.configuration.Common.LogFormat)
	require.True(t, application.humanReadableLoggingEnabled())
}

func TestInitializeConfigurationRejectsUnknownLogLevel(t *testing.T) {
	application := NewApplication()
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())

	require.NoError(t, rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "verbose"))

	initializationError := application.initializeConfiguration(rootCommand)
	require.Error(t, initializationError)
}
