package tests

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	releaseIntegrationDelegateScript = "#!/bin/sh\nprintf '%s\\n' \"$@\" >> \"$DELEGATE_LOG\"\nexit 0\n"
	releaseIntegrationFailingScript  = "#!/bin/sh\nexit 3\n"
	releaseIntegrationVersion        = "25.8.1"
	releaseIntegrationTaskFileName   = "tasks.txt"
	releaseIntegrationDelegateName   = "delegate.sh"
	releaseIntegrationLogName        = "delegate.log"
	releaseSkipWarningTemplate       = "Warning: directory %s does not exist, skipping"
	releaseProcessingTemplate        = "Processing repository: %s"
)

func runReleaseCommand(testInstance *testing.T, extraEnvironment []string, commandArguments ...string) (string, error) {
	testInstance.Helper()

	executionContext, cancelFunction := context.WithTimeout(context.Background(), integrationCommandTimeout)
	defer cancelFunction()

	arguments := append([]string{"run", ".", "release"}, commandArguments...)
	command := exec.CommandContext(executionContext, "go", arguments...)
	command.Dir = repositoryRoot(testInstance)
	command.Env = append(os.Environ(), extraEnvironment...)

	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}

func TestReleaseIntegrationDispatchesDelegatePerRepository(testInstance *testing.T) {
	workspaceDirectory := testInstance.TempDir()

	existingRepository := filepath.Join(workspaceDirectory, "catalog")
	missingRepository := filepath.Join(workspaceDirectory, "retired")
	require.NoError(testInstance, os.Mkdir(existingRepository, 0o755))

	delegatePath := filepath.Join(workspaceDirectory, releaseIntegrationDelegateName)
	require.NoError(testInstance, os.WriteFile(delegatePath, []byte(releaseIntegrationDelegateScript), 0o755))

	delegateLogPath := filepath.Join(workspaceDirectory, releaseIntegrationLogName)
	taskFilePath := filepath.Join(workspaceDirectory, releaseIntegrationTaskFileName)
	require.NoError(testInstance, os.WriteFile(taskFilePath, []byte("ECOLOGY-1\n"), 0o600))

	outputText, runError := runReleaseCommand(
		testInstance,
		[]string{fmt.Sprintf("DELEGATE_LOG=%s", delegateLogPath)},
		"--release", releaseIntegrationVersion,
		"--task-file", taskFilePath,
		"--repos", strings.Join([]string{existingRepository, missingRepository}, ","),
		"--delegate", delegatePath,
	)
	require.NoError(testInstance, runError, outputText)

	require.Contains(testInstance, outputText, fmt.Sprintf(releaseProcessingTemplate, existingRepository))
	require.Contains(testInstance, outputText, fmt.Sprintf(releaseSkipWarningTemplate, missingRepository))

	recordedBytes, readError := os.ReadFile(delegateLogPath)
	require.NoError(testInstance, readError)

	recordedArguments := strings.Split(strings.TrimSpace(string(recordedBytes)), "\n")
	require.Equal(testInstance, []string{
		"develop",
		"main",
		taskFilePath,
		fmt.Sprintf("--release=%s", releaseIntegrationVersion),
		fmt.Sprintf("--repo-dir=%s", existingRepository),
	}, recordedArguments)
}

func TestReleaseIntegrationIsFailOpenByDefault(testInstance *testing.T) {
	workspaceDirectory := testInstance.TempDir()

	firstRepository := filepath.Join(workspaceDirectory, "billing")
	secondRepository := filepath.Join(workspaceDirectory, "catalog")
	require.NoError(testInstance, os.Mkdir(firstRepository, 0o755))
	require.NoError(testInstance, os.Mkdir(secondRepository, 0o755))

	delegatePath := filepath.Join(workspaceDirectory, releaseIntegrationDelegateName)
	require.NoError(testInstance, os.WriteFile(delegatePath, []byte(releaseIntegrationFailingScript), 0o755))

	outputText, runError := runReleaseCommand(
		testInstance,
		nil,
		"--release", releaseIntegrationVersion,
		"--repos", strings.Join([]string{firstRepository, secondRepository}, ","),
		"--delegate", delegatePath,
	)
	require.NoError(testInstance, runError, outputText)

	require.Contains(testInstance, outputText, fmt.Sprintf("Delegate failed for %s (exit code 3)", firstRepository))
	require.Contains(testInstance, outputText, fmt.Sprintf("Delegate failed for %s (exit code 3)", secondRepository))
}

func TestReleaseIntegrationFailOnErrorReportsFailure(testInstance *testing.T) {
	workspaceDirectory := testInstance.TempDir()

	repositoryPath := filepath.Join(workspaceDirectory, "billing")
	require.NoError(testInstance, os.Mkdir(repositoryPath, 0o755))

	delegatePath := filepath.Join(workspaceDirectory, releaseIntegrationDelegateName)
	require.NoError(testInstance, os.WriteFile(delegatePath, []byte(releaseIntegrationFailingScript), 0o755))

	outputText, runError := runReleaseCommand(
		testInstance,
		nil,
		"--release", releaseIntegrationVersion,
		"--repos", repositoryPath,
		"--delegate", delegatePath,
		"--fail-on-error",
	)
	require.Error(testInstance, runError, outputText)
	require.Contains(testInstance, outputText, "delegate failures")
}
