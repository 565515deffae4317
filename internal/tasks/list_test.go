package tasks_test

import (
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/relpick/internal/tasks"
)

const (
	testTaskFilePathConstant     = "tasks.txt"
	testTrackerKeyConstant       = "ECOLOGY-2994"
	testSecondTrackerKeyConstant = "PLATFORM-17"
	testIssueNumberKeyConstant   = "#1234"
)

type memoryFileSystem struct {
	files map[string]string
}

type memoryFileInfo struct {
	name string
}

func (info memoryFileInfo) Name() string       { return info.name }
func (info memoryFileInfo) Size() int64        { return 0 }
func (info memoryFileInfo) Mode() fs.FileMode  { return 0 }
func (info memoryFileInfo) ModTime() time.Time { return time.Time{} }
func (info memoryFileInfo) IsDir() bool        { return false }
func (info memoryFileInfo) Sys() any           { return nil }

func (fileSystem memoryFileSystem) Stat(path string) (fs.FileInfo, error) {
	if _, present := fileSystem.files[path]; present {
		return memoryFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

func (fileSystem memoryFileSystem) Abs(path string) (string, error) {
	return path, nil
}

func (fileSystem memoryFileSystem) ReadFile(path string) ([]byte, error) {
	content, present := fileSystem.files[path]
	if !present {
		return nil, fs.ErrNotExist
	}
	return []byte(content), nil
}

func (fileSystem memoryFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	fileSystem.files[path] = string(data)
	return nil
}

func TestParseArguments(testInstance *testing.T) {
	testCases := []struct {
		name         string
		files        map[string]string
		arguments    []string
		expectedKeys []string
		expectError  error
	}{
		{
			name:         "BareKeys",
			files:        map[string]string{},
			arguments:    []string{testTrackerKeyConstant, testIssueNumberKeyConstant},
			expectedKeys: []string{testTrackerKeyConstant, testIssueNumberKeyConstant},
		},
		{
			name:         "CommaSeparatedList",
			files:        map[string]string{},
			arguments:    []string{testTrackerKeyConstant + ", " + testSecondTrackerKeyConstant},
			expectedKeys: []string{testTrackerKeyConstant, testSecondTrackerKeyConstant},
		},
		{
			name: "TaskFileWithCommentsAndBlanks",
			files: map[string]string{
				testTaskFilePathConstant: testTrackerKeyConstant + "\n\n# release scope\n" + testSecondTrackerKeyConstant + "\n",
			},
			arguments:    []string{testTaskFilePathConstant},
			expectedKeys: []string{testTrackerKeyConstant, testSecondTrackerKeyConstant},
		},
		{
			name: "IssueNumberLinesAreNotComments",
			files: map[string]string{
				testTaskFilePathConstant: "#42\n# actual comment\n#43\n",
			},
			arguments:    []string{testTaskFilePathConstant},
			expectedKeys: []string{"#42", "#43"},
		},
		{
			name:         "DuplicatesCollapse",
			files:        map[string]string{},
			arguments:    []string{testTrackerKeyConstant, testTrackerKeyConstant, testSecondTrackerKeyConstant},
			expectedKeys: []string{testTrackerKeyConstant, testSecondTrackerKeyConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			taskList, parseError := tasks.ParseArguments(memoryFileSystem{files: testCase.files}, testCase.arguments)
			if testCase.expectError != nil {
				require.ErrorIs(testInstance, parseError, testCase.expectError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedKeys, append([]string{}, taskList.Keys()...))
			for _, expectedKey := range testCase.expectedKeys {
				require.True(testInstance, taskList.Contains(expectedKey))
			}
		})
	}
}

func TestParseArgumentsRequiresFileSystem(testInstance *testing.T) {
	_, parseError := tasks.ParseArguments(nil, []string{testTrackerKeyConstant})
	require.ErrorIs(testInstance, parseError, tasks.ErrFileSystemNotConfigured)
}

func TestExtractKey(testInstance *testing.T) {
	testCases := []struct {
		name          string
		commitSubject string
		expectedKey   string
		expectedFound bool
	}{
		{
			name:          "TrackerKey",
			commitSubject: "ECOLOGY-2994: fix reindex job",
			expectedKey:   testTrackerKeyConstant,
			expectedFound: true,
		},
		{
			name:          "TrackerKeyInsideBrackets",
			commitSubject: "[PLATFORM-17] adjust retry budget",
			expectedKey:   testSecondTrackerKeyConstant,
			expectedFound: true,
		},
		{
			name:          "IssueNumberFallback",
			commitSubject: "Fix crash on resume (#1234)",
			expectedKey:   testIssueNumberKeyConstant,
			expectedFound: true,
		},
		{
			name:          "TrackerKeyWinsOverIssueNumber",
			commitSubject: "ECOLOGY-2994 follow-up for #1234",
			expectedKey:   testTrackerKeyConstant,
			expectedFound: true,
		},
		{
			name:          "NoKey",
			commitSubject: "chore: bump dependencies",
			expectedFound: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			extractedKey, found := tasks.ExtractKey(testCase.commitSubject)
			require.Equal(testInstance, testCase.expectedFound, found)
			require.Equal(testInstance, testCase.expectedKey, extractedKey)
		})
	}
}

func TestNewListCollapsesBlanksAndDuplicates(testInstance *testing.T) {
	taskList := tasks.NewList([]string{" " + testTrackerKeyConstant + " ", "", testTrackerKeyConstant})
	require.Equal(testInstance, 1, taskList.Len())
	require.Equal(testInstance, []string{testTrackerKeyConstant}, taskList.Keys())
}
