package tasks

import (
	"errors"
	"regexp"
	"strings"

	"github.com/temirov/relpick/internal/shared"
)

const (
	fileSystemNotConfiguredMessageConstant = "file system not configured"
	commentLinePrefixConstant              = "#"
	taskListSeparatorConstant              = ","
	lineSeparatorConstant                  = "\n"
)

// ErrFileSystemNotConfigured indicates task parsing was attempted without a filesystem collaborator.
var ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)

// Tracker keys such as ECOLOGY-2994 take precedence over bare issue numbers such as #1234.
var (
	trackerKeyPattern      = regexp.MustCompile(`[A-Z][A-Z0-9]*-\d+`)
	issueNumberPattern     = regexp.MustCompile(`#\d+`)
	issueNumberLinePattern = regexp.MustCompile(`^#\d+`)
)

// List holds a de-duplicated, order-preserving collection of task keys.
type List struct {
	orderedKeys []string
	membership  map[string]struct{}
}

// NewList builds a List from the provided keys, collapsing duplicates and blanks.
func NewList(keys []string) List {
	list := List{membership: map[string]struct{}{}}
	for _, key := range keys {
		list.add(key)
	}
	return list
}

func (list *List) add(key string) {
	trimmedKey := strings.TrimSpace(key)
	if len(trimmedKey) == 0 {
		return
	}
	if _, alreadyPresent := list.membership[trimmedKey]; alreadyPresent {
		return
	}
	list.membership[trimmedKey] = struct{}{}
	list.orderedKeys = append(list.orderedKeys, trimmedKey)
}

// Keys returns the task keys in first-appearance order.
func (list List) Keys() []string {
	duplicatedKeys := make([]string, len(list.orderedKeys))
	copy(duplicatedKeys, list.orderedKeys)
	return duplicatedKeys
}

// Contains reports whether the key belongs to the list.
func (list List) Contains(key string) bool {
	_, present := list.membership[key]
	return present
}

// Len returns the number of distinct keys.
func (list List) Len() int {
	return len(list.orderedKeys)
}

// ParseArguments interprets each argument as a task file, a comma-separated
// list, or a bare key. Task files contribute one key per non-empty line;
// lines starting with # are comments.
func ParseArguments(fileSystem shared.FileSystem, arguments []string) (List, error) {
	if fileSystem == nil {
		return List{}, ErrFileSystemNotConfigured
	}

	list := List{membership: map[string]struct{}{}}
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 {
			continue
		}

		if fileInfo, statError := fileSystem.Stat(trimmedArgument); statError == nil && !fileInfo.IsDir() {
			fileContent, readError := fileSystem.ReadFile(trimmedArgument)
			if readError != nil {
				return List{}, readError
			}
			for _, fileLine := range strings.Split(string(fileContent), lineSeparatorConstant) {
				trimmedLine := strings.TrimSpace(fileLine)
				if len(trimmedLine) == 0 || isCommentLine(trimmedLine) {
					continue
				}
				list.add(trimmedLine)
			}
			continue
		}

		if strings.Contains(trimmedArgument, taskListSeparatorConstant) {
			for _, listEntry := range strings.Split(trimmedArgument, taskListSeparatorConstant) {
				list.add(listEntry)
			}
			continue
		}

		list.add(trimmedArgument)
	}

	return list, nil
}

// Lines such as #42 are issue keys, not comments.
func isCommentLine(line string) bool {
	if !strings.HasPrefix(line, commentLinePrefixConstant) {
		return false
	}
	return !issueNumberLinePattern.MatchString(line)
}

// ExtractKey pulls the first task key referenced by a commit subject.
func ExtractKey(commitSubject string) (string, bool) {
	if matchedKey := trackerKeyPattern.FindString(commitSubject); len(matchedKey) > 0 {
		return matchedKey, true
	}
	if matchedNumber := issueNumberPattern.FindString(commitSubject); len(matchedNumber) > 0 {
		return matchedNumber, true
	}
	return "", false
}
