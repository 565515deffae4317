package cherrypick

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/temirov/relpick/internal/execshell"
	"github.com/temirov/relpick/internal/tasks"
)

const (
	gitLogSubcommandConstant   = "log"
	gitLogFormatFlagConstant   = "--format=%H|%s|%an|%ad|%P|%at"
	gitLogDateFlagConstant     = "--date=iso"
	gitLogNoMergesFlagConstant = "--no-merges"
	gitLogGrepFlagConstant     = "--grep"
	logFieldSeparatorConstant  = "|"
	logLineSeparatorConstant   = "\n"
	logLineFieldCountConstant  = 6
)

// listCommits scans the source branch history for commits referencing the
// requested tasks and returns them ordered by commit timestamp ascending.
func (service *Service) listCommits(executionContext context.Context, repositoryPath string, sourceBranch string, taskList tasks.List) ([]Commit, error) {
	if taskList.Len() == 0 {
		return nil, nil
	}

	logArguments := []string{
		gitLogSubcommandConstant,
		sourceBranch,
		gitLogFormatFlagConstant,
		gitLogDateFlagConstant,
		gitLogNoMergesFlagConstant,
	}
	for _, taskKey := range taskList.Keys() {
		logArguments = append(logArguments, gitLogGrepFlagConstant, taskKey)
	}

	logResult, logError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        logArguments,
		WorkingDirectory: repositoryPath,
	})
	if logError != nil {
		return nil, logError
	}

	return parseCommitLog(logResult.StandardOutput, taskList), nil
}

// parseCommitLog filters the raw log output down to single-parent commits
// whose extracted task key belongs to the requested list.
func parseCommitLog(logOutput string, taskList tasks.List) []Commit {
	var selectedCommits []Commit

	for _, logLine := range strings.Split(logOutput, logLineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(logLine)
		if len(trimmedLine) == 0 {
			continue
		}

		lineFields := strings.SplitN(trimmedLine, logFieldSeparatorConstant, logLineFieldCountConstant)
		if len(lineFields) < logLineFieldCountConstant {
			continue
		}

		commitSubject := lineFields[1]
		taskKey, keyFound := tasks.ExtractKey(commitSubject)
		if !keyFound || !taskList.Contains(taskKey) {
			continue
		}

		if len(strings.Fields(lineFields[4])) > 1 {
			continue
		}

		commitTimestamp, timestampError := strconv.ParseInt(strings.TrimSpace(lineFields[5]), 10, 64)
		if timestampError != nil {
			continue
		}

		selectedCommits = append(selectedCommits, Commit{
			Hash:       lineFields[0],
			Subject:    commitSubject,
			Author:     lineFields[2],
			CommitDate: lineFields[3],
			Timestamp:  commitTimestamp,
			TaskKey:    taskKey,
		})
	}

	sort.SliceStable(selectedCommits, func(firstIndex int, secondIndex int) bool {
		return selectedCommits[firstIndex].Timestamp < selectedCommits[secondIndex].Timestamp
	})

	return selectedCommits
}
