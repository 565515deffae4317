package cherrypick

import (
	"fmt"
	"strings"
)

const (
	conflictStrategyAbortStringConstant       = "abort"
	conflictStrategySkipStringConstant        = "skip"
	conflictStrategyOursStringConstant        = "ours"
	conflictStrategyTheirsStringConstant      = "theirs"
	conflictStrategyEmptyErrorMessageConstant = "conflict strategy must be provided"
	conflictStrategyInvalidTemplateConstant   = "conflict strategy %q is not supported"
)

// ConflictStrategy enumerates non-interactive conflict resolutions.
type ConflictStrategy string

// Supported conflict strategies.
const (
	ConflictStrategyAbort  ConflictStrategy = ConflictStrategy(conflictStrategyAbortStringConstant)
	ConflictStrategySkip   ConflictStrategy = ConflictStrategy(conflictStrategySkipStringConstant)
	ConflictStrategyOurs   ConflictStrategy = ConflictStrategy(conflictStrategyOursStringConstant)
	ConflictStrategyTheirs ConflictStrategy = ConflictStrategy(conflictStrategyTheirsStringConstant)
)

// ParseConflictStrategy normalizes textual strategy values.
func ParseConflictStrategy(strategyValue string) (ConflictStrategy, error) {
	trimmedValue := strings.TrimSpace(strategyValue)
	if len(trimmedValue) == 0 {
		return "", fmt.Errorf(conflictStrategyEmptyErrorMessageConstant)
	}

	switch ConflictStrategy(strings.ToLower(trimmedValue)) {
	case ConflictStrategyAbort:
		return ConflictStrategyAbort, nil
	case ConflictStrategySkip:
		return ConflictStrategySkip, nil
	case ConflictStrategyOurs:
		return ConflictStrategyOurs, nil
	case ConflictStrategyTheirs:
		return ConflictStrategyTheirs, nil
	default:
		return "", fmt.Errorf(conflictStrategyInvalidTemplateConstant, strategyValue)
	}
}

// Commit captures the commit metadata relevant to release promotion.
type Commit struct {
	Hash       string
	Subject    string
	Author     string
	CommitDate string
	Timestamp  int64
	TaskKey    string
}

// Summary totals the outcomes of an apply pass.
type Summary struct {
	Applied int
	Skipped int
	Failed  int
}

// Result reports the selected commits and, when applied, the outcome totals.
type Result struct {
	Commits []Commit
	Summary Summary
}
