// Package cherrypick selects commits referencing requested task keys from a
// source branch and applies them to a target branch in chronological order.
//
// Commits are ordered strictly by commit timestamp across all tasks; the task
// list only filters which commits qualify. Conflicts are resolved
// non-interactively according to a configured strategy.
package cherrypick
