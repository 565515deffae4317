// Package gitrepo implements repository-level git operations on top of the
// shell executor: worktree status, branch resolution, and checkouts.
package gitrepo
