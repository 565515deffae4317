// Package dispatch implements the batch release dispatcher: it walks an
// ordered list of repository directories and, for each one present on disk,
// invokes the cherry-pick delegate with the configured release parameters.
//
// Iteration is strictly sequential and fail-open: a missing directory or a
// failing delegate never stops the remaining repositories. Every configured
// path produces a RepoResult so callers can decide how failures map to the
// process exit code.
package dispatch
