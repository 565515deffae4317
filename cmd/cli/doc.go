// Package cli assembles the relpick command-line interface: the release
// dispatcher, the cherry-pick engine, and the tracker synchronization command,
// together with configuration loading and structured logging.
package cli
