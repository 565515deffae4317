// Package ui renders shell command lifecycle events for human-readable
// console logging.
package ui
