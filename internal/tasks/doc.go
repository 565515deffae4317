// Package tasks parses release task identifiers from files, comma-separated
// lists, and bare keys, and extracts task keys from commit subjects.
package tasks
