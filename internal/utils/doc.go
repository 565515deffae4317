// Package utils bundles shared infrastructure for the relpick CLI: the Viper
// configuration loader, the zap logger factory, and helpers for passing
// values through command contexts.
package utils
