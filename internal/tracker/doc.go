// Package tracker synchronizes release task lists from issue trackers.
//
// A tracker backend maps a release version to the keys of the issues fixed in
// that release. The service writes the keys to a task file consumed by the
// cherry-pick engine and the release dispatcher.
package tracker
