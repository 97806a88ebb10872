// Package watch re-runs a callback when any watched commit-cache file
// changes.
//
// The parent directory of each file is watched so the file may be created,
// replaced by rename, or removed after watching starts. Bursts of events are
// coalesced by a debounce timer and the callback always runs on the watcher's
// own goroutine, one call at a time.
package watch
