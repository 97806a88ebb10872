// Package store provides the file-based key/value store reviser uses to
// remember the last seen commit of each component across runs.
//
// Each key lives in its own JSON entry named by the SHA-256 of the key, so
// component names never need escaping. Writes go through a temp file and a
// rename, so a reader never observes a half-written entry. Concurrent
// writers from different processes race with last-write-wins.
//
// The default directory is $XDG_STATE_HOME/reviser (or the OS-appropriate
// equivalent).
package store
