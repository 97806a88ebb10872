// Package source resolves the commit of a component from its three channels:
// the declared constant held in the registry, the commit-cache file written
// by a post-commit hook, and a live VCS query.
//
// Channel failures never escape this package. An unreadable file, a missing
// git binary, a non-repository directory, or a timed-out query all degrade
// to [commit.Unknown].
package source
