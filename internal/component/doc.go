// Package component holds the registry of trackable components.
//
// A [Registry] maps component names to [Record] metadata (root directory,
// declaration file, declared commit, whether it derives from the application
// base). It replaces runtime class lookups: the host populates it at startup,
// either directly or from a manifest file loaded with [LoadManifest].
//
// Only the designated base component and at most one application component
// are trackable.
package component
