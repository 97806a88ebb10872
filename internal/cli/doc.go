// Package cli wires together the Cobra command tree for the reviser binary.
//
// It defines the root command and all subcommands (check, status, watch,
// hook, state, config, version), binds flags, reads configuration and the
// component manifest, runs the tracker, and returns deterministic exit codes
// for CI gating.
package cli
