// Package gitctx runs the read-only git queries reviser needs.
//
// [Client.LatestCommit] prints the most recent commit as one abbreviated
// line (`git log -1 --oneline`) with the subprocess working directory set to
// a component root, so the caller's own working directory is never touched.
// Every query is bounded by a timeout. [GetRepoMeta] and [HooksDir] support
// the status and hook commands.
package gitctx
