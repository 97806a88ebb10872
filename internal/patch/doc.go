// Package patch embeds an observed commit into a component's declaration
// file so the next load picks it up.
//
// Only one line-anchored pattern per [Dialect] is supported: replace the
// quoted literal of an existing declaration, or insert a new declaration
// right after the anchor line. [Apply] is pure and idempotent and never
// returns text shorter than its input. [Patcher] wraps it with file I/O and
// writes only when something actually changed.
package patch
