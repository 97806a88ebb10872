// Package tracker detects commit transitions per component and fires a
// notification exactly once per transition.
//
// Each [Tracker.Run] asks the reconciler for every tracked component's
// current commit, compares it with the value persisted under [Key], and on
// a change emits a [Transition] to the [Sink] before persisting the new
// value. Equal values are a silent no-op.
package tracker
