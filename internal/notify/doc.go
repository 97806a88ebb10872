// Package notify implements the sinks that receive commit transitions from
// the tracker.
//
// SignalSink emits the CommitRevised capitan signal so in-process observers
// can hook it. LogSink writes a structured log line. CommandSink runs a
// configured shell command with the transition in its environment. Multi
// fans a transition out to several sinks in order.
package notify
