// Package commit defines the normalized short commit identifier tracked by
// reviser.
//
// An [ID] is one of three things: [Unknown] (no data), the [Missing]
// sentinel "0000000", or a 7-character abbreviated hash. [Parse] normalizes
// raw text from any channel (declaration, cache file, git output) into an ID.
package commit
