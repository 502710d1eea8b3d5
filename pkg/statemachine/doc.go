// Package statemachine holds the per-tick transition rules that turn the
// schedule, the clock and the latest activity sample into derived events.
//
// Every function is pure: it takes the persisted state, the current time and
// its input, and returns the next state plus the events to append. Callers
// own persistence and event ids.
package statemachine
