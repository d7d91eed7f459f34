// Package history records every execution attempt the engine makes.
//
// The task files themselves only carry the latest schedule and memory;
// the history store is the audit trail of what ran, when, and how it went.
// It is strictly observational: a history write failure never blocks or
// alters scheduling.
package history
