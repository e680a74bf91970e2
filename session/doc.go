// Package session records trading workflow runs: every message a run
// produces plus arbitrary state such as the final result, keyed by a
// session ID.
//
// Store is the persistence contract. InMemoryStore suits single-process
// deployments and tests; RedisStore shares run records across processes
// and survives restarts. Writes create sessions lazily, so a workflow
// driver can append to a fresh session ID without a prior Create call.
package session
