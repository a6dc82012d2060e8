// Package session reconstructs generation-session state from a Responses
// event stream. A Session consumes typed delta events one at a time and
// maintains two projections in lockstep: an ordered conversation transcript
// for UIs, and the protocol's canonical response snapshot.
//
// Ingestion is strictly sequential: call Ingest once per event, in receipt
// order, from a single consumer loop. Accessors are safe to call from other
// goroutines, but two loops must never ingest into the same Session.
package session
