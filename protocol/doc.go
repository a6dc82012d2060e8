// Package protocol defines the wire types of the Responses streaming
// protocol: the typed event union emitted by the generation service, the
// output-item shapes those events build up, and the canonical response
// snapshot object.
//
// Every type here supports structural deep copy (Clone) so that session
// state never aliases caller-owned values.
package protocol
