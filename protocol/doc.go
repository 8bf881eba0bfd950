// Package protocol defines the signed message payload and the two wire
// envelope versions: legacy "1.1" and quantum-safe "2.0-quantum".
//
// A payload's signature covers its crypto mode, so rewriting the declared
// mode of a signed message invalidates it. Envelopes carry the mode in the
// clear so relays can apply policy without decrypting.
package protocol
