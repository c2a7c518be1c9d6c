// Package groupsig implements a pairing-based group signature scheme with
// user-chosen pseudonyms (a DAA/EPID-style protocol).
//
// A group issuer admits users via a two-message join protocol; admitted
// users can then produce signatures that prove group membership and carry
// a caller-chosen basename's pseudonym — the same user and basename always
// yield the same pseudonym, but pseudonyms are unlinkable across basenames.
//
// The package is a synchronous, side-effect-free library: every operation
// is a pure function over its inputs (plus the caller-owned RNG) and
// returns values rather than mutating shared state. Curve arithmetic is
// provided by github.com/consensys/gnark-crypto's BN254 implementation;
// this package owns only the wire codec, the Fiat-Shamir transcripts, the
// Schnorr/Chaum-Pedersen proofs built on top of them, and the protocol
// operations (setup, join-client, join-server, join-finish-client, sign,
// verify).
package groupsig
