package groupsig

import "errors"

// Error kinds, per the taxonomy this scheme's wire codec and protocol
// layer validate against: precondition failures belong to the engine
// package (internal/engine), everything below is produced while parsing
// or checking bytes handed to this package.
var (
	// ErrSeedTooSmall is returned when a caller tries to seed the engine
	// RNG with fewer than the minimum required bytes of entropy.
	ErrSeedTooSmall = errors.New("groupsig: seed shorter than minimum required length")

	// ErrShortBuffer is returned by the codec when a read would run past
	// the end of the supplied byte slice.
	ErrShortBuffer = errors.New("groupsig: buffer too short")

	// ErrBufferFull is returned by the codec when a write would exceed
	// the caller-supplied output buffer's capacity.
	ErrBufferFull = errors.New("groupsig: output buffer too small")

	// ErrInvalidPoint is returned when decoded bytes do not correspond to
	// a valid point on the curve.
	ErrInvalidPoint = errors.New("groupsig: invalid curve point encoding")

	// ErrInvalidGroupPublicKey is returned when a group public key fails
	// its embedded Schnorr self-proofs.
	ErrInvalidGroupPublicKey = errors.New("groupsig: invalid group public key")

	// ErrInvalidGroupPrivateKey is returned when a group private key's
	// secret scalars do not match its public key.
	ErrInvalidGroupPrivateKey = errors.New("groupsig: invalid group private key")

	// ErrInvalidJoinMessage is returned when a join message's Schnorr
	// proof of knowledge of gsk fails to verify.
	ErrInvalidJoinMessage = errors.New("groupsig: invalid join message")

	// ErrInvalidJoinResponse is returned when a join response's
	// Chaum-Pedersen proof or credential relation fails to verify.
	ErrInvalidJoinResponse = errors.New("groupsig: invalid join response")

	// ErrInvalidUserCredentials is returned when a credential tuple fails
	// the triple-pairing relation check.
	ErrInvalidUserCredentials = errors.New("groupsig: invalid user credentials")

	// ErrVerificationFailed is returned by Verify when a signature fails
	// any of its checks, and by DecodeSignature when the bytes do not
	// decode to a signature; there is no separate malformed-signature
	// error.
	ErrVerificationFailed = errors.New("groupsig: signature verification failed")
)
