// Package engine is the state machine and API surface a caller actually
// drives: a values-in, values-out object that wraps the synchronous
// internal/groupsig protocol library with the session state and
// precondition checks a real caller needs.
package engine

import (
	"crypto/rand"

	"groupsig/internal/groupsig"
)

// loadedState is a sum type in place of a SEEDED/PRIV/PUB/USERCREDS
// bit-flag mask: an exhaustive set of variants instead of flag
// arithmetic. SEEDED is tracked separately, since seeding and key
// loading vary independently.
type loadedState int

const (
	stateNone loadedState = iota
	statePublicOnly
	stateFull
	stateUserBound
)

// Engine is the caller-owned session object. The zero value is a valid,
// unseeded, unloaded engine.
type Engine struct {
	rng    *groupsig.RNG
	seeded bool

	state loadedState
	pk    *groupsig.GroupPublicKey
	sk    *groupsig.GroupPrivateKey
	usk   *groupsig.UserPrivateKey
}

// New returns a fresh, unseeded engine.
func New() *Engine {
	return &Engine{state: stateNone}
}

// Seed (re)initializes the engine's CSPRNG from fresh entropy. It needs
// no prior state and is the only operation that resets RNG state; it
// never touches loaded keys. Seeds shorter than groupsig.MinSeedBytes
// are rejected.
func (e *Engine) Seed(entropy []byte) error {
	if e.rng == nil {
		rng, err := groupsig.NewRNG(entropy)
		if err != nil {
			return err
		}
		e.rng = rng
	} else if err := e.rng.Reseed(entropy); err != nil {
		return err
	}
	e.seeded = true
	return nil
}

// SetupGroup runs group setup and loads the resulting keypair, clearing
// any previously loaded key material as a fresh setup implies a fresh
// group.
func (e *Engine) SetupGroup() (*groupsig.GroupPublicKey, error) {
	if !e.seeded {
		return nil, ErrNotSeeded
	}
	sk, err := groupsig.Setup(e.rng)
	if err != nil {
		return nil, err
	}
	e.sk = sk
	e.pk = &sk.Pub
	e.usk = nil
	e.state = stateFull
	return e.pk, nil
}

// LoadGroupPrivateKey validates and loads an issuer keypair, clearing
// any previously loaded user credentials — they belong to whatever
// group was loaded before.
func (e *Engine) LoadGroupPrivateKey(buf []byte) error {
	sk, err := groupsig.DecodeGroupPrivateKey(buf)
	if err != nil {
		return err
	}
	e.sk = sk
	e.pk = &sk.Pub
	e.usk = nil
	e.state = stateFull
	return nil
}

// LoadGroupPublicKey validates and loads a group public key only,
// clearing any previously loaded private key or user credentials.
func (e *Engine) LoadGroupPublicKey(buf []byte) error {
	pk, err := groupsig.DecodeGroupPublicKey(buf)
	if err != nil {
		return err
	}
	e.pk = pk
	e.sk = nil
	e.usk = nil
	e.state = statePublicOnly
	return nil
}

// LoadUserCredentials loads a previously issued credential/secret pair
// onto an engine that already holds at least a group public key.
func (e *Engine) LoadUserCredentials(buf []byte) error {
	if e.state == stateNone {
		return ErrNoGroupPublicKey
	}
	usk, err := groupsig.DecodeUserPrivateKey(buf)
	if err != nil {
		return err
	}
	e.usk = usk
	e.state = stateUserBound
	return nil
}

// ExportGroupPrivateKey serializes the loaded issuer keypair.
func (e *Engine) ExportGroupPrivateKey(buf []byte) (int, error) {
	if e.sk == nil {
		return 0, ErrNoGroupPrivateKey
	}
	return groupsig.EncodeGroupPrivateKey(buf, e.sk)
}

// ExportGroupPublicKey serializes the loaded group public key.
func (e *Engine) ExportGroupPublicKey(buf []byte) (int, error) {
	if e.pk == nil {
		return 0, ErrNoGroupPublicKey
	}
	return groupsig.EncodeGroupPublicKey(buf, e.pk)
}

// ExportUserCredentials serializes the loaded user credential/secret
// pair.
func (e *Engine) ExportUserCredentials(buf []byte) (int, error) {
	if e.usk == nil {
		return 0, ErrNoUserCredentials
	}
	return groupsig.EncodeUserPrivateKey(buf, e.usk)
}

// StartJoin runs join-client.
func (e *Engine) StartJoin(challenge []byte) (gsk *groupsig.Scalar, msg *groupsig.JoinMessage, err error) {
	if !e.seeded {
		return nil, nil, ErrNotSeeded
	}
	return groupsig.StartJoin(e.rng, challenge)
}

// ProcessJoin runs join-server against the engine's loaded issuer
// private key.
func (e *Engine) ProcessJoin(msg *groupsig.JoinMessage, challenge []byte) (*groupsig.JoinResponse, error) {
	if !e.seeded {
		return nil, ErrNotSeeded
	}
	if e.sk == nil {
		return nil, ErrNoGroupPrivateKey
	}
	return groupsig.ProcessJoin(e.rng, e.sk, msg, challenge)
}

// FinishJoin runs join-finish-client. It does not require the engine's
// own RNG, since verification is seeded from gsk, but it does require a
// loaded group public key to check the credential against.
func (e *Engine) FinishJoin(gsk *groupsig.Scalar, resp *groupsig.JoinResponse) (*groupsig.UserPrivateKey, error) {
	if e.pk == nil {
		return nil, ErrNoGroupPublicKey
	}
	return groupsig.FinishJoin(e.pk, gsk, resp)
}

// Sign produces a group signature under a basename using the engine's
// bound user credentials.
func (e *Engine) Sign(msg, bsn []byte) (*groupsig.Signature, error) {
	if !e.seeded {
		return nil, ErrNotSeeded
	}
	if e.usk == nil {
		return nil, ErrNoUserCredentials
	}
	return groupsig.Sign(e.rng, e.usk, msg, bsn)
}

// verifyRNG returns the engine's seeded RNG if one has been set up, or a
// freshly-entropy-seeded one otherwise: verify only ever draws the
// triple-pairing check's public masks, so it has no need of the
// engine's own seed state.
func (e *Engine) verifyRNG() (*groupsig.RNG, error) {
	if e.rng != nil {
		return e.rng, nil
	}
	seed := make([]byte, groupsig.MinSeedBytes)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	return groupsig.NewRNG(seed)
}

// Verify checks a group signature against the engine's loaded group
// public key.
func (e *Engine) Verify(sig *groupsig.Signature, msg, bsn []byte) error {
	if e.pk == nil {
		return ErrNoGroupPublicKey
	}
	rng, err := e.verifyRNG()
	if err != nil {
		return err
	}
	return groupsig.Verify(rng, e.pk, sig, msg, bsn)
}

// GetSignatureTag extracts a signature's pseudonym, independent of any
// loaded state.
func GetSignatureTag(sig *groupsig.Signature) groupsig.G1 {
	return groupsig.GetSignatureTag(sig)
}

// GetStateSize reports the buffer size a caller must provide to export
// whatever key material is currently loaded, per variant.
func (e *Engine) GetStateSize() int {
	switch e.state {
	case stateFull:
		return groupsig.GroupPrivateKeySize
	case statePublicOnly:
		return groupsig.GroupPublicKeySize
	case stateUserBound:
		return groupsig.UserPrivateKeySize
	default:
		return 0
	}
}

// Version identifies the wire-format/protocol revision this engine
// speaks, for compatibility checks across processes.
const Version = "groupsig-1"

// CurveName identifies the underlying bilinear group.
const CurveName = "bn254"
