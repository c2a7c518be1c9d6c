package groupsig

import (
	"crypto/sha256"
	"encoding/binary"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/hkdf"
)

// MinSeedBytes is the smallest seed this package will accept, per the
// short-seed threshold of the protocol's state machine.
const MinSeedBytes = 128

// hkdfInfo domain-separates the scalar stream from any other use of the
// same seed elsewhere in a caller's program.
var hkdfInfo = []byte("groupsig-scalar-stream-v1")

// RNG is the engine's seedable cryptographic randomness source — the
// "seedable stream" collaborator this scheme's core treats as external.
// Each Scalar draw expands a fresh HKDF stream keyed by the root secret
// and a monotonic counter, so the generator never runs into HKDF's
// per-expansion output limit regardless of how many operations an engine
// instance performs between reseeds.
type RNG struct {
	secret  []byte
	counter uint64
}

// NewRNG seeds an RNG from caller-supplied entropy. The seed must be at
// least MinSeedBytes long.
func NewRNG(seed []byte) (*RNG, error) {
	if len(seed) < MinSeedBytes {
		return nil, ErrSeedTooSmall
	}
	secret := make([]byte, len(seed))
	copy(secret, seed)
	return &RNG{secret: secret}, nil
}

// NewDeterministicRNG seeds an RNG directly from a user secret, bypassing
// the minimum-length check. join-finish-client uses this so that
// credential verification is reproducible given gsk, trading forward
// secrecy of the verification masks for determinism in an otherwise
// offline step.
func NewDeterministicRNG(secret []byte) *RNG {
	derived := sha256.Sum256(append([]byte("groupsig-join-finish-seed-v1"), secret...))
	return &RNG{secret: derived[:]}
}

// Reseed fully replaces the RNG's state, as the state machine's seed
// operation requires.
func (r *RNG) Reseed(seed []byte) error {
	if len(seed) < MinSeedBytes {
		return ErrSeedTooSmall
	}
	r.secret = append([]byte(nil), seed...)
	r.counter = 0
	return nil
}

func (r *RNG) stream() io.Reader {
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], r.counter)
	r.counter++
	return hkdf.New(sha256.New, r.secret, ctr[:], hkdfInfo)
}

// Scalar draws a uniform element of Fr by rejection sampling MB random
// bytes against the field modulus, mirroring the usual
// sample-then-reject-on-overflow pattern for field elements.
func (r *RNG) Scalar() (*Scalar, error) {
	modulus := fr.Modulus()
	stream := r.stream()
	buf := make([]byte, MB)
	for {
		if _, err := io.ReadFull(stream, buf); err != nil {
			return nil, err
		}
		n := new(big.Int).SetBytes(buf)
		if n.Cmp(modulus) < 0 {
			var s Scalar
			s.SetBigInt(n)
			return &s, nil
		}
	}
}

// Masks draws two independent uniform scalars, used by the triple-pairing
// fast verifier to randomize its combined pairing check.
func (r *RNG) Masks() (e1, e2 *Scalar, err error) {
	e1, err = r.Scalar()
	if err != nil {
		return nil, nil, err
	}
	e2, err = r.Scalar()
	if err != nil {
		return nil, nil, err
	}
	return e1, e2, nil
}
