package groupsig

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// GroupPublicKey is the issuer's public key: X = g2^x, Y = g2^y, with
// Schnorr self-proofs that the issuer knows x and y.
type GroupPublicKey struct {
	X, Y   G2
	Cx, Sx Scalar
	Cy, Sy Scalar
}

// GroupPrivateKey is the issuer's secret key: X and Y must satisfy
// g2^x = Pub.X and g2^y = Pub.Y.
type GroupPrivateKey struct {
	Pub  GroupPublicKey
	X, Y Scalar
}

func g2Generator() G2 {
	_, _, _, g2 := bn254.Generators()
	return g2
}

// Setup generates a fresh issuer keypair: x, y are sampled uniformly,
// X = g2^x and Y = g2^y are published along with Schnorr proofs of
// knowledge of x and y.
func Setup(rng *RNG) (*GroupPrivateKey, error) {
	x, err := rng.Scalar()
	if err != nil {
		return nil, fmt.Errorf("groupsig: setup: sample x: %w", err)
	}
	y, err := rng.Scalar()
	if err != nil {
		return nil, fmt.Errorf("groupsig: setup: sample y: %w", err)
	}

	base := g2Generator()

	var capX, capY G2
	capX.ScalarMultiplication(&base, scalarBigInt(x))
	capY.ScalarMultiplication(&base, scalarBigInt(y))

	cx, sx, err := proveSchnorrG2(rng, &base, &capX, x)
	if err != nil {
		return nil, fmt.Errorf("groupsig: setup: prove X: %w", err)
	}
	cy, sy, err := proveSchnorrG2(rng, &base, &capY, y)
	if err != nil {
		return nil, fmt.Errorf("groupsig: setup: prove Y: %w", err)
	}

	pub := GroupPublicKey{X: capX, Y: capY, Cx: *cx, Sx: *sx, Cy: *cy, Sy: *sy}
	return &GroupPrivateKey{Pub: pub, X: *x, Y: *y}, nil
}

// ValidateGroupPublicKey verifies both of a public key's Schnorr
// self-proofs. Every party that loads a public key from untrusted bytes
// must run this before trusting it.
func ValidateGroupPublicKey(pk *GroupPublicKey) error {
	base := g2Generator()
	if !verifySchnorrG2(&base, &pk.X, &pk.Cx, &pk.Sx) {
		return ErrInvalidGroupPublicKey
	}
	if !verifySchnorrG2(&base, &pk.Y, &pk.Cy, &pk.Sy) {
		return ErrInvalidGroupPublicKey
	}
	return nil
}

// ValidateGroupPrivateKey validates the embedded public key, then
// re-derives g2^x and g2^y and checks they match.
func ValidateGroupPrivateKey(sk *GroupPrivateKey) error {
	if err := ValidateGroupPublicKey(&sk.Pub); err != nil {
		return ErrInvalidGroupPrivateKey
	}
	base := g2Generator()
	var capX, capY G2
	capX.ScalarMultiplication(&base, scalarBigInt(&sk.X))
	capY.ScalarMultiplication(&base, scalarBigInt(&sk.Y))
	if !capX.Equal(&sk.Pub.X) || !capY.Equal(&sk.Pub.Y) {
		return ErrInvalidGroupPrivateKey
	}
	return nil
}

// EncodeGroupPublicKey writes X‖Y‖cx‖sx‖cy‖sy into buf, which must be at
// least GroupPublicKeySize bytes.
func EncodeGroupPublicKey(buf []byte, pk *GroupPublicKey) (int, error) {
	w := newWriter(buf)
	for _, step := range []func() error{
		func() error { return writeG2(w, &pk.X) },
		func() error { return writeG2(w, &pk.Y) },
		func() error { return writeScalar(w, &pk.Cx) },
		func() error { return writeScalar(w, &pk.Sx) },
		func() error { return writeScalar(w, &pk.Cy) },
		func() error { return writeScalar(w, &pk.Sy) },
	} {
		if err := step(); err != nil {
			return 0, err
		}
	}
	return w.written(), nil
}

// GroupPublicKeySize is the wire width of an encoded GroupPublicKey.
const GroupPublicKeySize = 2*G2Size + 4*MB

// DecodeGroupPublicKey parses and validates a group public key.
func DecodeGroupPublicKey(buf []byte) (*GroupPublicKey, error) {
	r := newReader(buf)
	var pk GroupPublicKey
	x, err := readG2(r)
	if err != nil {
		return nil, ErrInvalidGroupPublicKey
	}
	y, err := readG2(r)
	if err != nil {
		return nil, ErrInvalidGroupPublicKey
	}
	cx, err := readScalar(r)
	if err != nil {
		return nil, ErrInvalidGroupPublicKey
	}
	sx, err := readScalar(r)
	if err != nil {
		return nil, ErrInvalidGroupPublicKey
	}
	cy, err := readScalar(r)
	if err != nil {
		return nil, ErrInvalidGroupPublicKey
	}
	sy, err := readScalar(r)
	if err != nil {
		return nil, ErrInvalidGroupPublicKey
	}
	pk.X, pk.Y, pk.Cx, pk.Sx, pk.Cy, pk.Sy = *x, *y, *cx, *sx, *cy, *sy
	if err := ValidateGroupPublicKey(&pk); err != nil {
		return nil, err
	}
	return &pk, nil
}

// GroupPrivateKeySize is the wire width of an encoded GroupPrivateKey.
const GroupPrivateKeySize = GroupPublicKeySize + 2*MB

// EncodeGroupPrivateKey writes GroupPublicKey‖x‖y into buf.
func EncodeGroupPrivateKey(buf []byte, sk *GroupPrivateKey) (int, error) {
	n, err := EncodeGroupPublicKey(buf, &sk.Pub)
	if err != nil {
		return 0, err
	}
	w := &cursor{buf: buf, pos: n}
	if err := writeScalar(w, &sk.X); err != nil {
		return 0, err
	}
	if err := writeScalar(w, &sk.Y); err != nil {
		return 0, err
	}
	return w.written(), nil
}

// DecodeGroupPrivateKey parses and validates a group private key.
func DecodeGroupPrivateKey(buf []byte) (*GroupPrivateKey, error) {
	r := newReader(buf)
	pubBuf, err := r.takeFixed(GroupPublicKeySize)
	if err != nil {
		return nil, ErrInvalidGroupPrivateKey
	}
	pub, err := DecodeGroupPublicKey(pubBuf)
	if err != nil {
		return nil, ErrInvalidGroupPrivateKey
	}
	x, err := readScalar(r)
	if err != nil {
		return nil, ErrInvalidGroupPrivateKey
	}
	y, err := readScalar(r)
	if err != nil {
		return nil, ErrInvalidGroupPrivateKey
	}
	sk := &GroupPrivateKey{Pub: *pub, X: *x, Y: *y}
	if err := ValidateGroupPrivateKey(sk); err != nil {
		return nil, err
	}
	return sk, nil
}
