package groupsig

import (
	"crypto/sha256"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

func g1Generator() G1 {
	_, _, g1, _ := bn254.Generators()
	return g1
}

// JoinMessage is the user's join request: a commitment Q = g1^gsk and a
// Schnorr proof of knowledge of gsk, bound to an issuer-supplied
// challenge.
type JoinMessage struct {
	Q    G1
	C, S Scalar
}

// UserCredentials is the issuer-signed tuple tying a user's gsk to the
// group: A = g1^r, B = A^y, D = Q^(r*y) (so D = B^gsk, since Q = g1^gsk),
// C = (A+D)^x.
type UserCredentials struct {
	A, B, C, D G1
}

// JoinResponse is UserCredentials plus a Chaum-Pedersen proof that
// log_g1(B) = log_Q(D).
type JoinResponse struct {
	Creds      UserCredentials
	ProofC, ProofS Scalar
}

// UserPrivateKey is a user's persistent secret plus the credentials the
// issuer signed over it.
type UserPrivateKey struct {
	Creds UserCredentials
	Gsk   Scalar
}

func challengeDigest(challenge []byte) []byte {
	d := sha256.Sum256(challenge)
	return d[:]
}

// StartJoin is join-client: sample gsk, commit to it as Q = g1^gsk, and
// prove knowledge of gsk bound to challenge.
func StartJoin(rng *RNG, challenge []byte) (gsk *Scalar, msg *JoinMessage, err error) {
	gsk, err = rng.Scalar()
	if err != nil {
		return nil, nil, fmt.Errorf("groupsig: start-join: sample gsk: %w", err)
	}

	base := g1Generator()
	var q G1
	q.ScalarMultiplication(&base, scalarBigInt(gsk))

	h := challengeDigest(challenge)
	c, s, err := proveSchnorrG1(rng, &base, &q, gsk, h)
	if err != nil {
		return nil, nil, fmt.Errorf("groupsig: start-join: prove gsk: %w", err)
	}

	return gsk, &JoinMessage{Q: q, C: *c, S: *s}, nil
}

// ProcessJoin is join-server: verify the user's proof, then issue
// credentials over the user's commitment Q.
func ProcessJoin(rng *RNG, sk *GroupPrivateKey, msg *JoinMessage, challenge []byte) (*JoinResponse, error) {
	base := g1Generator()
	h := challengeDigest(challenge)
	if !verifySchnorrG1(&base, &msg.Q, &msg.C, &msg.S, h) {
		return nil, ErrInvalidJoinMessage
	}

	r, err := rng.Scalar()
	if err != nil {
		return nil, fmt.Errorf("groupsig: process-join: sample r: %w", err)
	}

	var a G1
	a.ScalarMultiplication(&base, scalarBigInt(r))

	var b G1
	b.ScalarMultiplication(&a, scalarBigInt(&sk.Y))

	var ry Scalar
	ry.Mul(r, &sk.Y)

	var d G1
	d.ScalarMultiplication(&msg.Q, scalarBigInt(&ry))

	var sum G1
	sum.Add(&a, &d)

	var c G1
	c.ScalarMultiplication(&sum, scalarBigInt(&sk.X))

	// Prove log_g1(B) = log_Q(D) = r*y. Since Q = g1^gsk (the user's own
	// commitment from StartJoin), this is what lets the user confirm,
	// without learning r or y, that D = B^gsk for their own gsk.
	proofC, proofS, err := proveChaumPedersen(rng, &base, &msg.Q, &b, &d, &ry, nil)
	if err != nil {
		return nil, fmt.Errorf("groupsig: process-join: prove equality: %w", err)
	}

	return &JoinResponse{
		Creds:   UserCredentials{A: a, B: b, C: c, D: d},
		ProofC:  *proofC,
		ProofS:  *proofS,
	}, nil
}

// FinishJoin is join-finish-client: re-derive Q locally, verify the
// issuer's equality proof against it, then check the credential
// relation before storing anything.
//
// The masks used by the triple-pairing credential check here come from
// a CSPRNG seeded with the user's own secret gsk, not the caller's
// engine RNG — trading forward secrecy of those masks for a
// verification that is reproducible offline given only gsk.
func FinishJoin(pk *GroupPublicKey, gsk *Scalar, resp *JoinResponse) (*UserPrivateKey, error) {
	base := g1Generator()
	var q G1
	q.ScalarMultiplication(&base, scalarBigInt(gsk))

	if !verifyChaumPedersen(&base, &q, &resp.Creds.B, &resp.Creds.D, &resp.ProofC, &resp.ProofS, nil) {
		return nil, ErrInvalidJoinResponse
	}

	maskRNG := NewDeterministicRNG(scalarBigInt(gsk).Bytes())
	if err := verifyCredentialRelation(maskRNG, pk, &resp.Creds); err != nil {
		return nil, ErrInvalidJoinResponse
	}

	return &UserPrivateKey{Creds: resp.Creds, Gsk: *gsk}, nil
}

// JoinMessageSize is the wire width of an encoded JoinMessage.
const JoinMessageSize = G1Size + 2*MB

func EncodeJoinMessage(buf []byte, msg *JoinMessage) (int, error) {
	w := newWriter(buf)
	if err := writeG1(w, &msg.Q); err != nil {
		return 0, err
	}
	if err := writeScalar(w, &msg.C); err != nil {
		return 0, err
	}
	if err := writeScalar(w, &msg.S); err != nil {
		return 0, err
	}
	return w.written(), nil
}

func DecodeJoinMessage(buf []byte) (*JoinMessage, error) {
	r := newReader(buf)
	q, err := readG1(r)
	if err != nil {
		return nil, ErrInvalidJoinMessage
	}
	c, err := readScalar(r)
	if err != nil {
		return nil, ErrInvalidJoinMessage
	}
	s, err := readScalar(r)
	if err != nil {
		return nil, ErrInvalidJoinMessage
	}
	return &JoinMessage{Q: *q, C: *c, S: *s}, nil
}

// UserCredentialsSize is the wire width of an encoded UserCredentials.
const UserCredentialsSize = 4 * G1Size

func encodeUserCredentials(w *cursor, creds *UserCredentials) error {
	for _, p := range []*G1{&creds.A, &creds.B, &creds.C, &creds.D} {
		if err := writeG1(w, p); err != nil {
			return err
		}
	}
	return nil
}

func decodeUserCredentials(r *cursor) (*UserCredentials, error) {
	var creds UserCredentials
	for _, p := range []*G1{&creds.A, &creds.B, &creds.C, &creds.D} {
		v, err := readG1(r)
		if err != nil {
			return nil, err
		}
		*p = *v
	}
	return &creds, nil
}

func EncodeUserCredentials(buf []byte, creds *UserCredentials) (int, error) {
	w := newWriter(buf)
	if err := encodeUserCredentials(w, creds); err != nil {
		return 0, err
	}
	return w.written(), nil
}

func DecodeUserCredentials(buf []byte) (*UserCredentials, error) {
	r := newReader(buf)
	creds, err := decodeUserCredentials(r)
	if err != nil {
		return nil, ErrInvalidUserCredentials
	}
	return creds, nil
}

// JoinResponseSize is the wire width of an encoded JoinResponse.
const JoinResponseSize = UserCredentialsSize + 2*MB

func EncodeJoinResponse(buf []byte, resp *JoinResponse) (int, error) {
	w := newWriter(buf)
	if err := encodeUserCredentials(w, &resp.Creds); err != nil {
		return 0, err
	}
	if err := writeScalar(w, &resp.ProofC); err != nil {
		return 0, err
	}
	if err := writeScalar(w, &resp.ProofS); err != nil {
		return 0, err
	}
	return w.written(), nil
}

func DecodeJoinResponse(buf []byte) (*JoinResponse, error) {
	r := newReader(buf)
	creds, err := decodeUserCredentials(r)
	if err != nil {
		return nil, ErrInvalidJoinResponse
	}
	c, err := readScalar(r)
	if err != nil {
		return nil, ErrInvalidJoinResponse
	}
	s, err := readScalar(r)
	if err != nil {
		return nil, ErrInvalidJoinResponse
	}
	return &JoinResponse{Creds: *creds, ProofC: *c, ProofS: *s}, nil
}

// UserPrivateKeySize is the wire width of an encoded UserPrivateKey.
const UserPrivateKeySize = UserCredentialsSize + MB

func EncodeUserPrivateKey(buf []byte, sk *UserPrivateKey) (int, error) {
	w := newWriter(buf)
	if err := encodeUserCredentials(w, &sk.Creds); err != nil {
		return 0, err
	}
	if err := writeScalar(w, &sk.Gsk); err != nil {
		return 0, err
	}
	return w.written(), nil
}

func DecodeUserPrivateKey(buf []byte) (*UserPrivateKey, error) {
	r := newReader(buf)
	creds, err := decodeUserCredentials(r)
	if err != nil {
		return nil, ErrInvalidUserCredentials
	}
	gsk, err := readScalar(r)
	if err != nil {
		return nil, ErrInvalidUserCredentials
	}
	return &UserPrivateKey{Creds: *creds, Gsk: *gsk}, nil
}
