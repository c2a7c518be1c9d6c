package groupsig

import (
	"crypto/sha256"
	"fmt"
)

// Signature is a group signature under a basename: a re-randomized
// credential, the pseudonym it was computed against, and a proof that
// the same secret key underlies both.
type Signature struct {
	Creds UserCredentials
	NYM   G1
	C, S  Scalar
}

func hashBasename(bsn []byte) []byte {
	d := sha256.Sum256(bsn)
	return d[:]
}

// HashBasename exposes the basename digest used internally by Sign and
// Verify, for callers (such as an audit log) that want to key records
// by basename scope without re-deriving the hash themselves.
func HashBasename(bsn []byte) []byte {
	return hashBasename(bsn)
}

// signatureDigest binds a signature to both the message and the
// basename it was produced under: H(H(msg) || H(bsn)).
func signatureDigest(msg, bsn []byte) []byte {
	hm := sha256.Sum256(msg)
	hb := hashBasename(bsn)
	h := sha256.New()
	h.Write(hm[:])
	h.Write(hb)
	return h.Sum(nil)
}

// Sign is the signing operation. It re-randomizes the
// signer's credential by a fresh blinding factor t, derives the
// basename-scoped pseudonym NYM = BSN^gsk, and proves — without
// revealing gsk — that the same gsk underlies both the re-randomized
// credential (via D' = B'^gsk) and NYM. Two signatures under the same
// basename share a pseudonym; signatures under different basenames are
// unlinkable, since re-randomization makes every credential element
// look independently uniform.
func Sign(rng *RNG, usk *UserPrivateKey, msg, bsn []byte) (*Signature, error) {
	t, err := rng.Scalar()
	if err != nil {
		return nil, fmt.Errorf("groupsig: sign: sample blinding factor: %w", err)
	}

	var a, b, c, d G1
	a.ScalarMultiplication(&usk.Creds.A, scalarBigInt(t))
	b.ScalarMultiplication(&usk.Creds.B, scalarBigInt(t))
	c.ScalarMultiplication(&usk.Creds.C, scalarBigInt(t))
	d.ScalarMultiplication(&usk.Creds.D, scalarBigInt(t))

	bsnPoint := hashToG1(hashBasename(bsn))
	var nym G1
	nym.ScalarMultiplication(bsnPoint, scalarBigInt(&usk.Gsk))

	h := signatureDigest(msg, bsn)
	proofC, proofS, err := proveChaumPedersen(rng, &b, bsnPoint, &d, &nym, &usk.Gsk, h)
	if err != nil {
		return nil, fmt.Errorf("groupsig: sign: prove pseudonym binding: %w", err)
	}

	return &Signature{
		Creds: UserCredentials{A: a, B: b, C: c, D: d},
		NYM:   nym,
		C:     *proofC,
		S:     *proofS,
	}, nil
}

// GetSignatureTag extracts a signature's pseudonym without otherwise
// validating it, for callers (such as an audit log) that only need the
// linkability tag, not a full verification pass.
func GetSignatureTag(sig *Signature) G1 {
	return sig.NYM
}

// SignatureSize is the wire width of an encoded Signature.
const SignatureSize = UserCredentialsSize + G1Size + 2*MB

func EncodeSignature(buf []byte, sig *Signature) (int, error) {
	w := newWriter(buf)
	if err := encodeUserCredentials(w, &sig.Creds); err != nil {
		return 0, err
	}
	if err := writeG1(w, &sig.NYM); err != nil {
		return 0, err
	}
	if err := writeScalar(w, &sig.C); err != nil {
		return 0, err
	}
	if err := writeScalar(w, &sig.S); err != nil {
		return 0, err
	}
	return w.written(), nil
}

func DecodeSignature(buf []byte) (*Signature, error) {
	r := newReader(buf)
	creds, err := decodeUserCredentials(r)
	if err != nil {
		return nil, ErrVerificationFailed
	}
	nym, err := readG1(r)
	if err != nil {
		return nil, ErrVerificationFailed
	}
	c, err := readScalar(r)
	if err != nil {
		return nil, ErrVerificationFailed
	}
	s, err := readScalar(r)
	if err != nil {
		return nil, ErrVerificationFailed
	}
	return &Signature{Creds: *creds, NYM: *nym, C: *c, S: *s}, nil
}
