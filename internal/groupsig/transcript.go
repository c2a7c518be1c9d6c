package groupsig

import "crypto/sha256"

// challengeScalar hashes the concatenation of every part, in order, and
// reduces the digest mod q. There are no length prefixes and no domain
// separators between parts — a transcript's meaning comes entirely from
// the fixed position each argument occupies.
func challengeScalar(parts ...[]byte) *Scalar {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	digest := h.Sum(nil)
	var s Scalar
	s.SetBytes(digest)
	return &s
}

// chalG2 is the Fiat-Shamir transcript for a G2 Schnorr proof: Y = G^x.
func chalG2(y, g, t *G2) *Scalar {
	return challengeScalar(encodeG2(y), encodeG2(g), encodeG2(t))
}

// chalG1 is the Fiat-Shamir transcript for a G1 Schnorr proof: Y = G^x.
// msg is nil when the proof carries no bound message; otherwise it must
// be exactly one MB-byte hash block, prepended ahead of the points.
func chalG1(msg []byte, y, g, t *G1) *Scalar {
	if msg == nil {
		return challengeScalar(encodeG1(y), encodeG1(g), encodeG1(t))
	}
	return challengeScalar(msg, encodeG1(y), encodeG1(g), encodeG1(t))
}

// chalEq is the Fiat-Shamir transcript for a Chaum-Pedersen proof that
// log_A(Y) = log_B(Z), over two G1 bases A and B.
func chalEq(msg []byte, y, z, a, b, t1, t2 *G1) *Scalar {
	if msg == nil {
		return challengeScalar(encodeG1(y), encodeG1(z), encodeG1(a), encodeG1(b), encodeG1(t1), encodeG1(t2))
	}
	return challengeScalar(msg, encodeG1(y), encodeG1(z), encodeG1(a), encodeG1(b), encodeG1(t1), encodeG1(t2))
}
