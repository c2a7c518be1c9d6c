package groupsig

import "github.com/consensys/gnark-crypto/ecc/bn254"

func isIdentityG1(p *G1) bool {
	return p.X.IsZero() && p.Y.IsZero()
}

// verifyCredentialRelation is the triple-pairing fast credential check.
// A credential (A,B,C,D) is well-formed under a group public key (X,Y)
// exactly when both of:
//
//	e(A,Y)   = e(B,g2)
//	e(C,g2)  = e(A+D,X)
//
// hold. Rather than run two independent pairing computations, the two
// equalities are folded into a single combined check using two random
// masks e1, e2: the verifier accepts only if
//
//	e(A^e1,Y) * e((A+D)^(-e2),X) * e(C^e2 - B^e1, g2) = 1
//
// which is a single three-term multi-pairing call. A cheating prover
// who can satisfy this masked product without satisfying both original
// equalities exists only with negligible probability over the draw of
// e1, e2.
func verifyCredentialRelation(rng *RNG, pk *GroupPublicKey, creds *UserCredentials) error {
	if isIdentityG1(&creds.A) {
		return ErrInvalidUserCredentials
	}

	e1, e2, err := rng.Masks()
	if err != nil {
		return err
	}

	var ae1 G1
	ae1.ScalarMultiplication(&creds.A, scalarBigInt(e1))

	var sumAD, negSumAD, negSumADe2 G1
	sumAD.Add(&creds.A, &creds.D)
	negSumAD.Neg(&sumAD)
	negSumADe2.ScalarMultiplication(&negSumAD, scalarBigInt(e2))

	var ce2 G1
	ce2.ScalarMultiplication(&creds.C, scalarBigInt(e2))
	var negB, negBe1 G1
	negB.Neg(&creds.B)
	negBe1.ScalarMultiplication(&negB, scalarBigInt(e1))
	var g2Term G1
	g2Term.Add(&ce2, &negBe1)

	g2 := g2Generator()
	lhs := []bn254.G1Affine{ae1, negSumADe2, g2Term}
	rhs := []bn254.G2Affine{pk.Y, pk.X, g2}

	result, err := bn254.Pair(lhs, rhs)
	if err != nil {
		return err
	}
	if !result.IsOne() {
		return ErrInvalidUserCredentials
	}
	return nil
}

// VerifyCredentials exposes the triple-pairing check as a standalone
// operation, independent of any signature, for callers that only need
// to confirm a credential tuple's validity under a group public key.
func VerifyCredentials(rng *RNG, pk *GroupPublicKey, creds *UserCredentials) error {
	return verifyCredentialRelation(rng, pk, creds)
}

// Verify is the signature verification operation: it rejects an
// identity B, checks the re-randomized credential relation, then
// recomputes the message/basename digest and checks the Chaum-Pedersen
// proof, bound to that digest, that ties NYM to the same signer that
// holds the valid credential.
func Verify(rng *RNG, pk *GroupPublicKey, sig *Signature, msg, bsn []byte) error {
	if isIdentityG1(&sig.Creds.B) {
		return ErrVerificationFailed
	}
	if err := verifyCredentialRelation(rng, pk, &sig.Creds); err != nil {
		return ErrVerificationFailed
	}

	bsnPoint := hashToG1(hashBasename(bsn))
	h := signatureDigest(msg, bsn)

	if !verifyChaumPedersen(&sig.Creds.B, bsnPoint, &sig.Creds.D, &sig.NYM, &sig.C, &sig.S, h) {
		return ErrVerificationFailed
	}
	return nil
}
