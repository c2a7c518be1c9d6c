package groupsig

import "math/big"

// curvePoint is the slice of the gnark-crypto G1Affine/G2Affine API that
// Schnorr's Σ-protocol needs: scalar multiplication, addition and
// negation, each returning the receiver. Parameterizing proveSchnorr and
// verifySchnorr over this constraint gives both groups one shared
// implementation instead of two copies of the same arithmetic, per the
// "single polymorphic Schnorr" design note — only the per-group transcript
// encoding differs, and that is passed in as a function value.
type curvePoint[T any] interface {
	*T
	Add(a, b *T) *T
	Neg(a *T) *T
	ScalarMultiplication(a *T, s *big.Int) *T
}

func scalarBigInt(s *Scalar) *big.Int {
	return s.BigInt(new(big.Int))
}

// proveSchnorr proves knowledge of x such that y = base^x, optionally
// binding a message into the transcript.
func proveSchnorr[T any, P curvePoint[T]](rng *RNG, base, y *T, x *Scalar, msg []byte, chal func(msg []byte, y, base, t *T) *Scalar) (c, s *Scalar, err error) {
	r, err := rng.Scalar()
	if err != nil {
		return nil, nil, err
	}
	var t T
	P(&t).ScalarMultiplication(base, scalarBigInt(r))

	c = chal(msg, y, base, &t)

	s = new(Scalar).Mul(c, x)
	s.Add(s, r)
	return c, s, nil
}

// verifySchnorr recomputes T' = base^s * y^(-c) and checks the transcript
// reproduces c.
func verifySchnorr[T any, P curvePoint[T]](base, y *T, c, s *Scalar, msg []byte, chal func(msg []byte, y, base, t *T) *Scalar) bool {
	var sBase, cY, tPrime T
	P(&sBase).ScalarMultiplication(base, scalarBigInt(s))
	P(&cY).ScalarMultiplication(y, scalarBigInt(c))
	P(&cY).Neg(&cY)
	P(&tPrime).Add(&sBase, &cY)

	cPrime := chal(msg, y, base, &tPrime)
	return cPrime.Equal(c)
}

func proveSchnorrG1(rng *RNG, base, y *G1, x *Scalar, msg []byte) (c, s *Scalar, err error) {
	return proveSchnorr[G1, *G1](rng, base, y, x, msg, chalG1)
}

func verifySchnorrG1(base, y *G1, c, s *Scalar, msg []byte) bool {
	return verifySchnorr[G1, *G1](base, y, c, s, msg, chalG1)
}

func proveSchnorrG2(rng *RNG, base, y *G2, x *Scalar) (c, s *Scalar, err error) {
	return proveSchnorr[G2, *G2](rng, base, y, x, nil, func(_ []byte, y, base, t *G2) *Scalar {
		return chalG2(y, base, t)
	})
}

func verifySchnorrG2(base, y *G2, c, s *Scalar) bool {
	return verifySchnorr[G2, *G2](base, y, c, s, nil, func(_ []byte, y, base, t *G2) *Scalar {
		return chalG2(y, base, t)
	})
}
