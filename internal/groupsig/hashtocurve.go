package groupsig

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
)

// g1Cofactor is BN254's G1 cofactor. BN curves are constructed so that
// #E(Fp) = r exactly, so G1's cofactor is 1 and the "multiply by
// cofactor" step below is a no-op — it is kept so the procedure matches
// the legacy algorithm exactly, rather than special-casing it away.
var g1Cofactor = big.NewInt(1)

// curveB is the short-Weierstrass constant for BN254: y^2 = x^3 + 3.
var curveB = func() fp.Element {
	var b fp.Element
	b.SetUint64(3)
	return b
}()

// hashToG1 implements the legacy try-and-increment hash-to-curve this
// scheme's wire format is frozen to: interpret digest as a big-endian
// integer x reduced mod the base field; try to solve y^2 = x^3 + 3 for y;
// on failure increment x and retry; once a point is found, clear the
// cofactor, restarting the outer loop if that yields the identity. A
// different hash-to-curve procedure breaks interoperability with any
// other implementation of this wire format.
func hashToG1(digest []byte) *G1 {
	x := new(big.Int).SetBytes(digest)
	modulus := fp.Modulus()
	x.Mod(x, modulus)

	for {
		var xe fp.Element
		xe.SetBigInt(x)

		var x3, y2, y fp.Element
		x3.Square(&xe)
		x3.Mul(&x3, &xe)
		y2.Add(&x3, &curveB)

		if y.Sqrt(&y2) != nil {
			p := &G1{X: xe, Y: y}
			p.ScalarMultiplication(p, g1Cofactor)
			if !p.IsZero() {
				return p
			}
		}

		x.Add(x, big.NewInt(1))
		x.Mod(x, modulus)
	}
}
