package groupsig

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Scalar, G1 and G2 are the concrete curve types this package builds on.
// BN254 is chosen because its scalar field (fr) and base field (fp) share
// the same 32-byte width, which is what lets a single MB drive the BIG,
// ECP and ECP2 wire widths below.
type (
	Scalar = fr.Element
	G1     = bn254.G1Affine
	G2     = bn254.G2Affine
	GT     = bn254.GT
)

const (
	// MB is the curve's scalar/base field byte width.
	MB = fr.Bytes

	// g1TagUncompressed marks the uncompressed G1 encoding used on the
	// wire. This is this codec's own tag, distinct from gnark-crypto's
	// Marshal(), which packs flags into the coordinate's top bits instead
	// of a leading byte.
	g1TagUncompressed = 0x04

	// G1Size is the wire width of an uncompressed G1 point: tag || X || Y.
	G1Size = 2*MB + 1

	// G2Size is the wire width of a G2 point in the legacy four-limb
	// layout (x.a, x.b, y.a, y.b), with no leading tag byte. Binary
	// compatibility with existing keys depends on this exact layout.
	G2Size = 4 * MB
)

// cursor is a hand-rolled append/consume abstraction over a caller-owned
// byte slice, replacing the classic mutable (buf, len, max) triple with a
// pair of bounds-checked primitives.
type cursor struct {
	buf []byte
	pos int
}

func newWriter(buf []byte) *cursor { return &cursor{buf: buf} }
func newReader(buf []byte) *cursor { return &cursor{buf: buf} }

func (c *cursor) putFixed(b []byte) error {
	if len(c.buf)-c.pos < len(b) {
		return ErrBufferFull
	}
	copy(c.buf[c.pos:], b)
	c.pos += len(b)
	return nil
}

func (c *cursor) takeFixed(n int) ([]byte, error) {
	if len(c.buf)-c.pos < n {
		return nil, ErrShortBuffer
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// written reports how many bytes have been produced so far; used by
// entry points that need to report the final encoded length.
func (c *cursor) written() int { return c.pos }

func writeScalar(w *cursor, s *Scalar) error {
	b := s.Bytes()
	return w.putFixed(b[:])
}

func readScalar(r *cursor) (*Scalar, error) {
	b, err := r.takeFixed(MB)
	if err != nil {
		return nil, err
	}
	var s Scalar
	s.SetBytes(b)
	return &s, nil
}

func writeG1(w *cursor, p *G1) error {
	xb := p.X.Bytes()
	yb := p.Y.Bytes()
	if err := w.putFixed([]byte{g1TagUncompressed}); err != nil {
		return err
	}
	if err := w.putFixed(xb[:]); err != nil {
		return err
	}
	return w.putFixed(yb[:])
}

func readG1(r *cursor) (*G1, error) {
	tag, err := r.takeFixed(1)
	if err != nil {
		return nil, err
	}
	if tag[0] != g1TagUncompressed {
		return nil, ErrInvalidPoint
	}
	xb, err := r.takeFixed(MB)
	if err != nil {
		return nil, err
	}
	yb, err := r.takeFixed(MB)
	if err != nil {
		return nil, err
	}
	var p G1
	p.X.SetBytes(xb)
	p.Y.SetBytes(yb)
	if !(p.X.IsZero() && p.Y.IsZero()) && !p.IsOnCurve() {
		return nil, ErrInvalidPoint
	}
	return &p, nil
}

func writeG2(w *cursor, p *G2) error {
	xa0 := p.X.A0.Bytes()
	xa1 := p.X.A1.Bytes()
	ya0 := p.Y.A0.Bytes()
	ya1 := p.Y.A1.Bytes()
	for _, limb := range [][]byte{xa0[:], xa1[:], ya0[:], ya1[:]} {
		if err := w.putFixed(limb); err != nil {
			return err
		}
	}
	return nil
}

func readG2(r *cursor) (*G2, error) {
	var limbs [4]fp.Element
	for i := range limbs {
		b, err := r.takeFixed(MB)
		if err != nil {
			return nil, err
		}
		limbs[i].SetBytes(b)
	}
	var p G2
	p.X.A0, p.X.A1 = limbs[0], limbs[1]
	p.Y.A0, p.Y.A1 = limbs[2], limbs[3]
	zero := p.X.A0.IsZero() && p.X.A1.IsZero() && p.Y.A0.IsZero() && p.Y.A1.IsZero()
	if !zero && !p.IsOnCurve() {
		return nil, ErrInvalidPoint
	}
	return &p, nil
}

// EncodeG1Point is the exported single-point counterpart to writeG1, for
// callers outside this package (such as an audit log) that need to
// serialize a bare G1 point without a surrounding struct.
func EncodeG1Point(buf []byte, p *G1) (int, error) {
	w := newWriter(buf)
	if err := writeG1(w, p); err != nil {
		return 0, err
	}
	return w.written(), nil
}

// encodeG1/encodeG2 serialize a point using the wire encodings above,
// for use inside Fiat-Shamir transcripts: the transcript's meaning
// comes from the ordered tuple of these encodings, nothing else.
func encodeG1(p *G1) []byte {
	buf := make([]byte, G1Size)
	if err := writeG1(newWriter(buf), p); err != nil {
		panic(fmt.Sprintf("groupsig: encodeG1 into exactly-sized buffer: %v", err))
	}
	return buf
}

func encodeG2(p *G2) []byte {
	buf := make([]byte, G2Size)
	if err := writeG2(newWriter(buf), p); err != nil {
		panic(fmt.Sprintf("groupsig: encodeG2 into exactly-sized buffer: %v", err))
	}
	return buf
}
