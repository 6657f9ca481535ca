package watermark

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Transform is the orthonormal 2D DCT on n x n blocks.
//
// Forward is the DCT-II, Inverse the DCT-III, with basis
//
//	C[k][i] = a(k) * cos(pi * (2i+1) * k / 2n),  a(0) = sqrt(1/n), a(k) = sqrt(2/n)
//
// Forward computes C * X * C^T (columns first, then rows) and Inverse computes C^T * Y * C,
// so the two are exact inverses up to floating point rounding and preserve energy.
// A Transform holds no mutable state and is safe for concurrent use.
type Transform struct {
	n     int
	basis *mat.Dense
}

// NewTransform builds the basis for n x n blocks.
func NewTransform(n int) *Transform {
	basis := mat.NewDense(n, n, nil)
	for k := 0; k < n; k++ {
		a := math.Sqrt(2 / float64(n))
		if k == 0 {
			a = math.Sqrt(1 / float64(n))
		}
		for i := 0; i < n; i++ {
			basis.Set(k, i, a*math.Cos(math.Pi*float64(2*i+1)*float64(k)/float64(2*n)))
		}
	}
	return &Transform{n: n, basis: basis}
}

// Size returns the block edge length.
func (t *Transform) Size() int {
	return t.n
}

// Forward returns the coefficient matrix of a row-major n*n block. (0,0) is the DC term.
func (t *Transform) Forward(pix []float64) []float64 {
	return t.apply(t.basis, t.basis.T(), pix)
}

// Inverse returns the samples for a row-major n*n coefficient matrix.
func (t *Transform) Inverse(coef []float64) []float64 {
	return t.apply(t.basis.T(), t.basis, coef)
}

func (t *Transform) apply(left, right mat.Matrix, data []float64) []float64 {
	x := mat.NewDense(t.n, t.n, data)

	var tmp, out mat.Dense
	tmp.Mul(left, x)
	out.Mul(&tmp, right)

	res := make([]float64, t.n*t.n)
	for r := 0; r < t.n; r++ {
		for c := 0; c < t.n; c++ {
			res[r*t.n+c] = out.At(r, c)
		}
	}
	return res
}
