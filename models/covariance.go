package models

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Covariance is the sample covariance of a and b. When the lengths differ
// only the first min(len) entries of each, the most recent ones, are used.
func Covariance(a, b []float64) (float64, error) {
	n := min(len(a), len(b))
	if n < 2 {
		return 0, Errorf(KindNumerical, "", "covariance needs at least 2 paired returns, got %d", n)
	}
	return stat.Covariance(a[:n], b[:n], nil), nil
}

// covarianceManual is the textbook two-pass formula, kept to cross-check
// gonum in tests.
func covarianceManual(a, b []float64) float64 {
	n := min(len(a), len(b))
	a, b = a[:n], b[:n]
	var meanA, meanB float64
	for i := 0; i < n; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(n)
	meanB /= float64(n)

	var sum float64
	for i := 0; i < n; i++ {
		sum += (a[i] - meanA) * (b[i] - meanB)
	}
	return sum / float64(n-1)
}

// CovarianceMatrix assembles pairwise covariances of the series.
func CovarianceMatrix(series [][]float64) (*mat.SymDense, error) {
	n := len(series)
	if n == 0 {
		return nil, Errorf(KindConfiguration, "", "no return series")
	}
	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c, err := Covariance(series[i], series[j])
			if err != nil {
				return nil, err
			}
			cov.SetSym(i, j, c)
		}
	}
	return cov, nil
}

// Decompose returns the lower Cholesky factor L with L·Lᵀ = m. m must be
// strictly positive definite: a singular matrix, such as the covariance of
// two perfectly correlated assets, is rejected like an indefinite one.
func Decompose(m mat.Symmetric) (*mat.TriDense, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(m); !ok {
		return nil, Errorf(KindNumerical, "covariance matrix", "not positive definite (singular or indefinite), cannot decompose")
	}
	var l mat.TriDense
	chol.LTo(&l)
	return &l, nil
}

// Correlate writes l·z into dst, allocating when dst is nil.
func Correlate(l mat.Triangular, z, dst []float64) []float64 {
	n, _ := l.Dims()
	if dst == nil {
		dst = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j <= i; j++ {
			sum += l.At(i, j) * z[j]
		}
		dst[i] = sum
	}
	return dst
}
