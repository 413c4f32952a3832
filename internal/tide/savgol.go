package tide

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// PolynomialFilter smooths a series by least-squares fitting a polynomial
// over a sliding window (Savitzky-Golay). Points closer than half a window to
// either end are evaluated from the fit over the first or last full window,
// matching scipy.signal.savgol_filter with mode='interp'.
type PolynomialFilter struct {
	WindowSize int
	PolyOrder  int

	// hat[k] holds the weights that evaluate the window's fitted polynomial
	// at window position k
	hat [][]float64
}

// NewPolynomialFilter creates a Savitzky-Golay filter. windowSize must be a
// positive odd number and polyOrder must be in [0, windowSize).
func NewPolynomialFilter(windowSize, polyOrder int) (*PolynomialFilter, error) {
	if windowSize < 1 || windowSize%2 == 0 {
		return nil, &InvalidParameterError{
			Parameter: "window_size",
			Value:     windowSize,
			Reason:    "must be a positive odd number of samples",
		}
	}
	if polyOrder < 0 || polyOrder >= windowSize {
		return nil, &InvalidParameterError{
			Parameter: "poly_order",
			Value:     polyOrder,
			Reason:    fmt.Sprintf("must be in [0, %d)", windowSize),
		}
	}

	hat, err := savgolHat(windowSize, polyOrder)
	if err != nil {
		return nil, err
	}

	return &PolynomialFilter{
		WindowSize: windowSize,
		PolyOrder:  polyOrder,
		hat:        hat,
	}, nil
}

// savgolHat builds the hat matrix A·pinv(A) of the window's Vandermonde
// matrix A. Positions are scaled to [-1, 1] to keep A well conditioned.
func savgolHat(windowSize, polyOrder int) ([][]float64, error) {
	half := windowSize / 2
	scale := math.Max(float64(half), 1)

	A := mat.NewDense(windowSize, polyOrder+1, nil)
	for i := 0; i < windowSize; i++ {
		x := float64(i-half) / scale
		for j := 0; j <= polyOrder; j++ {
			A.Set(i, j, math.Pow(x, float64(j)))
		}
	}

	identity := mat.NewDense(windowSize, windowSize, nil)
	for i := 0; i < windowSize; i++ {
		identity.Set(i, i, 1)
	}

	// pinv(A) is the least-squares solution of A·X = I
	var qr mat.QR
	qr.Factorize(A)

	pinv := mat.NewDense(polyOrder+1, windowSize, nil)
	if err := qr.SolveTo(pinv, false, identity); err != nil {
		return nil, fmt.Errorf("failed to solve Savitzky-Golay least squares: %w", err)
	}

	var hat mat.Dense
	hat.Mul(A, pinv)

	rows := make([][]float64, windowSize)
	for i := range rows {
		rows[i] = mat.Row(nil, i, &hat)
	}
	return rows, nil
}

// Name returns the strategy name
func (p *PolynomialFilter) Name() string {
	return string(FilterTypePolynomial)
}

// Apply returns the smoothed series. The window must fit in the series.
func (p *PolynomialFilter) Apply(values []float64) ([]float64, error) {
	n := len(values)
	w := p.WindowSize
	if w > n {
		return nil, &InvalidParameterError{
			Parameter: "window_size",
			Value:     w,
			Reason:    fmt.Sprintf("exceeds series length %d", n),
		}
	}

	smoothed := make([]float64, n)
	if w == 1 {
		copy(smoothed, values)
		return smoothed, nil
	}

	half := w / 2
	center := p.hat[half]

	for i := half; i < n-half; i++ {
		smoothed[i] = dot(center, values[i-half:i+half+1])
	}

	// Edges come from the polynomials fitted to the first and last windows
	first := values[:w]
	last := values[n-w:]
	for k := 0; k < half; k++ {
		smoothed[k] = dot(p.hat[k], first)
		smoothed[n-half+k] = dot(p.hat[half+1+k], last)
	}

	return smoothed, nil
}

func dot(weights, window []float64) float64 {
	sum := 0.0
	for i, w := range weights {
		sum += w * window[i]
	}
	return sum
}
