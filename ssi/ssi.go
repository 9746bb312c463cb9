// Package ssi provides options and input validation shared by the data-driven
// (package dat) and covariance-driven (package cov) stochastic subspace identification realizers.
package ssi

import (
	"fmt"
	"math"
	"strconv"

	oma "github.com/milosgajdos/go-oma"
	"github.com/milosgajdos/go-oma/matrix"
	"gonum.org/v1/gonum/mat"
)

// Variant is SSI algorithm family.
type Variant string

const (
	// Data is data-driven SSI operating on the block Hankel matrix of raw outputs
	Data Variant = "dat"
	// Cov is covariance-driven SSI operating on the block Toeplitz matrix of output covariances
	Cov Variant = "cov"
)

// ParseVariant parses SSI variant from string.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case Data, Cov:
		return v, nil
	}

	return "", fmt.Errorf("%w: unknown SSI variant: %q", oma.ErrInvalidInput, s)
}

// Method selects the estimator of state and output matrices.
type Method int

const (
	// Method1 estimates A and C from Kalman state sequences (data-driven SSI)
	// or from the shift structure of the observability matrix (covariance-driven SSI)
	Method1 Method = iota + 1
	// Method2 estimates A from the shift structure of the observability matrix (data-driven SSI)
	// or from the shifted Toeplitz matrix, a.k.a. NExT-ERA (covariance-driven SSI)
	Method2
)

// Descriptor describes the configuration of an SSI realizer.
type Descriptor interface {
	// Variant returns SSI variant
	Variant() Variant
	// Method returns estimator method
	Method() Method
	// BlockRows returns the number of block rows
	BlockRows() int
}

// ParseMethod parses estimator method from its string representation: "1" or "2".
func ParseMethod(s string) (Method, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: unknown method: %q", oma.ErrInvalidInput, s)
	}

	m := Method(n)
	if err := m.Validate(); err != nil {
		return 0, err
	}

	return m, nil
}

// Validate returns error if m is not a known method.
func (m Method) Validate() error {
	if m != Method1 && m != Method2 {
		return fmt.Errorf("%w: unknown method: %d", oma.ErrInvalidInput, int(m))
	}

	return nil
}

// String implements fmt.Stringer
func (m Method) String() string {
	return strconv.Itoa(int(m))
}

// ValidateData checks the time history data (samples in rows, channels in columns) and the number of
// block rows br before any matrix work begins. Data must contain at least one channel, only finite values
// and enough samples to build 2*br block rows. br must be at least 2 so the observability matrix
// can be split into its shifted parts.
func ValidateData(data mat.Matrix, br int) error {
	if data == nil {
		return fmt.Errorf("%w: nil data", oma.ErrInvalidInput)
	}

	n, nch := data.Dims()
	if n == 0 || nch == 0 {
		return fmt.Errorf("%w: empty data: [%d x %d]", oma.ErrInvalidInput, n, nch)
	}

	if br < 2 {
		return fmt.Errorf("%w: invalid block rows: %d", oma.ErrInvalidInput, br)
	}

	if n < 2*br+1 {
		return fmt.Errorf("%w: not enough samples for %d block rows: %d", oma.ErrInvalidInput, br, n)
	}

	if matrix.HasNaNOrInf(data) {
		return fmt.Errorf("%w: data contains NaN or Inf values", oma.ErrInvalidInput)
	}

	return nil
}

// ValidateRate returns error if sampling frequency fs is not a positive finite number.
func ValidateRate(fs float64) error {
	if !(fs > 0) || math.IsInf(fs, 0) {
		return fmt.Errorf("%w: invalid sampling frequency: %g", oma.ErrInvalidInput, fs)
	}

	return nil
}

// ValidateOrder returns error if order is outside of the range [1, maxOrder].
func ValidateOrder(order, maxOrder int) error {
	if order < 1 || order > maxOrder {
		return fmt.Errorf("%w: invalid model order %d, must be in [1, %d]", oma.ErrInvalidInput, order, maxOrder)
	}

	return nil
}

// Shift returns the observability matrix o with its last nch rows removed (O1)
// and with its first nch rows removed (O2).
func Shift(o *mat.Dense, nch int) (o1, o2 mat.Matrix) {
	rows, cols := o.Dims()

	return o.Slice(0, rows-nch, 0, cols), o.Slice(nch, rows, 0, cols)
}

// ShiftEstimate estimates state matrix A = pinv(O1)*O2 and output matrix C as the first
// nch rows of the observability matrix o.
func ShiftEstimate(o *mat.Dense, nch int) (A, C *mat.Dense, err error) {
	o1, o2 := Shift(o, nch)

	o1inv, err := matrix.Pinv(o1)
	if err != nil {
		return nil, nil, fmt.Errorf("pseudo-inverse of O1: %w", err)
	}

	A = &mat.Dense{}
	A.Mul(o1inv, o2)

	_, cols := o.Dims()
	C = mat.DenseCopyOf(o.Slice(0, nch, 0, cols))

	return A, C, nil
}

// Finite returns error if A or C contain NaN or Inf values.
func Finite(A, C mat.Matrix) error {
	if matrix.HasNaNOrInf(A) || matrix.HasNaNOrInf(C) {
		return fmt.Errorf("estimated matrices contain NaN or Inf values")
	}

	return nil
}
