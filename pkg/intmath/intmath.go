// Package intmath provides overflow-safe integer helpers for interval
// arithmetic in propagators.
//
// Bounds reasoning multiplies and divides domain bounds that may be far apart.
// Products saturate at the int range instead of wrapping, and divisions round
// explicitly toward -inf (FloorDiv) or +inf (CeilDiv) instead of toward zero.
package intmath

import "math"

// SafeMul returns a*b, saturated to [math.MinInt, math.MaxInt].
func SafeMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		if (a < 0) != (b < 0) {
			return math.MinInt
		}
		return math.MaxInt
	}
	return p
}

// SafeAdd returns a+b, saturated to [math.MinInt, math.MaxInt].
func SafeAdd(a, b int) int {
	s := a + b
	if a > 0 && b > 0 && s < 0 {
		return math.MaxInt
	}
	if a < 0 && b < 0 && s >= 0 {
		return math.MinInt
	}
	return s
}

// FloorDiv returns floor(a/b). b must not be zero.
func FloorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// CeilDiv returns ceil(a/b). b must not be zero.
func CeilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}

// MinCeilDiv returns the minimum of CeilDiv(c, d) over the divisors ds.
// Divisors must be non-zero.
func MinCeilDiv(c int, ds ...int) int {
	m := math.MaxInt
	for _, d := range ds {
		if v := CeilDiv(c, d); v < m {
			m = v
		}
	}
	return m
}

// MaxFloorDiv returns the maximum of FloorDiv(c, d) over the divisors ds.
// Divisors must be non-zero.
func MaxFloorDiv(c int, ds ...int) int {
	m := math.MinInt
	for _, d := range ds {
		if v := FloorDiv(c, d); v > m {
			m = v
		}
	}
	return m
}

// Abs returns |a|, saturated at math.MaxInt for math.MinInt.
func Abs(a int) int {
	if a >= 0 {
		return a
	}
	if a == math.MinInt {
		return math.MaxInt
	}
	return -a
}

// Min returns the smaller of a and b.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
