package model

import "math"

// evaluate computes this regressor's basis function over the rotated
// (but not standardized) input vector xPrime, per §4.2's exact
// semantics:
//
//   - constant:       1
//   - power(i, e):    pow(|xPrime[i]|, e), or 1 when xPrime[i] == 0
//   - product(i, j):  xPrime[i] * xPrime[j]
//   - sqrt(i):        sqrt(|xPrime[i]|)
//   - log2(i):        1 when i == 0, otherwise log2(|xPrime[i]|)
func (r Regressor) evaluate(xPrime []float64) float64 {
	switch r.Function {
	case BasisConstant:
		return 1

	case BasisPower:
		v := xPrime[r.Index]
		if v == 0 {
			return 1
		}
		return math.Pow(math.Abs(v), r.Exponent)

	case BasisProduct:
		return xPrime[r.Index] * xPrime[r.Index2]

	case BasisSqrt:
		return math.Sqrt(math.Abs(xPrime[r.Index]))

	case BasisLog2:
		if r.Index == 0 {
			return 1
		}
		return math.Log2(math.Abs(xPrime[r.Index]))

	default:
		return 0
	}
}
