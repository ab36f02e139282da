package scatter

import "math"

// Legendre evaluates P_l(x) with the Bonnet recurrence
// (n+1) P_{n+1} = (2n+1) x P_n - n P_{n-1}.
func Legendre(ell int, x float64) (float64, error) {
	if ell < 0 {
		return 0, domainErr("legendre", ErrNegativeEll, "l = %d", ell)
	}
	if math.IsNaN(x) || x < -1 || x > 1 {
		return 0, domainErr("legendre", ErrLegendreDomain, "x = %g", x)
	}
	return legendre(ell, x), nil
}

func legendre(ell int, x float64) float64 {
	if ell == 0 {
		return 1
	}
	prev, cur := 1.0, x
	for n := 1; n < ell; n++ {
		fn := float64(n)
		prev, cur = cur, ((2*fn+1)*x*cur-fn*prev)/(fn+1)
	}
	return cur
}
