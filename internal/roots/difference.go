package roots

// CenteredDifference approximates f'(x) by (f(x+dx) - f(x-dx)) / (2*dx).
// A zero result is returned as is; callers divide by it unguarded.
func CenteredDifference(fn func(float64) float64, x, dx float64) float64 {
	return (fn(x+dx) - fn(x-dx)) / (2 * dx)
}
