package math

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
