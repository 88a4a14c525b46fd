package core

// RandomSource abstracts randomness for weighted reward draws so tests can
// pin outcomes.
type RandomSource interface {
	// Intn returns a uniform random int in [0, n). Panics if n <= 0.
	Intn(n int) int
}
