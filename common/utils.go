package common

// Coalesce returns the first value that is not the zero value of T.
// Components use it to fall back from an injected dependency to the process default.
//
// Parameters:
//   - values: candidates in order of preference
//
// Returns:
//   - T: the first non-zero candidate, or the zero value if there is none
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
