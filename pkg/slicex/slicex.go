// Package slicex provides small in-place helpers for slices: removing and
// returning elements, and uniform shuffling.
package slicex

import (
	"math/rand/v2"
	"slices"
)

// PopAt removes the element at index i from *s and returns it. The
// remaining elements keep their order. PopAt panics if i is out of range.
func PopAt[S ~[]E, E any](s *S, i int) E {
	v := (*s)[i]
	*s = slices.Delete(*s, i, i+1)
	return v
}

// PopFront removes and returns the first element of *s without moving the
// rest. It reports false if *s is empty.
func PopFront[S ~[]E, E any](s *S) (E, bool) {
	if len(*s) == 0 {
		var zero E
		return zero, false
	}
	v := (*s)[0]
	*s = (*s)[1:]
	return v, true
}

// PopFirst removes and returns the first element of *s for which match
// reports true. It reports false, leaving *s unchanged, if nothing matches.
func PopFirst[S ~[]E, E any](s *S, match func(E) bool) (E, bool) {
	i := slices.IndexFunc(*s, match)
	if i < 0 {
		var zero E
		return zero, false
	}
	return PopAt(s, i), true
}

// Shuffle permutes s uniformly at random in place using the Fisher-Yates
// algorithm. A nil r uses the global math/rand/v2 source.
func Shuffle[E any](r *rand.Rand, s []E) {
	intN := rand.IntN
	if r != nil {
		intN = r.IntN
	}
	for n := len(s); n > 1; n-- {
		k := intN(n)
		s[n-1], s[k] = s[k], s[n-1]
	}
}
