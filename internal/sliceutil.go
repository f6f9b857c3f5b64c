// internal/sliceutil.go
//
// Small generic helpers shared by the query compiler, the facade and the
// structure provisioning code. None of them modify their input.
// ----------------------------------------------------------------------------

package internal

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Contains reports whether v E xs (O(n)).
func Contains[T comparable](xs []T, v T) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// Map applies f to each element and returns a new slice.
func Map[A any, B any](xs []A, f func(A) B) []B {
	out := make([]B, len(xs))
	for i, x := range xs {
		out[i] = f(x)
	}
	return out
}

// Filter keeps values where pred(x) == true.
func Filter[T any](xs []T, pred func(T) bool) []T {
	out := make([]T, 0, len(xs))
	for _, x := range xs {
		if pred(x) {
			out = append(out, x)
		}
	}
	return out
}

// Unique dedups while preserving first-seen order.
func Unique[T comparable](xs []T) []T {
	seen := make(map[T]struct{}, len(xs))
	out := make([]T, 0, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; !ok {
			seen[x] = struct{}{}
			out = append(out, x)
		}
	}
	return out
}

// Difference returns items in a that are NOT in b.
func Difference[T comparable](a, b []T) []T {
	set := make(map[T]struct{}, len(b))
	for _, x := range b {
		set[x] = struct{}{}
	}
	var out []T
	for _, x := range a {
		if _, ok := set[x]; !ok {
			out = append(out, x)
		}
	}
	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
