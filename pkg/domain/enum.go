package domain

import "slices"

// valid reports whether v is one of the members of a closed enum.
func valid[T ~string](members []T, v T) bool {
	return slices.Contains(members, v)
}
