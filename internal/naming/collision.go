package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// dupMarker separates a clashing output's stem from its number.
const dupMarker = " - dup"

// CollisionResolver hands out output paths so that no two inputs of a run
// write the same file. A clashing request gets a " - dupN" variant. The
// runner is sequential, so the resolver does no locking.
type CollisionResolver struct {
	owners map[string]string // output path → input that claimed it
	next   map[string]int    // requested path → next dup number to try
}

// NewCollisionResolver returns an empty resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners: make(map[string]string),
		next:   make(map[string]int),
	}
}

// Resolve claims requested for input and returns it, or returns the first
// free "<stem> - dupN<ext>" variant when another input already owns it.
// Asking again for the same input returns the same path.
func (r *CollisionResolver) Resolve(input, requested string) string {
	if owner, ok := r.owners[requested]; !ok || owner == input {
		r.owners[requested] = input
		return requested
	}
	for p, owner := range r.owners {
		if owner == input && strings.HasPrefix(p, dupPrefix(requested)) {
			return p
		}
	}

	dir, base := filepath.Split(requested)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	n := max(r.next[requested], 1)
	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s%s%d%s", stem, dupMarker, n, ext))
		n++
		if _, taken := r.owners[candidate]; !taken {
			r.next[requested] = n
			r.owners[candidate] = input
			return candidate
		}
	}
}

// Owner returns the input that claimed path, if any.
func (r *CollisionResolver) Owner(path string) (string, bool) {
	in, ok := r.owners[path]
	return in, ok
}

func dupPrefix(requested string) string {
	return strings.TrimSuffix(requested, filepath.Ext(requested)) + dupMarker
}
