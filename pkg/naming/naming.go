// Package naming generates unique names for exported entities.
package naming

import "strconv"

// Uniquify returns base the first time it is seen and base_<n> afterwards,
// with n the smallest suffix not already in seen. Every returned name is
// recorded in seen, so results stay unique across calls sharing the map.
func Uniquify(base string, seen map[string]int) string {
	next, ok := seen[base]
	if !ok {
		seen[base] = 0
		return base
	}
	for n := next; ; n++ {
		name := base + "_" + strconv.Itoa(n)
		if _, taken := seen[name]; taken {
			continue
		}
		seen[base] = n + 1
		seen[name] = 0
		return name
	}
}

// Generator wraps a seen map for one export call.
type Generator struct {
	seen map[string]int
}

// NewGenerator returns a generator with no names taken.
func NewGenerator() *Generator {
	return &Generator{seen: make(map[string]int)}
}

// Next returns a unique name derived from base, substituting fallback for
// an empty base.
func (g *Generator) Next(base, fallback string) string {
	if base == "" {
		base = fallback
	}
	return Uniquify(base, g.seen)
}

// Reserve marks name as taken without returning a variant.
func (g *Generator) Reserve(name string) {
	if _, ok := g.seen[name]; !ok {
		g.seen[name] = 0
	}
}
