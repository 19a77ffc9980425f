package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniquifySequence(t *testing.T) {
	seen := map[string]int{}
	var got []string
	for _, n := range []string{"a", "a", "a"} {
		got = append(got, Uniquify(n, seen))
	}
	assert.Equal(t, []string{"a", "a_0", "a_1"}, got)
}

func TestUniquifyDeterministic(t *testing.T) {
	input := []string{"node", "mesh", "node", "node_0", "node", "mesh"}
	run := func() []string {
		seen := map[string]int{}
		out := make([]string, len(input))
		for i, n := range input {
			out[i] = Uniquify(n, seen)
		}
		return out
	}
	first := run()
	assert.Equal(t, first, run())
	assert.Equal(t, []string{"node", "mesh", "node_0", "node_0_0", "node_1", "mesh_0"}, first)
}

func TestUniquifyPreSeeded(t *testing.T) {
	seen := map[string]int{"a": 0, "a_0": 0, "a_1": 0}
	assert.Equal(t, "a_2", Uniquify("a", seen))
	assert.Equal(t, "a_3", Uniquify("a", seen))
}

func TestGenerator(t *testing.T) {
	g := NewGenerator()
	g.Reserve("body")
	assert.Equal(t, "body_0", g.Next("body", "buffer"))
	assert.Equal(t, "node", g.Next("", "node"))
	assert.Equal(t, "node_0", g.Next("", "node"))

	names := map[string]bool{}
	for i := 0; i < 50; i++ {
		n := g.Next("x", "x")
		assert.False(t, names[n], n)
		names[n] = true
	}
}
