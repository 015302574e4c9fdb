package ident

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeRandomShape(t *testing.T) {
	id := TimeRandom{}.NewID()
	parts := strings.SplitN(id, "_", 2)
	assert.Len(t, parts, 2)
	assert.NotEmpty(t, parts[0])
	assert.Len(t, parts[1], 9)
}

func TestTimeRandomUniqueness(t *testing.T) {
	gen := TimeRandom{}
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gen.NewID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestUUIDUniqueness(t *testing.T) {
	gen := UUID{}
	a, b := gen.NewID(), gen.NewID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
