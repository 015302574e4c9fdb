// Package ident generates opaque string identifiers for sessions.
// The core treats IDs as opaque throughout, so the strategy is swappable.
package ident

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Generator produces a new unique-enough identifier.
type Generator interface {
	NewID() string
}

// TimeRandom generates IDs as a base36 millisecond timestamp plus a random
// base36 suffix. Collisions are negligible at this volume but not
// cryptographically excluded; swap in UUID if that ever matters.
type TimeRandom struct{}

func (TimeRandom) NewID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return ts + "_" + suffix(9)
}

// UUID generates RFC 4122 v4 identifiers.
type UUID struct{}

func (UUID) NewID() string {
	return uuid.NewString()
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func suffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.IntN(len(base36))]
	}
	return string(b)
}
