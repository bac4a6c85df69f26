package randutil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for range 16 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
	assert.NotEqual(t, New(1).Uint64(), New(2).Uint64())
}

func TestPickDistinct(t *testing.T) {
	rng := New(7)

	got := PickDistinct(rng, 10, 3)
	assert.Len(t, got, 3)
	sorted := slices.Clone(got)
	slices.Sort(sorted)
	assert.Len(t, slices.Compact(sorted), 3)
	for _, i := range got {
		assert.True(t, i >= 0 && i < 10)
	}

	assert.Len(t, PickDistinct(rng, 4, 9), 4)
	assert.Nil(t, PickDistinct(rng, 4, 0))
}

func TestChanceBounds(t *testing.T) {
	rng := New(3)
	for range 100 {
		assert.False(t, Chance(rng, 0))
		assert.True(t, Chance(rng, 1))
	}
}
