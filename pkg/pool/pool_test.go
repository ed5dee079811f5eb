package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelize(t *testing.T) {
	square := func(i int) int { return i * i }

	pl := NewPool(4)
	defer pl.TearDown()

	for _, p := range []*Pool{nil, pl} {
		results := Parallelize(p, 100, square)
		for i, r := range results {
			assert.Equal(t, i*i, r)
		}
	}
	assert.Empty(t, Parallelize(pl, 0, square))
	assert.Equal(t, 4, pl.Workers())
	assert.Equal(t, 1, (*Pool)(nil).Workers())
}

func TestTearDown_Twice(t *testing.T) {
	pl := NewPool(1)
	pl.TearDown()
	assert.NotPanics(t, pl.TearDown)
}
