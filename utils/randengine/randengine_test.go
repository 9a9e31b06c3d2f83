package randengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/roadrage-sim/utils/randengine"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := randengine.New(7)
	b := randengine.New(7)
	for range 100 {
		assert.Equal(t, a.Intn(4), b.Intn(4))
	}
	assert.Equal(t, uint64(7), a.InitialSeed())
}
