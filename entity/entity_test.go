package entity_test

import (
	"testing"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/roadrage-sim/entity"
)

func TestDirectionRotation(t *testing.T) {
	for _, d := range entity.Directions() {
		assert.Equal(t, d, d.Reverse().Reverse())
		assert.Equal(t, d.Reverse(), d.Left().Left())
		assert.Equal(t, d, d.Left().Right())
		assert.Equal(t, d.Right(), d.Left().Left().Left())
	}
	assert.Equal(t, entity.WEST, entity.NORTH.Left())
	assert.Equal(t, entity.EAST, entity.NORTH.Right())
	assert.Equal(t, entity.SOUTH, entity.NORTH.Reverse())
	assert.Equal(t, entity.NORTH, entity.EAST.Left())
}

func TestDirectionDelta(t *testing.T) {
	cases := map[entity.Direction][2]int{
		entity.NORTH: {0, -1},
		entity.SOUTH: {0, 1},
		entity.WEST:  {-1, 0},
		entity.EAST:  {1, 0},
	}
	for d, want := range cases {
		dx, dy := d.Delta()
		assert.Equal(t, want, [2]int{dx, dy}, d.String())
		rx, ry := d.Reverse().Delta()
		assert.Equal(t, [2]int{-dx, -dy}, [2]int{rx, ry})
	}
}

func TestDirectionCodes(t *testing.T) {
	for _, d := range entity.Directions() {
		got, err := entity.ParseDirection(d.Code())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	_, err := entity.ParseDirection('x')
	assert.ErrorIs(t, err, entity.ErrUnknownDirection)
}

type fixedRand int

func (r fixedRand) Intn(n int) int { return int(r) % n }

func TestRandomDirection(t *testing.T) {
	assert.Equal(t, entity.NORTH, entity.RandomDirection(fixedRand(0)))
	assert.Equal(t, entity.EAST, entity.RandomDirection(fixedRand(3)))
}

func TestTerrainCodes(t *testing.T) {
	for _, tr := range entity.Terrains() {
		got, err := entity.ParseTerrain(tr.Code())
		require.NoError(t, err)
		assert.Equal(t, tr, got)
	}
	_, err := entity.ParseTerrain('Q')
	assert.ErrorIs(t, err, entity.ErrUnknownTerrain)

	assert.True(t, entity.LIGHT.HasSignal())
	assert.True(t, entity.CROSSWALK.HasSignal())
	assert.False(t, entity.STREET.HasSignal())
	assert.Equal(t, "TRAIL", entity.TRAIL.String())
	assert.Equal(t, "Terrain(9)", entity.Terrain(9).String())
}

func TestLight(t *testing.T) {
	assert.Equal(t, entity.YELLOW, entity.GREEN.Advance())
	assert.Equal(t, entity.RED, entity.YELLOW.Advance())
	assert.Equal(t, entity.GREEN, entity.RED.Advance())

	l, err := entity.ParseLight("yellow")
	require.NoError(t, err)
	assert.Equal(t, entity.YELLOW, l)
	_, err = entity.ParseLight("blue")
	assert.ErrorIs(t, err, entity.ErrUnknownLight)

	for _, l := range entity.Lights() {
		got, err := entity.LightFromPb(l.ToPb())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	_, err = entity.LightFromPb(mapv2.LightState_LIGHT_STATE_UNSPECIFIED)
	assert.ErrorIs(t, err, entity.ErrUnknownLight)
}
