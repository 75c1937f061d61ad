package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForPointsBoundaries(t *testing.T) {
	cases := []struct {
		total    int64
		level    int
		progress int
	}{
		{-50, 1, 0},
		{0, 1, 0},
		{99, 1, 99},
		{100, 2, 0},
		{200, 2, 50},
		{299, 2, 100},
		{300, 3, 0},
		{700, 4, 0},
		{1499, 4, 100},
		{1500, 5, 100},
		{99999, 5, 100},
	}
	for _, tc := range cases {
		info := LevelForPoints(tc.total)
		assert.Equal(t, tc.level, info.Level, "total %d", tc.total)
		assert.Equal(t, tc.progress, info.ProgressToNext, "total %d", tc.total)
	}
}

func TestLevelForPointsNextThreshold(t *testing.T) {
	info := LevelForPoints(150)
	require.NotNil(t, info.NextLevelThreshold)
	assert.Equal(t, int64(300), *info.NextLevelThreshold)

	assert.Nil(t, LevelForPoints(1500).NextLevelThreshold)
}

func TestMultiplierFor(t *testing.T) {
	assert.Equal(t, 1.0, MultiplierFor(1, ContextRoutine))
	assert.Equal(t, 1.0, MultiplierFor(2, ContextClass))
	assert.Equal(t, 1.05, MultiplierFor(2, ContextBoostedClass))
	assert.Equal(t, 1.10, MultiplierFor(3, ContextRoutine))
	assert.Equal(t, 1.0, MultiplierFor(3, ContextClass))
	assert.Equal(t, 1.20, MultiplierFor(4, ContextGeneric))
	assert.Equal(t, 1.30, MultiplierFor(5, ContextBoostedClass))
}

func TestMultipliersForCoversEveryContext(t *testing.T) {
	m := MultipliersFor(3)
	assert.Len(t, m, 4)
	assert.Equal(t, 1.10, m[ContextRoutine])
}
