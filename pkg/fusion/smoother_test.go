package fusion

import (
	"testing"

	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmootherConstantInput(t *testing.T) {
	s := NewSmoother()
	for i := 0; i < 5; i++ {
		s.Push(datastructure.NewFix(int64(i*1000), 37.0, -122.0, 8, 0, 0))
	}

	lat, lon, ok := s.Mean()
	require.True(t, ok)
	assert.InDelta(t, 37.0, lat, 1e-12)
	assert.InDelta(t, -122.0, lon, 1e-12)
	// identical inputs have zero spread
	assert.InDelta(t, 0, s.AccuracyM(), 1e-9)
}

func TestSmootherAccuracyBelowTwoSamples(t *testing.T) {
	s := NewSmoother()
	assert.Zero(t, s.AccuracyM())

	s.Push(datastructure.NewFix(1000, 37.0, -122.0, 8, 0, 0))
	assert.Zero(t, s.AccuracyM())

	s.Push(datastructure.NewFix(2000, 37.001, -122.0, 8, 0, 0))
	assert.Greater(t, s.AccuracyM(), 0.0)
}

func TestSmootherWeightsByAccuracy(t *testing.T) {
	s := NewSmoother()
	// an accurate fix at 37.0 and a sloppy one at 37.001: the mean must sit
	// much closer to the accurate one
	s.Push(datastructure.NewFix(1000, 37.000, -122.0, 1, 0, 0))
	s.Push(datastructure.NewFix(2000, 37.001, -122.0, 100, 0, 0))

	lat, _, ok := s.Mean()
	require.True(t, ok)
	assert.InDelta(t, 37.0000099, lat, 1e-6)
}

func TestSmootherWindowBounded(t *testing.T) {
	s := NewSmoother()
	// 15 pushes: the first five (at lat 50) must be evicted
	for i := 0; i < 5; i++ {
		s.Push(datastructure.NewFix(int64(i), 50.0, 10.0, 8, 0, 0))
	}
	for i := 5; i < 15; i++ {
		s.Push(datastructure.NewFix(int64(i), 37.0, -122.0, 8, 0, 0))
	}

	assert.Equal(t, 10, s.Len())
	lat, lon, _ := s.Mean()
	assert.InDelta(t, 37.0, lat, 1e-12)
	assert.InDelta(t, -122.0, lon, 1e-12)
}

func TestSmootherZeroAccuracyGuard(t *testing.T) {
	s := NewSmoother()
	// missing accuracy must not divide by zero
	s.Push(datastructure.Fix{Ts: 1000, Lat: 37, Lon: -122, Acc: 0})
	s.Push(datastructure.Fix{Ts: 2000, Lat: 37, Lon: -122, Acc: 0})

	lat, _, ok := s.Mean()
	require.True(t, ok)
	assert.InDelta(t, 37.0, lat, 1e-9)
}
