package matcher

import (
	"path/filepath"
	"testing"

	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRoadSnapshotRoundTrip(t *testing.T) {
	m := NewMatcher(zap.NewNop(), 0.3, 50)
	_, err := m.LoadRoadSegments([]*datastructure.RoadSegment{
		datastructure.NewRoadSegment(42,
			[]geo.Coordinate{
				geo.NewCoordinate(37.000001, -122.000001),
				geo.NewCoordinate(37.000500, -122.001000),
				geo.NewCoordinate(37.001000, -122.002000),
			},
			pkg.PRIMARY, 60.5, true, "Jalan Sudirman", "N7", "101", "Jakarta", "DKI Jakarta"),
		datastructure.NewRoadSegment(43,
			[]geo.Coordinate{
				geo.NewCoordinate(-6.2, 106.8),
				geo.NewCoordinate(-6.21, 106.81),
			},
			pkg.RESIDENTIAL, 30, false, "", "", "", "", ""),
	})
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "roads.snapshot")
	require.NoError(t, m.WriteRoads(file))

	roads, err := ReadRoads(file)
	require.NoError(t, err)
	require.Len(t, roads, 2)

	first := roads[0]
	assert.Equal(t, int64(42), first.ID())
	assert.Equal(t, pkg.PRIMARY, first.RoadType())
	assert.InDelta(t, 60.5, first.MaxSpeed(), 1e-6)
	assert.True(t, first.OneWay())
	assert.Equal(t, "Jalan Sudirman", first.Name())
	assert.Equal(t, "N7", first.Ref())
	assert.Equal(t, "101", first.StreetNumber())
	assert.Equal(t, "Jakarta", first.Locality())
	assert.Equal(t, "DKI Jakarta", first.AdminArea())
	require.Equal(t, 3, first.NumPoints())
	assert.InDelta(t, 37.000001, first.Points()[0].GetLat(), 1e-6)
	assert.InDelta(t, -122.000001, first.Points()[0].GetLon(), 1e-6)

	second := roads[1]
	assert.Equal(t, int64(43), second.ID())
	assert.False(t, second.OneWay())
	assert.Equal(t, "", second.Name())
}

func TestReadRoadsMissingFile(t *testing.T) {
	_, err := ReadRoads(filepath.Join(t.TempDir(), "nope.snapshot"))
	assert.Error(t, err)
}
