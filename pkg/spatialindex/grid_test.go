package spatialindex

import (
	"testing"

	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func road(id int64, coords ...[2]float64) *datastructure.RoadSegment {
	points := make([]geo.Coordinate, len(coords))
	for i, c := range coords {
		points[i] = geo.NewCoordinate(c[0], c[1])
	}
	return datastructure.NewRoadSegment(id, points, pkg.RESIDENTIAL, 30, false,
		"", "", "", "", "")
}

func TestGridQueryFindsNearbyRoad(t *testing.T) {
	g := NewGrid()
	g.Insert(road(1, [2]float64{37.0000, -122.0000}, [2]float64{37.0000, -122.0010}))

	got := g.QueryRadius(37.00005, -122.00005, 50)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID())
}

func TestGridQueryFiltersFarRoad(t *testing.T) {
	g := NewGrid()
	// same cell, but ~550 m away
	g.Insert(road(1, [2]float64{37.0050, -122.0000}, [2]float64{37.0050, -122.0010}))

	got := g.QueryRadius(37.0000, -122.0005, 50)
	assert.Empty(t, got)
}

func TestGridQueryAcrossCellBorder(t *testing.T) {
	g := NewGrid()
	// road just over the 0.01-degree cell border from the query point
	g.Insert(road(1, [2]float64{37.0101, -122.0000}, [2]float64{37.0101, -122.0010}))

	// ~100 m south of the road, one cell down
	got := g.QueryRadius(37.0092, -122.0005, 150)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID())
}

func TestGridQueryDeduplicates(t *testing.T) {
	g := NewGrid()
	// long road with vertices in many cells
	g.Insert(road(1,
		[2]float64{37.000, -122.000},
		[2]float64{37.000, -122.005},
		[2]float64{37.000, -122.010},
	))

	got := g.QueryRadius(37.0000, -122.0050, 600)
	assert.Len(t, got, 1)
}

func TestGridClear(t *testing.T) {
	g := NewGrid()
	g.Insert(road(1, [2]float64{37.0, -122.0}, [2]float64{37.0, -122.001}))
	require.NotZero(t, g.NumCells())

	g.Clear()
	assert.Zero(t, g.NumCells())
	assert.Empty(t, g.QueryRadius(37.0, -122.0005, 50))
}

func TestRoadNearPoint(t *testing.T) {
	r := road(1, [2]float64{37.0000, -122.0000}, [2]float64{37.0000, -122.0010})

	// near the middle of the segment, far from both vertices
	assert.True(t, RoadNearPoint(r, 37.00005, -122.0005, 10))
	// too far
	assert.False(t, RoadNearPoint(r, 37.0010, -122.0005, 10))
	// near a vertex
	assert.True(t, RoadNearPoint(r, 37.00001, -122.0000, 10))
}

func TestRtreeBoundingBoxSearch(t *testing.T) {
	rt := NewRtree()
	rt.Insert(road(1, [2]float64{37.000, -122.000}, [2]float64{37.000, -122.001}))
	rt.Insert(road(2, [2]float64{38.000, -121.000}, [2]float64{38.000, -121.001}))

	ids := rt.SearchInBoundingBox(36.99, -122.01, 37.01, -121.99)
	require.Len(t, ids, 1)
	assert.Equal(t, int64(1), ids[0])

	assert.Equal(t, 2, rt.Len())
	rt.Clear()
	assert.Equal(t, 0, rt.Len())
}
