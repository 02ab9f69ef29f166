package spatialindex

import (
	"math"

	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/geo"
)

type cellKey struct {
	latIdx int
	lonIdx int
}

func cellOf(lat, lon float64) cellKey {
	return cellKey{
		latIdx: int(math.Floor(lat / pkg.GRID_CELL_SIZE_DEG)),
		lonIdx: int(math.Floor(lon / pkg.GRID_CELL_SIZE_DEG)),
	}
}

// Grid is a uniform-grid spatial index over road polylines with cell size
// 0.01 degree. A road is registered in every cell one of its vertices falls
// into plus the 8 neighbours of each vertex cell, so segments crossing a
// cell border are still found from the adjacent cell.
type Grid struct {
	cells map[cellKey][]*datastructure.RoadSegment
}

func NewGrid() *Grid {
	return &Grid{
		cells: make(map[cellKey][]*datastructure.RoadSegment),
	}
}

func (g *Grid) Insert(road *datastructure.RoadSegment) {
	seen := make(map[cellKey]struct{})
	for _, p := range road.Points() {
		center := cellOf(p.GetLat(), p.GetLon())
		for di := -1; di <= 1; di++ {
			for dj := -1; dj <= 1; dj++ {
				key := cellKey{latIdx: center.latIdx + di, lonIdx: center.lonIdx + dj}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				g.cells[key] = append(g.cells[key], road)
			}
		}
	}
}

// QueryRadius returns all roads within radiusM meter of (lat, lon),
// deduplicated and filtered with RoadNearPoint.
func (g *Grid) QueryRadius(lat, lon, radiusM float64) []*datastructure.RoadSegment {
	rDeg := radiusM / pkg.METER_PER_DEGREE_GRID
	halfExtent := int(math.Ceil(rDeg/pkg.GRID_CELL_SIZE_DEG)) + 2

	center := cellOf(lat, lon)
	seen := make(map[int64]struct{})
	var result []*datastructure.RoadSegment
	for di := -halfExtent; di <= halfExtent; di++ {
		for dj := -halfExtent; dj <= halfExtent; dj++ {
			key := cellKey{latIdx: center.latIdx + di, lonIdx: center.lonIdx + dj}
			for _, road := range g.cells[key] {
				if _, ok := seen[road.ID()]; ok {
					continue
				}
				seen[road.ID()] = struct{}{}
				if RoadNearPoint(road, lat, lon, radiusM) {
					result = append(result, road)
				}
			}
		}
	}
	return result
}

func (g *Grid) NumCells() int {
	return len(g.cells)
}

func (g *Grid) Clear() {
	g.cells = make(map[cellKey][]*datastructure.RoadSegment)
}

// RoadNearPoint reports whether any vertex of the road is within radiusM of
// the point, or any segment's orthogonal projection is.
func RoadNearPoint(road *datastructure.RoadSegment, lat, lon, radiusM float64) bool {
	pts := road.Points()
	for _, v := range pts {
		if geo.HaversineDistance(lat, lon, v.GetLat(), v.GetLon()) <= radiusM {
			return true
		}
	}
	p := geo.NewCoordinate(lat, lon)
	for i := 0; i+1 < len(pts); i++ {
		if geo.PointSegmentDistance(pts[i], pts[i+1], p) <= radiusM {
			return true
		}
	}
	return false
}
