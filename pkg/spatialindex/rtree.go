package spatialindex

import (
	"github.com/golang/geo/s2"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

// Rtree indexes whole road segments by bounding rectangle. The engine's snap
// queries go through the uniform Grid; the r-tree only serves bounding-box
// listing (viewport/debug API), where a rect query maps directly onto the
// tree.
type Rtree struct {
	tr *rtree.RTreeG[int64]
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[int64]
	return &Rtree{
		tr: &tr,
	}
}

// Build. index every road by the s2 rect spanned by its vertices
func (rt *Rtree) Build(roads []*datastructure.RoadSegment, log *zap.Logger) {
	log.Info("Building R-tree road index...", zap.Int("roads", len(roads)))
	for _, road := range roads {
		rect := s2.EmptyRect()
		for _, p := range road.Points() {
			rect = rect.AddPoint(s2.LatLngFromDegrees(p.GetLat(), p.GetLon()))
		}
		lo, hi := rect.Lo(), rect.Hi()
		rt.tr.Insert(
			[2]float64{lo.Lng.Degrees(), lo.Lat.Degrees()},
			[2]float64{hi.Lng.Degrees(), hi.Lat.Degrees()},
			road.ID(),
		)
	}
	log.Info("R-tree road index built.")
}

func (rt *Rtree) Insert(road *datastructure.RoadSegment) {
	rect := s2.EmptyRect()
	for _, p := range road.Points() {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.GetLat(), p.GetLon()))
	}
	lo, hi := rect.Lo(), rect.Hi()
	rt.tr.Insert(
		[2]float64{lo.Lng.Degrees(), lo.Lat.Degrees()},
		[2]float64{hi.Lng.Degrees(), hi.Lat.Degrees()},
		road.ID(),
	)
}

// SearchInBoundingBox returns the ids of all roads whose bounding rect
// intersects the query rect.
func (rt *Rtree) SearchInBoundingBox(minLat, minLon, maxLat, maxLon float64) []int64 {
	ids := make([]int64, 0, 16)
	rt.tr.Search([2]float64{minLon, minLat}, [2]float64{maxLon, maxLat},
		func(min, max [2]float64, id int64) bool {
			ids = append(ids, id)
			return true
		})
	return ids
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

func (rt *Rtree) Clear() {
	var tr rtree.RTreeG[int64]
	rt.tr = &tr
}
