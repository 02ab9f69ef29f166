package matcher

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/geo"
	"github.com/satryanta/geofuse/pkg/spatialindex"
	"github.com/satryanta/geofuse/pkg/util"
	"go.uber.org/zap"
)

// Matcher owns the loaded road network and answers the two per-fix queries:
// nearest road (always) and snap-to-road (when enabled). Roads are referenced
// by id everywhere outside this package.
//
// LoadRoadSegments and ClearAllRoads must not race with queries; the engine
// serialises both onto its event loop.
type Matcher struct {
	log *zap.Logger

	roads     []*datastructure.RoadSegment // insertion order, scanned by FindNearestRoad
	roadsByID map[int64]*datastructure.RoadSegment
	grid      *spatialindex.Grid
	rt        *spatialindex.Rtree

	addrCache *lru.Cache[int64, string]

	snapConfidenceThreshold float64
	maxSnapDistanceM        float64
}

func NewMatcher(log *zap.Logger, snapConfidenceThreshold, maxSnapDistanceM float64) *Matcher {
	addrCache, _ := lru.New[int64, string](1 << 12)
	return &Matcher{
		log:                     log,
		roads:                   make([]*datastructure.RoadSegment, 0),
		roadsByID:               make(map[int64]*datastructure.RoadSegment),
		grid:                    spatialindex.NewGrid(),
		rt:                      spatialindex.NewRtree(),
		addrCache:               addrCache,
		snapConfidenceThreshold: snapConfidenceThreshold,
		maxSnapDistanceM:        maxSnapDistanceM,
	}
}

func (m *Matcher) SetSnapThresholds(confidenceThreshold, maxDistanceM float64) {
	m.snapConfidenceThreshold = confidenceThreshold
	m.maxSnapDistanceM = maxDistanceM
}

// LoadRoadSegments validates and registers the given roads. On any invalid
// segment the whole batch is rejected and the matcher is left unchanged.
func (m *Matcher) LoadRoadSegments(roads []*datastructure.RoadSegment) (int, error) {
	for _, road := range roads {
		if road.NumPoints() < 2 {
			return 0, util.WrapErrorf(nil, util.ErrBadParamInput,
				"road %d has %d coordinates, need at least 2", road.ID(), road.NumPoints())
		}
		if _, ok := m.roadsByID[road.ID()]; ok {
			return 0, util.WrapErrorf(nil, util.ErrConflict,
				"road %d already loaded", road.ID())
		}
	}

	for _, road := range roads {
		m.roads = append(m.roads, road)
		m.roadsByID[road.ID()] = road
		m.grid.Insert(road)
		m.rt.Insert(road)
	}
	m.log.Info("road segments loaded", zap.Int("count", len(roads)),
		zap.Int("total", len(m.roads)))
	return len(roads), nil
}

func (m *Matcher) ClearAllRoads() {
	m.roads = m.roads[:0]
	m.roadsByID = make(map[int64]*datastructure.RoadSegment)
	m.grid.Clear()
	m.rt.Clear()
	m.addrCache.Purge()
	m.log.Info("road segments cleared")
}

func (m *Matcher) RoadCount() int {
	return len(m.roads)
}

func (m *Matcher) RoadByID(id int64) (*datastructure.RoadSegment, bool) {
	road, ok := m.roadsByID[id]
	return road, ok
}

// FindNearestRoad scans every loaded road, not only grid candidates, so a
// result is guaranteed whenever any road is loaded. Returns nil with no
// roads.
func (m *Matcher) FindNearestRoad(lat, lon float64) *datastructure.NearestRoad {
	if len(m.roads) == 0 {
		return nil
	}

	p := geo.NewCoordinate(lat, lon)
	var best *datastructure.RoadSegment
	bestDist := math.Inf(1)
	var bestPoint geo.Coordinate

	for _, road := range m.roads {
		pts := road.Points()
		for i := 0; i+1 < len(pts); i++ {
			q := geo.ProjectPointToSegment(pts[i], pts[i+1], p)
			d := geo.HaversineDistance(lat, lon, q.GetLat(), q.GetLon())
			if d < bestDist {
				bestDist = d
				best = road
				bestPoint = q
			}
		}
	}

	return datastructure.NewNearestRoad(best.ID(), best.Name(), best.RoadType(),
		bestDist, m.fullAddress(best), bestPoint.GetLat(), bestPoint.GetLon())
}

// SnapToRoad projects (lat, lon) onto the most plausible nearby road.
// Candidates come from the grid within the 50 m search radius; each is
// scored with a gaussian over its projection distance (sigma 10 m) and the
// best is accepted only above the confidence threshold and within the
// distance ceiling. Returns nil when rejected or no candidate exists.
func (m *Matcher) SnapToRoad(lat, lon float64) *datastructure.SnapResult {
	candidates := m.grid.QueryRadius(lat, lon, pkg.SNAP_SEARCH_RADIUS_M)
	if len(candidates) == 0 {
		return nil
	}

	p := geo.NewCoordinate(lat, lon)
	var best *datastructure.RoadSegment
	bestConfidence := -1.0
	bestDist := 0.0
	var bestPoint geo.Coordinate

	for _, road := range candidates {
		pts := road.Points()
		candDist := math.Inf(1)
		var candPoint geo.Coordinate
		for i := 0; i+1 < len(pts); i++ {
			q := geo.ProjectPointToSegment(pts[i], pts[i+1], p)
			d := geo.HaversineDistance(lat, lon, q.GetLat(), q.GetLon())
			if d < candDist {
				candDist = d
				candPoint = q
			}
		}

		confidence := math.Exp(-0.5 * math.Pow(candDist/pkg.GPS_SIGMA_M, 2))
		if confidence > bestConfidence {
			bestConfidence = confidence
			bestDist = candDist
			best = road
			bestPoint = candPoint
		}
	}

	if bestConfidence < m.snapConfidenceThreshold || bestDist > m.maxSnapDistanceM {
		return nil
	}

	return datastructure.NewSnapResult(lat, lon, bestPoint.GetLat(), bestPoint.GetLon(),
		best.ID(), best.RoadType(), bestConfidence, bestDist)
}

// RoadsInBoundingBox lists loaded roads whose bounding rect intersects the
// query rect. Serves the viewport/debug API; snap queries use the grid.
func (m *Matcher) RoadsInBoundingBox(minLat, minLon, maxLat, maxLon float64) []*datastructure.RoadSegment {
	ids := m.rt.SearchInBoundingBox(minLat, minLon, maxLat, maxLon)
	roads := make([]*datastructure.RoadSegment, 0, len(ids))
	for _, id := range ids {
		if road, ok := m.roadsByID[id]; ok {
			roads = append(roads, road)
		}
	}
	return roads
}

func (m *Matcher) fullAddress(road *datastructure.RoadSegment) string {
	if addr, ok := m.addrCache.Get(road.ID()); ok {
		return addr
	}
	addr := FormatFullAddress(road)
	m.addrCache.Add(road.ID(), addr)
	return addr
}

// Roads returns every loaded road in insertion order. Shared slice; callers
// must not mutate.
func (m *Matcher) Roads() []*datastructure.RoadSegment {
	return m.roads
}

func (m *Matcher) String() string {
	return fmt.Sprintf("matcher{roads: %d, gridCells: %d}", len(m.roads), m.grid.NumCells())
}
