package datastructure

import (
	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/geo"
)

// RoadSegment is one polyline of the loaded road network. Segments are owned
// by the matcher; everything outside the matcher refers to a road by its id.
type RoadSegment struct {
	id           int64
	points       []geo.Coordinate // >= 2, order preserved
	roadType     pkg.OsmHighwayType
	maxSpeed     float64 // km/h
	oneWay       bool
	name         string
	ref          string
	streetNumber string
	locality     string
	adminArea    string
}

func NewRoadSegment(id int64, points []geo.Coordinate, roadType pkg.OsmHighwayType,
	maxSpeed float64, oneWay bool, name, ref, streetNumber, locality, adminArea string) *RoadSegment {
	return &RoadSegment{
		id:           id,
		points:       points,
		roadType:     roadType,
		maxSpeed:     maxSpeed,
		oneWay:       oneWay,
		name:         name,
		ref:          ref,
		streetNumber: streetNumber,
		locality:     locality,
		adminArea:    adminArea,
	}
}

func (r *RoadSegment) ID() int64 {
	return r.id
}

func (r *RoadSegment) Points() []geo.Coordinate {
	return r.points
}

func (r *RoadSegment) NumPoints() int {
	return len(r.points)
}

func (r *RoadSegment) RoadType() pkg.OsmHighwayType {
	return r.roadType
}

func (r *RoadSegment) MaxSpeed() float64 {
	return r.maxSpeed
}

func (r *RoadSegment) OneWay() bool {
	return r.oneWay
}

func (r *RoadSegment) Name() string {
	return r.name
}

func (r *RoadSegment) Ref() string {
	return r.ref
}

func (r *RoadSegment) StreetNumber() string {
	return r.streetNumber
}

func (r *RoadSegment) Locality() string {
	return r.locality
}

func (r *RoadSegment) AdminArea() string {
	return r.adminArea
}

// Length. polyline length in meter
func (r *RoadSegment) Length() float64 {
	total := 0.0
	for i := 0; i+1 < len(r.points); i++ {
		total += geo.HaversineDistance(r.points[i].GetLat(), r.points[i].GetLon(),
			r.points[i+1].GetLat(), r.points[i+1].GetLon())
	}
	return total
}

// BoundingBox returns (minLat, minLon, maxLat, maxLon) over all vertices.
func (r *RoadSegment) BoundingBox() (float64, float64, float64, float64) {
	minLat, minLon := r.points[0].GetLat(), r.points[0].GetLon()
	maxLat, maxLon := minLat, minLon
	for _, p := range r.points[1:] {
		if p.GetLat() < minLat {
			minLat = p.GetLat()
		}
		if p.GetLat() > maxLat {
			maxLat = p.GetLat()
		}
		if p.GetLon() < minLon {
			minLon = p.GetLon()
		}
		if p.GetLon() > maxLon {
			maxLon = p.GetLon()
		}
	}
	return minLat, minLon, maxLat, maxLon
}
