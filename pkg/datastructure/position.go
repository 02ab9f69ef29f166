package datastructure

import (
	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/geo"
)

// SnapResult is an accepted projection of a fix onto a road segment.
type SnapResult struct {
	original   geo.Coordinate
	snapped    geo.Coordinate
	roadID     int64
	roadType   pkg.OsmHighwayType
	confidence float64
	distance   float64 // meter
}

func NewSnapResult(origLat, origLon, snapLat, snapLon float64, roadID int64,
	roadType pkg.OsmHighwayType, confidence, distance float64) *SnapResult {
	return &SnapResult{
		original:   geo.NewCoordinate(origLat, origLon),
		snapped:    geo.NewCoordinate(snapLat, snapLon),
		roadID:     roadID,
		roadType:   roadType,
		confidence: confidence,
		distance:   distance,
	}
}

func (s *SnapResult) Original() geo.Coordinate {
	return s.original
}

func (s *SnapResult) Snapped() geo.Coordinate {
	return s.snapped
}

func (s *SnapResult) RoadID() int64 {
	return s.roadID
}

func (s *SnapResult) RoadType() pkg.OsmHighwayType {
	return s.roadType
}

func (s *SnapResult) Confidence() float64 {
	return s.confidence
}

func (s *SnapResult) Distance() float64 {
	return s.distance
}

// NearestRoad is the always-computed nearest polyline result, independent of
// whether snapping is enabled or accepted.
type NearestRoad struct {
	roadID      int64
	name        string
	roadType    pkg.OsmHighwayType
	distance    float64 // meter
	fullAddress string
	snapLat     float64
	snapLon     float64
}

func NewNearestRoad(roadID int64, name string, roadType pkg.OsmHighwayType,
	distance float64, fullAddress string, snapLat, snapLon float64) *NearestRoad {
	return &NearestRoad{
		roadID:      roadID,
		name:        name,
		roadType:    roadType,
		distance:    distance,
		fullAddress: fullAddress,
		snapLat:     snapLat,
		snapLon:     snapLon,
	}
}

func (n *NearestRoad) RoadID() int64 {
	return n.roadID
}

func (n *NearestRoad) Name() string {
	return n.name
}

func (n *NearestRoad) RoadType() pkg.OsmHighwayType {
	return n.roadType
}

func (n *NearestRoad) Distance() float64 {
	return n.distance
}

func (n *NearestRoad) FullAddress() string {
	return n.fullAddress
}

func (n *NearestRoad) SnapPoint() (float64, float64) {
	return n.snapLat, n.snapLon
}

// UnifiedPosition is the single output frame of the engine. It carries every
// view of the same event (raw, smoothed, kalman, snapped, final) so a
// consumer picks the one it wants without a second round trip.
type UnifiedPosition struct {
	Ts  int64   `json:"ts"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Acc float64 `json:"acc"`
	Spd float64 `json:"spd"`
	Hdg float64 `json:"hdg"`

	IsGood        bool   `json:"isGood"`
	UsingLastGood bool   `json:"usingLastGood"`
	Priority      string `json:"priority"`

	HmmLat float64 `json:"hmmLat"`
	HmmLon float64 `json:"hmmLon"`
	HmmAcc float64 `json:"hmmAcc"`

	KalmanLat float64 `json:"kalmanLat"`
	KalmanLon float64 `json:"kalmanLon"`

	FinalLat float64 `json:"finalLat"`
	FinalLon float64 `json:"finalLon"`

	SnapEnabled    bool    `json:"snapEnabled"`
	SnapLat        float64 `json:"snapLat"`
	SnapLon        float64 `json:"snapLon"`
	SnapConfidence float64 `json:"snapConfidence"`
	SnapDistance   float64 `json:"snapDistance"`
	SnapRoadID     int64   `json:"snapRoadId"` // -1 if none
	SnapRoadType   string  `json:"snapRoadType"`
	SnapApplied    bool    `json:"snapApplied"`

	NearestRoadID          int64   `json:"nearestRoadId"` // -1 if none
	NearestRoadName        string  `json:"nearestRoadName"`
	NearestRoadType        string  `json:"nearestRoadType"`
	NearestRoadDistance    float64 `json:"nearestRoadDistance"`
	NearestRoadFullAddress string  `json:"nearestRoadFullAddress"`

	IsDeadReckoned bool `json:"dr"`

	// set on the record emitted right after a priority switch; tells the
	// input adapter to rebuild its platform positioning request
	PrioritySwitched bool `json:"prioritySwitched,omitempty"`
}
