package controllers

import (
	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/fusion"
)

type PositioningService interface {
	PushFix(f datastructure.Fix)
	PushInertial(sample datastructure.InertialSample)
	Initialize(opts fusion.Options) error
	LoadRoadData(roads []*datastructure.RoadSegment) (int, error)
	ClearRoadData()
	HMMAccuracy() float64
	RequestPermissions() map[string]bool
	RoadsInBoundingBox(minLat, minLon, maxLat, maxLon float64) []*datastructure.RoadSegment
	TrackPolyline(tripID string) (string, error)
	TripID() string
	Priority() pkg.Priority
	Subscribe() (int, <-chan *datastructure.UnifiedPosition)
	Unsubscribe(id int)
}
