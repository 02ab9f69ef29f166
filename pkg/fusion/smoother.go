package fusion

import (
	"math"

	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/geo"
)

// Smoother keeps a sliding window of the most recent raw fixes and exposes
// their inverse-accuracy-weighted mean as a smoothed position. Its own
// uncertainty is the weighted RMS distance of window members from that mean,
// in meter.
type Smoother struct {
	window *datastructure.FixWindow
}

func NewSmoother() *Smoother {
	return &Smoother{
		window: datastructure.NewFixWindow(pkg.SMOOTHER_WINDOW),
	}
}

func (s *Smoother) Push(f datastructure.Fix) {
	s.window.Push(f)
}

// Mean returns the weighted mean position. ok is false on an empty window.
func (s *Smoother) Mean() (float64, float64, bool) {
	if s.window.Len() == 0 {
		return 0, 0, false
	}

	sumW := 0.0
	latSum := 0.0
	lonSum := 0.0
	for _, f := range s.window.Fixes() {
		w := 1.0 / math.Max(f.Acc, pkg.MIN_ACCURACY_M)
		sumW += w
		latSum += w * f.Lat
		lonSum += w * f.Lon
	}
	return latSum / sumW, lonSum / sumW, true
}

// AccuracyM is the weighted RMS spread of the window around its weighted
// mean. Reported as 0 with fewer than two members.
func (s *Smoother) AccuracyM() float64 {
	if s.window.Len() < 2 {
		return 0
	}

	muLat, muLon, _ := s.Mean()

	sumW := 0.0
	sumWD2 := 0.0
	for _, f := range s.window.Fixes() {
		w := 1.0 / math.Max(f.Acc, pkg.MIN_ACCURACY_M)
		d := geo.HaversineDistance(muLat, muLon, f.Lat, f.Lon)
		sumW += w
		sumWD2 += w * d * d
	}
	return math.Sqrt(sumWD2 / sumW)
}

func (s *Smoother) Len() int {
	return s.window.Len()
}

func (s *Smoother) Reset() {
	s.window.Clear()
}
