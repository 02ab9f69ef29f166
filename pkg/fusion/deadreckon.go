package fusion

import (
	"math"

	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/util"
)

// DeadReckoner propagates the position from inertial samples between fixes:
// gyro z integrates into heading, horizontal acceleration magnitude into
// speed, and both into a displacement on the WGS-84 sphere.
//
// Displacement uses dx = v dt cos(h), dy = v dt sin(h) with dx mapped to
// longitude and dy to latitude. The convention is east-referenced rather
// than compass-bearing; it matches the recorded tracks this engine is
// validated against and must not be flipped.
type DeadReckoner struct {
	lat     float64
	lon     float64
	speed   float64 // m/s, >= 0
	heading float64 // degree, [0, 360)

	lastTs      int64
	initialized bool
}

func NewDeadReckoner() *DeadReckoner {
	return &DeadReckoner{}
}

func (d *DeadReckoner) Initialized() bool {
	return d.initialized
}

// SeedFromFix re-anchors the reckoner on a fresh fix: position from the
// filtered output, speed from the fix, heading blended toward the measured
// bearing.
func (d *DeadReckoner) SeedFromFix(lat, lon float64, f datastructure.Fix) {
	d.lat = lat
	d.lon = lon
	if f.Spd >= 0 {
		d.speed = f.Spd
	}
	if d.initialized {
		d.heading = blendHeading(d.heading, f.Hdg, pkg.GPS_HEADING_TRUST)
	} else {
		d.heading = util.NormalizeHeading(f.Hdg)
	}
	d.lastTs = f.Ts
	d.initialized = true
}

// Step integrates one inertial sample. ok is false when the step was dropped
// (non-positive or oversized dt); the clock still advances so the next
// sample integrates from here.
func (d *DeadReckoner) Step(s datastructure.InertialSample) (float64, float64, bool) {
	dt := float64(s.Ts-d.lastTs) / 1000.0
	if dt <= 0 || dt > pkg.IMU_MAX_STEP_SEC {
		d.lastTs = s.Ts
		return d.lat, d.lon, false
	}

	d.heading = util.NormalizeHeading(d.heading + s.Gz*dt*180.0/math.Pi)

	a := math.Sqrt(s.Ax*s.Ax + s.Ay*s.Ay)
	if math.Abs(a) < pkg.ACCEL_NOISE_GATE {
		a = 0
	}
	d.speed = math.Max(0, d.speed+a*dt)

	hRad := util.DegreeToRadians(d.heading)
	dx := d.speed * dt * math.Cos(hRad)
	dy := d.speed * dt * math.Sin(hRad)

	dLat := dy / pkg.EARTH_RADIUS_M * 180.0 / math.Pi
	dLon := dx / (pkg.EARTH_RADIUS_M * math.Cos(util.DegreeToRadians(d.lat))) * 180.0 / math.Pi

	d.lat += dLat
	d.lon += dLon
	d.lastTs = s.Ts
	return d.lat, d.lon, true
}

func (d *DeadReckoner) Position() (float64, float64) {
	return d.lat, d.lon
}

func (d *DeadReckoner) Speed() float64 {
	return d.speed
}

func (d *DeadReckoner) Heading() float64 {
	return d.heading
}

func (d *DeadReckoner) Reset() {
	*d = DeadReckoner{}
}

// blendHeading averages two headings on the unit circle so the wrap at
// 0/360 never produces a spurious mean. w is the weight of the measured
// heading.
func blendHeading(base, measured, w float64) float64 {
	baseRad := util.DegreeToRadians(base)
	measRad := util.DegreeToRadians(measured)
	x := (1-w)*math.Cos(baseRad) + w*math.Cos(measRad)
	y := (1-w)*math.Sin(baseRad) + w*math.Sin(measRad)
	return util.NormalizeHeading(util.RadiansToDegree(math.Atan2(y, x)))
}
