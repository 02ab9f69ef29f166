package datastructure

import "math"

// Fix is a single satellite positioning measurement as delivered by the
// platform location subsystem. Accuracy is the 68% horizontal error radius
// in meter.
type Fix struct {
	Ts      int64   `json:"ts"` // unix millis
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Acc     float64 `json:"acc"` // meter
	Spd     float64 `json:"spd"` // m/s
	Hdg     float64 `json:"hdg"` // degree, 0-360
}

func NewFix(ts int64, lat, lon, acc, spd, hdg float64) Fix {
	return Fix{
		Ts:  ts,
		Lat: lat,
		Lon: lon,
		Acc: acc,
		Spd: spd,
		Hdg: hdg,
	}
}

// Valid reports whether the fix is usable at all: finite coordinates and a
// finite positive accuracy.
func (f Fix) Valid() bool {
	if math.IsNaN(f.Lat) || math.IsInf(f.Lat, 0) ||
		math.IsNaN(f.Lon) || math.IsInf(f.Lon, 0) {
		return false
	}
	if math.IsNaN(f.Acc) || math.IsInf(f.Acc, 0) || f.Acc <= 0 {
		return false
	}
	return true
}

// InertialSample is one accelerometer+gyroscope sample in the device frame.
// Accelerations in m/s^2, angular rates in rad/s.
//
// Depending on the platform the accelerometer stream may be raw (gravity
// included) or a linear-acceleration stream (gravity removed). The engine
// does not distinguish between the two; the horizontal-magnitude noise gate
// absorbs most of the difference for a phone lying flat.
type InertialSample struct {
	Ts int64   `json:"ts"` // unix millis
	Ax float64 `json:"ax"`
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`
	Gx float64 `json:"gx"`
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`
}

func NewInertialSample(ts int64, ax, ay, az, gx, gy, gz float64) InertialSample {
	return InertialSample{
		Ts: ts,
		Ax: ax,
		Ay: ay,
		Az: az,
		Gx: gx,
		Gy: gy,
		Gz: gz,
	}
}
