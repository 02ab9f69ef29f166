package geo

import (
	"math"
	"testing"
)

const eps = 1e-6

func TestHaversineDistanceProperties(t *testing.T) {
	a := NewCoordinate(37.0, -122.0)
	b := NewCoordinate(37.01, -122.02)
	c := NewCoordinate(36.99, -121.98)

	if d := HaversineDistance(a.Lat, a.Lon, a.Lat, a.Lon); d != 0 {
		t.Errorf("d(A,A) = %v, want 0", d)
	}

	dab := HaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon)
	dba := HaversineDistance(b.Lat, b.Lon, a.Lat, a.Lon)
	if math.Abs(dab-dba) > eps {
		t.Errorf("d(A,B)=%v != d(B,A)=%v", dab, dba)
	}

	dac := HaversineDistance(a.Lat, a.Lon, c.Lat, c.Lon)
	dbc := HaversineDistance(b.Lat, b.Lon, c.Lat, c.Lon)
	if dac > dab+dbc+eps {
		t.Errorf("triangle inequality violated: %v > %v + %v", dac, dab, dbc)
	}
}

func TestHaversineDistanceKnown(t *testing.T) {
	// one degree of latitude on the WGS-84 sphere is about 111.3 km
	d := HaversineDistance(37.0, -122.0, 38.0, -122.0)
	if math.Abs(d-111319.49) > 200 {
		t.Errorf("1 degree latitude = %v m, want ~111319", d)
	}
}

func TestBearingTo(t *testing.T) {
	testCases := []struct {
		name string
		lat2 float64
		lon2 float64
		want float64
	}{
		{name: "due north", lat2: 38.0, lon2: -122.0, want: 0},
		{name: "due east", lat2: 37.0, lon2: -121.0, want: 90},
		{name: "due south", lat2: 36.0, lon2: -122.0, want: 180},
		{name: "due west", lat2: 37.0, lon2: -123.0, want: 270},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := BearingTo(37.0, -122.0, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > 1.0 {
				t.Errorf("BearingTo = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDestinationPointRoundTrip(t *testing.T) {
	lat, lon := GetDestinationPoint(37.0, -122.0, 90, 1000)
	back := HaversineDistance(37.0, -122.0, lat, lon)
	if math.Abs(back-1000) > 1.0 {
		t.Errorf("destination point distance = %v, want 1000", back)
	}
}

func TestProjectPointToSegment(t *testing.T) {
	a := NewCoordinate(37.0000, -122.0000)
	b := NewCoordinate(37.0000, -122.0010)

	q := ProjectPointToSegment(a, b, NewCoordinate(37.00005, -122.00005))
	if math.Abs(q.Lat-37.0) > eps {
		t.Errorf("projected lat = %v, want 37.0", q.Lat)
	}
	if math.Abs(q.Lon-(-122.00005)) > eps {
		t.Errorf("projected lon = %v, want -122.00005", q.Lon)
	}

	// beyond the segment end: t clamps to 0
	q = ProjectPointToSegment(a, b, NewCoordinate(37.0001, -121.9990))
	if q != a {
		t.Errorf("clamped projection = %+v, want %+v", q, a)
	}

	// degenerate segment projects onto a
	q = ProjectPointToSegment(a, a, NewCoordinate(37.5, -122.5))
	if q != a {
		t.Errorf("degenerate projection = %+v, want %+v", q, a)
	}
}

func TestNormalizeLongitude(t *testing.T) {
	if got := NormalizeLongitude(190); math.Abs(got-(-170)) > eps {
		t.Errorf("NormalizeLongitude(190) = %v, want -170", got)
	}
	if got := NormalizeLongitude(-190); math.Abs(got-170) > eps {
		t.Errorf("NormalizeLongitude(-190) = %v, want 170", got)
	}
}
