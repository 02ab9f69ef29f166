package recorder

import (
	"path/filepath"
	"testing"

	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	rec, err := New(filepath.Join(t.TempDir(), "trips.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })
	return rec
}

func position(ts int64, lat, lon float64) *datastructure.UnifiedPosition {
	return &datastructure.UnifiedPosition{
		Ts: ts, Lat: lat, Lon: lon, Acc: 5, Spd: 1, Hdg: 90,
		FinalLat: lat, FinalLon: lon,
		KalmanLat: lat, KalmanLon: lon,
		IsGood: true, Priority: "HIGH_ACCURACY",
		SnapRoadID: -1,
	}
}

func TestRecorderRoundTrip(t *testing.T) {
	rec := newTestRecorder(t)

	trip, err := rec.StartTrip()
	require.NoError(t, err)
	require.NotEmpty(t, trip)

	require.NoError(t, rec.Record(trip, position(1000, 37.0, -122.0)))
	require.NoError(t, rec.Record(trip, position(2000, 37.0001, -122.0001)))
	require.NoError(t, rec.Record(trip, position(3000, 37.0002, -122.0002)))

	positions, err := rec.Positions(trip, 0, 0)
	require.NoError(t, err)
	require.Len(t, positions, 3)
	assert.Equal(t, int64(1000), positions[0].Ts)
	assert.InDelta(t, 37.0002, positions[2].FinalLat, 1e-9)
	assert.True(t, positions[0].IsGood)
	assert.Equal(t, "HIGH_ACCURACY", positions[0].Priority)

	// time-range filter
	positions, err = rec.Positions(trip, 2000, 2000)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, int64(2000), positions[0].Ts)
}

func TestRecorderUnknownTrip(t *testing.T) {
	rec := newTestRecorder(t)
	_, err := rec.Positions("no-such-trip", 0, 0)
	assert.Error(t, err)
}

func TestRecorderTrackPolyline(t *testing.T) {
	rec := newTestRecorder(t)

	trip, err := rec.StartTrip()
	require.NoError(t, err)
	require.NoError(t, rec.Record(trip, position(1000, 38.5, -120.2)))
	require.NoError(t, rec.Record(trip, position(2000, 40.7, -120.95)))
	require.NoError(t, rec.Record(trip, position(3000, 43.252, -126.453)))

	encoded, err := rec.TrackPolyline(trip)
	require.NoError(t, err)
	// the canonical google polyline example
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", encoded)
}
