package fusion

import (
	"testing"

	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/geo"
	"github.com/satryanta/geofuse/pkg/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, opts Options, roads ...*datastructure.RoadSegment) *Engine {
	t.Helper()
	m := matcher.NewMatcher(zap.NewNop(), opts.SnapConfidenceThreshold, opts.MaxSnapDistance)
	if len(roads) > 0 {
		_, err := m.LoadRoadSegments(roads)
		require.NoError(t, err)
	}
	return NewEngine(zap.NewNop(), opts, m)
}

func drain(e *Engine) []*datastructure.UnifiedPosition {
	var records []*datastructure.UnifiedPosition
	for {
		select {
		case r := <-e.Output():
			records = append(records, r)
		default:
			return records
		}
	}
}

func mainStreet() *datastructure.RoadSegment {
	return datastructure.NewRoadSegment(7,
		[]geo.Coordinate{
			geo.NewCoordinate(37.0000, -122.0000),
			geo.NewCoordinate(37.0000, -122.0010),
		},
		pkg.RESIDENTIAL, 30, false, "Main St", "", "", "", "")
}

func TestEngineDiscardsHighErrorFix(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())

	e.OnFix(datastructure.NewFix(1000, 37.0, -122.0, 50, 0, 0))

	assert.Empty(t, drain(e))
}

func TestEngineSettleThenGood(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())

	for ts := int64(1000); ts <= 3000; ts += 1000 {
		e.OnFix(datastructure.NewFix(ts, 37.0, -122.0, 8, 0, 0))
	}

	records := drain(e)
	require.Len(t, records, 3)
	assert.False(t, records[0].IsGood)
	assert.False(t, records[1].IsGood)
	assert.True(t, records[2].IsGood)
	assert.InDelta(t, 37.0, records[2].FinalLat, 1e-9)
	assert.InDelta(t, -122.0, records[2].FinalLon, 1e-9)
}

func TestEngineDeadbandSuppression(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())

	e.OnFix(datastructure.NewFix(1000, 37.0, -122.0, 8, 0, 0))
	// ~0.15 m away: inside the 1.5 m deadband
	e.OnFix(datastructure.NewFix(2000, 37.000001, -122.000001, 8, 0, 0))

	records := drain(e)
	require.Len(t, records, 2)
	assert.Equal(t, records[0].FinalLat, records[1].FinalLat)
	assert.Equal(t, records[0].FinalLon, records[1].FinalLon)
}

func TestEngineDeadbandReleasesOnRealMovement(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())

	e.OnFix(datastructure.NewFix(1000, 37.0, -122.0, 8, 0, 0))
	// ~111 m north: well past the deadband
	e.OnFix(datastructure.NewFix(2000, 37.001, -122.0, 8, 0, 0))

	records := drain(e)
	require.Len(t, records, 2)
	assert.NotEqual(t, records[0].FinalLat, records[1].FinalLat)
}

func TestEnginePriorityPromoteThenLock(t *testing.T) {
	opts := DefaultOptions()
	opts.HighAccuracy = false
	e := newTestEngine(t, opts)

	e.OnFix(datastructure.NewFix(10000, 37.0, -122.0, 20, 0, 0))
	e.OnFix(datastructure.NewFix(11000, 37.0, -122.0, 10, 0, 0))

	records := drain(e)
	require.Len(t, records, 2)
	assert.True(t, records[0].PrioritySwitched)
	assert.Equal(t, pkg.PRIORITY_HIGH.String(), records[0].Priority)
	// inside the 5 s lock-out: still HIGH
	assert.False(t, records[1].PrioritySwitched)
	assert.Equal(t, pkg.PRIORITY_HIGH.String(), records[1].Priority)
}

func TestEngineSnapAccept(t *testing.T) {
	opts := DefaultOptions()
	opts.EnableSnapToRoads = true
	e := newTestEngine(t, opts, mainStreet())

	e.OnFix(datastructure.NewFix(1000, 37.00005, -122.00005, 5, 0, 0))

	records := drain(e)
	require.Len(t, records, 1)
	r := records[0]
	assert.True(t, r.SnapApplied)
	assert.True(t, r.SnapEnabled)
	assert.Equal(t, int64(7), r.SnapRoadID)
	assert.InDelta(t, 5.56, r.SnapDistance, 0.2)
	assert.InDelta(t, 0.86, r.SnapConfidence, 0.01)
	assert.InDelta(t, 37.0000, r.SnapLat, 1e-9)
	assert.InDelta(t, -122.00005, r.SnapLon, 1e-7)

	// snap invariants
	assert.LessOrEqual(t, r.SnapDistance, opts.MaxSnapDistance)
	assert.GreaterOrEqual(t, r.SnapConfidence, opts.SnapConfidenceThreshold)
}

func TestEngineNearestRoadAlwaysReported(t *testing.T) {
	// snap disabled: nearest road fields still fill in
	e := newTestEngine(t, DefaultOptions(), mainStreet())

	e.OnFix(datastructure.NewFix(1000, 37.00005, -122.00005, 5, 0, 0))

	records := drain(e)
	require.Len(t, records, 1)
	r := records[0]
	assert.False(t, r.SnapApplied)
	assert.Equal(t, int64(7), r.NearestRoadID)
	assert.Equal(t, "Main St", r.NearestRoadName)
	assert.InDelta(t, 5.56, r.NearestRoadDistance, 0.2)
	assert.Equal(t, "Main St", r.NearestRoadFullAddress)
}

func TestEngineNoRoadsLoaded(t *testing.T) {
	opts := DefaultOptions()
	opts.EnableSnapToRoads = true
	e := newTestEngine(t, opts)

	e.OnFix(datastructure.NewFix(1000, 37.0, -122.0, 5, 0, 0))

	records := drain(e)
	require.Len(t, records, 1)
	assert.False(t, records[0].SnapApplied)
	assert.Equal(t, int64(pkg.NO_ROAD_ID), records[0].NearestRoadID)
}

func TestEngineDeadReckoningBetweenFixes(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())

	// fix heading 0: displacement goes into longitude in the engine's
	// east-referenced convention
	e.OnFix(datastructure.NewFix(1000, 37.0, -122.0, 5, 10, 0))
	fixRecords := drain(e)
	require.Len(t, fixRecords, 1)

	prevLat, prevLon := fixRecords[0].FinalLat, fixRecords[0].FinalLon
	for ts := int64(1100); ts <= 2000; ts += 100 {
		e.OnInertial(datastructure.NewInertialSample(ts, 0, 0, 9.81, 0, 0, 0))
	}

	records := drain(e)
	require.Len(t, records, 10)
	for _, r := range records {
		assert.True(t, r.IsDeadReckoned)
		assert.False(t, r.SnapApplied)
		assert.Zero(t, r.SnapConfidence)
		assert.Greater(t, r.FinalLon, prevLon)

		step := geo.HaversineDistance(prevLat, prevLon, r.FinalLat, r.FinalLon)
		assert.InDelta(t, 1.0, step, 0.05)

		assert.GreaterOrEqual(t, r.Hdg, 0.0)
		assert.Less(t, r.Hdg, 360.0)
		prevLat, prevLon = r.FinalLat, r.FinalLon
	}
}

func TestEngineInertialBeforeFirstFixIgnored(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())

	e.OnInertial(datastructure.NewInertialSample(1000, 0, 0, 9.81, 0, 0, 0))
	assert.Empty(t, drain(e))
}

func TestEngineHoldsLastGoodDuringDegradation(t *testing.T) {
	opts := DefaultOptions()
	e := newTestEngine(t, opts)

	for ts := int64(1000); ts <= 3000; ts += 1000 {
		e.OnFix(datastructure.NewFix(ts, 37.0, -122.0, 8, 0, 0))
	}
	// accuracy degrades well away from the settled position
	e.OnFix(datastructure.NewFix(4000, 37.001, -122.001, 25, 0, 0))

	records := drain(e)
	require.Len(t, records, 4)
	degraded := records[3]
	assert.True(t, degraded.UsingLastGood)
	assert.False(t, degraded.IsGood)
	assert.InDelta(t, 37.0, degraded.FinalLat, 1e-6)
	assert.InDelta(t, -122.0, degraded.FinalLon, 1e-6)
}

func TestEngineMonotonicTimestamps(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())

	e.OnFix(datastructure.NewFix(5000, 37.0, -122.0, 8, 0, 0))
	// clock jumps backwards; output timestamp must not
	e.OnFix(datastructure.NewFix(4000, 37.0, -122.0, 8, 0, 0))

	records := drain(e)
	require.Len(t, records, 2)
	assert.GreaterOrEqual(t, records[1].Ts, records[0].Ts)
}

func TestEngineHMMAccuracy(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	assert.Zero(t, e.HMMAccuracy())

	e.OnFix(datastructure.NewFix(1000, 37.0, -122.0, 8, 0, 0))
	assert.Zero(t, e.HMMAccuracy())

	e.OnFix(datastructure.NewFix(2000, 37.0005, -122.0, 8, 0, 0))
	assert.Greater(t, e.HMMAccuracy(), 0.0)
}

func TestEngineCloseClearsState(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	e.OnFix(datastructure.NewFix(1000, 37.0, -122.0, 8, 0, 0))
	e.Close()

	// closed engine ignores further input; channel is closed and drained
	e.OnFix(datastructure.NewFix(2000, 37.0, -122.0, 8, 0, 0))

	count := 0
	for range e.Output() {
		count++
	}
	assert.Equal(t, 1, count)
	assert.Zero(t, e.HMMAccuracy())
}
