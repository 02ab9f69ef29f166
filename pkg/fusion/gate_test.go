package fusion

import (
	"math"
	"testing"

	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/stretchr/testify/assert"
)

func fixAt(ts int64, acc float64) datastructure.Fix {
	return datastructure.NewFix(ts, 37.0, -122.0, acc, 0, 0)
}

func TestGateDropsBadAccuracy(t *testing.T) {
	g := NewFixGate(DefaultOptions())

	decision, _ := g.Evaluate(fixAt(1000, 50))
	assert.Equal(t, GateDrop, decision)

	decision, _ = g.Evaluate(fixAt(2000, math.NaN()))
	assert.Equal(t, GateDrop, decision)

	decision, _ = g.Evaluate(fixAt(3000, -1))
	assert.Equal(t, GateDrop, decision)
}

func TestGateSettleCount(t *testing.T) {
	g := NewFixGate(DefaultOptions())

	_, isGood := g.Evaluate(fixAt(1000, 8))
	assert.False(t, isGood)
	_, isGood = g.Evaluate(fixAt(2000, 8))
	assert.False(t, isGood)
	_, isGood = g.Evaluate(fixAt(3000, 8))
	assert.True(t, isGood)

	// a sloppy fix resets the counter
	_, isGood = g.Evaluate(fixAt(4000, 20))
	assert.False(t, isGood)
	_, isGood = g.Evaluate(fixAt(5000, 8))
	assert.False(t, isGood)
}

func TestGateHoldLastGood(t *testing.T) {
	g := NewFixGate(DefaultOptions())

	for ts := int64(1000); ts <= 3000; ts += 1000 {
		g.Evaluate(fixAt(ts, 8))
	}
	g.UpdateLastGood(37.0, -122.0, 3000, 8)

	// not-good fix within the hold window: hold
	decision, isGood := g.Evaluate(fixAt(4000, 25))
	assert.Equal(t, GateHoldLastGood, decision)
	assert.False(t, isGood)

	lat, lon, ok := g.LastGood()
	assert.True(t, ok)
	assert.Equal(t, 37.0, lat)
	assert.Equal(t, -122.0, lon)

	// past the 10 s hold timeout: plain accept again
	decision, _ = g.Evaluate(fixAt(14000, 25))
	assert.Equal(t, GateAccept, decision)
}

func TestPriorityHysteresis(t *testing.T) {
	opts := DefaultOptions()
	opts.HighAccuracy = false
	pc := NewPriorityController(opts)
	assert.Equal(t, pkg.PRIORITY_BALANCED, pc.Current())

	// sloppy accuracy promotes to HIGH
	switched := pc.OnFix(10000, 20)
	assert.True(t, switched)
	assert.Equal(t, pkg.PRIORITY_HIGH, pc.Current())

	// a good fix one second later is inside the 5 s lock-out: no demote
	switched = pc.OnFix(11000, 10)
	assert.False(t, switched)
	assert.Equal(t, pkg.PRIORITY_HIGH, pc.Current())

	// after the lock-out the demote goes through
	switched = pc.OnFix(15000, 10)
	assert.True(t, switched)
	assert.Equal(t, pkg.PRIORITY_BALANCED, pc.Current())
}

func TestPriorityDeadZone(t *testing.T) {
	opts := DefaultOptions()
	opts.HighAccuracy = true
	pc := NewPriorityController(opts)

	// 13 m sits between the demote (12) and promote (15) thresholds:
	// nothing moves, ever
	for ts := int64(10000); ts < 60000; ts += 1000 {
		assert.False(t, pc.OnFix(ts, 13))
	}
	assert.Equal(t, pkg.PRIORITY_HIGH, pc.Current())
}
