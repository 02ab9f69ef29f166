package fusion

import (
	"math"

	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/datastructure"
)

type GateDecision uint8

const (
	GateAccept GateDecision = iota
	GateDrop
	GateHoldLastGood
)

type lastGood struct {
	lat   float64
	lon   float64
	ts    int64
	accM  float64
	valid bool
}

// FixGate accepts, drops, or holds incoming fixes. A fix is dropped on
// invalid accuracy; "good" means the settle count of consecutive
// target-accuracy fixes has been reached. While not good, the last good
// position is held for up to the hold timeout.
type FixGate struct {
	targetAccuracyM       float64
	discardAccuracyAboveM float64
	settleSamples         int
	goodHoldTimeoutMs     int64

	goodFixCount int
	lg           lastGood
}

func NewFixGate(opts Options) *FixGate {
	return &FixGate{
		targetAccuracyM:       opts.TargetAccuracyM,
		discardAccuracyAboveM: opts.DiscardAccuracyAboveM,
		settleSamples:         opts.SettleSamples,
		goodHoldTimeoutMs:     opts.GoodHoldTimeoutMs,
	}
}

// Evaluate runs the gating rules in order and returns the decision plus the
// settled-good flag. A HoldLastGood decision means downstream emission uses
// the held coordinates while the filters still advance on the fix.
func (g *FixGate) Evaluate(f datastructure.Fix) (GateDecision, bool) {
	if math.IsNaN(f.Acc) || f.Acc <= 0 || f.Acc > g.discardAccuracyAboveM {
		return GateDrop, false
	}

	if f.Acc <= g.targetAccuracyM {
		g.goodFixCount++
	} else {
		g.goodFixCount = 0
	}
	isGood := g.goodFixCount >= g.settleSamples

	if !isGood && g.lg.valid && f.Ts-g.lg.ts <= g.goodHoldTimeoutMs {
		return GateHoldLastGood, false
	}
	return GateAccept, isGood
}

// UpdateLastGood records the good coordinates for later holdover. Called by
// the emission pipeline with the snapped position when a snap was accepted,
// the filtered position otherwise.
func (g *FixGate) UpdateLastGood(lat, lon float64, ts int64, accM float64) {
	g.lg = lastGood{lat: lat, lon: lon, ts: ts, accM: accM, valid: true}
}

func (g *FixGate) LastGood() (float64, float64, bool) {
	return g.lg.lat, g.lg.lon, g.lg.valid
}

func (g *FixGate) Reset() {
	g.goodFixCount = 0
	g.lg = lastGood{}
}

// PriorityController promotes and demotes the requested positioning accuracy
// class with two-threshold hysteresis. The gap between the promote and
// demote thresholds plus the minimum switch interval prevents oscillation.
type PriorityController struct {
	current              pkg.Priority
	lastSwitchMs         int64
	promoteHighAboveM    float64
	demoteBalancedBelowM float64
	minSwitchIntervalMs  int64
}

func NewPriorityController(opts Options) *PriorityController {
	current := pkg.PRIORITY_BALANCED
	if opts.HighAccuracy {
		current = pkg.PRIORITY_HIGH
	}
	return &PriorityController{
		current:              current,
		promoteHighAboveM:    opts.PromoteHighAboveM,
		demoteBalancedBelowM: opts.DemoteBalancedBelowM,
		minSwitchIntervalMs:  opts.MinSwitchIntervalMs,
	}
}

// OnFix re-evaluates the priority after a fix. Returns true when the class
// switched; the caller surfaces that as a rebuild-positioning-request
// effect.
func (pc *PriorityController) OnFix(ts int64, accM float64) bool {
	if ts-pc.lastSwitchMs < pc.minSwitchIntervalMs {
		return false
	}

	switch {
	case accM > pc.promoteHighAboveM && pc.current != pkg.PRIORITY_HIGH:
		pc.current = pkg.PRIORITY_HIGH
		pc.lastSwitchMs = ts
		return true
	case accM <= pc.demoteBalancedBelowM && pc.current != pkg.PRIORITY_BALANCED:
		pc.current = pkg.PRIORITY_BALANCED
		pc.lastSwitchMs = ts
		return true
	}
	return false
}

func (pc *PriorityController) Current() pkg.Priority {
	return pc.current
}
