package fusion

import (
	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/geo"
	"github.com/satryanta/geofuse/pkg/matcher"
	"github.com/satryanta/geofuse/pkg/util"
	"go.uber.org/zap"
)

const outputBuffer = 256

// Engine fuses the fix stream and the inertial stream into unified position
// records. It is single-threaded cooperative: OnFix and OnInertial must be
// called from one goroutine (the transport layer serialises sensor events
// onto it); there are no locks in the core.
type Engine struct {
	log  *zap.Logger
	opts Options

	matcher  *matcher.Matcher
	gate     *FixGate
	priority *PriorityController
	smoother *Smoother
	kalman   *Kalman
	dr       *DeadReckoner

	out     chan *datastructure.UnifiedPosition
	dropped int64

	lastEmitLat   float64
	lastEmitLon   float64
	lastEmitValid bool

	lastOutputTs int64
	fixSeen      bool
	closed       bool

	onPriorityChange func(pkg.Priority)
}

func NewEngine(log *zap.Logger, opts Options, m *matcher.Matcher) *Engine {
	m.SetSnapThresholds(opts.SnapConfidenceThreshold, opts.MaxSnapDistance)
	return &Engine{
		log:      log,
		opts:     opts,
		matcher:  m,
		gate:     NewFixGate(opts),
		priority: NewPriorityController(opts),
		smoother: NewSmoother(),
		kalman:   NewKalman(),
		dr:       NewDeadReckoner(),
		out:      make(chan *datastructure.UnifiedPosition, outputBuffer),
	}
}

// Output is the single exit channel of the engine. One record per input
// event that survives gating.
func (e *Engine) Output() <-chan *datastructure.UnifiedPosition {
	return e.out
}

// SetPriorityChangeHandler registers the rebuild-positioning-request effect:
// called whenever the priority controller switches class, so the input
// adapter can re-issue its platform location request.
func (e *Engine) SetPriorityChangeHandler(fn func(pkg.Priority)) {
	e.onPriorityChange = fn
}

func (e *Engine) Options() Options {
	return e.opts
}

func (e *Engine) Priority() pkg.Priority {
	return e.priority.Current()
}

// HMMAccuracy is the smoother's current uncertainty estimate in meter.
func (e *Engine) HMMAccuracy() float64 {
	return e.smoother.AccuracyM()
}

// OnFix runs the fix pipeline: gate, snap, smooth, kalman, base selection,
// deadband, emit. Anomalies degrade the record instead of raising.
func (e *Engine) OnFix(f datastructure.Fix) {
	if e.closed {
		return
	}
	if !f.Valid() {
		return
	}

	decision, isGood := e.gate.Evaluate(f)
	if decision == GateDrop {
		if pkg.DEBUG {
			e.log.Debug("fix dropped by gate", zap.Float64("acc", f.Acc))
		}
		return
	}

	// nearest road always; snap only when enabled
	nearest := e.matcher.FindNearestRoad(f.Lat, f.Lon)
	var snap *datastructure.SnapResult
	if e.opts.EnableSnapToRoads {
		snap = e.matcher.SnapToRoad(f.Lat, f.Lon)
	}

	e.smoother.Push(f)
	hmmLat, hmmLon, _ := e.smoother.Mean()
	hmmAcc := e.smoother.AccuracyM()

	var kLat, kLon float64
	if !e.kalman.Initialized() {
		e.kalman.Init(f.Ts, f.Lat, f.Lon, f.Acc)
		kLat, kLon = f.Lat, f.Lon
	} else {
		e.kalman.Predict(f.Ts)
		kLat, kLon = e.kalman.Update(f.Lat, f.Lon, f.Acc)
	}

	// good coordinates feed the holdover store; an accepted snap wins over
	// the filtered position
	if isGood {
		if snap != nil {
			e.gate.UpdateLastGood(snap.Snapped().GetLat(), snap.Snapped().GetLon(), f.Ts, f.Acc)
		} else {
			e.gate.UpdateLastGood(kLat, kLon, f.Ts, f.Acc)
		}
	}

	baseLat, baseLon := kLat, kLon
	usingLastGood := false
	if decision == GateHoldLastGood {
		if lgLat, lgLon, ok := e.gate.LastGood(); ok {
			baseLat, baseLon = lgLat, lgLon
			usingLastGood = true
		}
	}

	// deadband: sub-threshold movement re-emits the previous final position
	finalLat, finalLon := baseLat, baseLon
	if e.lastEmitValid &&
		geo.HaversineDistance(e.lastEmitLat, e.lastEmitLon, baseLat, baseLon) < e.opts.DeadbandMeters {
		finalLat, finalLon = e.lastEmitLat, e.lastEmitLon
	} else {
		e.lastEmitLat, e.lastEmitLon = baseLat, baseLon
		e.lastEmitValid = true
	}

	switched := e.priority.OnFix(f.Ts, f.Acc)
	if switched {
		e.log.Info("positioning priority switched",
			zap.String("priority", e.priority.Current().String()))
		if e.onPriorityChange != nil {
			e.onPriorityChange(e.priority.Current())
		}
	}

	e.dr.SeedFromFix(finalLat, finalLon, f)
	e.fixSeen = true

	record := &datastructure.UnifiedPosition{
		Ts:  f.Ts,
		Lat: f.Lat,
		Lon: f.Lon,
		Acc: f.Acc,
		Spd: f.Spd,
		Hdg: util.NormalizeHeading(f.Hdg),

		IsGood:        isGood,
		UsingLastGood: usingLastGood,
		Priority:      e.priority.Current().String(),

		HmmLat: hmmLat,
		HmmLon: hmmLon,
		HmmAcc: hmmAcc,

		KalmanLat: kLat,
		KalmanLon: kLon,

		FinalLat: finalLat,
		FinalLon: finalLon,

		SnapEnabled: e.opts.EnableSnapToRoads,
		SnapRoadID:  pkg.NO_ROAD_ID,

		NearestRoadID: pkg.NO_ROAD_ID,

		PrioritySwitched: switched,
	}

	if snap != nil {
		record.SnapLat = snap.Snapped().GetLat()
		record.SnapLon = snap.Snapped().GetLon()
		record.SnapConfidence = snap.Confidence()
		record.SnapDistance = snap.Distance()
		record.SnapRoadID = snap.RoadID()
		record.SnapRoadType = snap.RoadType().String()
		record.SnapApplied = true
	}

	if nearest != nil {
		record.NearestRoadID = nearest.RoadID()
		record.NearestRoadName = nearest.Name()
		record.NearestRoadType = nearest.RoadType().String()
		record.NearestRoadDistance = nearest.Distance()
		record.NearestRoadFullAddress = nearest.FullAddress()
	}

	e.emit(record)
}

// OnInertial runs the dead-reckoning pipeline. Before the first fix there is
// nothing to propagate; dropped integration steps produce no record.
func (e *Engine) OnInertial(s datastructure.InertialSample) {
	if e.closed || !e.fixSeen {
		return
	}

	lat, lon, ok := e.dr.Step(s)
	if !ok {
		return
	}

	record := &datastructure.UnifiedPosition{
		Ts:  s.Ts,
		Lat: lat,
		Lon: lon,
		Spd: e.dr.Speed(),
		Hdg: e.dr.Heading(),

		Priority: e.priority.Current().String(),

		FinalLat: lat,
		FinalLon: lon,

		SnapEnabled: e.opts.EnableSnapToRoads,
		SnapRoadID:  pkg.NO_ROAD_ID,

		NearestRoadID: pkg.NO_ROAD_ID,

		IsDeadReckoned: true,
	}

	e.emit(record)
}

func (e *Engine) emit(record *datastructure.UnifiedPosition) {
	// output timestamps never go backwards even if sensor clocks do
	if record.Ts < e.lastOutputTs {
		record.Ts = e.lastOutputTs
	}
	e.lastOutputTs = record.Ts

	select {
	case e.out <- record:
	default:
		e.dropped++
		if e.dropped%100 == 1 {
			e.log.Warn("output channel full, dropping records", zap.Int64("dropped", e.dropped))
		}
	}
}

// Close disposes the engine: filter state, holdover, deadband and
// dead-reckoning state are cleared and the output channel closed. Road data
// stays loaded until explicitly cleared on the matcher.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.smoother.Reset()
	e.gate.Reset()
	e.kalman.Reset()
	e.dr.Reset()
	e.lastEmitValid = false
	e.fixSeen = false
	close(e.out)
}
