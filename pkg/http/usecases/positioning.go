package usecases

import (
	"sync"

	"github.com/satryanta/geofuse/pkg"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/fusion"
	"github.com/satryanta/geofuse/pkg/matcher"
	"github.com/satryanta/geofuse/pkg/recorder"
	"github.com/satryanta/geofuse/pkg/util"
	"go.uber.org/zap"
)

type fixEvent struct {
	fix datastructure.Fix
}

type inertialEvent struct {
	sample datastructure.InertialSample
}

type initializeEvent struct {
	opts  fusion.Options
	reply chan error
}

type loadRoadsEvent struct {
	roads []*datastructure.RoadSegment
	reply chan loadRoadsResult
}

type loadRoadsResult struct {
	loaded int
	err    error
}

type clearRoadsEvent struct {
	reply chan struct{}
}

type hmmAccuracyEvent struct {
	reply chan float64
}

type priorityEvent struct {
	reply chan pkg.Priority
}

// PositioningService owns the fusion engine and serialises every touch of
// it — sensor events, road mutations, config rebuilds, state queries — onto
// one event loop, which is the engine's single-thread contract. Emitted
// records fan out to websocket subscribers and the trip recorder.
type PositioningService struct {
	log     *zap.Logger
	matcher *matcher.Matcher
	rec     *recorder.Recorder
	engine  *fusion.Engine
	tripID  string

	events chan interface{}
	done   chan struct{}

	subMu   sync.Mutex
	subs    map[int]chan *datastructure.UnifiedPosition
	nextSub int
}

func NewPositioningService(log *zap.Logger, opts fusion.Options, m *matcher.Matcher,
	rec *recorder.Recorder) (*PositioningService, error) {
	s := &PositioningService{
		log:     log,
		matcher: m,
		rec:     rec,
		engine:  fusion.NewEngine(log, opts, m),
		events:  make(chan interface{}, 1024),
		done:    make(chan struct{}),
		subs:    make(map[int]chan *datastructure.UnifiedPosition),
	}

	if rec != nil {
		tripID, err := rec.StartTrip()
		if err != nil {
			return nil, err
		}
		s.tripID = tripID
	}

	go s.pump(s.engine)
	go s.loop()
	return s, nil
}

// loop is the engine's dispatch queue.
func (s *PositioningService) loop() {
	for {
		select {
		case <-s.done:
			s.engine.Close()
			return
		case ev := <-s.events:
			switch e := ev.(type) {
			case fixEvent:
				s.engine.OnFix(e.fix)
			case inertialEvent:
				s.engine.OnInertial(e.sample)
			case initializeEvent:
				old := s.engine
				s.engine = fusion.NewEngine(s.log, e.opts, s.matcher)
				go s.pump(s.engine)
				old.Close()
				e.reply <- nil
			case loadRoadsEvent:
				loaded, err := s.matcher.LoadRoadSegments(e.roads)
				e.reply <- loadRoadsResult{loaded: loaded, err: err}
			case clearRoadsEvent:
				s.matcher.ClearAllRoads()
				e.reply <- struct{}{}
			case hmmAccuracyEvent:
				e.reply <- s.engine.HMMAccuracy()
			case priorityEvent:
				e.reply <- s.engine.Priority()
			}
		}
	}
}

// pump drains one engine's output into the recorder and all subscribers.
// Exits when the engine is closed.
func (s *PositioningService) pump(engine *fusion.Engine) {
	for record := range engine.Output() {
		if s.rec != nil {
			if err := s.rec.Record(s.tripID, record); err != nil {
				s.log.Warn("failed to persist position", zap.Error(err))
			}
		}

		s.subMu.Lock()
		for _, sub := range s.subs {
			select {
			case sub <- record:
			default:
			}
		}
		s.subMu.Unlock()
	}
}

func (s *PositioningService) PushFix(f datastructure.Fix) {
	select {
	case s.events <- fixEvent{fix: f}:
	default:
		s.log.Warn("event queue full, dropping fix")
	}
}

func (s *PositioningService) PushInertial(sample datastructure.InertialSample) {
	select {
	case s.events <- inertialEvent{sample: sample}:
	default:
		s.log.Warn("event queue full, dropping inertial sample")
	}
}

// Initialize rebuilds the engine with new options. Filter state starts
// fresh; loaded roads are kept.
func (s *PositioningService) Initialize(opts fusion.Options) error {
	reply := make(chan error, 1)
	s.events <- initializeEvent{opts: opts, reply: reply}
	return <-reply
}

func (s *PositioningService) LoadRoadData(roads []*datastructure.RoadSegment) (int, error) {
	reply := make(chan loadRoadsResult, 1)
	s.events <- loadRoadsEvent{roads: roads, reply: reply}
	res := <-reply
	return res.loaded, res.err
}

func (s *PositioningService) ClearRoadData() {
	reply := make(chan struct{}, 1)
	s.events <- clearRoadsEvent{reply: reply}
	<-reply
}

func (s *PositioningService) HMMAccuracy() float64 {
	reply := make(chan float64, 1)
	s.events <- hmmAccuracyEvent{reply: reply}
	return <-reply
}

// RequestPermissions is a no-op on the server: sensor permission dialogs are
// a platform concern of the mobile input adapter.
func (s *PositioningService) RequestPermissions() map[string]bool {
	return map[string]bool{
		"location": true,
		"motion":   true,
	}
}

func (s *PositioningService) RoadsInBoundingBox(minLat, minLon, maxLat, maxLon float64) []*datastructure.RoadSegment {
	return s.matcher.RoadsInBoundingBox(minLat, minLon, maxLat, maxLon)
}

func (s *PositioningService) TrackPolyline(tripID string) (string, error) {
	if s.rec == nil {
		return "", util.WrapErrorf(nil, util.ErrNotFound, "trip recording disabled")
	}
	return s.rec.TrackPolyline(tripID)
}

func (s *PositioningService) TripID() string {
	return s.tripID
}

func (s *PositioningService) Priority() pkg.Priority {
	reply := make(chan pkg.Priority, 1)
	s.events <- priorityEvent{reply: reply}
	return <-reply
}

// Subscribe registers a consumer of the unified position stream. The
// returned id releases the subscription via Unsubscribe.
func (s *PositioningService) Subscribe() (int, <-chan *datastructure.UnifiedPosition) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan *datastructure.UnifiedPosition, 64)
	s.subs[id] = ch
	return id, ch
}

func (s *PositioningService) Unsubscribe(id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// Stop shuts the event loop down; the loop closes the engine on its way
// out, keeping the single-thread contract.
func (s *PositioningService) Stop() {
	close(s.done)
}
