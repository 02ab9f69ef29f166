package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"go.uber.org/zap"
)

// Hub upgrades device connections and runs one session per connection: a
// reader goroutine feeding fix/inertial frames into the engine queue and a
// writer goroutine streaming unified positions back.
type Hub struct {
	log                *zap.Logger
	positioningService PositioningService

	mu     sync.Mutex
	nextID uint
}

func NewHub(log *zap.Logger, positioningService PositioningService) *Hub {
	return &Hub{
		log:                log,
		positioningService: positioningService,
	}
}

type sensorFrame struct {
	Type string          `json:"type"` // "fix" | "imu"
	Data json.RawMessage `json:"data"`
}

type session struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id  uint
	hub *Hub
}

// Upgrade handles GET /ws.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.mu.Unlock()

	sess := &session{conn: conn, id: id, hub: h}
	h.log.Info("device connected", zap.Uint("session", id))

	go sess.writeLoop()
	go sess.readLoop()
}

func (s *session) readFrame() (*sensorFrame, error) {
	hdr, r, err := wsutil.NextReader(s.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if hdr.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(s.conn, ws.StateServerSide)(hdr, r)
	}

	frame := &sensorFrame{}
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func (s *session) readLoop() {
	defer s.conn.Close()
	for {
		frame, err := s.readFrame()
		if err != nil {
			if err != io.EOF {
				s.hub.log.Debug("session read ended", zap.Uint("session", s.id), zap.Error(err))
			}
			return
		}
		if frame == nil {
			continue
		}

		switch frame.Type {
		case "fix":
			var req fixRequest
			if err := json.Unmarshal(frame.Data, &req); err != nil {
				s.writeError("bad fix frame: " + err.Error())
				continue
			}
			s.hub.positioningService.PushFix(req.toFix())
		case "imu":
			var req inertialRequest
			if err := json.Unmarshal(frame.Data, &req); err != nil {
				s.writeError("bad imu frame: " + err.Error())
				continue
			}
			s.hub.positioningService.PushInertial(req.toSample())
		default:
			s.writeError("unknown frame type " + frame.Type)
		}
	}
}

func (s *session) writeLoop() {
	subID, records := s.hub.positioningService.Subscribe()
	defer s.hub.positioningService.Unsubscribe(subID)

	for record := range records {
		if err := s.write(envelope{"data": record}); err != nil {
			return
		}
	}
}

func (s *session) write(v interface{}) error {
	s.io.Lock()
	defer s.io.Unlock()

	w := wsutil.NewWriter(s.conn, ws.StateServerSide, ws.OpText)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return err
	}
	return w.Flush()
}

func (s *session) writeError(msg string) {
	_ = s.write(envelope{"error": map[string]string{
		"code":    http.StatusText(http.StatusBadRequest),
		"message": msg,
	}})
}
