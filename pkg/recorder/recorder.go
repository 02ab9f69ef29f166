package recorder

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/satryanta/geofuse/pkg/datastructure"
	"github.com/satryanta/geofuse/pkg/util"
	"github.com/twpayne/go-polyline"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS trips (
	id         TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS positions (
	trip_id      TEXT NOT NULL,
	ts           INTEGER NOT NULL,
	lat          REAL NOT NULL,
	lon          REAL NOT NULL,
	acc          REAL NOT NULL,
	spd          REAL NOT NULL,
	hdg          REAL NOT NULL,
	final_lat    REAL NOT NULL,
	final_lon    REAL NOT NULL,
	kalman_lat   REAL NOT NULL,
	kalman_lon   REAL NOT NULL,
	hmm_acc      REAL NOT NULL,
	is_good      INTEGER NOT NULL,
	snap_applied INTEGER NOT NULL,
	snap_road_id INTEGER NOT NULL,
	dr           INTEGER NOT NULL,
	priority     TEXT NOT NULL,
	FOREIGN KEY (trip_id) REFERENCES trips(id)
);
CREATE INDEX IF NOT EXISTS idx_positions_trip_ts ON positions(trip_id, ts);
`

// Recorder persists every emitted unified position into sqlite, grouped by
// trip. Recording outputs is not filter state; the engine itself stays
// stateless across restarts.
type Recorder struct {
	db  *sql.DB
	log *zap.Logger
}

func New(dsn string, log *zap.Logger) (*Recorder, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Recorder{db: db, log: log}, nil
}

// StartTrip opens a new trip and returns its id.
func (r *Recorder) StartTrip() (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(`INSERT INTO trips (id, started_at) VALUES (?, ?)`,
		id, time.Now().UnixMilli())
	if err != nil {
		return "", err
	}
	r.log.Info("trip started", zap.String("trip", id))
	return id, nil
}

func (r *Recorder) Record(tripID string, p *datastructure.UnifiedPosition) error {
	_, err := r.db.Exec(`INSERT INTO positions
		(trip_id, ts, lat, lon, acc, spd, hdg, final_lat, final_lon,
		 kalman_lat, kalman_lon, hmm_acc, is_good, snap_applied, snap_road_id, dr, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tripID, p.Ts, p.Lat, p.Lon, p.Acc, p.Spd, p.Hdg,
		p.FinalLat, p.FinalLon, p.KalmanLat, p.KalmanLon, p.HmmAcc,
		boolToInt(p.IsGood), boolToInt(p.SnapApplied), p.SnapRoadID,
		boolToInt(p.IsDeadReckoned), p.Priority)
	return err
}

// Positions returns the recorded positions of a trip inside [fromTs, toTs],
// ordered by timestamp. toTs <= 0 means no upper bound.
func (r *Recorder) Positions(tripID string, fromTs, toTs int64) ([]*datastructure.UnifiedPosition, error) {
	if toTs <= 0 {
		toTs = 1<<63 - 1
	}
	rows, err := r.db.Query(`SELECT ts, lat, lon, acc, spd, hdg, final_lat, final_lon,
		kalman_lat, kalman_lon, hmm_acc, is_good, snap_applied, snap_road_id, dr, priority
		FROM positions WHERE trip_id = ? AND ts >= ? AND ts <= ? ORDER BY ts`,
		tripID, fromTs, toTs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*datastructure.UnifiedPosition
	for rows.Next() {
		var p datastructure.UnifiedPosition
		var isGood, snapApplied, dr int
		if err := rows.Scan(&p.Ts, &p.Lat, &p.Lon, &p.Acc, &p.Spd, &p.Hdg,
			&p.FinalLat, &p.FinalLon, &p.KalmanLat, &p.KalmanLon, &p.HmmAcc,
			&isGood, &snapApplied, &p.SnapRoadID, &dr, &p.Priority); err != nil {
			return nil, err
		}
		p.IsGood = isGood == 1
		p.SnapApplied = snapApplied == 1
		p.IsDeadReckoned = dr == 1
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "no positions for trip %s", tripID)
	}
	return result, nil
}

// TrackPolyline encodes the final positions of a trip as a google encoded
// polyline.
func (r *Recorder) TrackPolyline(tripID string) (string, error) {
	positions, err := r.Positions(tripID, 0, 0)
	if err != nil {
		return "", err
	}
	coords := make([][]float64, 0, len(positions))
	for _, p := range positions {
		coords = append(coords, []float64{p.FinalLat, p.FinalLon})
	}
	return string(polyline.EncodeCoords(coords)), nil
}

func (r *Recorder) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
