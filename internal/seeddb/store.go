package seeddb

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/trackseed/internal/seeding"
	"github.com/banshee-data/trackseed/internal/timeutil"
	"github.com/banshee-data/trackseed/internal/trajectory"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrUnknownRun is returned for run ids that do not exist or are finished.
var ErrUnknownRun = errors.New("unknown or finished seeding run")

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// Store is a seed database.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens (creating if needed) the SQLite database at path. Call
// MigrateUp before writing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", p, err)
		}
	}
	return &Store{db: db, clock: timeutil.RealClock{}}, nil
}

// SetClock replaces the clock used to stamp runs.
func (s *Store) SetClock(c timeutil.Clock) { s.clock = c }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// RunInfo summarises a seeding run.
type RunInfo struct {
	RunID      string
	ConfigHash string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is open
	Events     int
	Seeds      int
}

// StoredSeed is a seed read back from the store.
type StoredSeed struct {
	EventID   uint64
	Algorithm string
	AlgoIndex int
	Seed      seeding.TrajectorySeed
}

// BeginRun records a new run and returns its id.
func (s *Store) BeginRun(configHash string) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.Exec(`INSERT INTO seeding_runs (run_id, config_hash, started_at) VALUES (?, ?, ?)`,
		runID, configHash, s.clock.Now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("failed to begin run: %w", err)
	}
	return runID, nil
}

// SaveEvent writes every seed of out under runID in one transaction.
func (s *Store) SaveEvent(runID string, eventID uint64, out *seeding.Output) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE seeding_runs SET events = events + 1, seeds = seeds + ?
		WHERE run_id = ? AND finished_at IS NULL`, out.Len(), runID)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}

	stmt, err := tx.Prepare(`INSERT INTO trajectory_seeds (
		run_id, event_id, algorithm, algo_index, sim_track_id, det_id, surface_side, direction,
		qbp, dxdz, dydz, x, y, pz_sign, errors, hits, curvature
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare seed insert: %w", err)
	}
	defer stmt.Close()

	for algoIndex, c := range out.Collections {
		for _, seed := range c.Seeds {
			hits, err := json.Marshal(seed.Hits)
			if err != nil {
				return fmt.Errorf("failed to encode hits: %w", err)
			}
			st := seed.State
			p := st.Parameters
			_, err = stmt.Exec(runID, int64(eventID), c.Algorithm, algoIndex, seed.SimTrackID,
				int64(st.DetID), int(st.Side), int(seed.Direction),
				p.QbP, p.DxDz, p.DyDz, p.X, p.Y, p.PzSign,
				encodeErrors(st.Errors), string(hits), seed.Curvature)
			if err != nil {
				return fmt.Errorf("failed to insert seed for sim track %d: %w", seed.SimTrackID, err)
			}
		}
	}
	return tx.Commit()
}

// FinishRun marks the run as finished. Further SaveEvent calls fail.
func (s *Store) FinishRun(runID string) error {
	res, err := s.db.Exec(`UPDATE seeding_runs SET finished_at = ? WHERE run_id = ? AND finished_at IS NULL`,
		s.clock.Now().UnixNano(), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	return nil
}

// Run returns the summary of runID.
func (s *Store) Run(runID string) (RunInfo, error) {
	var info RunInfo
	var started int64
	var finished sql.NullInt64
	err := s.db.QueryRow(`SELECT run_id, config_hash, started_at, finished_at, events, seeds
		FROM seeding_runs WHERE run_id = ?`, runID).
		Scan(&info.RunID, &info.ConfigHash, &started, &finished, &info.Events, &info.Seeds)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	if err != nil {
		return RunInfo{}, err
	}
	info.StartedAt = time.Unix(0, started)
	if finished.Valid {
		info.FinishedAt = time.Unix(0, finished.Int64)
	}
	return info, nil
}

// SeedsForEvent returns the seeds of one event in algorithm order.
func (s *Store) SeedsForEvent(runID string, eventID uint64) ([]StoredSeed, error) {
	rows, err := s.db.Query(`SELECT event_id, algorithm, algo_index, sim_track_id, det_id, surface_side, direction,
		qbp, dxdz, dydz, x, y, pz_sign, errors, hits, curvature
		FROM trajectory_seeds WHERE run_id = ? AND event_id = ?
		ORDER BY algo_index, seed_id`, runID, int64(eventID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredSeed
	for rows.Next() {
		var (
			ss        StoredSeed
			eventID   int64
			detID     int64
			side      int
			direction int
			blob      []byte
			hits      string
		)
		p := &ss.Seed.State.Parameters
		if err := rows.Scan(&eventID, &ss.Algorithm, &ss.AlgoIndex, &ss.Seed.SimTrackID, &detID, &side, &direction,
			&p.QbP, &p.DxDz, &p.DyDz, &p.X, &p.Y, &p.PzSign, &blob, &hits, &ss.Seed.Curvature); err != nil {
			return nil, err
		}
		ss.EventID = uint64(eventID)
		ss.Seed.State.DetID = uint32(detID)
		ss.Seed.State.Side = trajectory.SurfaceSide(side)
		ss.Seed.Direction = seeding.PropagationDirection(direction)
		if ss.Seed.State.Errors, err = decodeErrors(blob); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(hits), &ss.Seed.Hits); err != nil {
			return nil, fmt.Errorf("failed to decode hits: %w", err)
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

// CountSeeds returns the number of seeds per algorithm in runID.
func (s *Store) CountSeeds(runID string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT algorithm, COUNT(*) FROM trajectory_seeds WHERE run_id = ? GROUP BY algorithm`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

// encodeErrors packs the local errors as little-endian float32.
func encodeErrors(e [trajectory.PackedErrors]float32) []byte {
	buf := make([]byte, 4*len(e))
	for i, v := range e {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeErrors(buf []byte) ([trajectory.PackedErrors]float32, error) {
	var e [trajectory.PackedErrors]float32
	if len(buf) != 4*len(e) {
		return e, fmt.Errorf("errors blob has %d bytes, want %d", len(buf), 4*len(e))
	}
	for i := range e {
		e[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return e, nil
}
