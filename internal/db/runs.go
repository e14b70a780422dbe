package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/spin.report/internal/timeutil"
	"github.com/banshee-data/spin.report/internal/trajectory"
)

// ErrRunNotFound is returned when a run ID has no record.
var ErrRunNotFound = errors.New("analysis run not found")

// SampleKind distinguishes the two trajectories stored per run.
type SampleKind string

const (
	SampleActual         SampleKind = "actual"
	SampleCounterfactual SampleKind = "counterfactual"
)

// AnalysisRun is one recorded pass of the pipeline over a coordinate log.
// Bounce and velocity fields are zero when Found is false.
type AnalysisRun struct {
	RunID        string          `json:"run_id"`
	Source       string          `json:"source"`
	Found        bool            `json:"found"`
	BounceFrame  int             `json:"bounce_frame"`
	BounceIndex  int             `json:"bounce_index"`
	VX           float64         `json:"vx"`
	VY           float64         `json:"vy"`
	DeviationDeg float64         `json:"deviation_deg"`
	FPS          float64         `json:"fps"`
	ParamsJSON   json.RawMessage `json:"params_json,omitempty"`
	CreatedAt    int64           `json:"created_at"`
}

// RunStore provides persistence for analysis runs.
type RunStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewRunStore creates a RunStore. A nil clock uses the wall clock.
func NewRunStore(db *DB, clock timeutil.Clock) *RunStore {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &RunStore{db: db.DB, clock: clock}
}

// NewRun builds a run record from a pipeline result.
func NewRun(source string, fps float64, params json.RawMessage, res *trajectory.Result) *AnalysisRun {
	run := &AnalysisRun{Source: source, FPS: fps, ParamsJSON: params}
	if res != nil && res.Found {
		run.Found = true
		run.BounceFrame = res.Bounce.Frame
		run.BounceIndex = res.Bounce.Index
		run.VX = res.Velocity.VX
		run.VY = res.Velocity.VY
		run.DeviationDeg = res.DeviationDeg
	}
	return run
}

// Record persists a run together with its actual and counterfactual
// trajectories in one transaction. A nil log is skipped. If RunID is empty,
// a UUID is generated.
func (s *RunStore) Record(run *AnalysisRun, actual, counterfactual *trajectory.Log) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := s.insertRun(tx, run); err != nil {
		return err
	}
	if err := insertSamples(tx, run.RunID, SampleActual, actual); err != nil {
		return err
	}
	if err := insertSamples(tx, run.RunID, SampleCounterfactual, counterfactual); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *RunStore) insertRun(tx *sql.Tx, run *AnalysisRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}

	var paramsStr interface{}
	if len(run.ParamsJSON) > 0 {
		paramsStr = string(run.ParamsJSON)
	}

	_, err := tx.Exec(`
		INSERT INTO analysis_runs (
			run_id, source, found, bounce_frame, bounce_index,
			vx, vy, deviation_deg, fps, params_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Source, run.Found, run.BounceFrame, run.BounceIndex,
		run.VX, run.VY, run.DeviationDeg, run.FPS, paramsStr, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}
	return nil
}

func insertSamples(tx *sql.Tx, runID string, kind SampleKind, l *trajectory.Log) error {
	if l == nil {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT INTO trajectory_samples (run_id, kind, frame, x, y) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare samples: %w", err)
	}
	defer stmt.Close()

	for _, smp := range l.Samples() {
		if _, err := stmt.Exec(runID, string(kind), smp.Frame, smp.X, smp.Y); err != nil {
			return fmt.Errorf("insert %s frame %d: %w", kind, smp.Frame, err)
		}
	}
	return nil
}

const runColumns = `run_id, source, found, bounce_frame, bounce_index,
	vx, vy, deviation_deg, fps, params_json, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*AnalysisRun, error) {
	var r AnalysisRun
	var paramsStr sql.NullString
	err := row.Scan(
		&r.RunID, &r.Source, &r.Found, &r.BounceFrame, &r.BounceIndex,
		&r.VX, &r.VY, &r.DeviationDeg, &r.FPS, &paramsStr, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if paramsStr.Valid {
		r.ParamsJSON = json.RawMessage(paramsStr.String)
	}
	return &r, nil
}

// Get returns a single run by ID.
func (s *RunStore) Get(runID string) (*AnalysisRun, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM analysis_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return r, nil
}

// List returns the most recent runs first. A non-positive limit returns all.
func (s *RunStore) List(limit int) ([]*AnalysisRun, error) {
	query := `SELECT ` + runColumns + ` FROM analysis_runs ORDER BY created_at DESC, run_id`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*AnalysisRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Samples loads a stored trajectory. An unknown run yields an empty log.
func (s *RunStore) Samples(runID string, kind SampleKind) (*trajectory.Log, error) {
	rows, err := s.db.Query(`
		SELECT frame, x, y FROM trajectory_samples
		WHERE run_id = ? AND kind = ?
		ORDER BY frame`, runID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var samples []trajectory.Sample
	for rows.Next() {
		var smp trajectory.Sample
		if err := rows.Scan(&smp.Frame, &smp.X, &smp.Y); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, smp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trajectory.NewLog(samples), nil
}

// Delete removes a run and its samples.
func (s *RunStore) Delete(runID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM trajectory_samples WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("delete samples: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM analysis_runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return tx.Commit()
}
