// Package sqlite persists calibration runs in a local SQLite file so
// per-pair parameter distributions survive for later diagnostics.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"glidercal/domain/calibration"
	"glidercal/domain/core"
	"glidercal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS calibration_runs (
	id TEXT PRIMARY KEY,
	deployment TEXT NOT NULL,
	mode TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	diagnostics TEXT NOT NULL,
	best_guess TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS pair_outcomes (
	run_id TEXT NOT NULL REFERENCES calibration_runs(id),
	pair_index INTEGER NOT NULL,
	reason TEXT NOT NULL,
	cost REAL NOT NULL,
	params TEXT,
	PRIMARY KEY (run_id, pair_index)
);
`

// Open connects to (and creates if necessary) the SQLite database at path
// and ensures the schema exists.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening calibration store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing calibration store schema: %w", err)
	}
	return db, nil
}

// encodeParams maps NaN sentinel components to JSON null, which encoding/json
// cannot represent natively.
func encodeParams(v []float64) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	vals := make([]*float64, len(v))
	for i := range v {
		if !math.IsNaN(v[i]) {
			vals[i] = &v[i]
		}
	}
	return json.Marshal(vals)
}

func decodeParams(data []byte) ([]float64, error) {
	var vals []*float64
	if err := json.Unmarshal(data, &vals); err != nil {
		return nil, err
	}
	out := make([]float64, len(vals))
	for i, p := range vals {
		if p == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *p
		}
	}
	return out, nil
}

// calibrationRepository implements ports.CalibrationRepository.
type calibrationRepository struct {
	db *sqlx.DB
}

// NewCalibrationRepository creates a repository over an opened database.
func NewCalibrationRepository(db *sqlx.DB) ports.CalibrationRepository {
	return &calibrationRepository{db: db}
}

func (r *calibrationRepository) SaveRun(ctx context.Context, run *calibration.Run) error {
	diagJSON, err := json.Marshal(run.Diagnostics)
	if err != nil {
		return fmt.Errorf("marshaling diagnostics: %w", err)
	}
	bestJSON, err := encodeParams(run.BestGuess)
	if err != nil {
		return fmt.Errorf("marshaling best guess: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting save transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO calibration_runs (id, deployment, mode, created_at, diagnostics, best_guess)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Deployment, string(run.Mode), run.CreatedAt, diagJSON, bestJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting calibration run: %w", err)
	}

	for _, o := range run.Outcomes {
		paramsJSON, err := encodeParams(o.Params)
		if err != nil {
			return fmt.Errorf("marshaling pair %d params: %w", o.PairIndex, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO pair_outcomes (run_id, pair_index, reason, cost, params)
			 VALUES (?, ?, ?, ?, ?)`,
			run.ID.String(), o.PairIndex, string(o.Reason), o.Cost, paramsJSON,
		)
		if err != nil {
			return fmt.Errorf("inserting pair outcome %d: %w", o.PairIndex, err)
		}
	}
	return tx.Commit()
}

func (r *calibrationRepository) GetRun(ctx context.Context, id core.RunID) (*calibration.Run, error) {
	var row struct {
		ID          string    `db:"id"`
		Deployment  string    `db:"deployment"`
		Mode        string    `db:"mode"`
		CreatedAt   time.Time `db:"created_at"`
		Diagnostics []byte    `db:"diagnostics"`
		BestGuess   []byte    `db:"best_guess"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT id, deployment, mode, created_at, diagnostics, best_guess
		 FROM calibration_runs WHERE id = ?`, id.String())
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("calibration run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading calibration run: %w", err)
	}

	run := &calibration.Run{
		ID:         core.RunID(row.ID),
		Deployment: row.Deployment,
		Mode:       calibration.Mode(row.Mode),
		CreatedAt:  row.CreatedAt,
	}
	if err := json.Unmarshal(row.Diagnostics, &run.Diagnostics); err != nil {
		return nil, fmt.Errorf("unmarshaling diagnostics: %w", err)
	}
	if run.BestGuess, err = decodeParams(row.BestGuess); err != nil {
		return nil, fmt.Errorf("unmarshaling best guess: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx,
		`SELECT pair_index, reason, cost, params
		 FROM pair_outcomes WHERE run_id = ? ORDER BY pair_index`, id.String())
	if err != nil {
		return nil, fmt.Errorf("loading pair outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			o          calibration.PairOutcome
			reason     string
			paramsJSON []byte
		)
		if err := rows.Scan(&o.PairIndex, &reason, &o.Cost, &paramsJSON); err != nil {
			return nil, fmt.Errorf("scanning pair outcome: %w", err)
		}
		o.Reason = calibration.Reason(reason)
		if len(paramsJSON) > 0 {
			if o.Params, err = decodeParams(paramsJSON); err != nil {
				return nil, fmt.Errorf("unmarshaling pair params: %w", err)
			}
		}
		run.Outcomes = append(run.Outcomes, o)
	}
	return run, rows.Err()
}

func (r *calibrationRepository) ListRuns(ctx context.Context) ([]calibration.RunSummary, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT r.id, r.deployment, r.mode, r.created_at,
		        (SELECT COUNT(*) FROM pair_outcomes o
		          WHERE o.run_id = r.id AND o.reason = ?) AS accepted
		 FROM calibration_runs r ORDER BY r.created_at DESC`,
		string(calibration.ReasonAccepted))
	if err != nil {
		return nil, fmt.Errorf("listing calibration runs: %w", err)
	}
	defer rows.Close()

	var out []calibration.RunSummary
	for rows.Next() {
		var (
			s    calibration.RunSummary
			id   string
			mode string
		)
		if err := rows.Scan(&id, &s.Deployment, &mode, &s.CreatedAt, &s.PairsAccepted); err != nil {
			return nil, fmt.Errorf("scanning run summary: %w", err)
		}
		s.ID = core.RunID(id)
		s.Mode = calibration.Mode(mode)
		out = append(out, s)
	}
	return out, rows.Err()
}
