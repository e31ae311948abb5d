package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/statkit/resample/pkg/sampler"
)

// EnsureMetaTables creates the metadata tables used by the service.
func EnsureMetaTables(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rs_datasets (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL UNIQUE,
            paired INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS rs_dataset_points (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            dataset_id INTEGER NOT NULL,
            idx INTEGER NOT NULL,
            x REAL NOT NULL,
            y REAL,
            UNIQUE(dataset_id, idx)
        );`,
		`CREATE TABLE IF NOT EXISTS rs_runs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            dataset TEXT,
            mode TEXT NOT NULL,
            estimator TEXT NOT NULL,
            n INTEGER NOT NULL,
            b INTEGER NOT NULL,
            rho REAL NOT NULL DEFAULT 0,
            seed INTEGER NOT NULL DEFAULT 0,
            estimate REAL NOT NULL,
            ci_low REAL NOT NULL,
            ci_high REAL NOT NULL,
            std_error REAL NOT NULL,
            confidence REAL NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// InsertDataset stores a named source sample. ys may be nil for plain
// scalar datasets; when present it must match xs in length.
func InsertDataset(ctx context.Context, db *sql.DB, name string, xs, ys []float64) (int64, error) {
	if len(xs) == 0 {
		return 0, fmt.Errorf("dataset %q has no points", name)
	}
	if ys != nil && len(ys) != len(xs) {
		return 0, fmt.Errorf("dataset %q: %d x values but %d y values", name, len(xs), len(ys))
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	paired := 0
	if ys != nil {
		paired = 1
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO rs_datasets(name,paired,created_at)
        VALUES(?,?,CURRENT_TIMESTAMP)`, name, paired)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO rs_dataset_points(dataset_id,idx,x,y) VALUES(?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for i, x := range xs {
		var y any
		if ys != nil {
			y = ys[i]
		}
		if _, err := stmt.ExecContext(ctx, id, i, x, y); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetDataset loads a dataset's points in insertion order. ys is nil for
// unpaired datasets.
func GetDataset(ctx context.Context, db *sql.DB, name string) (xs, ys []float64, err error) {
	var id int64
	var paired int
	err = db.QueryRowContext(ctx, `SELECT id, paired FROM rs_datasets WHERE name = ?`, name).Scan(&id, &paired)
	if err != nil {
		return nil, nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT x, y FROM rs_dataset_points WHERE dataset_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var x float64
		var y sql.NullFloat64
		if err := rows.Scan(&x, &y); err != nil {
			return nil, nil, err
		}
		xs = append(xs, x)
		if paired == 1 && y.Valid {
			ys = append(ys, y.Float64)
		}
	}
	return xs, ys, rows.Err()
}

// GetDatasetPairs loads a paired dataset as (x, y) observations.
func GetDatasetPairs(ctx context.Context, db *sql.DB, name string) ([]sampler.Pair, error) {
	xs, ys, err := GetDataset(ctx, db, name)
	if err != nil {
		return nil, err
	}
	if len(ys) != len(xs) {
		return nil, fmt.Errorf("dataset %q is not paired", name)
	}
	pairs := make([]sampler.Pair, len(xs))
	for i := range xs {
		pairs[i] = sampler.Pair{X: xs[i], Y: ys[i]}
	}
	return pairs, nil
}

// DatasetInfo describes a stored dataset.
type DatasetInfo struct {
	Name      string `json:"name"`
	Points    int64  `json:"points"`
	Paired    bool   `json:"paired"`
	CreatedAt string `json:"created_at"`
}

// ListDatasets returns all stored datasets, newest first.
func ListDatasets(ctx context.Context, db *sql.DB) ([]DatasetInfo, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT d.name, d.paired, COUNT(p.id), d.created_at
        FROM rs_datasets d LEFT JOIN rs_dataset_points p ON p.dataset_id = d.id
        GROUP BY d.id
        ORDER BY d.created_at DESC, d.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DatasetInfo
	for rows.Next() {
		var info DatasetInfo
		var paired int
		if err := rows.Scan(&info.Name, &paired, &info.Points, &info.CreatedAt); err != nil {
			return nil, err
		}
		info.Paired = paired == 1
		out = append(out, info)
	}
	return out, rows.Err()
}

// RunInfo records the configuration and summary of one bootstrap run.
type RunInfo struct {
	ID         int64   `json:"id"`
	Dataset    string  `json:"dataset,omitempty"`
	Mode       string  `json:"mode"`
	Estimator  string  `json:"estimator"`
	N          int     `json:"n"`
	B          int     `json:"b"`
	Rho        float64 `json:"rho,omitempty"`
	Seed       int64   `json:"seed"`
	Estimate   float64 `json:"estimate"`
	CILow      float64 `json:"ci_low"`
	CIHigh     float64 `json:"ci_high"`
	StdError   float64 `json:"std_error"`
	Confidence float64 `json:"confidence"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

// InsertRun records a completed bootstrap run.
func InsertRun(ctx context.Context, db *sql.DB, run RunInfo) (int64, error) {
	res, err := db.ExecContext(ctx, `INSERT INTO rs_runs
        (dataset,mode,estimator,n,b,rho,seed,estimate,ci_low,ci_high,std_error,confidence,created_at)
        VALUES(?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)`,
		run.Dataset, run.Mode, run.Estimator, run.N, run.B, run.Rho, run.Seed,
		run.Estimate, run.CILow, run.CIHigh, run.StdError, run.Confidence)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs, newest first.
func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, `
        SELECT id, dataset, mode, estimator, n, b, rho, seed,
               estimate, ci_low, ci_high, std_error, confidence, created_at
        FROM rs_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RunInfo
	for rows.Next() {
		var run RunInfo
		var dataset sql.NullString
		if err := rows.Scan(&run.ID, &dataset, &run.Mode, &run.Estimator, &run.N, &run.B,
			&run.Rho, &run.Seed, &run.Estimate, &run.CILow, &run.CIHigh,
			&run.StdError, &run.Confidence, &run.CreatedAt); err != nil {
			return nil, err
		}
		run.Dataset = dataset.String
		out = append(out, run)
	}
	return out, rows.Err()
}
