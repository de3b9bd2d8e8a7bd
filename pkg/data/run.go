package data

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mchmarny/prosody/pkg/model"
	"github.com/pkg/errors"
)

const (
	runListLimitDefault = 20

	// fixed width so stored timestamps sort lexically
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

	insertRunSQL = `INSERT INTO run (id, created_at, input, target, min_rationality, max_rationality, melodies)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	insertProjectionSQL = `INSERT INTO projection (run_id, position, melody, rationality, probability)
		VALUES (?, ?, ?, ?, ?)
	`

	selectRunsSQL = `SELECT id, created_at, input, target, min_rationality, max_rationality, melodies
		FROM run
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	selectRunSQL = `SELECT id, created_at, input, target, min_rationality, max_rationality, melodies
		FROM run
		WHERE id = ?
	`

	selectProjectionsSQL = `SELECT position, melody, rationality, probability
		FROM projection
		WHERE run_id = ?
		ORDER BY position, rationality
	`
)

// ErrRunNotFound is returned when a run ID is not in the database.
var ErrRunNotFound = errors.New("run not found")

// Run is the metadata of a stored sweep.
type Run struct {
	ID             string    `json:"id" yaml:"id"`
	CreatedAt      time.Time `json:"created_at" yaml:"createdAt"`
	Input          string    `json:"input" yaml:"input"`
	Target         string    `json:"target" yaml:"target"`
	MinRationality int       `json:"min_rationality" yaml:"minRationality"`
	MaxRationality int       `json:"max_rationality" yaml:"maxRationality"`
	Melodies       int       `json:"melodies" yaml:"melodies"`
}

// SaveRun stores res and its projection matrix in a single transaction.
// When beforeCommit is not nil it runs after all rows are inserted; an error
// from it rolls the run back.
func SaveRun(db *sql.DB, input string, res *model.SweepResult, beforeCommit func(*Run) error) (*Run, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if res == nil || len(res.Rationalities) == 0 {
		return nil, errors.New("non-empty sweep result required")
	}

	run := &Run{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Input:          input,
		Target:         string(res.Target),
		MinRationality: res.Rationalities[0],
		MaxRationality: res.Rationalities[len(res.Rationalities)-1],
		Melodies:       len(res.Rows),
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}

	if _, err = tx.Exec(insertRunSQL, run.ID, run.CreatedAt.Format(timeLayout), run.Input,
		run.Target, run.MinRationality, run.MaxRationality, run.Melodies); err != nil {
		return nil, rollback(tx, errors.Wrap(err, "failed to insert run"))
	}

	stmt, err := tx.Prepare(insertProjectionSQL)
	if err != nil {
		return nil, rollback(tx, errors.Wrap(err, "failed to prepare projection statement"))
	}
	defer stmt.Close()

	for pos, row := range res.Rows {
		for col, r := range res.Rationalities {
			if _, err = stmt.Exec(run.ID, pos, row.Melody, r, row.Values[col]); err != nil {
				return nil, rollback(tx, errors.Wrapf(err, "failed to insert projection: %s @ %d", row.Melody, r))
			}
		}
	}

	if beforeCommit != nil {
		if err = beforeCommit(run); err != nil {
			return nil, rollback(tx, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return run, nil
}

func rollback(tx *sql.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		return errors.Wrapf(err, "rollback failed: %v", rerr)
	}
	return err
}

// ListRuns returns the most recent runs first.
func ListRuns(db *sql.DB, limit int) ([]*Run, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if limit <= 0 {
		limit = runListLimitDefault
	}

	rows, err := db.Query(selectRunsSQL, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}
	defer rows.Close()

	list := make([]*Run, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, errors.Wrap(rows.Err(), "failed to iterate runs")
}

// GetRun returns the run with id and its reconstructed sweep result.
func GetRun(db *sql.DB, id string) (*Run, *model.SweepResult, error) {
	if db == nil {
		return nil, nil, errDBNotInitialized
	}

	run, err := scanRun(db.QueryRow(selectRunSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, errors.Wrapf(ErrRunNotFound, "id: %s", id)
		}
		return nil, nil, err
	}

	res := &model.SweepResult{
		Target:        model.QUD(run.Target),
		Rationalities: make([]int, 0, run.MaxRationality-run.MinRationality+1),
		Rows:          make([]model.SweepRow, run.Melodies),
	}
	col := make(map[int]int, cap(res.Rationalities))
	for r := run.MinRationality; r <= run.MaxRationality; r++ {
		col[r] = len(res.Rationalities)
		res.Rationalities = append(res.Rationalities, r)
	}
	for i := range res.Rows {
		res.Rows[i].Values = make([]float64, len(res.Rationalities))
	}

	rows, err := db.Query(selectProjectionsSQL, id)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to query projections")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pos, r int
			melody string
			p      float64
		)
		if err := rows.Scan(&pos, &melody, &r, &p); err != nil {
			return nil, nil, errors.Wrap(err, "failed to scan projection")
		}
		c, ok := col[r]
		if !ok || pos < 0 || pos >= len(res.Rows) {
			return nil, nil, errors.Errorf("projection out of range for run %s: position=%d rationality=%d", id, pos, r)
		}
		res.Rows[pos].Melody = melody
		res.Rows[pos].Values[c] = p
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "failed to iterate projections")
	}

	return run, res, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		r       Run
		created string
	)
	if err := s.Scan(&r.ID, &created, &r.Input, &r.Target, &r.MinRationality, &r.MaxRationality, &r.Melodies); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to scan run")
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid run timestamp: %s", created)
	}
	r.CreatedAt = t
	return &r, nil
}
