package data

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mchmarny/prosody/pkg/model"
	"github.com/pkg/errors"
)

const (
	melodyColumn = "melody"
	fileMode     = 0644
)

// WriteSweepCSV writes one row per melody and one column per rationality.
func WriteSweepCSV(w io.Writer, res *model.SweepResult) error {
	if res == nil {
		return errors.New("sweep result required")
	}

	cw := csv.NewWriter(w)
	header := make([]string, 0, len(res.Rationalities)+1)
	header = append(header, melodyColumn)
	for _, r := range res.Rationalities {
		header = append(header, strconv.Itoa(r))
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "error writing header")
	}

	for _, row := range res.Rows {
		if len(row.Values) != len(res.Rationalities) {
			return errors.Errorf("row %s has %d values, expected %d", row.Melody, len(row.Values), len(res.Rationalities))
		}
		rec := make([]string, 0, len(row.Values)+1)
		rec = append(rec, row.Melody)
		for _, v := range row.Values {
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "error writing row: %s", row.Melody)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "error flushing CSV")
}

// SaveSweepFile writes the sweep CSV to path. The content goes to a temporary
// file in the same directory first, so path is either fully written or left
// untouched.
func SaveSweepFile(path string, res *model.SweepResult) (retErr error) {
	if path == "" {
		return errors.New("output path required")
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "error creating temp file in: %s", dir)
	}
	defer func() {
		if retErr != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := WriteSweepCSV(tmp, res); err != nil {
		return err
	}
	if err := tmp.Chmod(fileMode); err != nil {
		return errors.Wrapf(err, "error setting mode on: %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "error closing: %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "error moving output into place: %s", path)
	}
	return nil
}
