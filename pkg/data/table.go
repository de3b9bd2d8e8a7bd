package data

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mchmarny/prosody/pkg/model"
	"github.com/pkg/errors"
)

const utf8BOM = "\ufeff"

// LoadCompatibility reads the compatibility CSV at path.
func LoadCompatibility(path string, inv *model.Inventory) (*model.CompatibilityTable, error) {
	if path == "" {
		return nil, errors.New("input path required")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening input file: %s", path)
	}
	defer file.Close()

	t, err := ReadCompatibility(file, inv)
	if err != nil {
		return nil, errors.Wrapf(err, "error loading compatibility table: %s", path)
	}
	slog.Debug("compatibility table loaded", "path", path)
	return t, nil
}

// ReadCompatibility parses a compatibility CSV: one header row, then one row
// per melody whose first cell is a free-text label followed by one marker per
// QUD.
func ReadCompatibility(r io.Reader, inv *model.Inventory) (*model.CompatibilityTable, error) {
	reader := csv.NewReader(r)
	// column counts are checked against the inventory with row context
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "error reading CSV")
	}
	if len(rows) == 0 {
		return nil, &model.MalformedInputError{Reason: "empty input, header row required"}
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	return model.ParseCompatibilityTable(inv, header, rows[1:])
}
