package model

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	markerIncompatible = "no"
	markerCompatible   = "YES"
)

// Binarize maps a raw compatibility marker to a boolean. Markers containing
// "no" are incompatible, otherwise markers containing "YES" are compatible.
// The match is case-sensitive and "no" wins when both are present. The second
// return value is false when the marker matches neither.
func Binarize(marker string) (compatible bool, ok bool) {
	if strings.Contains(marker, markerIncompatible) {
		return false, true
	}
	if strings.Contains(marker, markerCompatible) {
		return true, true
	}
	return false, false
}

// CompatibilityTable is the literal relation between melodies and the QUDs
// they can answer. It is read-only after construction.
type CompatibilityTable struct {
	inv *Inventory
	// compatible[melody][qud]
	compatible [][]bool
}

// NewCompatibilityTable builds a table from a binarized matrix indexed as
// matrix[melody][qud] in inventory order. Every melody must be compatible with
// at least one QUD.
func NewCompatibilityTable(inv *Inventory, matrix [][]bool) (*CompatibilityTable, error) {
	if inv == nil {
		return nil, &MalformedInputError{Reason: "inventory required"}
	}
	if len(matrix) != inv.NumMelodies() {
		return nil, &MalformedInputError{
			Reason: rowCountReason(len(matrix), inv.NumMelodies()),
		}
	}

	t := &CompatibilityTable{
		inv:        inv,
		compatible: make([][]bool, len(matrix)),
	}
	for i, row := range matrix {
		if len(row) != inv.NumQUDs() {
			return nil, &MalformedInputError{
				Row:    i + 1,
				Reason: columnCountReason(len(row), inv.NumQUDs()),
			}
		}
		t.compatible[i] = append([]bool(nil), row...)
	}

	if err := t.checkDegenerate(); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseCompatibilityTable builds a table from raw tabular input: a header row
// and one record per melody. The first column of every row is a free-text
// label and is dropped; the remaining columns are one per QUD in inventory
// order.
//
// Rows are matched to melodies by position. Labels are checked where they
// carry an identifier: a header cell naming a known QUD, optionally with a
// "Q" prefix, and a row label naming a known melody or ending in a known
// pitch pattern must agree with the position they occupy.
func ParseCompatibilityTable(inv *Inventory, header []string, records [][]string) (*CompatibilityTable, error) {
	if inv == nil {
		return nil, &MalformedInputError{Reason: "inventory required"}
	}

	wantCols := inv.NumQUDs() + 1
	if len(header) != wantCols {
		return nil, &MalformedInputError{
			Row:    1,
			Reason: columnCountReason(len(header), wantCols),
		}
	}
	for j, cell := range header[1:] {
		label, ok := headerQUD(inv, cell)
		if ok && label != inv.quds[j] {
			return nil, &MalformedInputError{
				Row:    1,
				Column: j + 2,
				Value:  cell,
				Reason: fmt.Sprintf("header names QUD %s but position expects %s", label, inv.quds[j]),
			}
		}
	}

	if len(records) != inv.NumMelodies() {
		return nil, &MalformedInputError{
			Reason: rowCountReason(len(records), inv.NumMelodies()),
		}
	}

	matrix := make([][]bool, len(records))
	for i, rec := range records {
		row := i + 2 // header is row 1
		if len(rec) != wantCols {
			return nil, &MalformedInputError{
				Row:    row,
				Reason: columnCountReason(len(rec), wantCols),
			}
		}

		expected := inv.melodies[i]
		if reason := rowLabelMismatch(inv, rec[0], expected); reason != "" {
			return nil, &MalformedInputError{
				Row:    row,
				Column: 1,
				Value:  rec[0],
				Reason: reason,
			}
		}

		matrix[i] = make([]bool, inv.NumQUDs())
		for j, cell := range rec[1:] {
			v, ok := Binarize(cell)
			if !ok {
				return nil, &MalformedInputError{
					Row:    row,
					Column: j + 2,
					Value:  cell,
					Reason: fmt.Sprintf("marker for %s / %s matches neither %q nor %q", expected, inv.quds[j], markerIncompatible, markerCompatible),
				}
			}
			matrix[i][j] = v
		}
	}

	t := &CompatibilityTable{inv: inv, compatible: matrix}
	if err := t.checkDegenerate(); err != nil {
		return nil, err
	}

	slog.Debug("compatibility table parsed", "melodies", inv.NumMelodies(), "quds", inv.NumQUDs())
	return t, nil
}

func (t *CompatibilityTable) checkDegenerate() error {
	for i, row := range t.compatible {
		if countTrue(row) == 0 {
			return &DegenerateCompatibilityError{Melody: t.inv.melodies[i], Row: i + 1}
		}
	}
	return nil
}

// Inventory returns the inventory the table is defined over.
func (t *CompatibilityTable) Inventory() *Inventory {
	return t.inv
}

// CompatibleQUDs returns every QUD marked compatible with m, in inventory
// order.
func (t *CompatibilityTable) CompatibleQUDs(m Melody) ([]QUD, error) {
	mi, err := t.inv.MelodyIndex(m)
	if err != nil {
		return nil, err
	}
	list := make([]QUD, 0, len(t.compatible[mi]))
	for qi, ok := range t.compatible[mi] {
		if ok {
			list = append(list, t.inv.quds[qi])
		}
	}
	return list, nil
}

// Compatible reports whether m is compatible with q.
func (t *CompatibilityTable) Compatible(q QUD, m Melody) (bool, error) {
	mi, err := t.inv.MelodyIndex(m)
	if err != nil {
		return false, err
	}
	qi, err := t.inv.QUDIndex(q)
	if err != nil {
		return false, err
	}
	return t.compatible[mi][qi], nil
}

func countTrue(row []bool) int {
	n := 0
	for _, v := range row {
		if v {
			n++
		}
	}
	return n
}

func rowCountReason(got, want int) string {
	return fmt.Sprintf("expected %d melody rows, got %d", want, got)
}

func columnCountReason(got, want int) string {
	return fmt.Sprintf("expected %d columns, got %d", want, got)
}

// headerQUD resolves a header cell to a known QUD label. Cells such as "Q4a"
// resolve to "4a" when the unprefixed label is known.
func headerQUD(inv *Inventory, cell string) (QUD, bool) {
	label := QUD(strings.TrimSpace(cell))
	if inv.HasQUD(label) {
		return label, true
	}
	if rest, found := strings.CutPrefix(string(label), "Q"); found && inv.HasQUD(QUD(rest)) {
		return QUD(rest), true
	}
	return "", false
}

// rowLabelMismatch returns a non-empty reason when label identifies a melody
// other than expected.
func rowLabelMismatch(inv *Inventory, label string, expected Melody) string {
	if m, err := ParseMelody(label); err == nil {
		if _, known := inv.melodyIndex[m]; known && m != expected {
			return fmt.Sprintf("row names melody %s but position expects %s", m, expected)
		}
	}
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	if p := fields[len(fields)-1]; inv.hasPattern(p) && p != expected.Pattern {
		return fmt.Sprintf("row names pattern %s but position expects %s", p, expected)
	}
	return ""
}
