package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinarize(t *testing.T) {
	tests := []struct {
		marker     string
		compatible bool
		ok         bool
	}{
		{"YES", true, true},
		{"YES!", true, true},
		{"no", false, true},
		{"no?", false, true},
		{"YES, but no", false, true},
		{"Yes", false, false},
		{"NO", false, false},
		{"", false, false},
		{"maybe", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.marker, func(t *testing.T) {
			compatible, ok := Binarize(tt.marker)
			assert.Equal(t, tt.compatible, compatible)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func rawToy() ([]string, [][]string) {
	header := []string{"Word with PA", "first", "second"}
	records := [][]string{
		{"wordA", "YES", "YES (marginal)"},
		{"wordB", "no", "YES"},
	}
	return header, records
}

func toyInventory(t *testing.T) *Inventory {
	t.Helper()
	inv, err := NewInventory([]QUD{"q1", "q2"}, []string{"X"}, []string{"A", "B"})
	require.NoError(t, err)
	return inv
}

func TestParseCompatibilityTable(t *testing.T) {
	inv := toyInventory(t)
	header, records := rawToy()

	table, err := ParseCompatibilityTable(inv, header, records)
	require.NoError(t, err)

	quds, err := table.CompatibleQUDs(Melody{"X", "A"})
	require.NoError(t, err)
	assert.Equal(t, []QUD{"q1", "q2"}, quds)

	quds, err = table.CompatibleQUDs(Melody{"X", "B"})
	require.NoError(t, err)
	assert.Equal(t, []QUD{"q2"}, quds)

	ok, err := table.Compatible("q1", Melody{"X", "B"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseCompatibilityTable_Malformed(t *testing.T) {
	inv := toyInventory(t)

	tests := []struct {
		name    string
		mutate  func(h []string, r [][]string) ([]string, [][]string)
		row     int
		column  int
		message string
	}{
		{
			name: "header column count",
			mutate: func(h []string, r [][]string) ([]string, [][]string) {
				return h[:2], r
			},
			row:     1,
			message: "expected 3 columns, got 2",
		},
		{
			name: "row count",
			mutate: func(h []string, r [][]string) ([]string, [][]string) {
				return h, r[:1]
			},
			message: "expected 2 melody rows, got 1",
		},
		{
			name: "record column count",
			mutate: func(h []string, r [][]string) ([]string, [][]string) {
				r[1] = append(r[1], "YES")
				return h, r
			},
			row:     3,
			message: "expected 3 columns, got 4",
		},
		{
			name: "unrecognized marker",
			mutate: func(h []string, r [][]string) ([]string, [][]string) {
				r[0][2] = "maybe"
				return h, r
			},
			row:     2,
			column:  3,
			message: "X A / q2",
		},
		{
			name: "row label names another melody",
			mutate: func(h []string, r [][]string) ([]string, [][]string) {
				r[0][0] = "X B"
				return h, r
			},
			row:     2,
			column:  1,
			message: "position expects X A",
		},
		{
			name: "row label pattern belongs to another row",
			mutate: func(h []string, r [][]string) ([]string, [][]string) {
				r[0][0] = "ALWAYS B"
				return h, r
			},
			row:     2,
			column:  1,
			message: "row names pattern B but position expects X A",
		},
		{
			name: "prefixed header names another qud",
			mutate: func(h []string, r [][]string) ([]string, [][]string) {
				h[1], h[2] = "Qq2", "Qq1"
				return h, r
			},
			row:     1,
			column:  2,
			message: "header names QUD q2 but position expects q1",
		},
		{
			name: "header names another qud",
			mutate: func(h []string, r [][]string) ([]string, [][]string) {
				h[1] = "q2"
				return h, r
			},
			row:     1,
			column:  2,
			message: "position expects q1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, r := tt.mutate(rawToy())
			_, err := ParseCompatibilityTable(inv, h, r)
			var malformed *MalformedInputError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, tt.row, malformed.Row)
			assert.Equal(t, tt.column, malformed.Column)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseCompatibilityTable_MatchingLabels(t *testing.T) {
	inv := toyInventory(t)
	header := []string{"Tune", "q1", "q2"}
	records := [][]string{
		{"X A", "YES", "no"},
		{"X B", "no", "YES"},
	}
	_, err := ParseCompatibilityTable(inv, header, records)
	assert.NoError(t, err)

	header = []string{"Word with PA", "Qq1", "Qq2"}
	records = [][]string{
		{"ALWAYS A", "YES", "no"},
		{"ALWAYS B", "no", "YES"},
	}
	_, err = ParseCompatibilityTable(inv, header, records)
	assert.NoError(t, err)
}

func TestParseCompatibilityTable_Degenerate(t *testing.T) {
	inv := toyInventory(t)
	header, records := rawToy()
	records[1] = []string{"wordB", "no", "no"}

	_, err := ParseCompatibilityTable(inv, header, records)
	var degenerate *DegenerateCompatibilityError
	require.True(t, errors.As(err, &degenerate))
	assert.Equal(t, "X B", degenerate.Melody.String())
	assert.Equal(t, 2, degenerate.Row)
}

func TestNewCompatibilityTable(t *testing.T) {
	inv := toyInventory(t)

	_, err := NewCompatibilityTable(inv, [][]bool{{true, false}})
	var malformed *MalformedInputError
	assert.True(t, errors.As(err, &malformed))

	_, err = NewCompatibilityTable(inv, [][]bool{{true, false}, {true}})
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 2, malformed.Row)

	_, err = NewCompatibilityTable(inv, [][]bool{{true, false}, {false, false}})
	var degenerate *DegenerateCompatibilityError
	assert.True(t, errors.As(err, &degenerate))

	_, err = NewCompatibilityTable(nil, nil)
	assert.Error(t, err)
}

func TestNewCompatibilityTable_CopiesInput(t *testing.T) {
	inv := toyInventory(t)
	matrix := [][]bool{{true, false}, {false, true}}
	table, err := NewCompatibilityTable(inv, matrix)
	require.NoError(t, err)

	matrix[0][1] = true
	ok, err := table.Compatible("q2", Melody{"X", "A"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompatibleQUDs_NotFound(t *testing.T) {
	md := referenceModel(t)

	_, err := md.Table.CompatibleQUDs(Melody{"Adv", "HHHH"})
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))

	_, err = md.Table.Compatible("nope", Melody{"Adv", "LHLH"})
	assert.True(t, errors.As(err, &nf))
}
