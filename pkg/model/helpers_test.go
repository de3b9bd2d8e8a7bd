package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

// referenceMatrix marks "Adv LHLH" compatible with 1a and 4a only, and every
// other melody with two QUDs picked from its position.
func referenceMatrix(inv *Inventory) [][]bool {
	matrix := make([][]bool, inv.NumMelodies())
	for mi := range matrix {
		matrix[mi] = make([]bool, inv.NumQUDs())
		if mi == 0 {
			matrix[mi][0] = true // 1a
			matrix[mi][5] = true // 4a
			continue
		}
		matrix[mi][mi%inv.NumQUDs()] = true
		matrix[mi][(mi*3+1)%inv.NumQUDs()] = true
	}
	return matrix
}

func referenceModel(t *testing.T) *Model {
	t.Helper()
	inv := DefaultInventory()
	table, err := NewCompatibilityTable(inv, referenceMatrix(inv))
	require.NoError(t, err)
	md, err := New(table, nil)
	require.NoError(t, err)
	return md
}

// toyModel has melodies "X A" {q1, q2} and "X B" {q2}.
func toyModel(t *testing.T) *Model {
	t.Helper()
	inv, err := NewInventory([]QUD{"q1", "q2"}, []string{"X"}, []string{"A", "B"})
	require.NoError(t, err)
	table, err := NewCompatibilityTable(inv, [][]bool{
		{true, true},
		{false, true},
	})
	require.NoError(t, err)
	md, err := New(table, nil)
	require.NoError(t, err)
	return md
}

func sum(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s
}
