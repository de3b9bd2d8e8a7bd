package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtility_AdvLHLH(t *testing.T) {
	md := referenceModel(t)
	m := Melody{Category: "Adv", Pattern: "LHLH"}

	tests := []struct {
		qud  QUD
		want float64
	}{
		{"4a", 0.5},
		{"1a", 0.5},
		{"3a", 0},
		{"4aN", 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.qud), func(t *testing.T) {
			got, err := md.Utilities.Utility(tt.qud, m)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	n, err := md.Utilities.Count(m)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUtility_MatchesCompatibility(t *testing.T) {
	md := referenceModel(t)
	inv := md.Utilities.Inventory()

	for _, m := range inv.Melodies() {
		compatible, err := md.Table.CompatibleQUDs(m)
		require.NoError(t, err)
		k := len(compatible)
		require.GreaterOrEqual(t, k, 1)

		for _, q := range inv.QUDs() {
			u, err := md.Utilities.Utility(q, m)
			require.NoError(t, err)

			ok, err := md.Table.Compatible(q, m)
			require.NoError(t, err)
			if ok {
				assert.Equal(t, 1/float64(k), u, "%s/%s", q, m)
			} else {
				assert.Zero(t, u, "%s/%s", q, m)
			}
		}
	}
}

func TestUtility_NotFound(t *testing.T) {
	md := referenceModel(t)

	_, err := md.Utilities.Utility("5z", Melody{"Adv", "LHLH"})
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "qud", nf.Kind)

	_, err = md.Utilities.Utility("4a", Melody{"Obj", "LHLH"})
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "melody", nf.Kind)

	_, err = md.Utilities.Row("5z")
	assert.Error(t, err)
}

func TestUtility_RowIsCopy(t *testing.T) {
	md := referenceModel(t)
	row, err := md.Utilities.Row("4a")
	require.NoError(t, err)
	require.Len(t, row, 36)
	assert.Equal(t, 0.5, row[0])

	row[0] = 42
	u, err := md.Utilities.Utility("4a", Melody{"Adv", "LHLH"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, u)
}

func TestNewUtilityCache_NilTable(t *testing.T) {
	_, err := NewUtilityCache(nil)
	assert.Error(t, err)
}
