package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListener_UniformPrior(t *testing.T) {
	md := referenceModel(t)

	for _, q := range md.Utilities.Inventory().QUDs() {
		p, err := md.Listener.Prior(q)
		require.NoError(t, err)
		assert.Equal(t, 0.1, p)
	}

	_, err := md.Listener.Prior("nope")
	assert.Error(t, err)
}

func TestListener_PosteriorSumsToOne(t *testing.T) {
	md := referenceModel(t)
	inv := md.Utilities.Inventory()

	for _, m := range inv.Melodies() {
		for _, r := range []float64{0, 1, 5, 10} {
			var total float64
			for _, q := range inv.QUDs() {
				p, err := md.Listener.Posterior(q, m, r)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, p, 0.0)
				assert.LessOrEqual(t, p, 1.0)
				total += p
			}
			assert.InDelta(t, 1.0, total, tolerance, "melody=%s r=%v", m, r)

			dist, err := md.Listener.Distribution(m, r)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, sum(dist), tolerance)
		}
	}
}

func TestListener_MatchesBayes(t *testing.T) {
	md := toyModel(t)
	a := Melody{"X", "A"}

	pq1 := math.Exp(0.5) / (math.Exp(0.5) + math.Exp(0))
	pq2 := math.Exp(0.5) / (math.Exp(0.5) + math.Exp(1))
	want := pq1 * 0.5 / (pq1*0.5 + pq2*0.5)

	got, err := md.Listener.Posterior("q1", a, 1)
	require.NoError(t, err)
	assert.InDelta(t, want, got, tolerance)

	got, err = md.Projection("q1", a, 1)
	require.NoError(t, err)
	assert.InDelta(t, want, got, tolerance)
}

func TestListener_WeightedPrior(t *testing.T) {
	md := toyModel(t)
	listener, err := NewListenerModel(md.Production, WeightedPrior(map[QUD]float64{"q1": 3, "q2": 1}))
	require.NoError(t, err)

	p, err := listener.Prior("q1")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, p, tolerance)

	a := Melody{"X", "A"}
	uniform, err := md.Listener.Posterior("q1", a, 1)
	require.NoError(t, err)
	weighted, err := listener.Posterior("q1", a, 1)
	require.NoError(t, err)
	assert.Greater(t, weighted, uniform)

	dist, err := listener.Distribution(a, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sum(dist), tolerance)
}

func TestListener_InvalidPrior(t *testing.T) {
	md := toyModel(t)

	tests := []struct {
		name  string
		prior Prior
	}{
		{"all zero", WeightedPrior(map[QUD]float64{})},
		{"negative", WeightedPrior(map[QUD]float64{"q1": -1, "q2": 2})},
		{"nan", func(QUD) float64 { return math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewListenerModel(md.Production, tt.prior)
			assert.Error(t, err)
		})
	}

	_, err := NewListenerModel(nil, nil)
	assert.Error(t, err)
}

func TestListener_Errors(t *testing.T) {
	md := referenceModel(t)

	_, err := md.Listener.Posterior("4a", Melody{"Adv", "LHLH"}, -2)
	assert.True(t, errors.Is(err, ErrInvalidRationality))

	_, err = md.Listener.Posterior("4a", Melody{"Obj", "LHLH"}, 1)
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))

	_, err = md.Listener.Distribution(Melody{"Obj", "LHLH"}, 1)
	assert.True(t, errors.As(err, &nf))
}

func TestListener_EvidenceUnderflow(t *testing.T) {
	// "X A" is never the most informative melody, so at extreme rationality
	// its likelihood underflows under every QUD.
	inv, err := NewInventory([]QUD{"q1", "q2"}, []string{"X"}, []string{"A", "B", "C"})
	require.NoError(t, err)
	table, err := NewCompatibilityTable(inv, [][]bool{
		{true, true},
		{true, false},
		{false, true},
	})
	require.NoError(t, err)
	md, err := New(table, nil)
	require.NoError(t, err)

	const r = 10000

	_, err = md.Listener.Posterior("q1", Melody{"X", "A"}, r)
	assert.True(t, errors.Is(err, ErrInvalidRationality), "got %v", err)

	_, err = md.Listener.Distribution(Melody{"X", "A"}, r)
	assert.True(t, errors.Is(err, ErrInvalidRationality), "got %v", err)

	_, err = md.Sweep("q1", r, r)
	assert.True(t, errors.Is(err, ErrInvalidRationality), "got %v", err)

	p, err := md.Listener.Posterior("q1", Melody{"X", "B"}, r)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p, tolerance)
}
