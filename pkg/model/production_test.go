package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduction_SumsToOne(t *testing.T) {
	md := referenceModel(t)
	inv := md.Utilities.Inventory()

	for _, q := range inv.QUDs() {
		for _, r := range []float64{0.5, 1, 3, 10, 50} {
			var total float64
			for _, m := range inv.Melodies() {
				p, err := md.Production.Probability(m, q, r)
				require.NoError(t, err)
				assert.Greater(t, p, 0.0)
				assert.LessOrEqual(t, p, 1.0)
				total += p
			}
			assert.InDelta(t, 1.0, total, tolerance, "qud=%s r=%v", q, r)

			dist, err := md.Production.Distribution(q, r)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, sum(dist), tolerance)
		}
	}
}

func TestProduction_MatchesFormula(t *testing.T) {
	md := toyModel(t)

	// U(q1, X A) = 0.5, U(q1, X B) = 0
	got, err := md.Production.Probability(Melody{"X", "A"}, "q1", 2)
	require.NoError(t, err)
	want := math.Exp(1) / (math.Exp(1) + math.Exp(0))
	assert.InDelta(t, want, got, tolerance)

	// U(q2, X A) = 0.5, U(q2, X B) = 1
	got, err = md.Production.Probability(Melody{"X", "B"}, "q2", 1)
	require.NoError(t, err)
	want = math.Exp(1) / (math.Exp(0.5) + math.Exp(1))
	assert.InDelta(t, want, got, tolerance)
}

func TestProduction_ZeroRationalityIsUniform(t *testing.T) {
	md := referenceModel(t)

	dist, err := md.Production.Distribution("4a", 0)
	require.NoError(t, err)
	for _, p := range dist {
		assert.InDelta(t, 1.0/36, p, tolerance)
	}
}

func TestProduction_Sharpening(t *testing.T) {
	md := referenceModel(t)
	q := QUD("4a")

	row, err := md.Utilities.Row(q)
	require.NoError(t, err)
	best := 0.0
	for _, u := range row {
		best = math.Max(best, u)
	}

	low, err := md.Production.Distribution(q, 1)
	require.NoError(t, err)
	high, err := md.Production.Distribution(q, 1000)
	require.NoError(t, err)

	var lowMass, highMass float64
	for mi, u := range row {
		if u == best {
			lowMass += low[mi]
			highMass += high[mi]
		}
	}
	assert.Greater(t, highMass, lowMass)
	assert.InDelta(t, 1.0, highMass, 1e-6)
	assert.InDelta(t, 1.0, sum(high), tolerance)
}

func TestProduction_InvalidRationality(t *testing.T) {
	md := referenceModel(t)
	m := Melody{"Adv", "LHLH"}

	for _, r := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := md.Production.Probability(m, "4a", r)
		assert.True(t, errors.Is(err, ErrInvalidRationality), "r=%v", r)
	}

	_, err := md.Production.Probability(Melody{"Adv", "ZZZ"}, "4a", 1)
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))

	_, err = md.Production.Distribution("zz", 1)
	assert.True(t, errors.As(err, &nf))
}

func TestNewProductionModel_NilCache(t *testing.T) {
	_, err := NewProductionModel(nil)
	assert.Error(t, err)
}
