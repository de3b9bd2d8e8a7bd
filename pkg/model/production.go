package model

import (
	"math"

	"github.com/pkg/errors"
)

// ProductionModel is the soft-max speaker: the probability of producing each
// melody given the intended QUD and a rationality parameter.
type ProductionModel struct {
	utilities *UtilityCache
}

// NewProductionModel returns a speaker reading from the utility cache.
func NewProductionModel(c *UtilityCache) (*ProductionModel, error) {
	if c == nil {
		return nil, errors.New("utility cache required")
	}
	return &ProductionModel{utilities: c}, nil
}

// Probability returns P(m | q, rationality).
func (p *ProductionModel) Probability(m Melody, q QUD, rationality float64) (float64, error) {
	if err := checkRationality(rationality); err != nil {
		return 0, err
	}
	inv := p.utilities.inv
	qi, err := inv.QUDIndex(q)
	if err != nil {
		return 0, err
	}
	mi, err := inv.MelodyIndex(m)
	if err != nil {
		return 0, err
	}
	return p.probability(mi, qi, rationality), nil
}

// Distribution returns P(m | q, rationality) for every melody, in inventory
// order.
func (p *ProductionModel) Distribution(q QUD, rationality float64) ([]float64, error) {
	if err := checkRationality(rationality); err != nil {
		return nil, err
	}
	qi, err := p.utilities.inv.QUDIndex(q)
	if err != nil {
		return nil, err
	}

	n := p.utilities.inv.NumMelodies()
	weights := make([]float64, n)
	z := p.normalizer(qi, rationality, weights)
	for mi := range weights {
		weights[mi] /= z
	}
	return weights, nil
}

func (p *ProductionModel) probability(mi, qi int, rationality float64) float64 {
	shift := p.maxUtility(qi)
	num := math.Exp(rationality * (p.utilities.at(qi, mi) - shift))
	return num / p.normalizer(qi, rationality, nil)
}

// normalizer returns the soft-max denominator for qi. Exponents are shifted by
// the largest utility so the leading term is exp(0) and the sum is at least 1.
// When weights is non-nil it receives the unnormalized terms.
func (p *ProductionModel) normalizer(qi int, rationality float64, weights []float64) float64 {
	shift := p.maxUtility(qi)
	var z float64
	for mi := range p.utilities.inv.melodies {
		w := math.Exp(rationality * (p.utilities.at(qi, mi) - shift))
		if weights != nil {
			weights[mi] = w
		}
		z += w
	}
	return z
}

func (p *ProductionModel) maxUtility(qi int) float64 {
	best := 0.0
	for _, u := range p.utilities.values[qi] {
		if u > best {
			best = u
		}
	}
	return best
}

func checkRationality(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return errors.Wrapf(ErrInvalidRationality, "rationality must be a finite non-negative number, got %v", r)
	}
	return nil
}
