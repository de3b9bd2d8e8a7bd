package model

import (
	"math"

	"github.com/pkg/errors"
)

// Prior assigns an unnormalized weight to each QUD.
type Prior func(q QUD) float64

// UniformPrior gives every QUD the same weight.
func UniformPrior() Prior {
	return func(QUD) float64 { return 1 }
}

// WeightedPrior uses the given weights; QUDs missing from the map weigh 0.
func WeightedPrior(weights map[QUD]float64) Prior {
	return func(q QUD) float64 { return weights[q] }
}

// ListenerModel is the pragmatic listener: the posterior over QUDs given an
// observed melody, obtained by Bayesian inversion of the production model.
type ListenerModel struct {
	production *ProductionModel
	// prior[qud], normalized to sum to 1
	prior []float64
}

// NewListenerModel builds a listener over p. A nil prior means uniform.
func NewListenerModel(p *ProductionModel, prior Prior) (*ListenerModel, error) {
	if p == nil {
		return nil, errors.New("production model required")
	}
	if prior == nil {
		prior = UniformPrior()
	}

	inv := p.utilities.inv
	weights := make([]float64, inv.NumQUDs())
	var total float64
	for qi, q := range inv.quds {
		w := prior(q)
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, errors.Errorf("invalid prior weight for QUD %s: %v", q, w)
		}
		weights[qi] = w
		total += w
	}
	if total <= 0 {
		return nil, errors.New("prior weights must have a positive sum")
	}
	for qi := range weights {
		weights[qi] /= total
	}

	return &ListenerModel{production: p, prior: weights}, nil
}

// Prior returns the normalized prior probability of q.
func (l *ListenerModel) Prior(q QUD) (float64, error) {
	qi, err := l.production.utilities.inv.QUDIndex(q)
	if err != nil {
		return 0, err
	}
	return l.prior[qi], nil
}

// Posterior returns P(q | m, rationality).
func (l *ListenerModel) Posterior(q QUD, m Melody, rationality float64) (float64, error) {
	if err := checkRationality(rationality); err != nil {
		return 0, err
	}
	inv := l.production.utilities.inv
	qi, err := inv.QUDIndex(q)
	if err != nil {
		return 0, err
	}
	mi, err := inv.MelodyIndex(m)
	if err != nil {
		return 0, err
	}
	return l.posterior(qi, mi, rationality)
}

// Distribution returns P(q | m, rationality) for every QUD, in inventory
// order.
func (l *ListenerModel) Distribution(m Melody, rationality float64) ([]float64, error) {
	if err := checkRationality(rationality); err != nil {
		return nil, err
	}
	mi, err := l.production.utilities.inv.MelodyIndex(m)
	if err != nil {
		return nil, err
	}

	joint := make([]float64, len(l.prior))
	z, err := l.evidence(mi, rationality, joint)
	if err != nil {
		return nil, err
	}
	for qi := range joint {
		joint[qi] /= z
	}
	return joint, nil
}

func (l *ListenerModel) posterior(qi, mi int, rationality float64) (float64, error) {
	z, err := l.evidence(mi, rationality, nil)
	if err != nil {
		return 0, err
	}
	num := l.production.probability(mi, qi, rationality) * l.prior[qi]
	return num / z, nil
}

// evidence returns the marginal likelihood of mi over all QUDs. Production
// probabilities are positive and the prior has positive mass, so it is zero
// only when every term underflows at extreme rationality.
// When joint is non-nil it receives the per-QUD terms.
func (l *ListenerModel) evidence(mi int, rationality float64, joint []float64) (float64, error) {
	var z float64
	for qi := range l.prior {
		v := l.production.probability(mi, qi, rationality) * l.prior[qi]
		if joint != nil {
			joint[qi] = v
		}
		z += v
	}
	if z == 0 {
		return 0, errors.Wrapf(ErrInvalidRationality,
			"melody %s has zero likelihood under every QUD at rationality %v", l.production.utilities.inv.melodies[mi], rationality)
	}
	return z, nil
}
