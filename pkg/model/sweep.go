package model

import (
	"log/slog"

	"github.com/pkg/errors"
)

const (
	// DefaultMinRationality is the first rationality value of a sweep.
	DefaultMinRationality = 1
	// DefaultMaxRationality is the last rationality value of a sweep.
	DefaultMaxRationality = 10
)

// Model chains the four stages over one compatibility table.
type Model struct {
	Table      *CompatibilityTable
	Utilities  *UtilityCache
	Production *ProductionModel
	Listener   *ListenerModel
}

// New builds the utility cache, production and listener models for t.
// A nil prior means uniform.
func New(t *CompatibilityTable, prior Prior) (*Model, error) {
	cache, err := NewUtilityCache(t)
	if err != nil {
		return nil, errors.Wrap(err, "building utility cache")
	}
	production, err := NewProductionModel(cache)
	if err != nil {
		return nil, err
	}
	listener, err := NewListenerModel(production, prior)
	if err != nil {
		return nil, errors.Wrap(err, "building listener model")
	}
	return &Model{
		Table:      t,
		Utilities:  cache,
		Production: production,
		Listener:   listener,
	}, nil
}

// Projection returns the probability that a listener hearing m infers the
// target QUD at the given rationality.
func (md *Model) Projection(target QUD, m Melody, rationality float64) (float64, error) {
	return md.Listener.Posterior(target, m, rationality)
}

// SweepRow is the projection curve of one melody.
type SweepRow struct {
	Melody string    `json:"melody" yaml:"melody"`
	Values []float64 `json:"values" yaml:"values"`
}

// SweepResult holds projection probabilities for every melody at every
// rationality value of a sweep. Rows follow inventory melody order and
// Values follow Rationalities.
type SweepResult struct {
	Target        QUD        `json:"target" yaml:"target"`
	Rationalities []int      `json:"rationalities" yaml:"rationalities"`
	Rows          []SweepRow `json:"rows" yaml:"rows"`
}

// Sweep evaluates the projection of target for every melody and every integer
// rationality in [minR, maxR].
func (md *Model) Sweep(target QUD, minR, maxR int) (*SweepResult, error) {
	if minR < 0 || maxR < minR {
		return nil, errors.Wrapf(ErrInvalidRationality, "invalid sweep range [%d, %d]", minR, maxR)
	}
	inv := md.Utilities.inv
	qi, err := inv.QUDIndex(target)
	if err != nil {
		return nil, errors.Wrap(err, "resolving target QUD")
	}

	res := &SweepResult{
		Target:        target,
		Rationalities: make([]int, 0, maxR-minR+1),
		Rows:          make([]SweepRow, inv.NumMelodies()),
	}
	for r := minR; r <= maxR; r++ {
		res.Rationalities = append(res.Rationalities, r)
	}

	for mi, m := range inv.melodies {
		row := SweepRow{
			Melody: m.String(),
			Values: make([]float64, len(res.Rationalities)),
		}
		for col, r := range res.Rationalities {
			v, err := md.Listener.posterior(qi, mi, float64(r))
			if err != nil {
				return nil, errors.Wrapf(err, "projecting %s", m)
			}
			row.Values[col] = v
		}
		res.Rows[mi] = row
	}

	slog.Debug("sweep complete", "target", target, "melodies", len(res.Rows), "rationalities", len(res.Rationalities))
	return res, nil
}
