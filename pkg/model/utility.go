package model

import (
	"log/slog"

	"github.com/pkg/errors"
)

// UtilityCache holds the speaker utility of every (QUD, melody) pair. It is
// populated once from a CompatibilityTable and never recomputed.
type UtilityCache struct {
	inv *Inventory
	// values[qud][melody]
	values [][]float64
	// counts[melody] is the number of QUDs compatible with the melody.
	counts []int
}

// NewUtilityCache derives the utility of every pair in the table's inventory.
func NewUtilityCache(t *CompatibilityTable) (*UtilityCache, error) {
	if t == nil {
		return nil, errors.New("compatibility table required")
	}
	if err := t.checkDegenerate(); err != nil {
		return nil, err
	}

	inv := t.inv
	c := &UtilityCache{
		inv:    inv,
		values: make([][]float64, inv.NumQUDs()),
		counts: make([]int, inv.NumMelodies()),
	}
	for mi := range inv.melodies {
		c.counts[mi] = countTrue(t.compatible[mi])
	}
	for qi := range inv.quds {
		c.values[qi] = make([]float64, inv.NumMelodies())
		for mi := range inv.melodies {
			c.values[qi][mi] = speakerUtility(t, qi, mi)
		}
	}

	slog.Debug("utility cache populated", "pairs", inv.NumQUDs()*inv.NumMelodies())
	return c, nil
}

// speakerUtility is the probability that a literal listener, picking uniformly
// among the QUDs compatible with the melody, recovers the intended QUD.
// Only used while populating the cache; the table must be non-degenerate.
func speakerUtility(t *CompatibilityTable, qi, mi int) float64 {
	row := t.compatible[mi]
	if !row[qi] {
		return 0
	}
	return 1 / float64(countTrue(row))
}

// Inventory returns the inventory the cache is defined over.
func (c *UtilityCache) Inventory() *Inventory {
	return c.inv
}

// Utility returns the cached speaker utility of m for conveying q.
func (c *UtilityCache) Utility(q QUD, m Melody) (float64, error) {
	qi, err := c.inv.QUDIndex(q)
	if err != nil {
		return 0, err
	}
	mi, err := c.inv.MelodyIndex(m)
	if err != nil {
		return 0, err
	}
	return c.values[qi][mi], nil
}

// Count returns the number of QUDs compatible with m.
func (c *UtilityCache) Count(m Melody) (int, error) {
	mi, err := c.inv.MelodyIndex(m)
	if err != nil {
		return 0, err
	}
	return c.counts[mi], nil
}

// Row returns the utilities of every melody for q, in inventory order.
func (c *UtilityCache) Row(q QUD) ([]float64, error) {
	qi, err := c.inv.QUDIndex(q)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), c.values[qi]...), nil
}

func (c *UtilityCache) at(qi, mi int) float64 {
	return c.values[qi][mi]
}
