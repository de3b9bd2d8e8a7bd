// Package model implements the rational speech act projection model: literal
// tune/QUD compatibility, cached speaker utility, soft-max production, a
// Bayesian listener and the rationality sweep over projection probabilities.
package model

import (
	"strings"

	"github.com/pkg/errors"
)

// DefaultTargetQUD is the label of the QUD that entails the prejacent.
const DefaultTargetQUD QUD = "4a"

var (
	// DefaultQUDs is the reference QUD label set, in input column order.
	DefaultQUDs = []QUD{"1a", "2", "3a", "3b", "3d", "4a", "1aN", "3aN", "3bN", "4aN"}

	// DefaultCategories are the syntactic focus categories, in input row order.
	DefaultCategories = []string{"Adv", "V", "Aux", "Subj"}

	// DefaultPatterns are the pitch accent sequences, in input row order.
	DefaultPatterns = []string{"LHLH", "LHHL", "LHLL", "HLH", "HHL", "HLL", "LLH", "LHL", "LLL"}
)

// QUD is a question-under-discussion label.
type QUD string

// Melody is a syntactic category paired with a pitch accent sequence.
type Melody struct {
	Category string `json:"category" yaml:"category"`
	Pattern  string `json:"pattern" yaml:"pattern"`
}

func (m Melody) String() string {
	return m.Category + " " + m.Pattern
}

// ParseMelody parses the "<Category> <Pattern>" form, e.g. "Adv LHLH".
func ParseMelody(s string) (Melody, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return Melody{}, errors.Errorf("invalid melody %q, expected \"<category> <pattern>\"", s)
	}
	return Melody{Category: parts[0], Pattern: parts[1]}, nil
}

// Inventory holds the closed sets of QUDs and melodies the model is defined
// over. Melodies are generated category-major: every pattern of the first
// category, then every pattern of the second, and so on.
type Inventory struct {
	quds        []QUD
	melodies    []Melody
	qudIndex    map[QUD]int
	melodyIndex map[Melody]int
	patterns    map[string]struct{}
}

// NewInventory validates the label sets and generates the melody list.
func NewInventory(quds []QUD, categories, patterns []string) (*Inventory, error) {
	if len(quds) == 0 {
		return nil, errors.New("at least one QUD required")
	}
	if len(categories) == 0 || len(patterns) == 0 {
		return nil, errors.New("at least one category and one pattern required")
	}

	inv := &Inventory{
		quds:        make([]QUD, 0, len(quds)),
		melodies:    make([]Melody, 0, len(categories)*len(patterns)),
		qudIndex:    make(map[QUD]int, len(quds)),
		melodyIndex: make(map[Melody]int, len(categories)*len(patterns)),
		patterns:    make(map[string]struct{}, len(patterns)),
	}

	for _, q := range quds {
		if q == "" {
			return nil, errors.New("empty QUD label")
		}
		if _, ok := inv.qudIndex[q]; ok {
			return nil, errors.Errorf("duplicate QUD label: %s", q)
		}
		inv.qudIndex[q] = len(inv.quds)
		inv.quds = append(inv.quds, q)
	}

	for _, c := range categories {
		for _, p := range patterns {
			if strings.ContainsAny(c, " \t") || strings.ContainsAny(p, " \t") || c == "" || p == "" {
				return nil, errors.Errorf("invalid melody component: category=%q pattern=%q", c, p)
			}
			m := Melody{Category: c, Pattern: p}
			if _, ok := inv.melodyIndex[m]; ok {
				return nil, errors.Errorf("duplicate melody: %s", m)
			}
			inv.melodyIndex[m] = len(inv.melodies)
			inv.melodies = append(inv.melodies, m)
			inv.patterns[p] = struct{}{}
		}
	}

	return inv, nil
}

// DefaultInventory returns the reference 10 QUD x 36 melody inventory.
func DefaultInventory() *Inventory {
	inv, err := NewInventory(DefaultQUDs, DefaultCategories, DefaultPatterns)
	if err != nil {
		panic(err)
	}
	return inv
}

// QUDs returns a copy of the QUD labels in order.
func (inv *Inventory) QUDs() []QUD {
	return append([]QUD(nil), inv.quds...)
}

// Melodies returns a copy of the melodies in order.
func (inv *Inventory) Melodies() []Melody {
	return append([]Melody(nil), inv.melodies...)
}

// NumQUDs returns the size of the QUD set.
func (inv *Inventory) NumQUDs() int {
	return len(inv.quds)
}

// NumMelodies returns the size of the melody set.
func (inv *Inventory) NumMelodies() int {
	return len(inv.melodies)
}

// QUDIndex returns the position of q, or a NotFoundError.
func (inv *Inventory) QUDIndex(q QUD) (int, error) {
	i, ok := inv.qudIndex[q]
	if !ok {
		return 0, qudNotFound(q)
	}
	return i, nil
}

// MelodyIndex returns the position of m, or a NotFoundError.
func (inv *Inventory) MelodyIndex(m Melody) (int, error) {
	i, ok := inv.melodyIndex[m]
	if !ok {
		return 0, melodyNotFound(m)
	}
	return i, nil
}

// HasQUD reports whether q is part of the inventory.
func (inv *Inventory) HasQUD(q QUD) bool {
	_, ok := inv.qudIndex[q]
	return ok
}

// LookupMelody parses s and resolves it against the inventory.
func (inv *Inventory) LookupMelody(s string) (Melody, error) {
	m, err := ParseMelody(s)
	if err != nil {
		return Melody{}, &NotFoundError{Kind: "melody", Key: s}
	}
	if _, ok := inv.melodyIndex[m]; !ok {
		return Melody{}, melodyNotFound(m)
	}
	return m, nil
}

func (inv *Inventory) hasPattern(p string) bool {
	_, ok := inv.patterns[p]
	return ok
}
