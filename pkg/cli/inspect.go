package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mchmarny/prosody/pkg/model"
	urfave "github.com/urfave/cli/v3"
)

const (
	melodyFlagName      = "melody"
	rationalityFlagName = "rationality"
)

func melodyFlag(required bool) *urfave.StringFlag {
	return &urfave.StringFlag{
		Name:     melodyFlagName,
		Aliases:  []string{"m"},
		Usage:    "Melody as \"<category> <pattern>\", e.g. \"Adv LHLH\"",
		Required: required,
	}
}

func utilityCommand() *urfave.Command {
	return &urfave.Command{
		Name:    "utility",
		Aliases: []string{"u"},
		Usage:   "Show compatible QUDs and speaker utilities per melody",
		Action:  cmdUtility,
		Flags: []urfave.Flag{
			inputFlag(),
			melodyFlag(false),
		},
	}
}

func posteriorCommand() *urfave.Command {
	return &urfave.Command{
		Name:    "posterior",
		Aliases: []string{"p"},
		Usage:   "Show the listener posterior over QUDs for a melody",
		Action:  cmdPosterior,
		Flags: []urfave.Flag{
			inputFlag(),
			melodyFlag(true),
			&urfave.FloatFlag{
				Name:    rationalityFlagName,
				Aliases: []string{"r"},
				Usage:   "Rationality parameter (non-negative)",
				Value:   1,
			},
		},
	}
}

// UtilityRow lists the literal compatibility and speaker utilities of a melody.
type UtilityRow struct {
	Melody     string             `json:"melody" yaml:"melody"`
	Count      int                `json:"count" yaml:"count"`
	Compatible []model.QUD        `json:"compatible" yaml:"compatible"`
	Utilities  map[string]float64 `json:"utilities" yaml:"utilities"`
}

// QUDProbability is one entry of a distribution over QUDs.
type QUDProbability struct {
	QUD         model.QUD `json:"qud" yaml:"qud"`
	Prior       float64   `json:"prior" yaml:"prior"`
	Probability float64   `json:"probability" yaml:"probability"`
}

// PosteriorResult is the listener distribution for one melody.
type PosteriorResult struct {
	Melody      string           `json:"melody" yaml:"melody"`
	Rationality float64          `json:"rationality" yaml:"rationality"`
	Posterior   []QUDProbability `json:"posterior" yaml:"posterior"`
}

func cmdUtility(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)
	md, err := loadModel(cfg, cmd.String(inputFlagName))
	if err != nil {
		return err
	}
	inv := md.Utilities.Inventory()

	var rows []*UtilityRow
	if s := cmd.String(melodyFlagName); s != "" {
		m, err := inv.LookupMelody(s)
		if err != nil {
			return err
		}
		row, err := utilityRow(md, m)
		if err != nil {
			return err
		}
		for _, q := range inv.QUDs() {
			u, err := md.Utilities.Utility(q, m)
			if err != nil {
				return err
			}
			row.Utilities[string(q)] = u
		}
		rows = []*UtilityRow{row}
	} else {
		// all melodies: read one cached QUD row at a time
		quds := inv.QUDs()
		byQUD := make([][]float64, len(quds))
		for qi, q := range quds {
			if byQUD[qi], err = md.Utilities.Row(q); err != nil {
				return err
			}
		}
		for mi, m := range inv.Melodies() {
			row, err := utilityRow(md, m)
			if err != nil {
				return err
			}
			for qi, q := range quds {
				row.Utilities[string(q)] = byQUD[qi][mi]
			}
			rows = append(rows, row)
		}
	}

	return encode(cmd.Root().Writer, cfg, rows, func(w io.Writer, c *appConfig) error {
		return renderUtilities(w, c, inv.QUDs(), rows)
	})
}

func utilityRow(md *model.Model, m model.Melody) (*UtilityRow, error) {
	compatible, err := md.Table.CompatibleQUDs(m)
	if err != nil {
		return nil, err
	}
	count, err := md.Utilities.Count(m)
	if err != nil {
		return nil, err
	}
	return &UtilityRow{
		Melody:     m.String(),
		Count:      count,
		Compatible: compatible,
		Utilities:  make(map[string]float64, md.Utilities.Inventory().NumQUDs()),
	}, nil
}

func cmdPosterior(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)
	md, err := loadModel(cfg, cmd.String(inputFlagName))
	if err != nil {
		return err
	}
	inv := md.Utilities.Inventory()

	m, err := inv.LookupMelody(cmd.String(melodyFlagName))
	if err != nil {
		return err
	}
	r := cmd.Float(rationalityFlagName)

	dist, err := md.Listener.Distribution(m, r)
	if err != nil {
		return fmt.Errorf("computing posterior for %s: %w", m, err)
	}

	res := &PosteriorResult{
		Melody:      m.String(),
		Rationality: r,
		Posterior:   make([]QUDProbability, 0, len(dist)),
	}
	for i, q := range inv.QUDs() {
		prior, err := md.Listener.Prior(q)
		if err != nil {
			return err
		}
		res.Posterior = append(res.Posterior, QUDProbability{QUD: q, Prior: prior, Probability: dist[i]})
	}

	return encode(cmd.Root().Writer, cfg, res, func(w io.Writer, c *appConfig) error {
		return renderPosterior(w, c, res)
	})
}
