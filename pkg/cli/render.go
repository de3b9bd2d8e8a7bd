package cli

import (
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mchmarny/prosody/pkg/data"
	"github.com/mchmarny/prosody/pkg/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	tablePadding   = 2
	probabilityFmt = "%.4f"
	timeFmt        = "2006-01-02 15:04:05"
)

// printer formats numbers for the configured locale. Unknown locales fall back
// to English.
func printer(cfg *appConfig) *message.Printer {
	tag, err := language.Parse(cfg.Config.Locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, tablePadding, ' ', 0)
}

func writeRow(tw *tabwriter.Writer, cells ...string) error {
	_, err := io.WriteString(tw, strings.Join(cells, "\t")+"\n")
	return err
}

func renderSweep(w io.Writer, cfg *appConfig, res *model.SweepResult) error {
	p := printer(cfg)
	tw := newTable(w)

	header := []string{"MELODY \\ R"}
	for _, r := range res.Rationalities {
		header = append(header, strconv.Itoa(r))
	}
	if err := writeRow(tw, header...); err != nil {
		return err
	}

	for _, row := range res.Rows {
		cells := []string{row.Melody}
		for _, v := range row.Values {
			cells = append(cells, p.Sprintf(probabilityFmt, v))
		}
		if err := writeRow(tw, cells...); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func renderUtilities(w io.Writer, cfg *appConfig, quds []model.QUD, rows []*UtilityRow) error {
	p := printer(cfg)
	tw := newTable(w)

	header := []string{"MELODY", "K"}
	for _, q := range quds {
		header = append(header, string(q))
	}
	if err := writeRow(tw, header...); err != nil {
		return err
	}

	for _, row := range rows {
		cells := []string{row.Melody, strconv.Itoa(row.Count)}
		for _, q := range quds {
			cells = append(cells, p.Sprintf(probabilityFmt, row.Utilities[string(q)]))
		}
		if err := writeRow(tw, cells...); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func renderPosterior(w io.Writer, cfg *appConfig, res *PosteriorResult) error {
	p := printer(cfg)
	tw := newTable(w)

	if err := writeRow(tw, "QUD", "PRIOR", "POSTERIOR"); err != nil {
		return err
	}
	for _, e := range res.Posterior {
		if err := writeRow(tw, string(e.QUD), p.Sprintf(probabilityFmt, e.Prior), p.Sprintf(probabilityFmt, e.Probability)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func renderRuns(w io.Writer, _ *appConfig, runs []*data.Run) error {
	tw := newTable(w)

	if err := writeRow(tw, "ID", "CREATED", "TARGET", "RATIONALITY", "MELODIES", "INPUT"); err != nil {
		return err
	}
	for _, r := range runs {
		err := writeRow(tw,
			r.ID,
			r.CreatedAt.Format(timeFmt),
			r.Target,
			strconv.Itoa(r.MinRationality)+"-"+strconv.Itoa(r.MaxRationality),
			strconv.Itoa(r.Melodies),
			r.Input,
		)
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}
