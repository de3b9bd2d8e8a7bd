package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mchmarny/prosody/pkg/data"
	"github.com/mchmarny/prosody/pkg/model"
	urfave "github.com/urfave/cli/v3"
)

const (
	historyLimitDefault = 20

	limitFlagName  = "limit"
	runIDFlagName  = "id"
	exportFlagName = "output"
)

func historyCommand() *urfave.Command {
	return &urfave.Command{
		Name:    "history",
		Aliases: []string{"hist"},
		Usage:   "List and show recorded sweep runs",
		Commands: []*urfave.Command{
			{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "List recorded runs, most recent first",
				Action:  cmdHistoryList,
				Flags: []urfave.Flag{
					&urfave.IntFlag{
						Name:  limitFlagName,
						Usage: "Limits number of runs returned",
						Value: historyLimitDefault,
					},
				},
			},
			{
				Name:    "show",
				Aliases: []string{"s"},
				Usage:   "Show a recorded run and its projection table",
				Action:  cmdHistoryShow,
				Flags: []urfave.Flag{
					&urfave.StringFlag{
						Name:     runIDFlagName,
						Usage:    "Run ID",
						Required: true,
					},
					&urfave.StringFlag{
						Name:    exportFlagName,
						Aliases: []string{"o"},
						Usage:   "Also write the stored predictions CSV to this path",
					},
				},
			},
			resetCommand(),
		},
	}
}

// RunDetail is a stored run with its projection table.
type RunDetail struct {
	Run    *data.Run          `json:"run" yaml:"run"`
	Result *model.SweepResult `json:"result" yaml:"result"`
}

func cmdHistoryList(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := data.ListRuns(db, cmd.Int(limitFlagName))
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	return encode(cmd.Root().Writer, cfg, runs, func(w io.Writer, c *appConfig) error {
		return renderRuns(w, c, runs)
	})
}

func cmdHistoryShow(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	run, res, err := data.GetRun(db, cmd.String(runIDFlagName))
	if err != nil {
		return fmt.Errorf("getting run: %w", err)
	}

	if out := cmd.String(exportFlagName); out != "" {
		if err := data.SaveSweepFile(out, res); err != nil {
			return fmt.Errorf("writing predictions: %w", err)
		}
	}

	return encode(cmd.Root().Writer, cfg, &RunDetail{Run: run, Result: res}, func(w io.Writer, c *appConfig) error {
		return renderSweep(w, c, res)
	})
}
