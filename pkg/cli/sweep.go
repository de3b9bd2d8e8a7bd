package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/mchmarny/prosody/pkg/data"
	"github.com/mchmarny/prosody/pkg/model"
	urfave "github.com/urfave/cli/v3"
)

const (
	outputFileDefault = "predictions.csv"

	inputFlagName  = "input"
	outputFlagName = "output"
	targetFlagName = "target"
	minFlagName    = "min"
	maxFlagName    = "max"
	saveFlagName   = "save"
)

func inputFlag() *urfave.StringFlag {
	return &urfave.StringFlag{
		Name:     inputFlagName,
		Aliases:  []string{"i"},
		Usage:    "Path to the QUD compatibility CSV",
		Required: true,
	}
}

func sweepCommand() *urfave.Command {
	return &urfave.Command{
		Name:    "sweep",
		Aliases: []string{"s"},
		Usage:   "Compute projection probabilities for every melody over a rationality range",
		UsageText: `prosody sweep --input QUD-compatibility.csv                       # writes predictions.csv
   prosody sweep -i QUD-compatibility.csv -o out.csv --min 1 --max 20
   prosody --format table sweep -i QUD-compatibility.csv --save       # print and record the run`,
		Action: cmdSweep,
		Flags: []urfave.Flag{
			inputFlag(),
			&urfave.StringFlag{
				Name:    outputFlagName,
				Aliases: []string{"o"},
				Usage:   "Path of the predictions CSV to write (empty to skip)",
				Value:   outputFileDefault,
			},
			&urfave.StringFlag{
				Name:  targetFlagName,
				Usage: fmt.Sprintf("Target QUD (optional, default from config: %s)", model.DefaultTargetQUD),
			},
			&urfave.IntFlag{
				Name:  minFlagName,
				Usage: fmt.Sprintf("First rationality value (optional, default from config: %d)", model.DefaultMinRationality),
			},
			&urfave.IntFlag{
				Name:  maxFlagName,
				Usage: fmt.Sprintf("Last rationality value (optional, default from config: %d)", model.DefaultMaxRationality),
			},
			&urfave.BoolFlag{
				Name:  saveFlagName,
				Usage: "Record the run in the history database",
			},
		},
	}
}

// SweepSummary is the command output of a sweep.
type SweepSummary struct {
	Input    string             `json:"input" yaml:"input"`
	Output   string             `json:"output,omitempty" yaml:"output,omitempty"`
	RunID    string             `json:"run_id,omitempty" yaml:"runID,omitempty"`
	Duration string             `json:"duration" yaml:"duration"`
	Result   *model.SweepResult `json:"result" yaml:"result"`
}

func cmdSweep(ctx context.Context, cmd *urfave.Command) error {
	start := time.Now()
	cfg := getConfig(ctx)
	input := cmd.String(inputFlagName)
	output := cmd.String(outputFlagName)

	target := cfg.Config.TargetQUD()
	if cmd.IsSet(targetFlagName) {
		target = model.QUD(cmd.String(targetFlagName))
	}
	minR := cfg.Config.Rationality.Min
	if cmd.IsSet(minFlagName) {
		minR = cmd.Int(minFlagName)
	}
	maxR := cfg.Config.Rationality.Max
	if cmd.IsSet(maxFlagName) {
		maxR = cmd.Int(maxFlagName)
	}

	md, err := loadModel(cfg, input)
	if err != nil {
		return err
	}

	res, err := md.Sweep(target, minR, maxR)
	if err != nil {
		return fmt.Errorf("running sweep: %w", err)
	}

	summary := &SweepSummary{
		Input:  input,
		Result: res,
	}

	// the CSV is renamed into place inside the run transaction so a failed
	// write leaves no recorded run
	writeOutput := func() error {
		if output == "" {
			return nil
		}
		if err := data.SaveSweepFile(output, res); err != nil {
			return fmt.Errorf("writing predictions: %w", err)
		}
		summary.Output = output
		slog.Debug("predictions written", "path", output)
		return nil
	}

	if cmd.Bool(saveFlagName) {
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := data.SaveRun(db, input, res, func(*data.Run) error {
			return writeOutput()
		})
		if err != nil {
			if summary.Output != "" {
				// commit failed after the file was written
				if rerr := os.Remove(summary.Output); rerr != nil {
					slog.Debug("error removing predictions", "path", summary.Output, "error", rerr)
				}
			}
			return fmt.Errorf("saving run: %w", err)
		}
		summary.RunID = run.ID
		slog.Debug("run saved", "id", run.ID)
	} else if err := writeOutput(); err != nil {
		return err
	}

	summary.Duration = time.Since(start).String()
	return encode(cmd.Root().Writer, cfg, summary, func(w io.Writer, c *appConfig) error {
		return renderSweep(w, c, res)
	})
}

func loadModel(cfg *appConfig, input string) (*model.Model, error) {
	inv, err := cfg.Config.Inventory()
	if err != nil {
		return nil, err
	}

	table, err := data.LoadCompatibility(input, inv)
	if err != nil {
		return nil, err
	}

	md, err := model.New(table, cfg.Config.PriorFunc())
	if err != nil {
		return nil, fmt.Errorf("building model: %w", err)
	}
	return md, nil
}

func openDB(cfg *appConfig) (*sql.DB, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = path.Join(getHomeDir(), data.DataFileName)
	}

	if err := data.Init(dbPath); err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	db, err := data.GetDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}
