package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/mchmarny/prosody/pkg/data"
	urfave "github.com/urfave/cli/v3"
)

const yesFlagName = "yes"

func resetCommand() *urfave.Command {
	return &urfave.Command{
		Name:   "reset",
		Usage:  "Delete all recorded runs and start fresh",
		Action: cmdReset,
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  yesFlagName,
				Usage: "Skip the confirmation prompt",
			},
		},
	}
}

func cmdReset(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(ctx)
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = path.Join(getHomeDir(), data.DataFileName)
	}
	out := cmd.Root().Writer

	if !cmd.Bool(yesFlagName) {
		fmt.Fprintf(out, "This will permanently delete all runs in %s\n", dbPath)
		fmt.Fprint(out, "Are you sure? [y/N]: ")

		reader := bufio.NewReader(cmd.Root().Reader)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting database: %w", err)
	}
	slog.Info("database deleted", "path", dbPath)

	if err := data.Init(dbPath); err != nil {
		return fmt.Errorf("re-initializing database: %w", err)
	}
	slog.Info("database re-initialized", "path", dbPath)
	return nil
}
