package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mchmarny/prosody/pkg/config"
	urfave "github.com/urfave/cli/v3"
)

const configPathFlagName = "path"

func configCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "config",
		Usage: "Manage the model configuration",
		Commands: []*urfave.Command{
			{
				Name:   "init",
				Usage:  "Write the reference configuration to a YAML file",
				Action: cmdConfigInit,
				Flags: []urfave.Flag{
					&urfave.StringFlag{
						Name:  configPathFlagName,
						Usage: "Where to write the config file",
						Value: config.FileName,
					},
				},
			},
		},
	}
}

func cmdConfigInit(_ context.Context, cmd *urfave.Command) error {
	p := cmd.String(configPathFlagName)
	if err := config.Save(p, config.Default()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	slog.Info("config written", "path", p)
	return nil
}
