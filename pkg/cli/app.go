package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mchmarny/prosody/pkg/config"
	"github.com/mchmarny/prosody/pkg/data"
	"github.com/mchmarny/prosody/pkg/logging"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName = "prosody"
	dirMode = 0700

	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"
)

const (
	debugFlagName  = "debug"
	configFlagName = "config"
	dbFlagName     = "db"
	formatFlagName = "format"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	app := newApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfigKey struct{}

type appConfig struct {
	Config *config.Config
	DBPath string
	Format string
}

func getConfig(ctx context.Context) *appConfig {
	if cfg, ok := ctx.Value(appConfigKey{}).(*appConfig); ok {
		return cfg
	}
	return &appConfig{Config: config.Default(), Format: formatJSON}
}

// newApp builds a fresh command tree on every call since flags keep parsed
// state.
func newApp() *urfave.Command {
	return &urfave.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Projection probabilities from tune/QUD compatibility with a rational speech act model",
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  debugFlagName,
				Usage: "Prints verbose logs (optional, default: false)",
			},
			&urfave.StringFlag{
				Name:  configFlagName,
				Usage: "Path to the YAML config file (optional, defaults to the reference inventory)",
			},
			&urfave.StringFlag{
				Name:  dbFlagName,
				Usage: fmt.Sprintf("Path to the Sqlite run history file (optional, defaults to $HOME/.%s/%s)", appName, data.DataFileName),
			},
			&urfave.StringFlag{
				Name:  formatFlagName,
				Usage: "Output format [json, yaml, table]",
				Value: formatJSON,
			},
		},
		Commands: []*urfave.Command{
			sweepCommand(),
			utilityCommand(),
			posteriorCommand(),
			historyCommand(),
			configCommand(),
		},
		Before: before,
	}
}

func before(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String(configFlagName))
	if err != nil {
		return ctx, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel
	if cmd.Bool(debugFlagName) {
		level = "debug"
	}
	logging.SetDefaultCLILogger(level)

	if err := cfg.Validate(); err != nil {
		return ctx, fmt.Errorf("invalid config: %w", err)
	}

	format := formatJSON
	switch f := cmd.String(formatFlagName); f {
	case formatJSON, "":
	case formatYAML, "yml":
		format = formatYAML
	case formatTable:
		format = formatTable
	default:
		return ctx, fmt.Errorf("unsupported format: %s", f)
	}

	return context.WithValue(ctx, appConfigKey{}, &appConfig{
		Config: cfg,
		DBPath: cmd.String(dbFlagName),
		Format: format,
	}), nil
}

func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Debug("error getting home dir, using current dir instead", "error", err)
		return "."
	}
	slog.Debug("home dir", "path", home)

	dirPath := filepath.Join(home, "."+appName)
	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dirPath)
		err := os.Mkdir(dirPath, dirMode)
		if err != nil {
			slog.Debug("error creating dir", "path", dirPath, "home", home, "error", err)
			return home
		}
	}
	return dirPath
}

// encode writes v in the selected format. Table output is delegated to
// table, which falls back to JSON when nil.
func encode(w io.Writer, cfg *appConfig, v any, table func(io.Writer, *appConfig) error) error {
	switch {
	case cfg.Format == formatTable && table != nil:
		return table(w, cfg)
	case cfg.Format == formatYAML:
		return yaml.NewEncoder(w).Encode(v)
	default:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(v)
	}
}
