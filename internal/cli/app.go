// Package cli implements the zapbot command line.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"google.golang.org/adk/model"

	"github.com/lewisedginton/zapbot/internal/config"
	"github.com/lewisedginton/zapbot/internal/models"
	"github.com/lewisedginton/zapbot/pkg/logger"
)

// ModelFactory creates the LLM that backs the agent.
type ModelFactory func(ctx context.Context, cfg *config.AppConfig, log logger.Logger) (model.LLM, error)

// Options wires the application to its process environment.
type Options struct {
	Version  string
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	NewModel ModelFactory // defaults to models.New
}

// NewApp builds the zapbot application. Running it without a subcommand
// behaves like "ask".
func NewApp(opts Options) *cli.App {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.NewModel == nil {
		opts.NewModel = models.New
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	return &cli.App{
		Name:      "zapbot",
		Usage:     "Send money by describing the payment in plain language",
		Version:   opts.Version,
		Reader:    opts.Stdin,
		Writer:    opts.Stdout,
		ErrWriter: opts.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "json",
				Usage:   "Log format (json, text)",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "config-file",
				Usage:   "Path to an optional YAML configuration file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Before: func(c *cli.Context) error {
			return setupLogger(c, opts.Stderr)
		},
		Action: askAction(opts),
		Commands: []*cli.Command{
			AskCommand(opts),
			ServeCommand(opts),
			ConfigCommand(),
		},
	}
}

// loadConfig reads the configuration named by --config-file, or the
// environment alone when the flag is empty.
func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	return config.Load(c.String("config-file"))
}
