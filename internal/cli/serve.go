package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/lewisedginton/zapbot/internal/nameservice"
	"github.com/lewisedginton/zapbot/internal/server"
	"github.com/lewisedginton/zapbot/pkg/logger"
	"github.com/lewisedginton/zapbot/pkg/metrics"
)

// ServeCommand exposes the agent over HTTP until interrupted.
func ServeCommand(opts Options) *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serve the intent API over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Listen port (overrides HTTP_PORT)",
				Aliases: []string{"p"},
			},
		},
		Action: func(c *cli.Context) error {
			log := getLogger(c)

			cfg, err := loadConfig(c)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if c.IsSet("port") {
				cfg.HTTP.Port = c.Int("port")
				if err := cfg.HTTP.Validate(); err != nil {
					return fmt.Errorf("invalid port: %w", err)
				}
			}
			cfg.LogConfig(log)

			var m *metrics.Metrics
			if cfg.Metrics.Enabled {
				m = metrics.New()
			}

			handler, err := buildHandler(c.Context, cfg, log, m, opts.NewModel)
			if err != nil {
				return err
			}

			var opts []server.Option
			if cfg.Chain.Enabled() {
				names, err := nameservice.Dial(c.Context, cfg.Chain, log)
				if err != nil {
					return fmt.Errorf("failed to set up name resolution: %w", err)
				}
				defer names.Close()
				opts = append(opts, server.WithNameResolver(names))
			}

			srv, err := server.New(cfg, handler, log, m, opts...)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			log.Info("Starting zapbot", logger.IntField("port", cfg.HTTP.Port))
			return srv.Run(c.Context)
		},
	}
}
