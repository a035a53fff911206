package cli

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/lewisedginton/zapbot/pkg/logger"
)

const loggerKey = "logger"

// getLogger retrieves the logger from the CLI context metadata
func getLogger(c *cli.Context) logger.Logger {
	if c.App.Metadata != nil {
		if log, ok := c.App.Metadata[loggerKey].(logger.Logger); ok {
			return log
		}
	}
	return logger.NewLogger(logger.Config{
		Level:   logger.InfoLevel,
		Format:  "json",
		Service: "zapbot",
		Output:  os.Stderr,
	})
}

// setupLogger builds the process logger from the global flags. Logs go to
// stderr so that stdout carries only the agent's reply.
func setupLogger(c *cli.Context, out io.Writer) error {
	log := logger.NewLogger(logger.Config{
		Level:   logger.ParseLevel(c.String("log-level")),
		Format:  c.String("log-format"),
		Service: "zapbot",
		Output:  out,
	})
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata[loggerKey] = log
	return nil
}
