// Command facilityctl indexes facility datasets and dumps the index from the shell.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/facilitydex/internal/app"
	"github.com/kailas-cloud/facilitydex/internal/config"
	logpkg "github.com/kailas-cloud/facilitydex/internal/logger"
)

// opener builds the services a command runs against.
type opener func(ctx context.Context, c *cli.Command) (*app.App, error)

func main() {
	if err := newRootCommand(openApp, os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand(open opener, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "facilityctl",
		Usage:     "Build and export the facility search index",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "Configuration environment (config/<env>.yaml)",
				Value: config.GetEnv(),
			},
			&cli.StringFlag{
				Name:  "driver",
				Usage: "Override the database driver (redis, memory)",
			},
		},
		Commands: []*cli.Command{
			IndexCommand(open),
			DumpCommand(open),
			ResetCommand(open),
			VersionCommand(),
		},
	}
}

// openApp loads the configuration named by --env and wires every service.
func openApp(ctx context.Context, c *cli.Command) (*app.App, error) {
	env := c.String("env")
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if driver := c.String("driver"); driver != "" {
		cfg.Database.Driver = driver
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return app.New(ctx, cfg, logger)
}

