package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"holiday-service/internal/config"
	"holiday-service/internal/logging"
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "holiday-service",
		Usage:   "Holiday hosting matchmaking: invitations, conversations and safety",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				Value:   "holiday.toml",
				EnvVars: []string{"HOLIDAY_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			purgeAccountCommand(),
			seedRulesCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// loadConfig reads and validates configuration and sets up logging.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}
