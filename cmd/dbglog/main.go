// Command dbglog is a small front end to the dbglog library: it explains
// masks, emits single log lines and runs programs with their output captured
// in a managed log file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/abyssdigger/dbglog"
	"github.com/abyssdigger/dbglog/config"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "dbglog",
		Usage: "Leveled logging with masks, managed log files and tied descriptors",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "env-prefix",
				Usage: "Prefix of configuration environment variables",
				Value: config.DEFAULT_ENV_PREFIX,
			},
			&cli.StringFlag{
				Name:  "mask",
				Usage: "Log mask overriding the configuration (e.g. I2W2E2, ALL)",
			},
			&cli.StringFlag{
				Name:  "file",
				Usage: "Log file overriding the configuration",
			},
		},
		Commands: []*cli.Command{
			MaskCommand(),
			EmitCommand(),
			RunCommand(),
		},
	}
}

// loadConfig reads the configuration and applies the global overrides.
func loadConfig(c *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"), c.String("env-prefix"))
	if err != nil {
		return nil, err
	}
	if m := c.String("mask"); m != "" {
		if _, err := dbglog.ParseMask(m); err != nil {
			return nil, err
		}
		cfg.Mask = m
	}
	if f := c.String("file"); f != "" {
		cfg.File.Path = f
	}
	return cfg, nil
}

// newLogger builds a logger from the loaded configuration.
func newLogger(cfg *config.Config) (*dbglog.Logger, error) {
	l, err := dbglog.New(dbglog.DEFAULT_LOG_MASK)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(l); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}
