package main

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/abyssdigger/dbglog"
)

// EmitCommand logs one line.
func EmitCommand() *cli.Command {
	return &cli.Command{
		Name:      "emit",
		Usage:     "Log one line through the configured destinations",
		ArgsUsage: "MESSAGE...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "level",
				Usage: "Level code (DD, I1..I4, W1..W4, E1..E4, FF)",
				Value: "I3",
			},
			&cli.StringFlag{
				Name:  "module",
				Usage: "Module name printed as [name] before the message",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			level, err := dbglog.ParseLevel(c.String("level"))
			if err != nil {
				return err
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			l, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer l.Close()
			return emit(l, c.String("module"), level, strings.Join(c.Args().Slice(), " "))
		},
	}
}

func emit(l *dbglog.Logger, module string, level dbglog.Level, message string) error {
	loc := dbglog.Location{File: "dbglog", Func: "emit"}
	if module != "" {
		l.Module(module).Log(level, message, loc)
	} else {
		l.Log(level, message, loc)
	}
	return nil
}
