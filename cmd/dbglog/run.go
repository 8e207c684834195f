package main

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/abyssdigger/dbglog"
	"github.com/abyssdigger/dbglog/watch"
)

// RunCommand runs a program with stdout and stderr tied to the log file.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a command with its stdout/stderr captured in the log file",
		ArgsUsage: "COMMAND [ARGS...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Reopen the log file when it is rotated and reload the configuration on change",
				Value: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return cli.Exit("a command is required", 2)
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if cfg.File.Path == "" {
				return cli.Exit("run needs a log file (--file or file.path)", 2)
			}
			// both streams follow the log file, the console would echo into it
			cfg.Console = false
			cfg.File.Ties = append(cfg.File.Ties, "stdout", "stderr")
			streams, err := saveStreams(1, 2)
			if err != nil {
				return err
			}
			l, err := newLogger(cfg)
			if err != nil {
				streams.restore(nil)
				return err
			}
			// errors returned from here are printed by main on the real stderr
			err = run(ctx, c, l)
			if rerr := streams.restore(l); rerr != nil && err == nil {
				err = rerr
			}
			l.Close()
			return err
		},
	}
}

func run(ctx context.Context, c *cli.Command, l *dbglog.Logger) error {
	log := l.Module("run")
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var reopener *watch.Reopener
	if c.Bool("watch") {
		r, err := watch.New(l, c.String("config"), c.String("env-prefix"))
		if err != nil {
			log.Warn("file watching disabled: %v", err)
		} else {
			reopener = r
			defer r.Close()
			go r.Run(ctx)
		}
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if reopener != nil {
					if err := reopener.Reopen(); err != nil {
						log.Error("reopen on SIGHUP failed: %v", err)
					}
				} else if err := l.LogToFile(l.LogFile().Path()); err != nil {
					log.Error("reopen on SIGHUP failed: %v", err)
				}
			}
		}
	}()

	args := c.Args().Slice()
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	log.Logf(dbglog.LVL_INFO2, "starting <%s>", strings.Join(args, " "))
	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		log.Logf(dbglog.LVL_INFO2, "<%s> exited", args[0])
		return nil
	case errors.As(err, &exitErr):
		log.Logf(dbglog.LVL_WARN2, "<%s> exited with status %d", args[0], exitErr.ExitCode())
		return cli.Exit("", exitErr.ExitCode())
	default:
		return log.Fail(dbglog.LVL_ERR2, "cannot run <%s>: %v", args[0], err)
	}
}
