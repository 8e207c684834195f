package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/abyssdigger/dbglog"
)

var namedLevels = []dbglog.Level{
	dbglog.LVL_DEBUG,
	dbglog.LVL_INFO1, dbglog.LVL_INFO2, dbglog.LVL_INFO3, dbglog.LVL_INFO4,
	dbglog.LVL_WARN1, dbglog.LVL_WARN2, dbglog.LVL_WARN3, dbglog.LVL_WARN4,
	dbglog.LVL_ERR1, dbglog.LVL_ERR2, dbglog.LVL_ERR3, dbglog.LVL_ERR4,
	dbglog.LVL_FATAL,
}

// MaskCommand parses masks and prints what they let through.
func MaskCommand() *cli.Command {
	return &cli.Command{
		Name:      "mask",
		Usage:     "Parse masks and list the levels they accept",
		ArgsUsage: "MASK...",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return cli.Exit("at least one mask is required", 2)
			}
			for _, text := range c.Args().Slice() {
				line, err := explainMask(text)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.Root().Writer, line)
			}
			return nil
		},
	}
}

// explainMask renders "TEXT = CANONICAL HEX: accepted level codes".
func explainMask(text string) (string, error) {
	m, err := dbglog.ParseMask(text)
	if err != nil {
		return "", err
	}
	var codes []string
	for _, lvl := range namedLevels {
		if m.Accepts(lvl) {
			codes = append(codes, lvl.Code())
		}
	}
	return text + " = " + m.String() + " " + m.Hex() + ": " + strings.Join(codes, " "), nil
}
