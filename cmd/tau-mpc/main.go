// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Command tau-mpc is the thin ceremony CLI: file-based subcommands over the
// core packages (curve, phase1, bridge, phase2, transcript). It owns no
// ceremony logic itself — every subcommand opens files, calls one core
// function, and writes files back. Grounded on the teacher's subcommand
// dispatch shape (main.go's flag.NewFlagSet switch), ported to
// github.com/urfave/cli/v2 for the larger subcommand surface a two-phase,
// chunked ceremony needs.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// log is the CLI's structured status logger. Core packages never log
// themselves; only this command boundary does, matching the teacher's
// convention of keeping library code silent and pushing all user-facing
// output to main.
var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

func main() {
	app := &cli.App{
		Name:  "tau-mpc",
		Usage: "coordinator-free two-phase Groth16 trusted-setup ceremony",
		Commands: []*cli.Command{
			phase1InitCommand,
			phase1ContributeCommand,
			phase1VerifyCommand,
			phase1BeaconCommand,
			bridgeCommand,
			phase2InitCommand,
			phase2ContributeCommand,
			phase2VerifyCommand,
			phase2CombineCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
