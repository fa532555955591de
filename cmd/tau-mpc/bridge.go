// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/logical-mechanism/tau-mpc/bridge"
	"github.com/logical-mechanism/tau-mpc/curve"
)

var bridgeCommand = &cli.Command{
	Name:  "bridge",
	Usage: "evaluate a finalized Phase-1 accumulator into Groth16Params",
	Flags: []cli.Flag{
		engineFlag(), modeFlag(),
		&cli.IntFlag{Name: "power", Required: true},
		&cli.IntFlag{Name: "contributions", Required: true},
		&cli.StringFlag{Name: "in", Required: true},
		&cli.IntFlag{Name: "domain-size", Required: true, Usage: "power-of-two circuit domain size M"},
		&cli.IntFlag{Name: "batch-size", Value: 1 << 14},
		&cli.StringFlag{Name: "out", Required: true, Usage: "output Groth16Params file (the --params input of phase2-init)"},
	},
	Action: func(c *cli.Context) error {
		e, err := curve.ByName(c.String("curve"))
		if err != nil {
			return err
		}
		mode, err := parseMode(c.String("mode"))
		if err != nil {
			return err
		}
		acc, err := readAccumulatorFile(c.String("in"), e, c.Int("power"), mode, c.Int("contributions"))
		if err != nil {
			return err
		}
		params, err := bridge.ToGroth16Params(acc, c.Int("domain-size"), c.Int("batch-size"))
		if err != nil {
			return err
		}
		log.Info().Int("domain_size", c.Int("domain-size")).Msg("accumulator bridged to Groth16Params")
		f, err := os.Create(c.String("out"))
		if err != nil {
			return err
		}
		defer f.Close()
		return bridge.WriteGroth16Params(f, e, params)
	},
}
