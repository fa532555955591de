// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/phase1"
)

func engineFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "curve", Value: "bls12-381", Usage: "bls12-381 or bn254"}
}

func modeFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "mode", Value: "compressed", Usage: "compressed or uncompressed"}
}

func parseMode(s string) (curve.Mode, error) {
	switch s {
	case "compressed":
		return curve.Compressed, nil
	case "uncompressed":
		return curve.Uncompressed, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

var phase1InitCommand = &cli.Command{
	Name:  "phase1-init",
	Usage: "create a fresh Phase-1 accumulator at a given power",
	Flags: []cli.Flag{
		engineFlag(), modeFlag(),
		&cli.IntFlag{Name: "power", Required: true, Usage: "accumulator holds 2^power elements"},
		&cli.StringFlag{Name: "out", Required: true, Usage: "output accumulator file"},
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
		acc, err := phase1.NewInitial(e, c.Int("power"), mode)
		if err != nil {
			return err
		}
		log.Info().Str("curve", c.String("curve")).Int("power", c.Int("power")).Msg("phase1 accumulator initialized")
		return writeAccumulator(c.String("out"), acc)
	},
}

var phase1ContributeCommand = &cli.Command{
	Name:  "phase1-contribute",
	Usage: "apply a fresh contribution to a Phase-1 accumulator",
	Flags: []cli.Flag{
		engineFlag(), modeFlag(),
		&cli.IntFlag{Name: "power", Required: true},
		&cli.IntFlag{Name: "contributions", Usage: "number of prior contributions already in --in"},
		&cli.StringFlag{Name: "in", Required: true},
		&cli.StringFlag{Name: "out", Required: true},
		&cli.IntFlag{Name: "batch-size", Value: 1 << 14},
	},
	Action: func(c *cli.Context) error {
		acc, err := readAccumulator(c)
		if err != nil {
			return err
		}
		next, err := acc.Contribute(rand.Reader, phase1.ContributeOptions{BatchSize: c.Int("batch-size")})
		if err != nil {
			return err
		}
		log.Info().Int("contribution", len(next.Contributions)).Msg("phase1 contribution applied")
		return writeAccumulator(c.String("out"), next)
	},
}

var phase1VerifyCommand = &cli.Command{
	Name:  "phase1-verify",
	Usage: "check that --after is one valid contribution on top of --before",
	Flags: []cli.Flag{
		engineFlag(), modeFlag(),
		&cli.IntFlag{Name: "power", Required: true},
		&cli.IntFlag{Name: "before-contributions"},
		&cli.IntFlag{Name: "after-contributions"},
		&cli.StringFlag{Name: "before", Required: true},
		&cli.StringFlag{Name: "after", Required: true},
		&cli.IntFlag{Name: "batch-size", Value: 1 << 14},
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
		before, err := readAccumulatorFile(c.String("before"), e, c.Int("power"), mode, c.Int("before-contributions"))
		if err != nil {
			return err
		}
		after, err := readAccumulatorFile(c.String("after"), e, c.Int("power"), mode, c.Int("after-contributions"))
		if err != nil {
			return err
		}
		ok, err := phase1.VerifyTransition(before, after, phase1.VerifyOptions{BatchSize: c.Int("batch-size")})
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("transition did not verify")
		}
		log.Info().Msg("phase1 transition verified")
		fmt.Fprintln(c.App.Writer, "OK")
		return nil
	},
}

var phase1BeaconCommand = &cli.Command{
	Name:  "phase1-beacon",
	Usage: "apply the deterministic random-beacon finalization contribution",
	Flags: []cli.Flag{
		engineFlag(), modeFlag(),
		&cli.IntFlag{Name: "power", Required: true},
		&cli.IntFlag{Name: "contributions"},
		&cli.StringFlag{Name: "in", Required: true},
		&cli.StringFlag{Name: "out", Required: true},
		&cli.StringFlag{Name: "beacon-hash", Required: true, Usage: "hex-encoded public beacon hash"},
		&cli.IntFlag{Name: "batch-size", Value: 1 << 14},
	},
	Action: func(c *cli.Context) error {
		acc, err := readAccumulator(c)
		if err != nil {
			return err
		}
		beaconHash, err := hexDecode(c.String("beacon-hash"))
		if err != nil {
			return err
		}
		next, err := phase1.BeaconContribute(acc, beaconHash, phase1.ContributeOptions{BatchSize: c.Int("batch-size")})
		if err != nil {
			return err
		}
		log.Info().Str("beacon_hash", c.String("beacon-hash")).Msg("phase1 beacon finalization applied")
		return writeAccumulator(c.String("out"), next)
	},
}

func readAccumulator(c *cli.Context) (*phase1.Accumulator, error) {
	e, err := curve.ByName(c.String("curve"))
	if err != nil {
		return nil, err
	}
	mode, err := parseMode(c.String("mode"))
	if err != nil {
		return nil, err
	}
	return readAccumulatorFile(c.String("in"), e, c.Int("power"), mode, c.Int("contributions"))
}

func readAccumulatorFile(path string, e curve.Engine, power int, mode curve.Mode, numContributions int) (*phase1.Accumulator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return phase1.ReadFrom(f, e, power, mode, numContributions)
}

func writeAccumulator(path string, acc *phase1.Accumulator) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := acc.WriteTo(f); err != nil {
		return err
	}
	return f.Sync()
}

func hexDecode(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
