// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/logical-mechanism/tau-mpc/bridge"
	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/phase2"
	"github.com/logical-mechanism/tau-mpc/phase2/testcircuit"
)

// resolveQAP is the CLI's stand-in for a circuit compiler front-end (out of
// core scope per spec.md §1): it exposes only the bundled test circuit. A
// real deployment swaps this for a circuit-specific binary that emits a
// phase2.QAP the same shape testcircuit.Build does.
func resolveQAP(e curve.Engine, name string) (phase2.QAP, error) {
	switch name {
	case "cubic":
		return testcircuit.Build(e), nil
	default:
		return phase2.QAP{}, fmt.Errorf("unknown circuit %q (available: cubic)", name)
	}
}

var phase2InitCommand = &cli.Command{
	Name:  "phase2-init",
	Usage: "evaluate a circuit's QAP against bridged Groth16Params",
	Flags: []cli.Flag{
		engineFlag(),
		&cli.StringFlag{Name: "params", Required: true, Usage: "bridge output file"},
		&cli.StringFlag{Name: "circuit", Value: "cubic"},
		&cli.StringFlag{Name: "out", Required: true},
	},
	Action: func(c *cli.Context) error {
		e, err := curve.ByName(c.String("curve"))
		if err != nil {
			return err
		}
		f, err := os.Open(c.String("params"))
		if err != nil {
			return err
		}
		params, err := bridge.ReadGroth16Params(f, e)
		f.Close()
		if err != nil {
			return err
		}
		qap, err := resolveQAP(e, c.String("circuit"))
		if err != nil {
			return err
		}
		mp, err := phase2.Initialize(e, qap, params)
		if err != nil {
			return err
		}
		log.Info().Str("circuit", c.String("circuit")).Msg("phase2 parameters initialized")
		return writeMPCParameters(c.String("out"), mp)
	},
}

var phase2ContributeCommand = &cli.Command{
	Name:  "phase2-contribute",
	Usage: "apply a fresh δ-contribution to Phase-2 parameters",
	Flags: []cli.Flag{
		engineFlag(),
		&cli.StringFlag{Name: "in", Required: true},
		&cli.StringFlag{Name: "out", Required: true},
	},
	Action: func(c *cli.Context) error {
		e, err := curve.ByName(c.String("curve"))
		if err != nil {
			return err
		}
		mp, err := readMPCParameters(c.String("in"), e)
		if err != nil {
			return err
		}
		next, receipt, err := phase2.Contribute(mp, rand.Reader)
		if err != nil {
			return err
		}
		if err := writeMPCParameters(c.String("out"), next); err != nil {
			return err
		}
		log.Info().Int("contribution", len(next.Contributions)).Msg("phase2 contribution applied")
		fmt.Fprintf(c.App.Writer, "%x\n", receipt)
		return nil
	},
}

var phase2VerifyCommand = &cli.Command{
	Name:  "phase2-verify",
	Usage: "check that --after is one valid δ-contribution on top of --before",
	Flags: []cli.Flag{
		engineFlag(),
		&cli.StringFlag{Name: "before", Required: true},
		&cli.StringFlag{Name: "after", Required: true},
	},
	Action: func(c *cli.Context) error {
		e, err := curve.ByName(c.String("curve"))
		if err != nil {
			return err
		}
		before, err := readMPCParameters(c.String("before"), e)
		if err != nil {
			return err
		}
		after, err := readMPCParameters(c.String("after"), e)
		if err != nil {
			return err
		}
		ok, err := phase2.Verify(before, after)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("transition did not verify")
		}
		log.Info().Msg("phase2 transition verified")
		fmt.Fprintln(c.App.Writer, "OK")
		return nil
	},
}

var phase2CombineCommand = &cli.Command{
	Name:  "phase2-combine",
	Usage: "reassemble independently-contributed-to chunks back into one parameter set",
	Flags: []cli.Flag{
		engineFlag(),
		&cli.StringFlag{Name: "template", Required: true, Usage: "any chunk, or the pre-split parameters, for the shared a/b/gamma_abc fields"},
		&cli.StringSliceFlag{Name: "chunk", Required: true},
		&cli.StringFlag{Name: "out", Required: true},
	},
	Action: func(c *cli.Context) error {
		e, err := curve.ByName(c.String("curve"))
		if err != nil {
			return err
		}
		template, err := readMPCParameters(c.String("template"), e)
		if err != nil {
			return err
		}
		var chunks []*phase2.MPCParameters
		for _, path := range c.StringSlice("chunk") {
			chunk, err := readMPCParameters(path, e)
			if err != nil {
				return err
			}
			chunks = append(chunks, chunk)
		}
		combined, err := phase2.Combine(template, chunks)
		if err != nil {
			return err
		}
		log.Info().Int("chunks", len(chunks)).Msg("phase2 chunks combined")
		return writeMPCParameters(c.String("out"), combined)
	},
}

func readMPCParameters(path string, e curve.Engine) (*phase2.MPCParameters, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return phase2.ReadFrom(f, e)
}

func writeMPCParameters(path string, mp *phase2.MPCParameters) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := mp.WriteTo(f); err != nil {
		return err
	}
	return f.Sync()
}
