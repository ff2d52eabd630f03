/*
 * This file is part of the Mantik Project.
 * Copyright (c) 2020-2021 Mantik UG (Haftungsbeschränkt)
 * Authors: See AUTHORS file
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License version 3.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.
 *
 * Additionally, the following linking exception is granted:
 *
 * If you modify this Program, or any covered work, by linking or
 * combining it with other code, such other code is not for that reason
 * alone subject to any of the requirements of the GNU Affero GPL
 * version 3.
 *
 * You can be released from the requirements of the license by purchasing
 * a commercial license.
 */
package cmd

import (
	"errors"
	"github.com/Gabrielcb/boda/actions"
	"github.com/Gabrielcb/boda/cost"
	"github.com/urfave/cli"
)

type Arguments struct {
	Debug   bool
	Verbose bool

	// if set the command is requested
	Version *actions.VersionArguments
	Flops   *actions.FlopsArguments
	Sweep   *actions.SweepArguments
}

var MissingCommand = errors.New("missing command")
var MissingArgument = errors.New("missing argument")
var UnexpectedArgument = errors.New("unexpected argument")

// Parse arguments. Error messages are already printed.
func ParseArguments(argv []string, appVersion string) (*Arguments, error) {
	var args = Arguments{}
	defaults := cost.DefaultOptions()

	app := cli.NewApp()
	app.Name = "boda"
	app.Description = "Operation and memory traffic estimates for CNN layers"
	app.Version = appVersion
	app.Usage = "CNN cost estimation and benchmark descriptor generation"
	app.UseShortOptionHandling = true

	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		cli.BoolFlag{Name: "verbose", Usage: "Print long unit names"},
	}

	app.Commands = []cli.Command{
		{
			Name:  "version",
			Usage: "Show version",
			Action: func(c *cli.Context) error {
				args.Version = &actions.VersionArguments{}
				return nil
			},
		},
		{
			Name:  "flops",
			Usage: "Estimate operations and bytes of a network",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "net-fn", Usage: "Network description (YAML or JSON)"},
				cli.StringFlag{Name: "time-fn", Usage: "Per layer timing table (YAML or JSON)"},
				cli.IntFlag{Name: "num-imgs", Value: defaults.NumImgs, Usage: "Batch size for tensors without img dimension"},
				cli.Float64Flag{Name: "runtime", Value: defaults.Runtime, Usage: "Seconds taken, for throughput and energy"},
				cli.Float64Flag{Name: "power", Value: defaults.Power, Usage: "Average power in watts over runtime"},
				cli.BoolTFlag{Name: "backward", Usage: "Include the backward pass (--backward=false for forward only)"},
				cli.BoolFlag{Name: "ai-mnk", Usage: "Show forward arithmetic intensity and MxNxK per layer"},
				cli.BoolFlag{Name: "per-layer", Usage: "Print per layer information"},
				cli.BoolFlag{Name: "table", Usage: "Render per layer information as table"},
				cli.StringFlag{Name: "format,f", Value: actions.FormatText, Usage: "Summary format: text, json or yaml"},
			},
			Action: func(c *cli.Context) error {
				if len(c.String("net-fn")) == 0 {
					return MissingArgument
				}
				if c.NArg() > 0 {
					return UnexpectedArgument
				}
				args.Flops = &actions.FlopsArguments{
					NetworkFile: c.String("net-fn"),
					TimingFile:  c.String("time-fn"),
					Options: cost.Options{
						NumImgs:  c.Int("num-imgs"),
						Runtime:  c.Float64("runtime"),
						Power:    c.Float64("power"),
						Backward: c.BoolT("backward"),
						AiMnk:    c.Bool("ai-mnk"),
						PerLayer: c.Bool("per-layer"),
					},
					Table:  c.Bool("table"),
					Format: c.String("format"),
				}
				return nil
			},
		},
		{
			Name:      "sweep",
			Usage:     "Generate benchmark descriptors",
			ArgsUsage: "<conv|sgemm>",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "config,c", Usage: "Sweep ranges (YAML or JSON), defaults otherwise"},
				cli.StringFlag{Name: "format,f", Value: "text", Usage: "Output format: text, json or msgpack"},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					return MissingArgument
				}
				if c.NArg() > 1 {
					return UnexpectedArgument
				}
				args.Sweep = &actions.SweepArguments{
					Kind:       c.Args().Get(0),
					ConfigFile: c.String("config"),
					Format:     c.String("format"),
				}
				return nil
			},
		},
	}
	app.Before = func(c *cli.Context) error {
		args.Debug = c.GlobalBool("debug")
		args.Verbose = c.GlobalBool("verbose")
		return nil
	}
	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return MissingCommand
	}
	err := app.Run(argv)
	return &args, err
}
