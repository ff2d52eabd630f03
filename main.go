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
package main

import (
	"flag"
	"github.com/Gabrielcb/boda/actions"
	"github.com/Gabrielcb/boda/cmd"
	"github.com/Gabrielcb/boda/cost"
	"github.com/Gabrielcb/boda/ds"
	"github.com/Gabrielcb/boda/sweep"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"os"
)

// Injected by the Makefile
var AppVersion string

const RcInvalidArgument = 1
const RcInvalidInput = 2
const RcOtherError = 3

func main() {
	args, err := cmd.ParseArguments(os.Args, AppVersion)
	if err != nil {
		if err == cmd.MissingCommand || err == flag.ErrHelp {
			os.Exit(0)
		}
		println(err.Error())
		os.Exit(RcInvalidArgument)
	}
	if args.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if args.Version != nil {
		actions.PrintVersion(os.Stdout, args.Version, AppVersion)
	}
	if args.Flops != nil {
		err = actions.EstimateNetwork(args.Flops, args.Verbose, os.Stdout)
	}
	if args.Sweep != nil {
		err = actions.GenerateSweep(args.Sweep, os.Stdout)
	}

	if err != nil {
		println("Error", err.Error())
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch errors.Cause(err) {
	case cost.InvalidConfigError:
		return RcInvalidArgument
	case ds.InvalidDescriptionError, ds.UnknownLayerKind,
		cost.InvalidLayerError, cost.ShapeMismatchError, cost.InconsistentShapeError,
		sweep.InvalidSweepParamsError:
		return RcInvalidInput
	default:
		return RcOtherError
	}
}
