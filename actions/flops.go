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
package actions

import (
	"encoding/json"
	"fmt"
	"github.com/Gabrielcb/boda/cost"
	"github.com/Gabrielcb/boda/ds"
	"github.com/Gabrielcb/boda/units"
	"github.com/Gabrielcb/boda/util/yaml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io"
)

// Summary formats
const FormatText = "text"
const FormatJson = "json"
const FormatYaml = "yaml"

// Network cost estimation arguments
type FlopsArguments struct {
	NetworkFile string
	// optional
	TimingFile string
	Options    cost.Options
	Table      bool
	Format     string
}

func EstimateNetwork(args *FlopsArguments, verbose bool, out io.Writer) error {
	if args.Format != FormatText && args.Format != FormatJson && args.Format != FormatYaml {
		return errors.Errorf("Unsupported format %s", args.Format)
	}
	if err := args.Options.Validate(); err != nil {
		return err
	}
	var timings ds.TimingTable
	if len(args.TimingFile) > 0 {
		var err error
		if timings, err = ds.LoadTimingTable(args.TimingFile); err != nil {
			return err
		}
	}
	estimator, err := cost.NewEstimator(args.Options, timings)
	if err != nil {
		return err
	}
	network, err := ds.LoadNetwork(args.NetworkFile, args.Options.NumImgs)
	if err != nil {
		return err
	}
	logrus.Debugf("Estimating %d layers of %s", len(network.Layers), network.Name)
	if err = estimator.Run(network); err != nil {
		return err
	}
	summary, err := estimator.Summary()
	if err != nil {
		return err
	}

	switch args.Format {
	case FormatJson:
		encoded, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return errors.Wrap(err, "Could not serialize summary")
		}
		_, err = fmt.Fprintln(out, string(encoded))
		return err
	case FormatYaml:
		encoded, err := yaml.Marshal(summary)
		if err != nil {
			return errors.Wrap(err, "Could not serialize summary")
		}
		_, err = out.Write(encoded)
		return err
	}

	reporter := cost.NewReporter(out, args.Options, verbose)
	reporter.PrintInputs()
	if timings != nil {
		formatter := units.Formatter{Verbose: verbose}
		fmt.Fprintln(out, "total _inxp time:", formatter.Secs(timings.TotalWithSuffix(cost.InputTransposeSuffix)))
	}
	if args.Options.PerLayer {
		if args.Table {
			reporter.PrintLayerTable(estimator.Layers())
		} else {
			reporter.PrintLayers(estimator.Layers())
		}
	}
	reporter.PrintSummary(summary)
	return nil
}
