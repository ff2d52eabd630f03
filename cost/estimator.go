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
package cost

import (
	"github.com/Gabrielcb/boda/ds"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"strings"
)

// Timing entries of input transposes, they have no layer of their own
const InputTransposeSuffix = "_inxp"

// Runs the cost model over the layers of a network, in order.
// Not safe for concurrent use, each run gets its own Estimator.
type Estimator struct {
	options   Options
	timings   ds.TimingTable
	aggregate Aggregate
	layers    []*LayerCost
}

// timings may be nil
func NewEstimator(options Options, timings ds.TimingTable) (*Estimator, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{
		options: options,
		timings: timings,
	}, nil
}

// Computes the cost of a layer and adds it to the totals.
// Zero cost layers return nil. On error the totals are unchanged.
func (e *Estimator) Process(layer ds.Layer) (*LayerCost, error) {
	switch l := layer.(type) {
	case *ds.ConvLayer:
		c, err := ConvolutionCost(l)
		if err != nil {
			return nil, err
		}
		if elapsed, ok := e.timings.Lookup(l.Name); ok {
			c.Elapsed = &elapsed
		}
		if err = e.aggregate.Add(c); err != nil {
			return nil, err
		}
		e.layers = append(e.layers, c)
		logrus.Debugf("Layer %s: %d forward ops, %d forward bytes", l.Name, c.ForwardOps, c.ForwardBytes)
		return c, nil
	case *ds.StubLayer:
		logrus.Debugf("Layer %s (%s) has no cost", l.Name, l.Type)
		return nil, nil
	default:
		return nil, errors.Wrapf(InvalidLayerError, "unsupported layer type %T", layer)
	}
}

// Processes all layers, stops at the first failing one
func (e *Estimator) Run(network *ds.Network) error {
	for _, layer := range network.Layers {
		if _, err := e.Process(layer); err != nil {
			return err
		}
	}
	e.warnUnusedTimings(network)
	return nil
}

func (e *Estimator) warnUnusedTimings(network *ds.Network) {
	if len(e.timings) == 0 {
		return
	}
	names := make(map[string]bool, len(network.Layers))
	for _, l := range network.Layers {
		names[l.LayerName()] = true
	}
	for name := range e.timings {
		if !names[name] && !strings.HasSuffix(name, InputTransposeSuffix) {
			logrus.Warnf("Timing entry %s matches no layer", name)
		}
	}
}

func (e *Estimator) Options() Options {
	return e.options
}

func (e *Estimator) Aggregate() Aggregate {
	return e.aggregate
}

// Costs of all processed layers with cost, in processing order
func (e *Estimator) Layers() []*LayerCost {
	return e.layers
}

func (e *Estimator) Summary() (*Summary, error) {
	summary, err := e.aggregate.Summarize(e.options)
	if err != nil {
		return nil, err
	}
	if e.options.PerLayer {
		summary.Layers = e.layers
	}
	return summary, nil
}
