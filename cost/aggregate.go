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
	"github.com/pkg/errors"
)

// Settings of a network cost run
type Options struct {
	// Batch size used for tensors without explicit image count
	NumImgs int
	// Wall clock seconds of the run, for throughput and energy
	Runtime float64
	// Average power in watts over the runtime
	Power float64
	// Include the backward pass in the totals
	Backward bool
	// Print arithmetic intensity and MxNxK per layer
	AiMnk bool
	// Print per layer details
	PerLayer bool
}

func DefaultOptions() Options {
	return Options{
		NumImgs:  1,
		Runtime:  1,
		Power:    200,
		Backward: true,
	}
}

func (o *Options) Validate() error {
	if o.NumImgs < 0 {
		return errors.Wrapf(InvalidConfigError, "image count %d", o.NumImgs)
	}
	if !(o.Runtime > 0) {
		return errors.Wrapf(InvalidConfigError, "runtime %g must be positive", o.Runtime)
	}
	if !(o.Power > 0) {
		return errors.Wrapf(InvalidConfigError, "power %g must be positive", o.Power)
	}
	return nil
}

// Running totals over all processed layers. Only ever grows.
type Aggregate struct {
	ForwardOps    int64 `json:"forwardOps"`
	BackwardOps   int64 `json:"backwardOps"`
	ForwardBytes  int64 `json:"forwardBytes"`
	BackwardBytes int64 `json:"backwardBytes"`
}

// Adds a layer cost, the totals stay unchanged if they would exceed 64 bit
func (a *Aggregate) Add(c *LayerCost) error {
	var calc checkedArithmetic
	next := Aggregate{
		ForwardOps:    calc.add(a.ForwardOps, c.ForwardOps),
		BackwardOps:   calc.add(a.BackwardOps, c.BackwardGradOps, c.BackwardDiffOps),
		ForwardBytes:  calc.add(a.ForwardBytes, c.ForwardBytes),
		BackwardBytes: calc.add(a.BackwardBytes, c.BackwardBytes),
	}
	if calc.overflow {
		return errors.Wrapf(InvalidLayerError, "layer %s: totals exceed 64 bit", c.Name)
	}
	*a = next
	return nil
}

func (a *Aggregate) TotalOps(backward bool) int64 {
	if backward {
		return a.ForwardOps + a.BackwardOps
	}
	return a.ForwardOps
}

func (a *Aggregate) TotalBytes(backward bool) int64 {
	if backward {
		return a.ForwardBytes + a.BackwardBytes
	}
	return a.ForwardBytes
}

// Derived metrics of a network run
type Summary struct {
	NumImgs  int     `json:"numImgs"`
	Runtime  float64 `json:"runtime"`
	Power    float64 `json:"power"`
	Backward bool    `json:"backward"`

	TotalOps   int64 `json:"totalOps"`
	TotalBytes int64 `json:"totalBytes"`
	// ops per second
	Throughput float64 `json:"throughput"`
	// bytes per second
	Bandwidth float64 `json:"bandwidth"`
	// ops per byte
	ArithmeticIntensity float64 `json:"arithmeticIntensity"`
	// joules
	Energy float64 `json:"energy"`
	// ops per second per watt
	Efficiency float64 `json:"efficiency"`

	Layers []*LayerCost `json:"layers,omitempty"`
}

func (a *Aggregate) Summarize(options Options) (*Summary, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	ops := a.TotalOps(options.Backward)
	bytes := a.TotalBytes(options.Backward)
	if bytes <= 0 {
		return nil, errors.Wrap(InvalidConfigError, "no bytes moved, arithmetic intensity is undefined")
	}
	throughput := float64(ops) / options.Runtime
	return &Summary{
		NumImgs:             options.NumImgs,
		Runtime:             options.Runtime,
		Power:               options.Power,
		Backward:            options.Backward,
		TotalOps:            ops,
		TotalBytes:          bytes,
		Throughput:          throughput,
		Bandwidth:           float64(bytes) / options.Runtime,
		ArithmeticIntensity: float64(ops) / float64(bytes),
		Energy:              options.Power * options.Runtime,
		Efficiency:          throughput / options.Power,
	}, nil
}
