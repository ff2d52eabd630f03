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
	"math"
)

var InvalidLayerError = errors.New("invalid layer")
var ShapeMismatchError = errors.New("shape mismatch")
var InconsistentShapeError = errors.New("inconsistent shape")
var InvalidConfigError = errors.New("invalid configuration")

// Single precision
const BytesPerElement = 4

// A multiply-add counts as two operations
const OpsPerMultiplyAdd = 2

// Operation and byte counts of one layer
type LayerCost struct {
	Name            string       `json:"name"`
	Kind            ds.LayerKind `json:"kind"`
	ForwardOps      int64        `json:"forwardOps"`
	ForwardBytes    int64        `json:"forwardBytes"`
	BackwardGradOps int64        `json:"backwardGradOps"`
	BackwardDiffOps int64        `json:"backwardDiffOps"`
	BackwardBytes   int64        `json:"backwardBytes"`
	// Shape of the equivalent matrix multiply of the forward pass
	M int64 `json:"m"`
	N int64 `json:"n"`
	K int64 `json:"k"`
	// Measured time of the layer, if known
	Elapsed *float64 `json:"elapsed,omitempty"`
}

func (c *LayerCost) BackwardOps() int64 {
	return c.BackwardGradOps + c.BackwardDiffOps
}

// Forward ops per forward byte
func (c *LayerCost) ForwardIntensity() float64 {
	if c.ForwardBytes == 0 {
		return 0
	}
	return float64(c.ForwardOps) / float64(c.ForwardBytes)
}

// Forward ops per measured second, 0 if no time is known
func (c *LayerCost) ObservedThroughput() float64 {
	if c.Elapsed == nil || *c.Elapsed <= 0 {
		return 0
	}
	return float64(c.ForwardOps) / *c.Elapsed
}

// Computes the cost of a convolution or inner product layer.
// Inner product layers must be given as convolutions with the kernel covering the input.
func ConvolutionCost(layer *ds.ConvLayer) (*LayerCost, error) {
	if err := checkConvolution(layer); err != nil {
		return nil, err
	}
	in := layer.Inputs[0]
	out := layer.Outputs[0]
	filters := layer.Filters

	var calc checkedArithmetic
	inElements := calc.elements(in)
	outElements := calc.elements(out)
	filterElements := calc.elements(filters)
	biasElements := calc.elements(layer.Biases)
	if calc.overflow {
		return nil, errors.Wrapf(InvalidLayerError, "layer %s: element counts exceed 64 bit", layer.Name)
	}

	outChans := int64(filters.OutChan())
	if outChans == 0 || outElements%outChans != 0 {
		return nil, errors.Wrapf(InconsistentShapeError, "layer %s: %d output elements over %d filters", layer.Name, outElements, outChans)
	}
	// number of input patches
	gradInnerDim := outElements / outChans
	if gradInnerDim != calc.mul(int64(out.Img()), int64(out.Y()), int64(out.X())) {
		return nil, errors.Wrapf(InconsistentShapeError, "layer %s: %d patches for output %s", layer.Name, gradInnerDim, out)
	}
	kernelSize := calc.mul(int64(filters.InChan()), int64(filters.Y()), int64(filters.X()))

	result := &LayerCost{
		Name:         layer.Name,
		Kind:         layer.Type,
		ForwardOps:   calc.mul(outElements, kernelSize, OpsPerMultiplyAdd),
		ForwardBytes: calc.mul(BytesPerElement, calc.add(inElements, outElements, filterElements, biasElements)),
		// the gradient has the size of the filters
		BackwardGradOps: calc.mul(filterElements, gradInnerDim, OpsPerMultiplyAdd),
		// the diff has the size of the input, reduced from im2col(input)
		BackwardDiffOps: calc.mul(kernelSize, outChans, gradInnerDim, OpsPerMultiplyAdd),
		BackwardBytes: calc.mul(BytesPerElement, calc.add(
			calc.mul(2, inElements), outElements, calc.mul(2, filterElements), calc.mul(2, biasElements),
		)),
		M: gradInnerDim,
		N: outChans,
		K: kernelSize,
	}
	if calc.overflow {
		return nil, errors.Wrapf(InvalidLayerError, "layer %s: counts exceed 64 bit", layer.Name)
	}
	return result, nil
}

func checkConvolution(layer *ds.ConvLayer) error {
	if len(layer.Inputs) != 1 {
		return errors.Wrapf(InvalidLayerError, "layer %s: expected 1 input, got %d", layer.Name, len(layer.Inputs))
	}
	if len(layer.Outputs) != 1 {
		return errors.Wrapf(InvalidLayerError, "layer %s: expected 1 output, got %d", layer.Name, len(layer.Outputs))
	}
	in := layer.Inputs[0]
	out := layer.Outputs[0]
	filters := layer.Filters
	for _, shape := range []ds.Shape{in, out, filters, layer.Biases} {
		if err := shape.Validate(); err != nil {
			return errors.Wrapf(InvalidLayerError, "layer %s: %s", layer.Name, err.Error())
		}
	}
	if !in.IsRank4() || !out.IsRank4() || !filters.IsRank4() {
		return errors.Wrapf(InvalidLayerError, "layer %s: input %s, output %s and filters %s must have 4 dimensions", layer.Name, in, out, filters)
	}
	if layer.Stride.X <= 0 || layer.Stride.Y <= 0 {
		return errors.Wrapf(InvalidLayerError, "layer %s: invalid stride %s", layer.Name, layer.Stride)
	}
	if layer.Pad.X < 0 || layer.Pad.Y < 0 {
		return errors.Wrapf(InvalidLayerError, "layer %s: invalid padding %s", layer.Name, layer.Pad)
	}
	if in.Chan() != filters.InChan() {
		return errors.Wrapf(ShapeMismatchError, "layer %s: input has %d channels, filters expect %d", layer.Name, in.Chan(), filters.InChan())
	}
	if out.Chan() != filters.OutChan() {
		return errors.Wrapf(ShapeMismatchError, "layer %s: output has %d channels, filters produce %d", layer.Name, out.Chan(), filters.OutChan())
	}
	if in.Img() != out.Img() {
		return errors.Wrapf(ShapeMismatchError, "layer %s: input has %d images, output %d", layer.Name, in.Img(), out.Img())
	}
	if !outputExtentMatches(in.Y(), filters.Y(), layer.Pad.Y, layer.Stride.Y, out.Y()) ||
		!outputExtentMatches(in.X(), filters.X(), layer.Pad.X, layer.Stride.X, out.X()) {
		return errors.Wrapf(
			ShapeMismatchError, "layer %s: output %s does not match input %s with filters %s, padding %s and stride %s",
			layer.Name, out, in, filters, layer.Pad, layer.Stride,
		)
	}
	return nil
}

// out = (in + 2 * pad - kernel) / stride + 1
func outputExtentMatches(in int, kernel int, pad int, stride int, out int) bool {
	padded := in + 2*pad
	if padded < kernel {
		return false
	}
	return (padded-kernel)/stride+1 == out
}

// int64 arithmetic on non-negative values, remembers overflows
type checkedArithmetic struct {
	overflow bool
}

func (c *checkedArithmetic) mul(factors ...int64) int64 {
	for _, f := range factors {
		if f == 0 {
			return 0
		}
	}
	result := int64(1)
	for _, f := range factors {
		if result > math.MaxInt64/f {
			c.overflow = true
			return 0
		}
		result *= f
	}
	return result
}

func (c *checkedArithmetic) add(terms ...int64) int64 {
	var sum int64
	for _, t := range terms {
		if t > 0 && sum > math.MaxInt64-t {
			c.overflow = true
			return 0
		}
		sum += t
	}
	return sum
}

func (c *checkedArithmetic) elements(s ds.Shape) int64 {
	dims := s.Dims()
	factors := make([]int64, len(dims))
	for i, d := range dims {
		factors[i] = int64(d)
	}
	return c.mul(factors...)
}
