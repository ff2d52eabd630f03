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
package ds

import (
	"encoding/json"
	"github.com/Gabrielcb/boda/util/yaml"
	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Cause of all network description and timing table problems, except unknown layer kinds
var InvalidDescriptionError = errors.New("invalid description")

// Gives err InvalidDescriptionError as cause, unknown layer kinds keep their own
func descriptionError(err error, message string) error {
	if errors.Cause(err) == UnknownLayerKind {
		return errors.Wrap(err, message)
	}
	return errors.Wrapf(InvalidDescriptionError, "%s: %s", message, err.Error())
}

// A tensor as written in a network description.
// Either a list of dimensions ([1,3,5,5] or {dims: [...]}), an image {img, chan, y, x},
// a filter {out_chan, in_chan, y, x} or a bias vector {out_chan}.
type TensorSpec struct {
	Img     *int  `json:"img,omitempty"`
	Chan    *int  `json:"chan,omitempty"`
	OutChan *int  `json:"out_chan,omitempty"`
	InChan  *int  `json:"in_chan,omitempty"`
	Y       *int  `json:"y,omitempty"`
	X       *int  `json:"x,omitempty"`
	Dims    []int `json:"dims,omitempty"`
}

func (t *TensorSpec) UnmarshalJSON(data []byte) error {
	_, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return err
	}
	switch dataType {
	case jsonparser.Array:
		var dims []int
		if err := json.Unmarshal(data, &dims); err != nil {
			return err
		}
		if dims == nil {
			dims = []int{}
		}
		*t = TensorSpec{Dims: dims}
		return nil
	case jsonparser.Object:
		type plainSpec TensorSpec
		var p plainSpec
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*t = TensorSpec(p)
		return nil
	default:
		return errors.Errorf("Expected list or object for tensor, got %v", dataType)
	}
}

func (t *TensorSpec) hasNamed() bool {
	return t.Img != nil || t.Chan != nil || t.OutChan != nil || t.InChan != nil || t.Y != nil || t.X != nil
}

// Converts into a shape, image tensors without img dimension get numImgs.
func (t *TensorSpec) Resolve(numImgs int) (Shape, error) {
	var shape Shape
	switch {
	case t.Dims != nil:
		if t.hasNamed() {
			return Shape{}, errors.New("Tensor mixes dims with named dimensions")
		}
		shape = NewShape(t.Dims...)
	case t.OutChan != nil && t.InChan == nil && t.Y == nil && t.X == nil:
		if t.Img != nil || t.Chan != nil {
			return Shape{}, errors.New("Bias vector may only contain out_chan")
		}
		shape = NewShape(*t.OutChan)
	case t.OutChan != nil || t.InChan != nil:
		if t.OutChan == nil || t.InChan == nil || t.Y == nil || t.X == nil {
			return Shape{}, errors.New("Filter needs out_chan, in_chan, y and x")
		}
		if t.Img != nil || t.Chan != nil {
			return Shape{}, errors.New("Filter may not contain img or chan")
		}
		shape = NewFilterShape(*t.OutChan, *t.InChan, *t.Y, *t.X)
	default:
		if t.Chan == nil || t.Y == nil || t.X == nil {
			return Shape{}, errors.New("Image tensor needs chan, y and x")
		}
		img := numImgs
		if t.Img != nil {
			img = *t.Img
		}
		shape = NewImageShape(img, *t.Chan, *t.Y, *t.X)
	}
	return shape, shape.Validate()
}

// A layer as written in a network description
type LayerSpec struct {
	Name    string                 `json:"name"`
	Type    *LayerKind             `json:"type"`
	Inputs  []TensorSpec           `json:"inputs,omitempty"`
	Outputs []TensorSpec           `json:"outputs,omitempty"`
	Filters *TensorSpec            `json:"filters,omitempty"`
	Biases  *TensorSpec            `json:"biases,omitempty"`
	InPad   *Point                 `json:"in_pad,omitempty"`
	Stride  *Point                 `json:"stride,omitempty"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// A declarative network description, layers are in data dependency order
type NetworkSpec struct {
	Name   string      `json:"name"`
	Layers []LayerSpec `json:"layers"`
}

// A network with resolved shapes
type Network struct {
	Name   string
	Layers []Layer
}

func (l *LayerSpec) Resolve(numImgs int) (Layer, error) {
	if l.Type == nil {
		return nil, errors.New("Missing layer type")
	}
	kind := *l.Type
	var err error
	if !kind.HasCost() {
		return &StubLayer{Name: l.Name, Type: kind, Options: l.Options}, nil
	}
	if l.Filters == nil {
		return nil, errors.Errorf("%s layer needs filters", kind)
	}
	layer := ConvLayer{
		Name:   l.Name,
		Type:   kind,
		Stride: Point{Y: 1, X: 1},
	}
	resolveAll := func(specs []TensorSpec) ([]Shape, error) {
		result := make([]Shape, len(specs))
		for i, s := range specs {
			result[i], err = s.Resolve(numImgs)
			if err != nil {
				return nil, errors.Wrapf(err, "Tensor %d", i)
			}
		}
		return result, nil
	}
	if layer.Inputs, err = resolveAll(l.Inputs); err != nil {
		return nil, errors.Wrap(err, "Invalid input")
	}
	if layer.Outputs, err = resolveAll(l.Outputs); err != nil {
		return nil, errors.Wrap(err, "Invalid output")
	}
	if layer.Filters, err = l.Filters.Resolve(numImgs); err != nil {
		return nil, errors.Wrap(err, "Invalid filters")
	}
	if l.Biases != nil {
		if layer.Biases, err = l.Biases.Resolve(numImgs); err != nil {
			return nil, errors.Wrap(err, "Invalid biases")
		}
	} else {
		// no bias term
		layer.Biases = NewShape(0)
	}
	if l.InPad != nil {
		layer.Pad = *l.InPad
	}
	if l.Stride != nil {
		layer.Stride = *l.Stride
	}
	return &layer, nil
}

func (n *NetworkSpec) Resolve(numImgs int) (*Network, error) {
	if numImgs < 0 {
		return nil, errors.Wrapf(InvalidDescriptionError, "image count %d", numImgs)
	}
	result := Network{Name: n.Name}
	for i, l := range n.Layers {
		if len(l.Name) == 0 {
			return nil, errors.Wrapf(InvalidDescriptionError, "layer %d has no name", i)
		}
		layer, err := l.Resolve(numImgs)
		if err != nil {
			return nil, descriptionError(err, "Layer "+l.Name)
		}
		result.Layers = append(result.Layers, layer)
	}
	return &result, nil
}

func ParseNetwork(data []byte, numImgs int) (*Network, error) {
	var spec NetworkSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, descriptionError(err, "Could not parse network description")
	}
	return spec.Resolve(numImgs)
}

// Loads a network description from a YAML or JSON file
func LoadNetwork(fileName string, numImgs int) (*Network, error) {
	var spec NetworkSpec
	if err := yaml.UnmarshalFile(fileName, &spec); err != nil {
		return nil, descriptionError(err, "Could not load network description")
	}
	network, err := spec.Resolve(numImgs)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("Loaded network %s with %d layers from %s", network.Name, len(network.Layers), fileName)
	return network, nil
}
