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
	"github.com/pkg/errors"
	"strings"
)

type LayerKind int

const (
	Convolution LayerKind = iota
	InnerProduct
	Pooling
	LRN
	Concat
	ReLU
	Dropout
)

var layerKindNames = []string{
	"Convolution",
	"InnerProduct",
	"Pooling",
	"LRN",
	"Concat",
	"ReLU",
	"Dropout",
}

var UnknownLayerKind = errors.New("unknown layer kind")

func ParseLayerKind(name string) (LayerKind, error) {
	for i, n := range layerKindNames {
		if strings.EqualFold(n, name) {
			return LayerKind(i), nil
		}
	}
	return 0, errors.Wrapf(UnknownLayerKind, "%q", name)
}

func (k LayerKind) String() string {
	if int(k) < 0 || int(k) >= len(layerKindNames) {
		return "Unknown"
	}
	return layerKindNames[k]
}

func (k LayerKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *LayerKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseLayerKind(name)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Returns true if the kind carries an op/byte cost
func (k LayerKind) HasCost() bool {
	return k == Convolution || k == InnerProduct
}

// A layer of a network description, either *ConvLayer or *StubLayer
type Layer interface {
	LayerName() string
	Kind() LayerKind
}

// Convolution or InnerProduct layer.
// InnerProduct layers are expressed as convolutions whose kernel covers the whole input.
type ConvLayer struct {
	Name    string
	Type    LayerKind
	Inputs  []Shape
	Outputs []Shape
	Filters Shape
	Biases  Shape
	Pad     Point
	Stride  Point
}

func (c *ConvLayer) LayerName() string {
	return c.Name
}

func (c *ConvLayer) Kind() LayerKind {
	return c.Type
}

// Layers without cost (pooling, activations, ...), only their configuration is kept.
type StubLayer struct {
	Name    string
	Type    LayerKind
	Options map[string]interface{}
}

func (s *StubLayer) LayerName() string {
	return s.Name
}

func (s *StubLayer) Kind() LayerKind {
	return s.Type
}
