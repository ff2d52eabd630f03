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
	"fmt"
	"github.com/pkg/errors"
	"strings"
)

// Axis positions of rank 4 (image) shapes
const (
	ImgAxis  = 0
	ChanAxis = 1
	YAxis    = 2
	XAxis    = 3
)

// Axis positions of rank 4 filter shapes
const (
	OutChanAxis = 0
	InChanAxis  = 1
)

// An immutable ordered list of dimension sizes.
// Rank 4 shapes are either images (img, chan, y, x) or filters (out_chan, in_chan, y, x).
type Shape struct {
	dims []int
}

func NewShape(dims ...int) Shape {
	copied := make([]int, len(dims))
	copy(copied, dims)
	return Shape{copied}
}

func NewImageShape(img int, chan_ int, y int, x int) Shape {
	return Shape{[]int{img, chan_, y, x}}
}

func NewFilterShape(outChan int, inChan int, y int, x int) Shape {
	return Shape{[]int{outChan, inChan, y, x}}
}

func (s Shape) Rank() int {
	return len(s.dims)
}

// Returns a copy of the dimensions
func (s Shape) Dims() []int {
	return NewShape(s.dims...).dims
}

func (s Shape) Dim(axis int) int {
	return s.dims[axis]
}

// Product of all dimensions, 1 for rank 0. Not overflow checked, the cost model uses its own checked arithmetic.
func (s Shape) ElementCount() int64 {
	var p = int64(1)
	for _, v := range s.dims {
		p = p * int64(v)
	}
	return p
}

func (s Shape) IsRank4() bool {
	return len(s.dims) == 4
}

// Accessors below require rank 4

func (s Shape) Img() int {
	return s.dims[ImgAxis]
}

func (s Shape) Chan() int {
	return s.dims[ChanAxis]
}

func (s Shape) OutChan() int {
	return s.dims[OutChanAxis]
}

func (s Shape) InChan() int {
	return s.dims[InChanAxis]
}

func (s Shape) Y() int {
	return s.dims[YAxis]
}

func (s Shape) X() int {
	return s.dims[XAxis]
}

func (s Shape) Validate() error {
	for i, d := range s.dims {
		if d < 0 {
			return errors.Errorf("Negative dimension %d at axis %d", d, i)
		}
	}
	return nil
}

func (s Shape) String() string {
	parts := make([]string, len(s.dims))
	for i, d := range s.dims {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// A per axis pair, used for padding and stride
type Point struct {
	Y int `json:"y"`
	X int `json:"x"`
}

func (p Point) String() string {
	return fmt.Sprintf("(y=%d,x=%d)", p.Y, p.X)
}
