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
package sweep

import (
	"github.com/Gabrielcb/boda/ds"
	"github.com/Gabrielcb/boda/util/yaml"
	"github.com/pkg/errors"
	"strconv"
)

var InvalidSweepParamsError = errors.New("invalid sweep parameters")

// Ranges of a convolution sweep. Strides run from 1 to the filter extent of each axis.
type ConvSweep struct {
	BatchSizes   []int `json:"batch_sizes"`
	ActivationsX []int `json:"activations_x"`
	ActivationsY []int `json:"activations_y"`
	FiltersX     []int `json:"filters_x"`
	FiltersY     []int `json:"filters_y"`
	ChansIn      []int `json:"chans_in"`
	ChansOut     []int `json:"chans_out"`
}

// Square matrix multiplies M=N=K
type SgemmSweep struct {
	Sizes []int `json:"sizes"`
}

type Config struct {
	Conv  ConvSweep  `json:"conv"`
	Sgemm SgemmSweep `json:"sgemm"`
}

func DefaultConfig() Config {
	activations := []int{8, 9, 16, 17, 32, 33, 64, 65}
	filters := []int{1, 2, 3, 4, 5}
	chans := []int{3, 4, 5, 8, 9, 16, 17, 32, 33}
	return Config{
		Conv: ConvSweep{
			BatchSizes:   []int{1, 2, 5, 10, 20},
			ActivationsX: activations,
			ActivationsY: activations,
			FiltersX:     filters,
			FiltersY:     filters,
			ChansIn:      chans,
			ChansOut:     chans,
		},
		Sgemm: SgemmSweep{
			Sizes: []int{32, 64, 128, 256, 384, 512, 768, 1024, 1536, 2048, 3072, 4096, 5120, 6144, 7168, 8192},
		},
	}
}

// Loads a sweep config, missing ranges keep their defaults
func LoadConfig(fileName string) (Config, error) {
	config := DefaultConfig()
	if err := yaml.UnmarshalFile(fileName, &config); err != nil {
		return Config{}, errors.Wrap(err, "Could not load sweep config")
	}
	return config, nil
}

// A single convolution test case
type ConvCase struct {
	Tag     string
	Img     int
	In      ds.Point
	Kern    ds.Point
	Stride  ds.Point
	InChan  int
	OutChan int
	Out     ds.Point
}

// Creates a convolution case without padding, the input must be larger than the kernel on each axis.
func NewConvCase(tag string, img int, in ds.Point, kern ds.Point, stride ds.Point, inChan int, outChan int) (*ConvCase, error) {
	if img <= 0 || inChan <= 0 || outChan <= 0 {
		return nil, errors.Wrapf(InvalidSweepParamsError, "%s: images %d, channels %d -> %d", tag, img, inChan, outChan)
	}
	if kern.X <= 0 || kern.Y <= 0 || stride.X <= 0 || stride.Y <= 0 {
		return nil, errors.Wrapf(InvalidSweepParamsError, "%s: kernel %s, stride %s", tag, kern, stride)
	}
	if in.X <= kern.X || in.Y <= kern.Y {
		return nil, errors.Wrapf(InvalidSweepParamsError, "%s: input %s not larger than kernel %s", tag, in, kern)
	}
	return &ConvCase{
		Tag:     tag,
		Img:     img,
		In:      in,
		Kern:    kern,
		Stride:  stride,
		InChan:  inChan,
		OutChan: outChan,
		Out: ds.Point{
			Y: 1 + (in.Y-kern.Y)/stride.Y,
			X: 1 + (in.X-kern.X)/stride.X,
		},
	}, nil
}

func (c *ConvCase) Descriptor() Descriptor {
	return Descriptor{
		Str("tag", c.Tag),
		Str("type", "Convolution"),
		Node("dims_vals",
			Node("biases", Int("out_chan", c.OutChan)),
			Node("filts", Int("out_chan", c.OutChan), Int("in_chan", c.InChan), Int("y", c.Kern.Y), Int("x", c.Kern.X)),
			Node("in", Int("img", c.Img), Int("chan", c.InChan), Int("y", c.In.Y), Int("x", c.In.X)),
			Node("in_pad", Int("y", 0), Int("x", 0)),
			Node("kern_sz", Int("y", c.Kern.Y), Int("x", c.Kern.X)),
			Node("out", Int("img", c.Img), Int("chan", c.OutChan), Int("y", c.Out.Y), Int("x", c.Out.X)),
			Node("stride", Int("y", c.Stride.Y), Int("x", c.Stride.X)),
		),
		Node("str_vals", Int("out_chans", c.OutChan)),
	}
}

// Calls emit for each combination, tags are op_0, op_1, ...
func (s *ConvSweep) Each(emit func(c *ConvCase) error) error {
	index := 0
	for _, img := range s.BatchSizes {
		for _, activX := range s.ActivationsX {
			for _, activY := range s.ActivationsY {
				for _, filtX := range s.FiltersX {
					for _, filtY := range s.FiltersY {
						for strideX := 1; strideX <= filtX; strideX++ {
							for strideY := 1; strideY <= filtY; strideY++ {
								for _, chansIn := range s.ChansIn {
									for _, chansOut := range s.ChansOut {
										c, err := NewConvCase(
											"op_"+strconv.Itoa(index), img,
											ds.Point{Y: activY, X: activX},
											ds.Point{Y: filtY, X: filtX},
											ds.Point{Y: strideY, X: strideX},
											chansIn, chansOut,
										)
										if err != nil {
											return err
										}
										index++
										if err = emit(c); err != nil {
											return err
										}
									}
								}
							}
						}
					}
				}
			}
		}
	}
	return nil
}

// Number of cases Each emits
func (s *ConvSweep) Count() int {
	strides := func(filters []int) int {
		sum := 0
		for _, f := range filters {
			if f > 0 {
				sum += f
			}
		}
		return sum
	}
	return len(s.BatchSizes) * len(s.ActivationsX) * len(s.ActivationsY) *
		strides(s.FiltersX) * strides(s.FiltersY) * len(s.ChansIn) * len(s.ChansOut)
}

// A single matrix multiply test case, C(MxN) = A(MxK) * B(KxN)
type SgemmCase struct {
	M int
	N int
	K int
}

func NewSgemmCase(m int, n int, k int) (*SgemmCase, error) {
	if m <= 0 || n <= 0 || k <= 0 {
		return nil, errors.Wrapf(InvalidSweepParamsError, "sgemm %dx%dx%d", m, n, k)
	}
	return &SgemmCase{m, n, k}, nil
}

func (c *SgemmCase) Descriptor() Descriptor {
	return Descriptor{
		Str("type", "sgemm"),
		Node("dims_vals",
			Node("a", Int("M", c.M), Int("K", c.K)),
			Node("bt", Int("N", c.N), Int("K", c.K)),
			Node("c", Int("M", c.M), Int("N", c.N)),
		),
	}
}

func (s *SgemmSweep) Each(emit func(c *SgemmCase) error) error {
	for _, size := range s.Sizes {
		c, err := NewSgemmCase(size, size, size)
		if err != nil {
			return err
		}
		if err = emit(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *SgemmSweep) Count() int {
	return len(s.Sizes)
}
