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
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strconv"
	"testing"
)

func TestNewConvCase(t *testing.T) {
	c, err := NewConvCase("op_0", 1, ds.Point{Y: 8, X: 8}, ds.Point{Y: 3, X: 3}, ds.Point{Y: 1, X: 1}, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, ds.Point{Y: 1 + (8-3)/1, X: 1 + (8-3)/1}, c.Out)
	assert.Equal(t, ds.Point{Y: 6, X: 6}, c.Out)

	c, err = NewConvCase("op_1", 2, ds.Point{Y: 17, X: 9}, ds.Point{Y: 4, X: 2}, ds.Point{Y: 3, X: 2}, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, ds.Point{Y: 1 + (17-4)/3, X: 1 + (9-2)/2}, c.Out)
}

func TestNewConvCaseInvalid(t *testing.T) {
	samples := []struct {
		in, kern, stride ds.Point
		img              int
	}{
		{ds.Point{Y: 3, X: 8}, ds.Point{Y: 3, X: 3}, ds.Point{Y: 1, X: 1}, 1},
		{ds.Point{Y: 8, X: 2}, ds.Point{Y: 3, X: 3}, ds.Point{Y: 1, X: 1}, 1},
		{ds.Point{Y: 8, X: 8}, ds.Point{Y: 3, X: 3}, ds.Point{Y: 0, X: 1}, 1},
		{ds.Point{Y: 8, X: 8}, ds.Point{Y: 0, X: 3}, ds.Point{Y: 1, X: 1}, 1},
		{ds.Point{Y: 8, X: 8}, ds.Point{Y: 3, X: 3}, ds.Point{Y: 1, X: 1}, 0},
	}
	for _, s := range samples {
		_, err := NewConvCase("op", s.img, s.in, s.kern, s.stride, 3, 4)
		assert.Equal(t, InvalidSweepParamsError, errors.Cause(err))
	}
}

func TestConvCaseDescriptor(t *testing.T) {
	c, err := NewConvCase("op_7", 3, ds.Point{Y: 55, X: 55}, ds.Point{Y: 1, X: 1}, ds.Point{Y: 1, X: 1}, 96, 16)
	require.NoError(t, err)
	expected := "(tag=op_7,type=Convolution,dims_vals=(biases=(out_chan=16)," +
		"filts=(out_chan=16,in_chan=96,y=1,x=1)," +
		"in=(img=3,chan=96,y=55,x=55)," +
		"in_pad=(y=0,x=0),kern_sz=(y=1,x=1)," +
		"out=(img=3,chan=16,y=55,x=55)," +
		"stride=(y=1,x=1))," +
		"str_vals=(out_chans=16))"
	assert.Equal(t, expected, c.Descriptor().String())
}

func TestSgemmDescriptor(t *testing.T) {
	c, err := NewSgemmCase(32, 64, 128)
	require.NoError(t, err)
	assert.Equal(t, "(type=sgemm,dims_vals=(a=(M=32,K=128),bt=(N=64,K=128),c=(M=32,N=64)))", c.Descriptor().String())

	_, err = NewSgemmCase(0, 1, 1)
	assert.Equal(t, InvalidSweepParamsError, errors.Cause(err))
}

func smallSweep() ConvSweep {
	return ConvSweep{
		BatchSizes:   []int{1, 2},
		ActivationsX: []int{8},
		ActivationsY: []int{8, 9},
		FiltersX:     []int{1, 3},
		FiltersY:     []int{2},
		ChansIn:      []int{3},
		ChansOut:     []int{4, 5},
	}
}

func TestConvSweepEach(t *testing.T) {
	s := smallSweep()
	var cases []*ConvCase
	err := s.Each(func(c *ConvCase) error {
		cases = append(cases, c)
		return nil
	})
	require.NoError(t, err)
	// strides x: 1 + 3, strides y: 2
	assert.Equal(t, 2*1*2*4*2*1*2, len(cases))
	assert.Equal(t, s.Count(), len(cases))

	for i, c := range cases {
		assert.Equal(t, "op_"+strconv.Itoa(i), c.Tag)
		assert.True(t, c.Stride.X >= 1 && c.Stride.X <= c.Kern.X)
		assert.True(t, c.Stride.Y >= 1 && c.Stride.Y <= c.Kern.Y)
	}
	first := cases[0]
	assert.Equal(t, 1, first.Img)
	assert.Equal(t, ds.Point{Y: 8, X: 8}, first.In)
	assert.Equal(t, ds.Point{Y: 2, X: 1}, first.Kern)
	assert.Equal(t, 4, first.OutChan)
	assert.Equal(t, 5, cases[1].OutChan)
}

func TestConvSweepStopsOnError(t *testing.T) {
	s := smallSweep()
	s.ActivationsX = []int{8, 2}
	count := 0
	err := s.Each(func(c *ConvCase) error {
		count++
		return nil
	})
	assert.Equal(t, InvalidSweepParamsError, errors.Cause(err))
	assert.True(t, count > 0)

	stop := errors.New("stop")
	s = smallSweep()
	count = 0
	err = s.Each(func(c *ConvCase) error {
		count++
		return stop
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 1, count)
}

func TestDefaultSweeps(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, 5*8*8*15*15*9*9, config.Conv.Count())
	assert.Equal(t, 16, config.Sgemm.Count())

	var sizes []int
	err := config.Sgemm.Each(func(c *SgemmCase) error {
		assert.Equal(t, c.M, c.N)
		assert.Equal(t, c.M, c.K)
		sizes = append(sizes, c.M)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, config.Sgemm.Sizes, sizes)
}

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig("../test/resources/sweeps/small.yaml")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, config.Conv.BatchSizes)
	assert.Equal(t, []int{8, 16}, config.Conv.ActivationsX)
	// not in the file
	assert.Equal(t, DefaultConfig().Conv.ChansOut, config.Conv.ChansOut)
	assert.Equal(t, []int{32, 64}, config.Sgemm.Sizes)

	_, err = LoadConfig("../test/resources/sweeps/missing.yaml")
	assert.Error(t, err)
}
