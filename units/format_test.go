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
package units

import (
	"github.com/stretchr/testify/assert"
	"strconv"
	"strings"
	"testing"
)

func TestFormatScaled(t *testing.T) {
	samples := []struct {
		value    float64
		expected string
	}{
		{0, "0"},
		{1, "1.00"},
		{5.5, "5.50"},
		{42, "42.0"},
		{999, "999"},
		{1000, "1.00K"},
		{12345, "12.3K"},
		{1500000, "1.50M"},
		{3e9, "3.00G"},
		{7.5e12, "7.50T"},
		{2e15, "2.00P"},
		{1e18, "1000P"},
		{0.25, "250m"},
		{0.002, "2.00m"},
		{4e-6, "4.00u"},
		{2e-12, "2.00p"},
		{-1500, "-1.50K"},
	}
	for _, s := range samples {
		assert.Equal(t, s.expected, FormatScaled(s.value), "value %g", s.value)
	}
}

func TestFormatScaledTooSmall(t *testing.T) {
	assert.Equal(t, "5e-13", FormatScaled(5e-13))
}

func TestFormatScaledMonotonic(t *testing.T) {
	values := []float64{1000, 2000, 5000, 10000, 20000, 50000, 100000, 200000, 500000}
	last := -1.0
	for _, v := range values {
		formatted := FormatScaled(v)
		assert.True(t, strings.HasSuffix(formatted, "K"), formatted)
		prefix, err := strconv.ParseFloat(strings.TrimSuffix(formatted, "K"), 64)
		assert.NoError(t, err)
		assert.Greater(t, prefix, last)
		last = prefix
	}
}

func TestFormatter(t *testing.T) {
	short := Formatter{}
	assert.Equal(t, "2.00GF", short.Ops(2e9))
	assert.Equal(t, "2.00GF/s", short.OpsPerSec(2e9))
	assert.Equal(t, "512B", short.Bytes(512))
	assert.Equal(t, "1.00KB/s", short.BytesPerSec(1000))
	assert.Equal(t, "3.00F/B", short.OpsPerByte(3))
	assert.Equal(t, "10.0MF/s/W", short.OpsPerSecPerWatt(1e7))
	assert.Equal(t, "2.00KJ", short.Joules(2000))
	assert.Equal(t, "1.00ms", short.Secs(0.001))

	verbose := Formatter{Verbose: true}
	assert.Equal(t, "2.00G FLOPS", verbose.Ops(2e9))
	assert.Equal(t, "2.00K JOULES", verbose.Joules(2000))
	assert.Equal(t, "1.00m SECS", verbose.Secs(0.001))
}
