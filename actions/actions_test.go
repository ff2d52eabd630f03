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
	"bytes"
	"encoding/json"
	"github.com/Gabrielcb/boda/cost"
	"github.com/Gabrielcb/boda/util/yaml"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func tinyArguments() *FlopsArguments {
	return &FlopsArguments{
		NetworkFile: "../test/resources/nets/tiny.yaml",
		Options:     cost.DefaultOptions(),
		Format:      FormatText,
	}
}

func TestEstimateNetworkText(t *testing.T) {
	args := tinyArguments()
	args.TimingFile = "../test/resources/timings/tiny.yaml"
	args.Options.PerLayer = true
	var out bytes.Buffer
	require.NoError(t, EstimateNetwork(args, false, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "-- INPUT: NUM_IMGS=1 --", lines[0])
	assert.Equal(t, "total _inxp time: 750ms", lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "conv1 FWD 972F 596B --- BACK_GRAD"), lines[4])
	assert.True(t, strings.HasSuffix(lines[4], "--- 2.00ms 486KF/s"), lines[4])
	assert.True(t, strings.HasPrefix(lines[5], "fc1 FWD 360F"), lines[5])
	assert.Equal(t, "--- FWD_BWD TOTALS ---", lines[6])
}

func TestEstimateNetworkTable(t *testing.T) {
	args := tinyArguments()
	args.Options.PerLayer = true
	args.Table = true
	var out bytes.Buffer
	require.NoError(t, EstimateNetwork(args, true, &out))
	assert.Contains(t, out.String(), "2 Layers")
	assert.Contains(t, out.String(), "--- FORWARD_BACKWARD TOTALS ---")
}

func TestEstimateNetworkJson(t *testing.T) {
	args := tinyArguments()
	args.Options.Backward = false
	args.Options.PerLayer = true
	args.Format = FormatJson
	var out bytes.Buffer
	require.NoError(t, EstimateNetwork(args, false, &out))

	var summary cost.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, int64(972+360), summary.TotalOps)
	assert.Equal(t, 200.0, summary.Energy)
	require.Len(t, summary.Layers, 2)
	assert.Equal(t, "fc1", summary.Layers[1].Name)
	assert.Contains(t, out.String(), `"kind": "InnerProduct"`)
}

func TestEstimateNetworkYaml(t *testing.T) {
	args := tinyArguments()
	args.Format = FormatYaml
	var out bytes.Buffer
	require.NoError(t, EstimateNetwork(args, false, &out))

	var parsed map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &parsed))
	assert.Equal(t, true, parsed["backward"])
	assert.NotContains(t, parsed, "layers")
}

func TestEstimateNetworkErrors(t *testing.T) {
	args := tinyArguments()
	args.Options.Runtime = 0
	err := EstimateNetwork(args, false, &bytes.Buffer{})
	assert.Equal(t, cost.InvalidConfigError, errors.Cause(err))

	args = tinyArguments()
	args.NetworkFile = "../test/resources/nets/mismatch.yaml"
	var out bytes.Buffer
	err = EstimateNetwork(args, false, &out)
	assert.Equal(t, cost.ShapeMismatchError, errors.Cause(err))
	assert.Empty(t, out.String())

	args = tinyArguments()
	args.Format = "xml"
	assert.Error(t, EstimateNetwork(args, false, &bytes.Buffer{}))

	args = tinyArguments()
	args.TimingFile = "../test/resources/timings/missing.yaml"
	assert.Error(t, EstimateNetwork(args, false, &bytes.Buffer{}))
}

func TestEstimateAlexNet(t *testing.T) {
	args := &FlopsArguments{
		NetworkFile: "../test/resources/nets/alexnet_like.yaml",
		Options:     cost.DefaultOptions(),
		Format:      FormatJson,
	}
	args.Options.NumImgs = 2
	args.Options.Backward = false
	var out bytes.Buffer
	require.NoError(t, EstimateNetwork(args, false, &out))
	var summary cost.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))

	conv1 := int64(2*96*55*55) * int64(3*11*11) * 2
	conv2 := int64(2*256*27*27) * int64(96*5*5) * 2
	fc6 := int64(2*4096) * int64(256*13*13) * 2
	fc7 := int64(2*4096) * int64(4096) * 2
	assert.Equal(t, conv1+conv2+fc6+fc7, summary.TotalOps)
	assert.Equal(t, 2, summary.NumImgs)
}

func TestGenerateSweep(t *testing.T) {
	var out bytes.Buffer
	err := GenerateSweep(&SweepArguments{Kind: SweepSgemm, Format: "text"}, &out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 16)
	assert.Equal(t, "(type=sgemm,dims_vals=(a=(M=32,K=32),bt=(N=32,K=32),c=(M=32,N=32)))", lines[0])

	out.Reset()
	err = GenerateSweep(&SweepArguments{Kind: SweepConv, Format: "json", ConfigFile: "../test/resources/sweeps/small.yaml"}, &out)
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out.String()), "\n")
	// batch 1, activations 2x2, strides (1+3)x(1+3), channels 9x9
	assert.Len(t, lines, 1*2*2*4*4*9*9)
	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "op_0", first["tag"])
}

func TestGenerateSweepErrors(t *testing.T) {
	assert.Error(t, GenerateSweep(&SweepArguments{Kind: "pool", Format: "text"}, &bytes.Buffer{}))
	assert.Error(t, GenerateSweep(&SweepArguments{Kind: SweepConv, Format: "xml"}, &bytes.Buffer{}))
	assert.Error(t, GenerateSweep(&SweepArguments{Kind: SweepConv, Format: "text", ConfigFile: "missing.yaml"}, &bytes.Buffer{}))
}

func TestPrintVersion(t *testing.T) {
	var out bytes.Buffer
	PrintVersion(&out, &VersionArguments{}, "1.2.3")
	assert.Equal(t, "Version  1.2.3\n", out.String())
}
