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
	"fmt"
	"github.com/Gabrielcb/boda/units"
	"github.com/olekukonko/tablewriter"
	"io"
	"strings"
)

// Prints cost results as text
type Reporter struct {
	out     io.Writer
	units   units.Formatter
	options Options
}

func NewReporter(out io.Writer, options Options, verbose bool) *Reporter {
	return &Reporter{
		out:     out,
		units:   units.Formatter{Verbose: verbose},
		options: options,
	}
}

func (r *Reporter) PrintInputs() {
	fmt.Fprintf(r.out, "-- INPUT: NUM_IMGS=%d --\n", r.options.NumImgs)
	fmt.Fprintf(r.out, "-- INPUT: RUNTIME=%gs --\n", r.options.Runtime)
	fmt.Fprintf(r.out, "-- INPUT: POWER=%gW --\n", r.options.Power)
}

// One line per layer
func (r *Reporter) LayerLine(c *LayerCost) string {
	parts := []string{c.Name, "FWD", r.units.Ops(float64(c.ForwardOps)), r.units.Bytes(float64(c.ForwardBytes))}
	if r.options.Backward {
		parts = append(parts, "--- BACK_GRAD", r.units.Ops(float64(c.BackwardGradOps)))
		parts = append(parts, "--- BACK_DIFF", r.units.Ops(float64(c.BackwardDiffOps)))
	}
	if r.options.AiMnk {
		parts = append(parts, "FWD_AI", r.units.OpsPerByte(c.ForwardIntensity()))
		parts = append(parts, fmt.Sprintf("MxNxK=%dx%dx%d", c.M, c.N, c.K))
	}
	if r.options.Backward {
		parts = append(parts, "BACKWARD_BYTES", r.units.Bytes(float64(c.BackwardBytes)))
	}
	if c.Elapsed != nil && *c.Elapsed > 0 {
		parts = append(parts, "---", r.units.Secs(*c.Elapsed), r.units.OpsPerSec(c.ObservedThroughput()))
	}
	return strings.Join(parts, " ")
}

func (r *Reporter) PrintLayers(costs []*LayerCost) {
	for _, c := range costs {
		fmt.Fprintln(r.out, r.LayerLine(c))
	}
}

func (r *Reporter) PrintLayerTable(costs []*LayerCost) {
	header := []string{"Layer", "Kind", "Fwd Ops", "Fwd Bytes"}
	if r.options.Backward {
		header = append(header, "Back Grad Ops", "Back Diff Ops", "Back Bytes")
	}
	if r.options.AiMnk {
		header = append(header, "Fwd AI", "MxNxK")
	}
	header = append(header, "Time", "Observed")

	table := tablewriter.NewWriter(r.out)
	table.SetHeader(header)
	table.SetCaption(true, fmt.Sprintf("%d Layers", len(costs)))
	table.SetBorder(false)
	table.SetAutoFormatHeaders(false)
	for _, c := range costs {
		row := []string{
			c.Name,
			c.Kind.String(),
			r.units.Ops(float64(c.ForwardOps)),
			r.units.Bytes(float64(c.ForwardBytes)),
		}
		if r.options.Backward {
			row = append(row,
				r.units.Ops(float64(c.BackwardGradOps)),
				r.units.Ops(float64(c.BackwardDiffOps)),
				r.units.Bytes(float64(c.BackwardBytes)),
			)
		}
		if r.options.AiMnk {
			row = append(row,
				r.units.OpsPerByte(c.ForwardIntensity()),
				fmt.Sprintf("%dx%dx%d", c.M, c.N, c.K),
			)
		}
		if c.Elapsed != nil && *c.Elapsed > 0 {
			row = append(row, r.units.Secs(*c.Elapsed), r.units.OpsPerSec(c.ObservedThroughput()))
		} else {
			row = append(row, "", "")
		}
		table.Append(row)
	}
	table.Render()
}

func (r *Reporter) PrintSummary(s *Summary) {
	fmt.Fprintf(r.out, "--- %s TOTALS ---\n", r.totalsTitle(s.Backward))
	fmt.Fprintln(r.out, r.units.Ops(float64(s.TotalOps)), r.units.OpsPerSec(s.Throughput))
	fmt.Fprintln(r.out, r.units.Bytes(float64(s.TotalBytes)), r.units.BytesPerSec(s.Bandwidth), "AI="+r.units.OpsPerByte(s.ArithmeticIntensity))
	fmt.Fprintln(r.out, r.units.Joules(s.Energy), r.units.OpsPerSecPerWatt(s.Efficiency))
}

func (r *Reporter) totalsTitle(backward bool) string {
	switch {
	case backward && r.units.Verbose:
		return "FORWARD_BACKWARD"
	case backward:
		return "FWD_BWD"
	case r.units.Verbose:
		return "FORWARD"
	default:
		return "FWD"
	}
}
