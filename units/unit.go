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

// A unit printed after a scaled value
type Unit struct {
	Short string
	Long  string
}

var (
	Seconds          = Unit{"s", " SECS"}
	Ops              = Unit{"F", " FLOPS"}
	Bytes            = Unit{"B", " BYTES"}
	BytesPerSec      = Unit{"B/s", " BYTES/SEC"}
	OpsPerByte       = Unit{"F/B", " FLOPS/BYTE"}
	OpsPerSec        = Unit{"F/s", " FLOPS/SEC"}
	OpsPerSecPerWatt = Unit{"F/s/W", " FLOPS/SEC/WATT"}
	Joules           = Unit{"J", " JOULES"}
)

// Formats values with unit suffixes, either short (1.23GF) or long (1.23G FLOPS)
type Formatter struct {
	Verbose bool
}

func (f Formatter) Format(v float64, unit Unit) string {
	if f.Verbose {
		return FormatScaled(v) + unit.Long
	}
	return FormatScaled(v) + unit.Short
}

func (f Formatter) Secs(v float64) string {
	return f.Format(v, Seconds)
}

func (f Formatter) Ops(v float64) string {
	return f.Format(v, Ops)
}

func (f Formatter) Bytes(v float64) string {
	return f.Format(v, Bytes)
}

func (f Formatter) BytesPerSec(v float64) string {
	return f.Format(v, BytesPerSec)
}

func (f Formatter) OpsPerByte(v float64) string {
	return f.Format(v, OpsPerByte)
}

func (f Formatter) OpsPerSec(v float64) string {
	return f.Format(v, OpsPerSec)
}

func (f Formatter) OpsPerSecPerWatt(v float64) string {
	return f.Format(v, OpsPerSecPerWatt)
}

func (f Formatter) Joules(v float64) string {
	return f.Format(v, Joules)
}
