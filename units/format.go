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
	"fmt"
	"math"
	"strconv"
)

const largeSuffixes = "KMGTP"
const smallSuffixes = "munp"

// Largest supported positive exponent (peta), values above are printed in peta units.
const maxExponent = len(largeSuffixes)

// FormatScaled prints a magnitude with 3 significant digits and a SI-like suffix.
// Values too small for the pico range are printed unscaled.
func FormatScaled(v float64) string {
	if v == 0 {
		return "0"
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if v < 0 {
		return "-" + FormatScaled(-v)
	}
	scaled := v
	exp := 0
	for scaled < 1.0 {
		scaled *= 1000.0
		exp--
	}
	if exp < -len(smallSuffixes) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	ret, ok := formatPart(scaled, false)
	for !ok {
		scaled /= 1000.0
		exp++
		ret, ok = formatPart(scaled, exp == maxExponent)
	}
	switch {
	case exp < 0:
		return ret + string(smallSuffixes[-1-exp])
	case exp == 0:
		return ret
	default:
		return ret + string(largeSuffixes[exp-1])
	}
}

func formatPart(v float64, force bool) (string, bool) {
	switch {
	case v < 10:
		return fmt.Sprintf("%.2f", v), true
	case v < 100:
		return fmt.Sprintf("%.1f", v), true
	case v < 1000 || force:
		return fmt.Sprintf("%.0f", v), true
	}
	return "", false
}
