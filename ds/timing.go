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
	"github.com/Gabrielcb/boda/util/yaml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"strings"
)

// Measured elapsed seconds per layer name
type TimingTable map[string]float64

func (t TimingTable) Lookup(layerName string) (float64, bool) {
	v, ok := t[layerName]
	return v, ok
}

// Sum of all entries whose name ends with suffix
func (t TimingTable) TotalWithSuffix(suffix string) float64 {
	var sum float64
	for k, v := range t {
		if strings.HasSuffix(k, suffix) {
			sum += v
		}
	}
	return sum
}

func (t TimingTable) validate() error {
	for k, v := range t {
		if v < 0 {
			return errors.Wrapf(InvalidDescriptionError, "negative time %g for %s", v, k)
		}
	}
	return nil
}

func ParseTimingTable(data []byte) (TimingTable, error) {
	var table TimingTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, descriptionError(err, "Could not parse timing table")
	}
	if table == nil {
		table = TimingTable{}
	}
	return table, table.validate()
}

// Loads a timing table from a YAML or JSON mapping file
func LoadTimingTable(fileName string) (TimingTable, error) {
	var table TimingTable
	if err := yaml.UnmarshalFile(fileName, &table); err != nil {
		return nil, descriptionError(err, "Could not load timing table")
	}
	if table == nil {
		table = TimingTable{}
	}
	if err := table.validate(); err != nil {
		return nil, err
	}
	logrus.Debugf("Loaded %d layer times from %s", len(table), fileName)
	return table, nil
}
