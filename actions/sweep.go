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
	"github.com/Gabrielcb/boda/sweep"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io"
)

const SweepConv = "conv"
const SweepSgemm = "sgemm"

// Descriptor sweep arguments
type SweepArguments struct {
	// conv or sgemm
	Kind string
	// optional
	ConfigFile string
	Format     string
}

func GenerateSweep(args *SweepArguments, out io.Writer) error {
	format, err := sweep.ParseFormat(args.Format)
	if err != nil {
		return err
	}
	config := sweep.DefaultConfig()
	if len(args.ConfigFile) > 0 {
		if config, err = sweep.LoadConfig(args.ConfigFile); err != nil {
			return err
		}
	}
	writer, err := sweep.NewWriter(format, out)
	if err != nil {
		return err
	}
	switch args.Kind {
	case SweepConv:
		logrus.Debugf("Generating %d convolution descriptors", config.Conv.Count())
		err = config.Conv.Each(func(c *sweep.ConvCase) error {
			return writer.Write(c.Descriptor())
		})
	case SweepSgemm:
		logrus.Debugf("Generating %d sgemm descriptors", config.Sgemm.Count())
		err = config.Sgemm.Each(func(c *sweep.SgemmCase) error {
			return writer.Write(c.Descriptor())
		})
	default:
		return errors.Errorf("Unknown sweep %s, expected %s or %s", args.Kind, SweepConv, SweepSgemm)
	}
	if err != nil {
		return err
	}
	return writer.Flush()
}
