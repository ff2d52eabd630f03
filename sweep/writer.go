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
	"bufio"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack"
	"io"
	"strings"
)

type Format int

const (
	// One descriptor per line in the nested (key=value) syntax
	FormatText Format = iota
	// One JSON object per line
	FormatJson
	// Stream of msgpack maps
	FormatMsgpack
)

func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJson, nil
	case "msgpack":
		return FormatMsgpack, nil
	default:
		return 0, errors.Errorf("Unsupported format %s", name)
	}
}

type Writer interface {
	Write(d Descriptor) error
	Flush() error
}

func NewWriter(format Format, out io.Writer) (Writer, error) {
	buffered := bufio.NewWriter(out)
	switch format {
	case FormatText:
		return &textWriter{buffered}, nil
	case FormatJson:
		return &jsonWriter{buffered}, nil
	case FormatMsgpack:
		return &msgpackWriter{msgpack.NewEncoder(buffered), buffered}, nil
	default:
		return nil, errors.Errorf("Unsupported format %d", format)
	}
}

type textWriter struct {
	out *bufio.Writer
}

func (t *textWriter) Write(d Descriptor) error {
	if _, err := t.out.WriteString(d.String()); err != nil {
		return err
	}
	return t.out.WriteByte('\n')
}

func (t *textWriter) Flush() error {
	return t.out.Flush()
}

type jsonWriter struct {
	out *bufio.Writer
}

func (j *jsonWriter) Write(d Descriptor) error {
	encoded, err := d.MarshalJSON()
	if err != nil {
		return err
	}
	if _, err = j.out.Write(encoded); err != nil {
		return err
	}
	return j.out.WriteByte('\n')
}

func (j *jsonWriter) Flush() error {
	return j.out.Flush()
}
