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
	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack"
)

// Writes descriptors as msgpack maps, transcoded from their JSON form so both formats keep the same structure.
type msgpackWriter struct {
	*msgpack.Encoder
	out *bufio.Writer
}

func (m *msgpackWriter) Write(d Descriptor) error {
	encoded, err := d.MarshalJSON()
	if err != nil {
		return err
	}
	return m.EncodeRawJson(encoded)
}

func (m *msgpackWriter) Flush() error {
	return m.out.Flush()
}

func (m *msgpackWriter) EncodeRawJson(jsonBytes []byte) error {
	value, dataType, _, err := jsonparser.Get(jsonBytes)
	if err != nil {
		return err
	}
	return m.encodeJsonWithType(value, dataType)
}

func (m *msgpackWriter) encodeJsonWithType(value []byte, dataType jsonparser.ValueType) error {
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return err
		}
		return m.EncodeString(s)
	case jsonparser.Object:
		count := 0
		counter := func([]byte, []byte, jsonparser.ValueType, int) error {
			count++
			return nil
		}
		if err := jsonparser.ObjectEach(value, counter); err != nil {
			return err
		}
		if err := m.EncodeMapLen(count); err != nil {
			return err
		}
		return jsonparser.ObjectEach(value, func(key []byte, sub []byte, subType jsonparser.ValueType, offset int) error {
			// keys are always strings
			if err := m.EncodeString(string(key)); err != nil {
				return err
			}
			return m.encodeJsonWithType(sub, subType)
		})
	case jsonparser.Number:
		i, err := jsonparser.ParseInt(value)
		if err == nil {
			return m.EncodeInt(i)
		}
		f, err := jsonparser.ParseFloat(value)
		if err != nil {
			return err
		}
		return m.EncodeFloat64(f)
	case jsonparser.Null:
		return m.EncodeNil()
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil {
			return err
		}
		return m.EncodeBool(b)
	case jsonparser.Array:
		count := 0
		if _, err := jsonparser.ArrayEach(value, func([]byte, jsonparser.ValueType, int, error) { count++ }); err != nil {
			return err
		}
		if err := m.EncodeArrayLen(count); err != nil {
			return err
		}
		var subError error
		_, err := jsonparser.ArrayEach(value, func(sub []byte, subType jsonparser.ValueType, offset int, e error) {
			if subError == nil {
				subError = m.encodeJsonWithType(sub, subType)
			}
		})
		if err != nil {
			return err
		}
		return subError
	}
	return errors.Errorf("Unimplemented JSON type %d", dataType)
}
