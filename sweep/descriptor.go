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
	"bytes"
	"encoding/json"
	"github.com/pkg/errors"
	"strconv"
	"strings"
)

// An ordered tree of key value pairs, printed as (key=value,key=(key=value))
type Descriptor []Field

// Either a scalar Value or a Nested descriptor
type Field struct {
	Key    string
	Value  string
	Nested Descriptor
}

func Str(key string, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: strconv.Itoa(value)}
}

func Node(key string, fields ...Field) Field {
	if fields == nil {
		fields = Descriptor{}
	}
	return Field{Key: key, Nested: fields}
}

func (f *Field) IsNested() bool {
	return f.Nested != nil
}

func (d Descriptor) String() string {
	var b strings.Builder
	d.writeTo(&b)
	return b.String()
}

func (d Descriptor) writeTo(b *strings.Builder) {
	b.WriteByte('(')
	for i, f := range d {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.Key)
		b.WriteByte('=')
		if f.IsNested() {
			f.Nested.writeTo(b)
		} else {
			b.WriteString(f.Value)
		}
	}
	b.WriteByte(')')
}

// Looks up a scalar value by its key path
func (d Descriptor) Get(path ...string) (string, bool) {
	if len(path) == 0 {
		return "", false
	}
	for _, f := range d {
		if f.Key != path[0] {
			continue
		}
		if len(path) == 1 {
			return f.Value, !f.IsNested()
		}
		return f.Nested.Get(path[1:]...)
	}
	return "", false
}

// JSON object with the same key order, integer values in canonical form become numbers
func (d Descriptor) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		var value []byte
		if f.IsNested() {
			value, err = f.Nested.MarshalJSON()
		} else if n, parseErr := strconv.ParseInt(f.Value, 10, 64); parseErr == nil && strconv.FormatInt(n, 10) == f.Value {
			value = []byte(f.Value)
		} else {
			value, err = json.Marshal(f.Value)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var InvalidDescriptorError = errors.New("invalid descriptor")

// Parses the text form of a descriptor
func ParseDescriptor(s string) (Descriptor, error) {
	p := descriptorParser{input: s}
	d, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, p.fail("trailing characters")
	}
	return d, nil
}

type descriptorParser struct {
	input string
	pos   int
}

func (p *descriptorParser) fail(reason string) error {
	return errors.Wrapf(InvalidDescriptorError, "%s at position %d", reason, p.pos)
}

func (p *descriptorParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *descriptorParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *descriptorParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return p.fail("expected '" + string(c) + "'")
	}
	p.pos++
	return nil
}

func (p *descriptorParser) parseNode() (Descriptor, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	result := Descriptor{}
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return result, nil
	}
	for {
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		result = append(result, f)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return result, nil
		default:
			return nil, p.fail("expected ',' or ')'")
		}
	}
}

func (p *descriptorParser) parseField() (Field, error) {
	key := strings.TrimSpace(p.readUntil("=,()"))
	if len(key) == 0 {
		return Field{}, p.fail("missing key")
	}
	if err := p.expect('='); err != nil {
		return Field{}, err
	}
	p.skipSpace()
	if p.peek() == '(' {
		nested, err := p.parseNode()
		if err != nil {
			return Field{}, err
		}
		return Field{Key: key, Nested: nested}, nil
	}
	value := strings.TrimSpace(p.readUntil("=,()"))
	return Field{Key: key, Value: value}, nil
}

func (p *descriptorParser) readUntil(stops string) string {
	start := p.pos
	for p.pos < len(p.input) && strings.IndexByte(stops, p.input[p.pos]) < 0 {
		p.pos++
	}
	return p.input[start:p.pos]
}
