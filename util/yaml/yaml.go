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
package yaml

import (
	"bytes"
	"encoding/json"
	"github.com/Gabrielcb/boda/util/osext"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"io"
	"io/ioutil"
)

// YAML support goes through the JSON facilities of the standard library, so that
// every input type only needs JSON tags and custom UnmarshalJSON methods.
// Key order of mappings is preserved, network layers and descriptor trees depend on it.

// Unmarshal yaml (or json, which is a subset) by converting to JSON first
func Unmarshal(data []byte, value interface{}) error {
	jsonCode, err := YamlToJson(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonCode, value)
}

// Read a YAML or JSON file and unmarshal it into value
func UnmarshalFile(fileName string, value interface{}) error {
	if !osext.FileExists(fileName) {
		return errors.Errorf("File %s not found", fileName)
	}
	if osext.IsDirectory(fileName) {
		return errors.Errorf("%s is a directory", fileName)
	}
	data, err := ioutil.ReadFile(fileName)
	if err != nil {
		return errors.Wrapf(err, "Could not read %s", fileName)
	}
	err = Unmarshal(data, value)
	if err != nil {
		return errors.Wrapf(err, "Could not parse %s", fileName)
	}
	return nil
}

// Marshal to yaml by converting to JSON first and then converting to YAML
func Marshal(value interface{}) ([]byte, error) {
	jsonCode, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return JsonToYaml(jsonCode)
}

// Convert YAML to JSON, mappings keep their order.
func YamlToJson(data []byte) ([]byte, error) {
	buffer := bytes.Buffer{}
	converter := jsonWriter{&buffer}
	err := yaml.Unmarshal(data, &converter)
	if err != nil {
		return nil, err
	}
	if buffer.Len() == 0 {
		return []byte("null"), nil
	}
	return buffer.Bytes(), nil
}

type jsonWriter struct {
	writer io.Writer
}

func (s *jsonWriter) write(data []byte) {
	_, err := s.writer.Write(data)
	if err != nil {
		panic(err.Error())
	}
}

func (s *jsonWriter) writeString(str string) {
	s.write([]byte(str))
}

func (s *jsonWriter) writeScalar(value *yaml.Node) error {
	switch value.Tag {
	case "!!null":
		s.writeString("null")
	case "!!str", "!!timestamp", "!!binary":
		encoded, err := json.Marshal(value.Value)
		if err != nil {
			return err
		}
		s.write(encoded)
	case "!!float":
		// .inf and .nan have no JSON representation
		var f float64
		if err := value.Decode(&f); err != nil {
			return err
		}
		encoded, err := json.Marshal(f)
		if err != nil {
			return errors.Wrapf(err, "Unsupported float %s", value.Value)
		}
		s.write(encoded)
	case "!!int":
		var i int64
		if err := value.Decode(&i); err != nil {
			return err
		}
		encoded, err := json.Marshal(i)
		if err != nil {
			return err
		}
		s.write(encoded)
	case "!!bool":
		var b bool
		if err := value.Decode(&b); err != nil {
			return err
		}
		if b {
			s.writeString("true")
		} else {
			s.writeString("false")
		}
	default:
		return errors.Errorf("Unsupported YAML tag %s", value.Tag)
	}
	return nil
}

var stringAsKeyError = errors.New("JSON only supports strings as keys")

func (s *jsonWriter) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.DocumentNode:
		for _, c := range value.Content {
			if err := s.UnmarshalYAML(c); err != nil {
				return err
			}
		}
	case yaml.AliasNode:
		return s.UnmarshalYAML(value.Alias)
	case yaml.ScalarNode:
		return s.writeScalar(value)
	case yaml.SequenceNode:
		s.writeString("[")
		for i, c := range value.Content {
			if i > 0 {
				s.writeString(",")
			}
			if err := s.UnmarshalYAML(c); err != nil {
				return err
			}
		}
		s.writeString("]")
	case yaml.MappingNode:
		s.writeString("{")
		for i := 0; i < len(value.Content); i += 2 {
			key := value.Content[i]
			if i > 0 {
				s.writeString(",")
			}
			if key.Tag != "!!str" {
				return stringAsKeyError
			}
			if err := s.writeScalar(key); err != nil {
				return err
			}
			s.writeString(":")
			if err := s.UnmarshalYAML(value.Content[i+1]); err != nil {
				return err
			}
		}
		s.writeString("}")
	}
	return nil
}

// Converts JSON to block style YAML
func JsonToYaml(data []byte) ([]byte, error) {
	var node yaml.Node
	err := yaml.Unmarshal(data, &node)
	if err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return []byte("null\n"), nil
	}
	blockStyle(node.Content[0])
	return yaml.Marshal(node.Content[0])
}

func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, c := range node.Content {
		blockStyle(c)
	}
}
