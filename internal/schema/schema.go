package schema

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Schema is one JSON-Schema node. Only the keywords the compiler consumes
// are decoded.
type Schema struct {
	Title               string `json:"title"`
	Description         string `json:"description"`
	DetailedDescription string `json:"gltf_detailedDescription"`

	Type string `json:"type"`
	Ref  string `json:"$ref"`

	Const any   `json:"const"`
	Enum  []any `json:"enum"`

	AllOf []*Schema `json:"allOf"`
	AnyOf []*Schema `json:"anyOf"`
	OneOf []*Schema `json:"oneOf"`

	Properties map[string]*Schema `json:"properties"`
	Required   []string           `json:"required"`

	// Items holds a single item schema, ItemsTuple the tuple form.
	Items      *Schema   `json:"-"`
	ItemsTuple []*Schema `json:"-"`
	MinItems   *int      `json:"minItems"`
	MaxItems   *int      `json:"maxItems"`

	HasAdditionalProperties bool    `json:"-"`
	AdditionalProperties    *Schema `json:"-"`

	Default any `json:"default"`

	Definitions map[string]*Schema `json:"definitions"`
	Defs        map[string]*Schema `json:"$defs"`
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	type plain Schema

	var raw struct {
		plain
		Items                json.RawMessage `json:"items"`
		AdditionalProperties json.RawMessage `json:"additionalProperties"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Schema(raw.plain)

	if err := s.decodeItems(raw.Items); err != nil {
		return fmt.Errorf(`invalid "items": %w`, err)
	}

	if err := s.decodeAdditionalProperties(raw.AdditionalProperties); err != nil {
		return fmt.Errorf(`invalid "additionalProperties": %w`, err)
	}

	return nil
}

func (s *Schema) decodeItems(data json.RawMessage) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0, bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '[':
		return json.Unmarshal(data, &s.ItemsTuple)
	case data[0] == '{':
		s.Items = &Schema{}
		return json.Unmarshal(data, s.Items)
	}

	return fmt.Errorf("expected a schema or an array of schemas, got %s", data)
}

func (s *Schema) decodeAdditionalProperties(data json.RawMessage) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0, bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte("null")):
		return nil
	case bytes.Equal(data, []byte("true")):
		s.HasAdditionalProperties = true
		return nil
	case data[0] == '{':
		s.HasAdditionalProperties = true
		s.AdditionalProperties = &Schema{}
		return json.Unmarshal(data, s.AdditionalProperties)
	}

	return fmt.Errorf("expected a boolean or a schema, got %s", data)
}

// PropertyNames returns the declared property names sorted, so that
// traversal doesn't depend on map iteration order.
func (s *Schema) PropertyNames() []string {
	return slices.Sorted(maps.Keys(s.Properties))
}

// IsRequired reports whether the schema's `required` list names `property`.
func (s *Schema) IsRequired(property string) bool {
	return slices.Contains(s.Required, property)
}

// Comment returns the long-form description if there is one.
func (s *Schema) Comment() string {
	if len(s.DetailedDescription) != 0 {
		return s.DetailedDescription
	}

	return s.Description
}

// Pointer walks a JSON pointer fragment starting from `s`.
func (s *Schema) Pointer(fragment string) (*Schema, error) {
	if len(fragment) == 0 {
		return s, nil
	}

	if fragment[0] != '/' {
		return nil, fmt.Errorf(`fragment "%s" is not a JSON pointer`, fragment)
	}

	tokens := strings.Split(fragment[1:], "/")
	node := s

	for i := 0; i < len(tokens); i += 1 {
		keyword := unescapePointer(tokens[i])

		switch keyword {
		case "items":
			if node.Items != nil {
				node = node.Items
				continue
			}

			next, err := node.member(keyword, node.ItemsTuple, tokens, &i)
			if err != nil {
				return nil, err
			}
			node = next
		case "additionalProperties":
			if node.AdditionalProperties == nil {
				return nil, fmt.Errorf(`no schema at "%s"`, keyword)
			}
			node = node.AdditionalProperties
		case "definitions", "$defs", "properties":
			next, err := node.entry(keyword, tokens, &i)
			if err != nil {
				return nil, err
			}
			node = next
		case "allOf", "anyOf", "oneOf":
			next, err := node.member(keyword, node.composition(keyword), tokens, &i)
			if err != nil {
				return nil, err
			}
			node = next
		default:
			return nil, fmt.Errorf(`unsupported pointer segment "%s"`, keyword)
		}

		if node == nil {
			return nil, fmt.Errorf(`null schema at "%s"`, keyword)
		}
	}

	return node, nil
}

func (s *Schema) entry(keyword string, tokens []string, i *int) (*Schema, error) {
	*i += 1
	if *i >= len(tokens) {
		return nil, fmt.Errorf(`missing name after "%s"`, keyword)
	}

	var table map[string]*Schema
	switch keyword {
	case "definitions":
		table = s.Definitions
	case "$defs":
		table = s.Defs
	default:
		table = s.Properties
	}

	name := unescapePointer(tokens[*i])
	next, ok := table[name]
	if !ok {
		return nil, fmt.Errorf(`no "%s" entry named "%s"`, keyword, name)
	}

	return next, nil
}

func (s *Schema) member(keyword string, list []*Schema, tokens []string, i *int) (*Schema, error) {
	*i += 1
	if *i >= len(tokens) {
		return nil, fmt.Errorf(`missing index after "%s"`, keyword)
	}

	idx, err := strconv.Atoi(tokens[*i])
	if err != nil || idx < 0 || idx >= len(list) {
		return nil, fmt.Errorf(`no "%s" entry at index "%s"`, keyword, tokens[*i])
	}

	return list[idx], nil
}

func (s *Schema) composition(keyword string) []*Schema {
	switch keyword {
	case "allOf":
		return s.AllOf
	case "anyOf":
		return s.AnyOf
	}

	return s.OneOf
}
