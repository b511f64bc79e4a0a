// Package apitemplate projects records into named response shapes.
//
// A Model owns a set of named Templates. Each Template is an ordered list of
// Fields read from a Record; templates may extend other templates of the same
// model. A Renderer resolves a Selection (template name plus optional
// request-level prefix/postfix) against a Registry and produces a Document
// that can be encoded as JSON or XML.
package apitemplate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

var (
	ErrModelNotFound      = errors.New("api model not found")
	ErrTemplateNotFound   = errors.New("api template not found")
	ErrUnknownAttribute   = errors.New("unknown attribute")
	ErrInvalidDefinition  = errors.New("invalid api template definition")
	ErrEmptySelection     = errors.New("api template name is empty")
	errTemplateExtendLoop = errors.New("extend cycle")
)

// Field is a single emitted entry of a template.
//
// Exactly one source is used: a constant Value (Static), nested Fields, or the
// record attribute Attr.
type Field struct {
	Attr   string
	As     string
	Value  any
	Static bool
	If     string
	Unless string
	Fields []Field
}

// Key is the emitted name of the field before template key decoration.
func (f Field) Key() string {
	if f.As != "" {
		return f.As
	}
	return f.Attr
}

type fieldDocument struct {
	Attr   string    `yaml:"attr"`
	As     string    `yaml:"as"`
	Value  yaml.Node `yaml:"value"`
	If     string    `yaml:"if"`
	Unless string    `yaml:"unless"`
	Fields []Field   `yaml:"fields"`
}

// UnmarshalYAML accepts either a bare attribute name or a mapping.
func (f *Field) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*f = Field{Attr: strings.TrimSpace(node.Value)}
		return nil
	}

	var doc fieldDocument
	if err := node.Decode(&doc); err != nil {
		return err
	}
	out := Field{
		Attr:   strings.TrimSpace(doc.Attr),
		As:     strings.TrimSpace(doc.As),
		If:     strings.TrimSpace(doc.If),
		Unless: strings.TrimSpace(doc.Unless),
		Fields: doc.Fields,
	}
	if doc.Value.Kind != 0 {
		var v any
		if err := doc.Value.Decode(&v); err != nil {
			return fmt.Errorf("field %q value: %w", out.Key(), err)
		}
		out.Value = v
		out.Static = true
	}
	*f = out
	return nil
}

func (f Field) validate() error {
	if f.Key() == "" {
		return fmt.Errorf("%w: field without attr or as", ErrInvalidDefinition)
	}
	if !validKey(f.Key()) {
		return fmt.Errorf("%w: field key %q is not a valid element name", ErrInvalidDefinition, f.Key())
	}
	sources := 0
	if f.Static {
		sources++
	}
	if len(f.Fields) > 0 {
		sources++
	}
	if f.Attr != "" {
		sources++
	}
	if sources != 1 {
		return fmt.Errorf("%w: field %q must have exactly one of attr, value or fields", ErrInvalidDefinition, f.Key())
	}
	for _, child := range f.Fields {
		if err := child.validate(); err != nil {
			return err
		}
	}
	return nil
}

// validKey reports whether key can be emitted as both a JSON key and an XML
// element name: a letter or underscore followed by letters, digits, '_', '-'
// or '.'.
func validKey(key string) bool {
	for i, r := range key {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return key != ""
}

// Template is a named, ordered projection of a model's attributes.
type Template struct {
	Name       string  `yaml:"-"`
	Extend     string  `yaml:"extend"`
	KeyPrefix  string  `yaml:"key_prefix"`
	KeyPostfix string  `yaml:"key_postfix"`
	Fields     []Field `yaml:"fields"`
}

// Keys returns the decorated top-level keys in emission order.
func (t Template) Keys() []string {
	keys := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		keys = append(keys, t.decorate(f.Key()))
	}
	return keys
}

func (t Template) decorate(key string) string {
	return t.KeyPrefix + key + t.KeyPostfix
}

// Model groups the templates available for one kind of record.
type Model struct {
	Name      string              `yaml:"-"`
	Plural    string              `yaml:"plural"`
	Templates map[string]Template `yaml:"templates"`
}

// CollectionRoot is the root name used when rendering many records.
func (m *Model) CollectionRoot() string {
	if m.Plural != "" {
		return m.Plural
	}
	return m.Name + "s"
}

// Selection identifies a template for one request. Prefix and Postfix pick a
// decorated variant: {Template: "name_only", Prefix: "with_prefix"} selects
// "with_prefix_name_only".
type Selection struct {
	Template string
	Prefix   string
	Postfix  string
}

// Name joins the non-empty parts of the selection with underscores.
func (s Selection) Name() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.Prefix, s.Template, s.Postfix} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "_")
}
