package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ValidationErrors collects messages per attribute, keeping the order in
// which attributes first failed.
type ValidationErrors struct {
	fields   []string
	messages map[string][]string
}

// NewValidationErrors returns an empty collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{messages: make(map[string][]string)}
}

// Add records msg for field.
func (e *ValidationErrors) Add(field, msg string) {
	if e.messages == nil {
		e.messages = make(map[string][]string)
	}
	if _, ok := e.messages[field]; !ok {
		e.fields = append(e.fields, field)
	}
	e.messages[field] = append(e.messages[field], msg)
}

// Empty reports whether no messages were added.
func (e *ValidationErrors) Empty() bool {
	return e == nil || len(e.fields) == 0
}

// Fields returns the failing attributes in order.
func (e *ValidationErrors) Fields() []string {
	return append([]string(nil), e.fields...)
}

// On returns the messages recorded for field.
func (e *ValidationErrors) On(field string) []string {
	return e.messages[field]
}

// FullMessages prefixes each message with the humanized attribute name:
// "first_name" + "can't be blank" -> "First name can't be blank".
func (e *ValidationErrors) FullMessages() []string {
	var out []string
	for _, f := range e.fields {
		for _, msg := range e.messages[f] {
			out = append(out, Humanize(f)+" "+msg)
		}
	}
	return out
}

func (e *ValidationErrors) Error() string {
	return "validation failed: " + strings.Join(e.FullMessages(), ", ")
}

// MarshalJSON encodes the errors as a flat object keyed by attribute.
func (e *ValidationErrors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range e.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.messages[f])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Humanize turns an attribute name into a label: "first_name" -> "First name".
func Humanize(attr string) string {
	s := strings.TrimSuffix(attr, "_id")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
