package apitemplate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Record is anything that can hand out attribute values by name.
type Record interface {
	APIAttribute(name string) (any, bool)
}

// Entry is one key/value pair of a rendered object.
type Entry struct {
	Key   string
	Value any
}

// Object is an ordered set of entries. Keys keep template order in every
// encoding.
type Object []Entry

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, e := range o {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, e := range o {
		keys[i] = e.Key
	}
	return keys
}

// MarshalJSON writes the entries in order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.Key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Options control how documents are encoded.
type Options struct {
	// IncludeRootInJSON wraps JSON output in {"<root>": ...}.
	IncludeRootInJSON bool
	// Dasherize turns underscores in XML element names into dashes.
	Dasherize bool
}

// DefaultOptions mirrors the conventional responder output.
func DefaultOptions() Options {
	return Options{IncludeRootInJSON: true, Dasherize: true}
}

// Document is the rendered result of one or many records.
type Document struct {
	// Root is the outer name: the model name, or its plural for collections.
	Root string
	// Item is the element name of each collection member.
	Item       string
	Template   string
	Collection bool
	Objects    []Object

	opts Options
}

// Renderer projects records through templates held by a Registry.
type Renderer struct {
	registry *Registry
	opts     Options
}

// NewRenderer binds a registry and encoding options.
func NewRenderer(reg *Registry, opts Options) *Renderer {
	return &Renderer{registry: reg, opts: opts}
}

// Registry exposes the underlying template registry.
func (r *Renderer) Registry() *Registry {
	return r.registry
}

// Resolve returns the flattened template for a selection.
func (r *Renderer) Resolve(model string, sel Selection) (Template, error) {
	name := sel.Name()
	if sel.Template == "" || name == "" {
		return Template{}, ErrEmptySelection
	}
	return r.registry.Template(model, name)
}

// One renders a single record.
func (r *Renderer) One(model string, rec Record, sel Selection) (*Document, error) {
	t, err := r.Resolve(model, sel)
	if err != nil {
		return nil, err
	}
	obj, err := project(t, rec)
	if err != nil {
		return nil, err
	}
	return &Document{
		Root:     model,
		Item:     model,
		Template: t.Name,
		Objects:  []Object{obj},
		opts:     r.opts,
	}, nil
}

// Many renders a collection. An empty slice yields an empty collection.
func (r *Renderer) Many(model string, recs []Record, sel Selection) (*Document, error) {
	m, err := r.registry.Model(model)
	if err != nil {
		return nil, err
	}
	t, err := r.Resolve(model, sel)
	if err != nil {
		return nil, err
	}
	objs := make([]Object, 0, len(recs))
	for i, rec := range recs {
		obj, err := project(t, rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		objs = append(objs, obj)
	}
	return &Document{
		Root:       m.CollectionRoot(),
		Item:       model,
		Template:   t.Name,
		Collection: true,
		Objects:    objs,
		opts:       r.opts,
	}, nil
}

func project(t Template, rec Record) (Object, error) {
	obj, err := projectFields(t.Fields, rec)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", t.Name, err)
	}
	for i := range obj {
		obj[i].Key = t.decorate(obj[i].Key)
	}
	return obj, nil
}

func projectFields(fields []Field, rec Record) (Object, error) {
	obj := make(Object, 0, len(fields))
	for _, f := range fields {
		include, err := included(f, rec)
		if err != nil {
			return nil, err
		}
		if !include {
			continue
		}

		var v any
		switch {
		case f.Static:
			v = f.Value
		case len(f.Fields) > 0:
			child, err := projectFields(f.Fields, rec)
			if err != nil {
				return nil, err
			}
			v = child
		default:
			val, ok := rec.APIAttribute(f.Attr)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, f.Attr)
			}
			v = val
		}
		obj = append(obj, Entry{Key: f.Key(), Value: v})
	}
	return obj, nil
}

func included(f Field, rec Record) (bool, error) {
	if f.If != "" {
		v, ok := rec.APIAttribute(f.If)
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrUnknownAttribute, f.If)
		}
		if !truthy(v) {
			return false, nil
		}
	}
	if f.Unless != "" {
		v, ok := rec.APIAttribute(f.Unless)
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrUnknownAttribute, f.Unless)
		}
		if truthy(v) {
			return false, nil
		}
	}
	return true, nil
}

// truthy treats only nil and false as false. Empty strings, zero numbers and
// empty collections are true.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return !rv.IsNil()
	default:
		return true
	}
}
