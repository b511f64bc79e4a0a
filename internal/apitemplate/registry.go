package apitemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry holds the template definitions of every known model.
// It is built once at startup and is read-only afterwards.
type Registry struct {
	models map[string]*Model
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

type definitionFile struct {
	Models map[string]Model `yaml:"models"`
}

// Load parses a YAML definition document into a new registry.
//
//	models:
//	  user:
//	    plural: users
//	    templates:
//	      name_only:
//	        fields: [first_name, last_name]
func Load(r io.Reader) (*Registry, error) {
	reg := NewRegistry()
	if err := reg.Read(r, "<reader>"); err != nil {
		return nil, err
	}
	return reg, nil
}

// LoadFile reads a single YAML definition file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("apitemplate: read %s: %w", path, err)
	}
	reg := NewRegistry()
	if err := reg.Read(bytes.NewReader(data), path); err != nil {
		return nil, err
	}
	return reg, nil
}

// LoadFS walks fsys and merges every .yaml/.yml file into one registry.
// A model may only be defined by one file.
func LoadFS(fsys fs.FS) (*Registry, error) {
	reg := NewRegistry()
	if fsys == nil {
		return reg, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("apitemplate: read %s: %w", path, err)
		}
		return reg.Read(bytes.NewReader(data), path)
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Read decodes one YAML document from r and adds its models. source is only
// used in error messages.
func (r *Registry) Read(in io.Reader, source string) error {
	var doc definitionFile
	dec := yaml.NewDecoder(in)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("apitemplate: parse %s: %w", source, err)
	}

	names := make([]string, 0, len(doc.Models))
	for name := range doc.Models {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := doc.Models[name]
		m.Name = name
		if err := r.Add(m); err != nil {
			return fmt.Errorf("apitemplate: %s: %w", source, err)
		}
	}
	return nil
}

// Add registers a model after validating every template it declares.
func (r *Registry) Add(m Model) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return fmt.Errorf("%w: model without a name", ErrInvalidDefinition)
	}
	if _, exists := r.models[m.Name]; exists {
		return fmt.Errorf("%w: duplicate model %q", ErrInvalidDefinition, m.Name)
	}

	templates := make(map[string]Template, len(m.Templates))
	for name, t := range m.Templates {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("%w: model %q defines an empty template name", ErrInvalidDefinition, m.Name)
		}
		t.Name = name
		for _, f := range t.Fields {
			if err := f.validate(); err != nil {
				return fmt.Errorf("model %q template %q: %w", m.Name, name, err)
			}
		}
		templates[name] = t
	}
	m.Templates = templates

	model := &m
	for name := range templates {
		flat, err := flatten(model, name, nil)
		if err != nil {
			return err
		}
		for _, key := range flat.Keys() {
			if !validKey(key) {
				return fmt.Errorf("%w: model %q template %q emits key %q that is not a valid element name",
					ErrInvalidDefinition, m.Name, name, key)
			}
		}
	}

	r.models[m.Name] = model
	return nil
}

// Model returns the definition registered under name.
func (r *Registry) Model(name string) (*Model, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrModelNotFound, name)
	}
	m, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrModelNotFound, name)
	}
	return m, nil
}

// Models lists registered model names in lexical order.
func (r *Registry) Models() []string {
	out := make([]string, 0, len(r.models))
	for name := range r.models {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Templates lists the template names of a model in lexical order.
func (r *Registry) Templates(model string) ([]string, error) {
	m, err := r.Model(model)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(m.Templates))
	for name := range m.Templates {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Template returns the named template with its extend chain applied.
func (r *Registry) Template(model, name string) (Template, error) {
	m, err := r.Model(model)
	if err != nil {
		return Template{}, err
	}
	return flatten(m, name, nil)
}

// flatten resolves the extend chain of name. Parent fields come first; a child
// field with the same key replaces the parent's field at the parent's position.
func flatten(m *Model, name string, seen []string) (Template, error) {
	for _, s := range seen {
		if s == name {
			chain := append(append([]string{}, seen...), name)
			return Template{}, fmt.Errorf("%w: model %q: %w: %s", ErrInvalidDefinition, m.Name, errTemplateExtendLoop, strings.Join(chain, " -> "))
		}
	}

	t, ok := m.Templates[name]
	if !ok {
		if len(seen) > 0 {
			return Template{}, fmt.Errorf("%w: model %q template %q extends unknown template %q", ErrInvalidDefinition, m.Name, seen[len(seen)-1], name)
		}
		return Template{}, fmt.Errorf("%w: %q for model %q", ErrTemplateNotFound, name, m.Name)
	}
	if t.Extend == "" {
		t.Fields = append([]Field(nil), t.Fields...)
		return t, nil
	}

	parent, err := flatten(m, t.Extend, append(seen, name))
	if err != nil {
		return Template{}, err
	}

	fields := parent.Fields
	for _, f := range t.Fields {
		replaced := false
		for i := range fields {
			if fields[i].Key() == f.Key() {
				fields[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			fields = append(fields, f)
		}
	}

	out := t
	out.Fields = fields
	if out.KeyPrefix == "" {
		out.KeyPrefix = parent.KeyPrefix
	}
	if out.KeyPostfix == "" {
		out.KeyPostfix = parent.KeyPostfix
	}
	return out, nil
}
