// Package templates keeps operator-defined custom templates. A template
// names a record shape and default values for its fields; the map stage
// uses the template whose name equals an item's context label.
package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/shiver/pkg/shiver/internalerr"
	"github.com/cognicore/shiver/pkg/shiver/records"
)

// Template is a named shape with default field values.
type Template struct {
	Name   string         `json:"name"`
	Kind   records.Kind   `json:"kind"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Validate checks the kind and that every default names a field of that
// shape and decodes into it.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", internalerr.ErrInvalidTemplate)
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %s: unknown kind %q", internalerr.ErrInvalidTemplate, t.Name, t.Kind)
	}
	if len(t.Fields) == 0 {
		return nil
	}
	if _, ok := t.Fields["meta"]; ok {
		return fmt.Errorf("%w: %s: meta cannot be templated", internalerr.ErrInvalidTemplate, t.Name)
	}
	body, err := json.Marshal(t.Fields)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidTemplate, t.Name, err)
	}
	rec, err := records.New(t.Kind)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidTemplate, t.Name, err)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(rec); err != nil {
		return fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidTemplate, t.Name, err)
	}
	return nil
}

func (t Template) clone() Template {
	out := t
	if t.Fields != nil {
		// Fields only ever holds JSON-decoded values; a round trip is a deep copy.
		body, _ := json.Marshal(t.Fields)
		out.Fields = nil
		_ = json.Unmarshal(body, &out.Fields)
	}
	return out
}

// body is what the template editor submits.
type body struct {
	Kind   records.Kind   `json:"kind"`
	Fields map[string]any `json:"fields"`
}

// Store holds templates keyed by name.
type Store struct {
	mu    sync.RWMutex
	now   func() time.Time
	items map[string]Template
}

// NewStore returns an empty template store.
func NewStore() *Store {
	return &Store{now: time.Now, items: make(map[string]Template)}
}

// Submit parses raw editor input, {"kind": ..., "fields": {...}}, and
// stores it under name. Malformed input leaves the store untouched.
func (s *Store) Submit(name, raw string) (Template, error) {
	var b body
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return Template{}, fmt.Errorf("%w: %v", internalerr.ErrInvalidTemplate, err)
	}
	if dec.More() {
		return Template{}, fmt.Errorf("%w: trailing data after template", internalerr.ErrInvalidTemplate)
	}
	t := Template{Name: strings.TrimSpace(name), Kind: b.Kind, Fields: b.Fields}
	if err := s.Put(t); err != nil {
		return Template{}, err
	}
	return t.clone(), nil
}

// Put validates and stores t, replacing any template of the same name.
func (s *Store) Put(t Template) error {
	t.Name = strings.TrimSpace(t.Name)
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.items[t.Name] = t.clone()
	s.mu.Unlock()
	return nil
}

// Get returns the template called name.
func (s *Store) Get(name string) (Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.items[strings.TrimSpace(name)]
	if !ok {
		return Template{}, false
	}
	return t.clone(), true
}

// Remove deletes a template.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[name]; !ok {
		return fmt.Errorf("%w: template %q", internalerr.ErrNotFound, name)
	}
	delete(s.items, name)
	return nil
}

// List returns every template sorted by name.
func (s *Store) List() []Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Template, 0, len(s.items))
	for _, t := range s.items {
		out = append(out, t.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len reports how many templates are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
