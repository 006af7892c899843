// Package entity resolves symbolic character references against the entity
// catalog and the diplomatic mapping layers.
package entity

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Entity describes one named manuscript character.
type Entity struct {
	// Glyph is the facsimile form of the character.
	Glyph string `json:"glyph"`
	// Category groups related characters (e.g. "ligature", "abbreviation sign").
	Category string `json:"category"`
	// Description is a short human-readable gloss.
	Description string `json:"description"`
}

// Table maps entity names to their definitions. Tables are read-only
// snapshots during a compile; the surrounding application owns them.
type Table map[string]Entity

// Lookup returns the entity for name.
func (t Table) Lookup(name string) (Entity, bool) {
	e, ok := t[name]
	return e, ok
}

// Names returns all entity names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a copy of t with overlay entries taking precedence.
func (t Table) Merge(overlay Table) Table {
	merged := make(Table, len(t)+len(overlay))
	for name, e := range t {
		merged[name] = e
	}
	for name, e := range overlay {
		merged[name] = e
	}
	return merged
}

// Mappings holds the two diplomatic normalization layers. A user override
// takes precedence over a base mapping, which takes precedence over the
// entity's own glyph.
type Mappings struct {
	Base map[string]string `json:"base"`
	User map[string]string `json:"user,omitempty"`
}

// Diplomatic resolves the diplomatic form of the named entity whose
// facsimile form is glyph. It never fails; with no mapping at either layer
// the glyph stands for itself.
func (m *Mappings) Diplomatic(name, glyph string) string {
	if m != nil {
		if v, ok := m.User[name]; ok {
			return v
		}
		if v, ok := m.Base[name]; ok {
			return v
		}
	}
	return glyph
}

// SetOverride records a user override for name.
func (m *Mappings) SetOverride(name, diplomatic string) {
	if m.User == nil {
		m.User = make(map[string]string)
	}
	m.User[name] = diplomatic
}

// LoadTable reads a JSON entity table.
func LoadTable(r io.Reader) (Table, error) {
	var t Table
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding entity table: %w", err)
	}
	return t, nil
}

// LoadMappings reads JSON mapping layers.
func LoadMappings(r io.Reader) (*Mappings, error) {
	var m Mappings
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding entity mappings: %w", err)
	}
	return &m, nil
}
