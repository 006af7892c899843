// Package annotation defines the externally authored overlay records merged
// into compiler output by positional reference, and their serialized form.
package annotation

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// TargetKind identifies how a record addresses the document.
type TargetKind string

const (
	// TargetWord addresses a single word by index.
	TargetWord TargetKind = "word"
	// TargetSpan addresses every word in an inclusive index range.
	TargetSpan TargetKind = "span"
	// TargetChar addresses a character range inside one word's facsimile text.
	TargetChar TargetKind = "char"
)

// Target locates the node(s) a record applies to. Word indices are zero
// based document-order positions assigned during one compile; they are not
// stable across source edits, and stale targets are skipped with a warning.
type Target struct {
	Kind TargetKind `json:"kind"`

	// Index is the word index for word and char targets.
	Index int `json:"index,omitempty"`

	// Start and End are the inclusive word range for span targets, or the
	// half-open rune range into the facsimile text for char targets.
	Start int `json:"start,omitempty"`
	End   int `json:"end,omitempty"`
}

// ValueKind identifies the variant of a Value. The kind set is closed; the
// merge site matches exhaustively over it.
type ValueKind string

const (
	ValueLemma        ValueKind = "lemma"
	ValueSemantic     ValueKind = "semantic"
	ValueNote         ValueKind = "note"
	ValuePaleographic ValueKind = "paleographic"
	ValueSyntax       ValueKind = "syntax"
	ValueReference    ValueKind = "reference"
	ValueCustom       ValueKind = "custom"
)

// Value is the payload of a record. Which fields are meaningful depends on
// Kind.
type Value struct {
	Kind ValueKind `json:"kind"`

	// Lemma and MSA are set for lemma values.
	Lemma string `json:"lemma,omitempty"`
	MSA   string `json:"msa,omitempty"`

	// Category and Subcategory are set for semantic values.
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`

	// Text carries note text, reference labels, and custom payloads.
	Text string `json:"text,omitempty"`

	// Feature is set for paleographic values.
	Feature string `json:"feature,omitempty"`

	// Function is set for syntax values.
	Function string `json:"function,omitempty"`

	// Target and RefType are set for reference values.
	Target  string `json:"target,omitempty"`
	RefType string `json:"ref_type,omitempty"`

	// Name labels custom values.
	Name string `json:"name,omitempty"`
}

// Record is one annotation: an identity, a positional target, and a value.
// The compiler only reads a snapshot of records for the duration of one
// compile; the surrounding application owns them.
type Record struct {
	ID     string `json:"id"`
	Target Target `json:"target"`
	Value  Value  `json:"value"`
}

// New creates a record with a fresh ID.
func New(target Target, value Value) Record {
	return Record{ID: uuid.NewString(), Target: target, Value: value}
}

// WordTarget addresses the word at index.
func WordTarget(index int) Target {
	return Target{Kind: TargetWord, Index: index}
}

// SpanTarget addresses words start through end inclusive.
func SpanTarget(start, end int) Target {
	return Target{Kind: TargetSpan, Start: start, End: end}
}

// CharTarget addresses facsimile runes [start,end) of the word at index.
func CharTarget(index, start, end int) Target {
	return Target{Kind: TargetChar, Index: index, Start: start, End: end}
}

// Load reads a JSON record list.
func Load(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding annotation records: %w", err)
	}
	return records, nil
}

// Save writes records as indented JSON.
func Save(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding annotation records: %w", err)
	}
	return nil
}
