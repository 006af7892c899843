// Package template holds the header/footer fragments and formatting options
// a compile call wraps its output in.
package template

import (
	"encoding/json"
	"fmt"
	"io"
)

// Template is immutable per compile call; the caller owns it and the
// compiler only reads it.
type Template struct {
	// Header and Footer are raw markup fragments placed around the body.
	Header string `json:"header"`
	Footer string `json:"footer"`

	// WordWrap wraps words and punctuation in dedicated elements; when off
	// they are emitted as plain text with only break and mark elements
	// explicit.
	WordWrap bool `json:"word_wrap"`

	// AutoLineNumbers numbers lines with a running counter when the source
	// gave no explicit number.
	AutoLineNumbers bool `json:"auto_line_numbers"`

	// MultiLevel emits the three parallel level elements per word; off means
	// a single flattened diplomatic representation.
	MultiLevel bool `json:"multi_level"`

	// WrapPages wraps each page's content in a page container element.
	WrapPages bool `json:"wrap_pages"`
}

// defaultHeader and defaultFooter form a minimal MENOTA-flavoured TEI shell.
const defaultHeader = `<?xml version="1.0" encoding="UTF-8"?>
<TEI xmlns="http://www.tei-c.org/ns/1.0" xmlns:me="http://www.menota.org/ns/1.0">
  <teiHeader>
    <fileDesc>
      <titleStmt><title>Transcription</title></titleStmt>
      <publicationStmt><p>Unpublished transcription</p></publicationStmt>
      <sourceDesc><p>Transcribed from the manuscript</p></sourceDesc>
    </fileDesc>
  </teiHeader>
  <text>
    <body>
`

const defaultFooter = `
    </body>
  </text>
</TEI>
`

// Default returns the template used when a project supplies none:
// multi-level output with wrapped words and automatic line numbers.
func Default() *Template {
	return &Template{
		Header:          defaultHeader,
		Footer:          defaultFooter,
		WordWrap:        true,
		AutoLineNumbers: true,
		MultiLevel:      true,
		WrapPages:       false,
	}
}

// Load reads a JSON template.
func Load(r io.Reader) (*Template, error) {
	var t Template
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding template: %w", err)
	}
	return &t, nil
}

// Save writes the template as indented JSON.
func (t *Template) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encoding template: %w", err)
	}
	return nil
}
