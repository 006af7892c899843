package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Folio is a parsed folio reference: leaf number, recto/verso side, and an
// optional column letter.
type Folio struct {
	// Number is the leaf number (1-indexed).
	Number int `json:"number"`

	// Side is "r" (recto) or "v" (verso).
	Side string `json:"side"`

	// Column is "a" or "b" for two-column leaves, empty otherwise.
	Column string `json:"column,omitempty"`
}

// folioGrammar is the participle grammar for folio references.
// Examples: "1r", "23v", "104va", "17rb"
type folioGrammar struct {
	Number int     `parser:"@Int"`
	Side   string  `parser:"@Side"`
	Column *string `parser:"@Column?"`
}

// folioLexer defines the lexer for folio references. Side must be listed
// before Column so "r"/"v" never lex as column letters.
var folioLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Side", Pattern: `[rv]`},
	{Name: "Column", Pattern: `[ab]`},
})

// folioParser is the participle parser for folio references.
var folioParser = participle.MustBuild[folioGrammar](
	participle.Lexer(folioLexer),
)

// ParseFolio parses a folio reference string.
// Supported formats:
//   - "1r" (leaf and side)
//   - "23v"
//   - "104va" (with column)
func ParseFolio(s string) (*Folio, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty folio string")
	}

	parsed, err := folioParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid folio format: %q: %w", s, err)
	}

	f := &Folio{
		Number: parsed.Number,
		Side:   parsed.Side,
	}
	if parsed.Column != nil {
		f.Column = *parsed.Column
	}
	return f, nil
}

// String returns the compact form of the folio reference.
func (f *Folio) String() string {
	return strconv.Itoa(f.Number) + f.Side + f.Column
}

// Before reports whether f precedes other in reading order.
func (f *Folio) Before(other *Folio) bool {
	if f.Number != other.Number {
		return f.Number < other.Number
	}
	if f.Side != other.Side {
		return f.Side == "r"
	}
	return f.Column < other.Column
}
