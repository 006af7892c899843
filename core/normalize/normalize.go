// Package normalize computes the standardized spelling level from diplomatic
// text, first through a per-wordform dictionary, then through a fixed table
// of orthographic fallback rules.
package normalize

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Dict maps diplomatic wordforms to their standardized spellings. The zero
// value (nil) is a valid empty dictionary.
type Dict map[string]string

// Normalize returns the standardized form of a diplomatic word: the
// dictionary entry if one exists, otherwise the fallback rules applied to
// the word itself.
func (d Dict) Normalize(word string) string {
	if v, ok := d[word]; ok {
		return v
	}
	return Fallback(word)
}

// fallbackRules is the orthographic substitution table applied when no
// dictionary entry exists. The rules are ordered and each right-hand side is
// free of every left-hand side, so applying the table twice yields the same
// string as applying it once.
var fallbackRules = [...]struct{ from, to string }{
	// doubled vowels standardize to accented vowels
	{"aa", "á"},
	{"ee", "é"},
	{"ii", "í"},
	{"oo", "ó"},
	{"uu", "ú"},
	// archaic letterforms standardize to their modern letters
	{"ſ", "s"},
	{"ꝛ", "r"},
	{"ꝼ", "f"},
	{"đ", "d"},
	{"ę", "æ"},
	{"ꜵ", "ǫ"},
	{"ꜹ", "ǫ"},
	{"ʀ", "r"},
}

// Fallback applies the orthographic substitution rules. It is a pure string
// rewrite and idempotent: Fallback(Fallback(s)) == Fallback(s).
func Fallback(s string) string {
	for _, r := range fallbackRules {
		s = strings.ReplaceAll(s, r.from, r.to)
	}
	return s
}

// Load reads a JSON wordform dictionary.
func Load(r io.Reader) (Dict, error) {
	var d Dict
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decoding normalization dictionary: %w", err)
	}
	return d, nil
}
