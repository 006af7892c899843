package compile

import (
	"strings"
	"unicode"

	"github.com/motheatensoul/tei-scribe-sub000/core/dsl"
	"github.com/motheatensoul/tei-scribe-sub000/core/entity"
	"github.com/motheatensoul/tei-scribe-sub000/core/normalize"
)

// resolve computes the level set of every word and punctuation node and
// resolves entity references inside mark content. It mutates the tree in
// place; level sets are written once and never touched again.
func resolve(doc *dsl.Document, entities entity.Table, overrides *entity.Mappings, dict normalize.Dict, multiLevel bool) []dsl.Diagnostic {
	r := &resolver{entities: entities, overrides: overrides, dict: dict, multiLevel: multiLevel}
	for _, page := range doc.Pages {
		for _, line := range page.Lines {
			for _, item := range line.Items {
				switch it := item.(type) {
				case *dsl.Word:
					r.word(it)
				case *dsl.Punct:
					it.Levels = dsl.LevelSet{Facsimile: it.Text, Diplomatic: it.Text}
				case *dsl.Mark:
					it.Content = r.inline(it.Content, it.Line, it.Col)
					it.Supplied = r.inline(it.Supplied, it.Line, it.Col)
				}
			}
		}
	}
	return r.diags
}

type resolver struct {
	entities   entity.Table
	overrides  *entity.Mappings
	dict       normalize.Dict
	multiLevel bool
	diags      []dsl.Diagnostic
}

func (r *resolver) word(w *dsl.Word) {
	var facs, dipl strings.Builder
	for i := range w.Parts {
		p := &w.Parts[i]
		switch p.Kind {
		case dsl.PartText:
			p.Facs = p.Text
			p.Dipl = p.Text

		case dsl.PartEntity:
			p.Facs, p.Dipl = r.entity(p.Text, p.Line, p.Col)

		case dsl.PartAbbrev:
			// The facsimile keeps the abbreviated form as written; the
			// diplomatic level carries the expansion.
			p.Facs = p.Abbr
			p.Dipl = p.Expansion

		case dsl.PartLineBreak, dsl.PartPageBreak:
			// Breaks contribute no text; they surface as embedded
			// milestones at render time.
		}
		facs.WriteString(p.Facs)
		dipl.WriteString(p.Dipl)
	}

	w.Levels = dsl.LevelSet{Facsimile: facs.String(), Diplomatic: dipl.String()}
	if r.multiLevel {
		w.Levels.Normalized = r.dict.Normalize(w.Levels.Diplomatic)
	}
}

// entity resolves one reference: facsimile glyph, then the diplomatic form
// by precedence (user override, base mapping, identity glyph). Unknown names
// fall back to the bracketed placeholder and a warning; resolution never
// fails.
func (r *resolver) entity(name string, line, col int) (facs, dipl string) {
	e, ok := r.entities.Lookup(name)
	if !ok {
		r.diags = append(r.diags, dsl.Warnf(line, col, "unknown entity %q", name))
		placeholder := "[" + name + "]"
		return placeholder, placeholder
	}
	return e.Glyph, r.overrides.Diplomatic(name, e.Glyph)
}

// inline resolves `:name:` references inside mark content to facsimile
// glyphs. Marks carry no level set, so the glyph form is all they show.
func (r *resolver) inline(s string, line, col int) string {
	if !strings.ContainsRune(s, ':') {
		return s
	}
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); {
		if runes[i] != ':' {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i + 1
		for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j])) {
			j++
		}
		if j == i+1 || j >= len(runes) || runes[j] != ':' {
			b.WriteRune(runes[i])
			i++
			continue
		}
		facs, _ := r.entity(string(runes[i+1:j]), line, col)
		b.WriteString(facs)
		i = j + 1
	}
	return b.String()
}
