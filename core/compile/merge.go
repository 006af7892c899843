package compile

import (
	"unicode/utf8"

	"github.com/motheatensoul/tei-scribe-sub000/core/annotation"
	"github.com/motheatensoul/tei-scribe-sub000/core/dsl"
)

// attr is one attribute slated for a word element. Attrs keep insertion
// order so output stays byte-stable.
type attr struct {
	name  string
	value string
}

// elemSpec describes a child element an annotation adds to a word.
type elemSpec struct {
	name      string
	attrs     []attr
	text      string
	selfClose bool
}

// charWrap marks a half-open rune range of a word's facsimile text to be
// wrapped in a seg element.
type charWrap struct {
	start, end int
	attrs      []attr
}

// wordOverlay is everything the annotation set contributes to one word.
type wordOverlay struct {
	attrs    []attr
	children []elemSpec
	wraps    []charWrap
}

// overlay is the merged annotation state, keyed by word index. It is built
// fresh per compile and consumed by the renderer.
type overlay struct {
	words map[int]*wordOverlay
}

func (o *overlay) forWord(index int) *wordOverlay {
	if o == nil {
		return nil
	}
	return o.words[index]
}

func (o *overlay) ensure(index int) *wordOverlay {
	w, ok := o.words[index]
	if !ok {
		w = &wordOverlay{}
		o.words[index] = w
	}
	return w
}

// merge locates the target of every annotation record and folds its value
// into the overlay. Stale targets are skipped with a warning, never a
// failure; conflicting attribute writes resolve last-applied-wins, in input
// order, with a diagnostic noting the overwrite.
func merge(doc *dsl.Document, records []annotation.Record) (*overlay, []dsl.Diagnostic) {
	m := &merger{
		ov:    &overlay{words: make(map[int]*wordOverlay)},
		words: doc.Words(),
	}
	for _, rec := range records {
		m.record(rec)
	}
	return m.ov, m.diags
}

type merger struct {
	ov    *overlay
	words []*dsl.Word
	diags []dsl.Diagnostic
}

func (m *merger) record(rec annotation.Record) {
	switch rec.Target.Kind {
	case annotation.TargetWord:
		if !m.inRange(rec.Target.Index) {
			m.stale(rec, "word index %d is out of range (document has %d words)", rec.Target.Index, len(m.words))
			return
		}
		m.apply(rec, rec.Target.Index)

	case annotation.TargetSpan:
		t := rec.Target
		if t.Start < 0 || t.End >= len(m.words) || t.Start > t.End {
			m.stale(rec, "word span %d-%d is out of range (document has %d words)", t.Start, t.End, len(m.words))
			return
		}
		for idx := t.Start; idx <= t.End; idx++ {
			m.apply(rec, idx)
		}

	case annotation.TargetChar:
		t := rec.Target
		if !m.inRange(t.Index) {
			m.stale(rec, "word index %d is out of range (document has %d words)", t.Index, len(m.words))
			return
		}
		facsLen := utf8.RuneCountInString(m.words[t.Index].Levels.Facsimile)
		if t.Start < 0 || t.End > facsLen || t.Start >= t.End {
			m.stale(rec, "character range %d-%d does not fit word %d (facsimile has %d characters)", t.Start, t.End, t.Index, facsLen)
			return
		}
		o := m.ov.ensure(t.Index)
		o.wraps = append(o.wraps, charWrap{
			start: t.Start,
			end:   t.End,
			attrs: append([]attr{{"type", string(rec.Value.Kind)}}, valueAttrs(rec.Value)...),
		})

	default:
		m.stale(rec, "unknown annotation target kind %q", rec.Target.Kind)
	}
}

func (m *merger) inRange(index int) bool {
	return index >= 0 && index < len(m.words)
}

// apply folds one record's value into the word at index. The value kind set
// is closed; this switch is the exhaustive merge site.
func (m *merger) apply(rec annotation.Record, index int) {
	o := m.ov.ensure(index)
	v := rec.Value

	switch v.Kind {
	case annotation.ValueLemma:
		m.setAttr(o, index, "lemma", v.Lemma)
		if v.MSA != "" {
			m.setAttr(o, index, "me:msa", v.MSA)
		}

	case annotation.ValueSemantic:
		ana := v.Category
		if v.Subcategory != "" {
			ana += ":" + v.Subcategory
		}
		m.setAttr(o, index, "ana", ana)

	case annotation.ValueNote:
		o.children = append(o.children, elemSpec{name: "note", text: v.Text})

	case annotation.ValuePaleographic:
		m.setAttr(o, index, "rend", v.Feature)
		if v.Text != "" {
			o.children = append(o.children, elemSpec{
				name:  "note",
				attrs: []attr{{"type", "palaeographic"}},
				text:  v.Text,
			})
		}

	case annotation.ValueSyntax:
		m.setAttr(o, index, "function", v.Function)

	case annotation.ValueReference:
		o.children = append(o.children, elemSpec{
			name:      "ref",
			attrs:     refAttrs(v),
			text:      v.Text,
			selfClose: v.Text == "",
		})

	case annotation.ValueCustom:
		o.children = append(o.children, elemSpec{
			name:  "seg",
			attrs: []attr{{"type", v.Name}},
			text:  v.Text,
		})

	default:
		m.stale(rec, "unknown annotation value kind %q", v.Kind)
	}
}

// setAttr writes an attribute, keeping insertion order. A second write to
// the same name wins and is reported.
func (m *merger) setAttr(o *wordOverlay, index int, name, value string) {
	for i := range o.attrs {
		if o.attrs[i].name == name {
			m.diags = append(m.diags, dsl.Warnf(0, 0,
				"annotation overwrites attribute %q on word %d", name, index))
			o.attrs[i].value = value
			return
		}
	}
	o.attrs = append(o.attrs, attr{name: name, value: value})
}

func (m *merger) stale(rec annotation.Record, format string, args ...any) {
	d := dsl.Warnf(0, 0, "annotation %s skipped: "+format,
		append([]any{rec.ID}, args...)...)
	m.diags = append(m.diags, d)
}

// valueAttrs lists the kind-specific attributes a value contributes to a
// character-range marker element. Empty fields are omitted.
func valueAttrs(v annotation.Value) []attr {
	var attrs []attr
	add := func(name, value string) {
		if value != "" {
			attrs = append(attrs, attr{name, value})
		}
	}
	switch v.Kind {
	case annotation.ValueLemma:
		add("lemma", v.Lemma)
		add("me:msa", v.MSA)
	case annotation.ValueSemantic:
		add("category", v.Category)
		add("subcategory", v.Subcategory)
	case annotation.ValueNote:
		add("n", v.Text)
	case annotation.ValuePaleographic:
		add("feature", v.Feature)
	case annotation.ValueSyntax:
		add("function", v.Function)
	case annotation.ValueReference:
		add("target", v.Target)
		add("subtype", v.RefType)
	case annotation.ValueCustom:
		add("n", v.Name)
	}
	return attrs
}

func refAttrs(v annotation.Value) []attr {
	var attrs []attr
	if v.Target != "" {
		attrs = append(attrs, attr{"target", v.Target})
	}
	if v.RefType != "" {
		attrs = append(attrs, attr{"type", v.RefType})
	}
	return attrs
}
