// Package compile turns transcription source text into TEI-flavored XML.
// The pipeline is tokenize, segment, resolve, merge annotations, render;
// stages communicate through the node tree and accumulate diagnostics.
// Compilation always produces a document: malformed constructs degrade to
// literal text with a warning attached.
package compile

import (
	"encoding/json"

	"github.com/motheatensoul/tei-scribe-sub000/core/annotation"
	"github.com/motheatensoul/tei-scribe-sub000/core/dsl"
	"github.com/motheatensoul/tei-scribe-sub000/core/entity"
	"github.com/motheatensoul/tei-scribe-sub000/core/fingerprint"
	"github.com/motheatensoul/tei-scribe-sub000/core/normalize"
	"github.com/motheatensoul/tei-scribe-sub000/core/template"
)

// Input is everything one compilation depends on. Source is required; nil
// optional fields fall back to built-in defaults.
type Input struct {
	// Source is the transcription text.
	Source string

	// Template frames the output document. Nil means template.Default.
	Template *template.Template

	// Entities is the symbolic character table. Nil means the built-in
	// catalog.
	Entities entity.Table

	// Overrides maps entity names to diplomatic forms. Nil means the
	// built-in mappings.
	Overrides *entity.Mappings

	// Normalizer is the wordform dictionary for the normalized level.
	// Nil means rule-based fallback only.
	Normalizer normalize.Dict

	// Annotations are merged onto words by index.
	Annotations []annotation.Record

	// Segmentation configures word and punctuation splitting.
	Segmentation dsl.SegmentOptions
}

// Result is the outcome of one compilation. Diagnostics are ordered by
// pipeline stage, then by occurrence.
type Result struct {
	XML         string
	Diagnostics []dsl.Diagnostic
}

// Compile runs the full pipeline. It never returns an error: every problem
// in the input surfaces as a diagnostic and the output degrades gracefully.
// Equal inputs produce byte-identical results.
func Compile(in Input) Result {
	tpl := in.Template
	if tpl == nil {
		tpl = template.Default()
	}
	entities := in.Entities
	if entities == nil {
		entities = entity.BaseTable()
	}
	overrides := in.Overrides
	if overrides == nil {
		overrides = entity.BaseMappings()
	}

	tokens, diags := dsl.Tokenize(in.Source)

	doc, segDiags := dsl.Segment(tokens, in.Segmentation)
	diags = append(diags, segDiags...)

	diags = append(diags, resolve(doc, entities, overrides, in.Normalizer, tpl.MultiLevel)...)

	ov, mergeDiags := merge(doc, in.Annotations)
	diags = append(diags, mergeDiags...)

	xml, renderDiags := render(doc, tpl, ov)
	diags = append(diags, renderDiags...)

	return Result{XML: xml, Diagnostics: diags}
}

// Fingerprint hashes every compilation input. Two inputs with equal
// fingerprints compile to identical output, which makes the fingerprint a
// safe cache key.
func (in Input) Fingerprint() string {
	tpl := in.Template
	if tpl == nil {
		tpl = template.Default()
	}
	sections := [][]byte{
		[]byte(in.Source),
		marshal(tpl),
		marshal(in.Entities),
		marshal(in.Overrides),
		marshal(in.Normalizer),
		marshal(in.Annotations),
		[]byte(in.Segmentation.Punctuation),
	}
	return fingerprint.Combine(sections...)
}

func marshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
