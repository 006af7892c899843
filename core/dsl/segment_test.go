package dsl

import (
	"testing"
)

func segmentSource(t *testing.T, src string) *Document {
	t.Helper()
	tokens, _ := Tokenize(src)
	doc, diags := Segment(tokens, SegmentOptions{})
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return doc
}

func TestSegmentEmpty(t *testing.T) {
	doc := segmentSource(t, "")
	if len(doc.Pages) != 0 {
		t.Fatalf("pages = %d, want 0", len(doc.Pages))
	}
	if len(doc.Words()) != 0 {
		t.Fatalf("words = %d, want 0", len(doc.Words()))
	}
}

func TestSegmentWordIndices(t *testing.T) {
	doc := segmentSource(t, "ok en konungr//hann var")
	words := doc.Words()
	if len(words) != 5 {
		t.Fatalf("words = %d, want 5", len(words))
	}
	for i, w := range words {
		if w.Index != i {
			t.Errorf("word %d has index %d", i, w.Index)
		}
	}
}

func TestSegmentPunctuationTakesNoIndex(t *testing.T) {
	doc := segmentSource(t, "ok. en")
	words := doc.Words()
	if len(words) != 2 {
		t.Fatalf("words = %d, want 2", len(words))
	}
	if words[1].Index != 1 {
		t.Errorf("second word index = %d, want 1", words[1].Index)
	}

	var puncts int
	for _, p := range doc.Pages {
		for _, l := range p.Lines {
			for _, it := range l.Items {
				if _, ok := it.(*Punct); ok {
					puncts++
				}
			}
		}
	}
	if puncts != 1 {
		t.Errorf("punctuation nodes = %d, want 1", puncts)
	}
}

func TestSegmentCustomPunctuation(t *testing.T) {
	tokens, _ := Tokenize("ok.en")
	doc, _ := Segment(tokens, SegmentOptions{Punctuation: ";"})
	words := doc.Words()
	if len(words) != 1 {
		t.Fatalf("words = %d, want 1", len(words))
	}
	if got := words[0].Parts[0].Text; got != "ok.en" {
		t.Errorf("word text = %q", got)
	}
}

func TestSegmentImplicitLeadingPage(t *testing.T) {
	doc := segmentSource(t, "ok")
	if len(doc.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(doc.Pages))
	}
	if !doc.Pages[0].Implicit {
		t.Error("leading page should be implicit")
	}
	if doc.Pages[0].Folio != "" {
		t.Errorf("implicit page folio = %q", doc.Pages[0].Folio)
	}
}

func TestSegmentPageBreakOpensPage(t *testing.T) {
	doc := segmentSource(t, "ok///2ven")
	if len(doc.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(doc.Pages))
	}
	if doc.Pages[1].Folio != "2v" {
		t.Errorf("folio = %q, want 2v", doc.Pages[1].Folio)
	}
	if doc.Pages[1].Implicit {
		t.Error("explicit page marked implicit")
	}
}

func TestSegmentLineOrigins(t *testing.T) {
	doc := segmentSource(t, "ok//en")
	lines := doc.Pages[0].Lines
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0].Origin != LineLeading {
		t.Errorf("first line origin = %v, want leading", lines[0].Origin)
	}
	if lines[1].Origin != LineBroken {
		t.Errorf("second line origin = %v, want broken", lines[1].Origin)
	}
	if lines[0].Ordinal != 0 || lines[1].Ordinal != 1 {
		t.Errorf("ordinals = %d, %d", lines[0].Ordinal, lines[1].Ordinal)
	}
}

func TestSegmentExplicitLineNumber(t *testing.T) {
	doc := segmentSource(t, "ok//7en")
	lines := doc.Pages[0].Lines
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[1].Number != "7" {
		t.Errorf("line number = %q, want 7", lines[1].Number)
	}
}

func TestSegmentContinuedWordAcrossLine(t *testing.T) {
	doc := segmentSource(t, "kon~//ungr en")
	words := doc.Words()
	if len(words) != 2 {
		t.Fatalf("words = %d, want 2", len(words))
	}

	// The split word stays one word, placed on the line it started on,
	// with the break embedded between its halves.
	w := words[0]
	if len(w.Parts) != 3 {
		t.Fatalf("parts = %d, want 3", len(w.Parts))
	}
	if w.Parts[0].Text != "kon" || w.Parts[1].Kind != PartLineBreak || w.Parts[2].Text != "ungr" {
		t.Fatalf("parts = %+v", w.Parts)
	}

	lines := doc.Pages[0].Lines
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if len(lines[0].Items) != 1 {
		t.Errorf("first line items = %d, want 1", len(lines[0].Items))
	}
	if lines[1].Origin != LineContinued {
		t.Errorf("second line origin = %v, want continued", lines[1].Origin)
	}
	if w.Parts[1].Ordinal != lines[1].Ordinal {
		t.Errorf("embedded break ordinal = %d, want %d", w.Parts[1].Ordinal, lines[1].Ordinal)
	}
	// The following word lands on the new line.
	if len(lines[1].Items) != 1 {
		t.Errorf("second line items = %d, want 1", len(lines[1].Items))
	}
}

func TestSegmentContinuedWordAcrossPage(t *testing.T) {
	doc := segmentSource(t, "kon~///2vungr")
	words := doc.Words()
	if len(words) != 1 {
		t.Fatalf("words = %d, want 1", len(words))
	}
	w := words[0]
	if len(w.Parts) != 3 || w.Parts[1].Kind != PartPageBreak {
		t.Fatalf("parts = %+v", w.Parts)
	}
	if w.Parts[1].Folio != "2v" {
		t.Errorf("folio = %q, want 2v", w.Parts[1].Folio)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(doc.Pages))
	}
	// The word belongs to the line it started on, on the first page.
	if len(doc.Pages[0].Lines[0].Items) != 1 {
		t.Errorf("first page items = %d, want 1", len(doc.Pages[0].Lines[0].Items))
	}
}

func TestSegmentContinuationWithoutWordIsPlainBreak(t *testing.T) {
	doc := segmentSource(t, "ok ~//en")
	lines := doc.Pages[0].Lines
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[1].Origin != LineBroken {
		t.Errorf("origin = %v, want broken", lines[1].Origin)
	}
	if len(doc.Words()) != 2 {
		t.Errorf("words = %d, want 2", len(doc.Words()))
	}
}

func TestSegmentWordBoundary(t *testing.T) {
	doc := segmentSource(t, "ok|en")
	words := doc.Words()
	if len(words) != 2 {
		t.Fatalf("words = %d, want 2", len(words))
	}
	if words[0].Parts[0].Text != "ok" || words[1].Parts[0].Text != "en" {
		t.Errorf("words = %+v", words)
	}
}

func TestSegmentMarksFlushWord(t *testing.T) {
	doc := segmentSource(t, "ok<via>en")
	words := doc.Words()
	if len(words) != 2 {
		t.Fatalf("words = %d, want 2", len(words))
	}
	items := doc.Pages[0].Lines[0].Items
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	m, ok := items[1].(*Mark)
	if !ok || m.Kind != MarkSupplied {
		t.Fatalf("middle item = %#v", items[1])
	}
}

func TestSegmentMixedWordParts(t *testing.T) {
	doc := segmentSource(t, ":rrot:egn")
	words := doc.Words()
	if len(words) != 1 {
		t.Fatalf("words = %d, want 1", len(words))
	}
	parts := words[0].Parts
	if len(parts) != 2 || parts[0].Kind != PartEntity || parts[1].Kind != PartText {
		t.Fatalf("parts = %+v", parts)
	}
	if parts[0].Text != "rrot" || parts[1].Text != "egn" {
		t.Errorf("parts = %+v", parts)
	}
}
