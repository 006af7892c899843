package dsl

import (
	"strings"
	"unicode"
)

// DefaultPunctuation is the punctuation set flushed as standalone nodes when
// no override is configured.
const DefaultPunctuation = ".,;:!?"

// SegmentOptions configures segmentation.
type SegmentOptions struct {
	// Punctuation is the set of runes treated as punctuation nodes.
	// Empty means DefaultPunctuation.
	Punctuation string
}

func (o SegmentOptions) punctuation() string {
	if o.Punctuation == "" {
		return DefaultPunctuation
	}
	return o.Punctuation
}

// Segment walks the token stream and groups text into the document tree.
// Word indices are assigned by a single monotonic counter at the moment a
// word is flushed, strictly increasing in document order starting at zero;
// punctuation and marks consume no index. An empty token stream yields a
// document with zero pages.
func Segment(tokens []Token, opts SegmentOptions) (*Document, []Diagnostic) {
	s := &segmenter{opts: opts, doc: &Document{}}
	for _, tok := range tokens {
		s.consume(tok)
	}
	s.flushWord()
	return s.doc, s.diags
}

// segmenter is the explicit accumulator for word building: the part buffer
// plus the pending-continuation flag, advanced one token at a time.
type segmenter struct {
	opts SegmentOptions
	doc  *Document
	page *Page
	line *Line

	// buf accumulates the parts of the word currently being built; wordLine
	// is the line the word started on, which is where it is placed even when
	// a continuation carries it across a break.
	buf      []Part
	wordLine *Line

	pendingCont bool
	nextIndex   int
	ordinal     int
	diags       []Diagnostic
}

func (s *segmenter) consume(tok Token) {
	switch tok.Kind {
	case TokenText:
		s.text(tok)

	case TokenEntityRef:
		s.addPart(Part{Kind: PartEntity, Text: tok.Text, Line: tok.Line, Col: tok.Col})

	case TokenAbbrev:
		s.addPart(Part{Kind: PartAbbrev, Abbr: tok.Abbr, Expansion: tok.Expansion, Line: tok.Line, Col: tok.Col})

	case TokenWordBoundary:
		// A boundary with nothing accumulated is a no-op, not a diagnostic.
		s.flushWord()

	case TokenContinuation:
		s.pendingCont = true

	case TokenLineBreak:
		if s.pendingCont && len(s.buf) > 0 {
			s.newLine(LineContinued, tok.Number)
			s.buf = append(s.buf, Part{
				Kind:    PartLineBreak,
				Number:  tok.Number,
				Ordinal: s.line.Ordinal,
				Line:    tok.Line,
				Col:     tok.Col,
			})
		} else {
			s.flushWord()
			s.newLine(LineBroken, tok.Number)
		}
		s.pendingCont = false

	case TokenPageBreak:
		if s.pendingCont && len(s.buf) > 0 {
			s.newPage(tok.Folio)
			s.newLine(LineContinued, "")
			s.buf = append(s.buf, Part{
				Kind:    PartPageBreak,
				Folio:   tok.Folio,
				Ordinal: s.line.Ordinal,
				Line:    tok.Line,
				Col:     tok.Col,
			})
		} else {
			s.flushWord()
			s.newPage(tok.Folio)
			s.newLine(LineLeading, "")
		}
		s.pendingCont = false

	case TokenGap:
		s.flushWord()
		s.addItem(&Mark{Kind: MarkGap, Quantity: tok.Quantity, Supplied: tok.Supplied, Line: tok.Line, Col: tok.Col})

	case TokenSupplied:
		s.mark(MarkSupplied, tok)
	case TokenDeleted:
		s.mark(MarkDeleted, tok)
	case TokenAdded:
		s.mark(MarkAdded, tok)
	case TokenUnclear:
		s.mark(MarkUnclear, tok)
	case TokenNote:
		s.mark(MarkNote, tok)
	}
}

// text splits a raw text run on whitespace and punctuation. Whitespace closes
// the current word; punctuation closes it and is flushed as its own node.
func (s *segmenter) text(tok Token) {
	punct := s.opts.punctuation()
	for _, r := range tok.Text {
		switch {
		case unicode.IsSpace(r):
			s.flushWord()
		case strings.ContainsRune(punct, r):
			s.flushWord()
			s.ensureLine()
			s.addItem(&Punct{Text: string(r)})
		default:
			s.addText(r, tok.Line, tok.Col)
		}
	}
}

func (s *segmenter) mark(kind MarkKind, tok Token) {
	s.flushWord()
	s.addItem(&Mark{Kind: kind, Content: tok.Text, Line: tok.Line, Col: tok.Col})
}

// addText appends one rune to the word buffer, extending the last text part
// when possible.
func (s *segmenter) addText(r rune, line, col int) {
	if n := len(s.buf); n > 0 && s.buf[n-1].Kind == PartText {
		s.buf[n-1].Text += string(r)
		return
	}
	s.addPart(Part{Kind: PartText, Text: string(r), Line: line, Col: col})
}

func (s *segmenter) addPart(p Part) {
	s.ensureLine()
	if len(s.buf) == 0 {
		s.wordLine = s.line
	}
	s.buf = append(s.buf, p)
}

// flushWord finalizes the accumulated word, assigning the next index. The
// word is placed on the line it started on.
func (s *segmenter) flushWord() {
	if len(s.buf) == 0 {
		s.wordLine = nil
		return
	}
	w := &Word{Index: s.nextIndex, Parts: s.buf}
	s.nextIndex++
	s.wordLine.Items = append(s.wordLine.Items, w)
	s.buf = nil
	s.wordLine = nil
}

func (s *segmenter) addItem(it Item) {
	s.ensureLine()
	s.line.Items = append(s.line.Items, it)
}

// ensureLine lazily creates the implicit leading page and line, so an empty
// document stays empty.
func (s *segmenter) ensureLine() {
	if s.line != nil {
		return
	}
	if s.page == nil {
		s.page = &Page{Implicit: true}
		s.doc.Pages = append(s.doc.Pages, s.page)
	}
	s.line = &Line{Origin: LineLeading, Ordinal: s.ordinal}
	s.ordinal++
	s.page.Lines = append(s.page.Lines, s.line)
}

func (s *segmenter) newLine(origin LineOrigin, number string) {
	if s.page == nil {
		s.page = &Page{Implicit: true}
		s.doc.Pages = append(s.doc.Pages, s.page)
	}
	s.line = &Line{Number: number, Origin: origin, Ordinal: s.ordinal}
	s.ordinal++
	s.page.Lines = append(s.page.Lines, s.line)
}

func (s *segmenter) newPage(folio string) {
	s.page = &Page{Folio: folio}
	s.doc.Pages = append(s.doc.Pages, s.page)
	s.line = nil
}
