package dsl

// LevelSet holds the parallel text representations of a word or punctuation
// node: the exact appearance, the resolved reading, and the standardized
// spelling. Normalized stays empty for punctuation and in single-level mode.
// A LevelSet is computed once by the resolver and not mutated afterwards.
type LevelSet struct {
	Facsimile  string `json:"facsimile"`
	Diplomatic string `json:"diplomatic"`
	Normalized string `json:"normalized,omitempty"`
}

// PartKind identifies the variant of a word Part.
type PartKind int

const (
	// PartText is a literal text fragment.
	PartText PartKind = iota
	// PartEntity is a symbolic character reference.
	PartEntity
	// PartAbbrev is an abbreviation with its expansion.
	PartAbbrev
	// PartLineBreak is a line break embedded inside a continued word.
	PartLineBreak
	// PartPageBreak is a page break embedded inside a continued word.
	PartPageBreak
)

// Part is one piece of a word's content. Words keep their pieces rather than
// a single string so the renderer can emit abbreviation markup and embedded
// break elements at the right spots inside the word element.
type Part struct {
	Kind PartKind

	// Text is the literal fragment for PartText and the entity name for
	// PartEntity.
	Text string

	// Abbr and Expansion are set for PartAbbrev.
	Abbr      string
	Expansion string

	// Number is the explicit line number of an embedded line break.
	Number string

	// Folio is the folio of an embedded page break.
	Folio string

	// Ordinal is the document-order index of the line an embedded break
	// opens, used to look up its resolved number at render time.
	Ordinal int

	// Line and Col locate the part in the source.
	Line int
	Col  int

	// Facs and Dipl are the resolved facsimile and diplomatic text of this
	// part, filled in by the resolver. Empty for break parts.
	Facs string
	Dipl string
}

// Document is the segmented node tree: pages holding lines holding items.
type Document struct {
	Pages []*Page
}

// Words returns the word nodes in document order, indexed by word index.
func (d *Document) Words() []*Word {
	var words []*Word
	for _, p := range d.Pages {
		for _, l := range p.Lines {
			for _, it := range l.Items {
				if w, ok := it.(*Word); ok {
					words = append(words, w)
				}
			}
		}
	}
	return words
}

// Page groups the lines of one manuscript page. Folio is empty for the
// implicit leading page before the first page break; Implicit marks that
// page, which gets no break milestone of its own.
type Page struct {
	Folio    string
	Implicit bool
	Lines    []*Line
}

// LineOrigin records how a line came to be, which decides whether the
// renderer emits a break milestone at its start.
type LineOrigin int

const (
	// LineLeading opens a document or page; no milestone of its own.
	LineLeading LineOrigin = iota
	// LineBroken was opened by an explicit break; the renderer emits the
	// milestone at the line start.
	LineBroken
	// LineContinued was opened by a break inside a continued word; the
	// milestone is emitted inside that word instead.
	LineContinued
)

// Line is one manuscript line. Number is the explicit number given in the
// source, empty if none. Ordinal is the document-order index of the line.
type Line struct {
	Number  string
	Origin  LineOrigin
	Ordinal int
	Items   []Item
}

// Item is a closed union over the things a line can hold.
type Item interface {
	isItem()
}

// Word is a logical word with its positional index and level set. The index
// is the sole addressing key external annotation stores use.
type Word struct {
	Index  int
	Parts  []Part
	Levels LevelSet
}

// Punct is a punctuation character, flushed as its own node and never merged
// into a word. Punctuation consumes no word index.
type Punct struct {
	Text   string
	Levels LevelSet
}

// MarkKind identifies the variant of a Mark.
type MarkKind int

const (
	MarkGap MarkKind = iota
	MarkSupplied
	MarkDeleted
	MarkAdded
	MarkUnclear
	MarkNote
)

// Mark is a non-word transcription phenomenon: a gap, supplied, deleted,
// added or unclear span, or an editorial note.
type Mark struct {
	Kind    MarkKind
	Content string
	// Quantity and Supplied are set for gaps.
	Quantity int
	Supplied string
	Line     int
	Col      int
}

func (*Word) isItem()  {}
func (*Punct) isItem() {}
func (*Mark) isItem()  {}
