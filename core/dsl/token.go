package dsl

// TokenKind identifies the variant of a Token.
type TokenKind int

const (
	// TokenText is a literal text run, whitespace included.
	TokenText TokenKind = iota
	// TokenLineBreak is a manuscript line break (`//`, optionally `//<n>`).
	TokenLineBreak
	// TokenPageBreak is a folio change (`///<folio>`).
	TokenPageBreak
	// TokenGap is an illegible or lost stretch (`[...]`, `[...<n>]`, `[...<n><supplied>]`).
	TokenGap
	// TokenSupplied is editorially supplied text (`<text>`).
	TokenSupplied
	// TokenDeleted is scribally deleted text (`-{text}-`).
	TokenDeleted
	// TokenAdded is scribally added text (`+{text}+`).
	TokenAdded
	// TokenUnclear is an uncertain reading (`?{text}?`).
	TokenUnclear
	// TokenNote is an editorial note (`^{text}`).
	TokenNote
	// TokenAbbrev is an abbreviation with its expansion (`.abbr[abbr]{expansion}`).
	TokenAbbrev
	// TokenEntityRef is a symbolic character reference (`:name:`).
	TokenEntityRef
	// TokenWordBoundary is an explicit word separator (`|`).
	TokenWordBoundary
	// TokenContinuation marks that the following break does not close the
	// current word (`~//`, `~///<folio>`).
	TokenContinuation
)

// ContinuationKind distinguishes the two continuation forms.
type ContinuationKind int

const (
	// ContinuationLine precedes a line break.
	ContinuationLine ContinuationKind = iota
	// ContinuationPage precedes a page break and carries the new folio.
	ContinuationPage
)

// Token is one element of the scanned stream. Which fields are meaningful
// depends on Kind; tokens are immutable once produced.
type Token struct {
	Kind TokenKind

	// Text holds literal text for TokenText, span content for the mark
	// constructs, and the entity name for TokenEntityRef.
	Text string

	// Abbr and Expansion are set for TokenAbbrev.
	Abbr      string
	Expansion string

	// Number is the explicit line number of a TokenLineBreak, empty if none.
	Number string

	// Folio is set for TokenPageBreak and page continuations.
	Folio string

	// Quantity and Supplied are set for TokenGap. Quantity zero means the
	// extent was not given.
	Quantity int
	Supplied string

	// Cont is set for TokenContinuation.
	Cont ContinuationKind

	// Line and Col locate the token start in the source, 1-based.
	Line int
	Col  int
}
