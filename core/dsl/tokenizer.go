package dsl

import (
	"strings"
	"unicode"
)

// Tokenize scans DSL source into a flat token stream. It never fails:
// malformed or unterminated constructs degrade to literal text tokens and a
// warning diagnostic carrying the source position. Delimiter matching is
// non-nesting; an unterminated construct consumes to end-of-line.
func Tokenize(source string) ([]Token, []Diagnostic) {
	s := &tokenScanner{src: []rune(source), line: 1, col: 1}
	s.run()
	return s.tokens, s.diags
}

type tokenScanner struct {
	src []rune
	pos int
	// line and col track the position of src[pos], 1-based.
	line int
	col  int

	tokens []Token
	diags  []Diagnostic

	// pending literal text run and its start position
	text     strings.Builder
	textLine int
	textCol  int
}

func (s *tokenScanner) run() {
	for s.pos < len(s.src) {
		r := s.src[s.pos]
		switch {
		case r == '~' && s.lookingAt("~///"):
			s.pageBreak(4, true)
		case r == '~' && s.lookingAt("~//"):
			s.lineBreak(3, true)
		case r == '/' && s.lookingAt("///"):
			s.pageBreak(3, false)
		case r == '/' && s.lookingAt("//"):
			s.lineBreak(2, false)
		case r == '[':
			s.gap()
		case r == '<':
			s.span(TokenSupplied, "<", ">", "supplied text")
		case r == '-' && s.peek(1) == '{':
			s.span(TokenDeleted, "-{", "}-", "deletion")
		case r == '+' && s.peek(1) == '{':
			s.span(TokenAdded, "+{", "}+", "addition")
		case r == '?' && s.peek(1) == '{':
			s.span(TokenUnclear, "?{", "}?", "unclear reading")
		case r == '^' && s.peek(1) == '{':
			s.span(TokenNote, "^{", "}", "note")
		case r == '.' && s.lookingAt(".abbr["):
			s.abbrev()
		case r == ':':
			s.entityRef()
		case r == '|':
			s.flushText()
			s.emit(Token{Kind: TokenWordBoundary, Line: s.line, Col: s.col})
			s.advance(1)
		default:
			s.literal(r)
		}
	}
	s.flushText()
}

// lineBreak handles `//<n>` and, when cont is true, `~//<n>`.
func (s *tokenScanner) lineBreak(skip int, cont bool) {
	s.flushText()
	line, col := s.line, s.col
	s.advance(skip)
	num := s.takeWhile(unicode.IsDigit)
	if cont {
		s.emit(Token{Kind: TokenContinuation, Cont: ContinuationLine, Line: line, Col: col})
	}
	s.emit(Token{Kind: TokenLineBreak, Number: num, Line: line, Col: col})
}

// pageBreak handles `///<folio>` and, when cont is true, `~///<folio>`.
func (s *tokenScanner) pageBreak(skip int, cont bool) {
	s.flushText()
	line, col := s.line, s.col
	s.advance(skip)
	folio := s.scanFolio()
	if folio == "" {
		s.warnAt(line, col, "page break is missing a folio reference")
	} else if _, err := ParseFolio(folio); err != nil {
		s.warnAt(line, col, "unrecognized folio reference %q", folio)
	}
	if cont {
		s.emit(Token{Kind: TokenContinuation, Cont: ContinuationPage, Folio: folio, Line: line, Col: col})
	}
	s.emit(Token{Kind: TokenPageBreak, Folio: folio, Line: line, Col: col})
}

// gap handles `[...]`, `[...<n>]` and `[...<n><supplied>]`.
func (s *tokenScanner) gap() {
	if !s.lookingAt("[...") {
		s.warnAt(s.line, s.col, "stray '[' treated as literal text")
		s.literal('[')
		return
	}
	s.flushText()
	line, col := s.line, s.col
	start := s.pos
	s.advance(4)
	qty := 0
	for _, d := range s.takeWhile(unicode.IsDigit) {
		qty = qty*10 + int(d-'0')
	}
	content, ok := s.scanUntil("]")
	if !ok {
		s.fallback(start, line, col, "unterminated gap")
		return
	}
	s.emit(Token{Kind: TokenGap, Quantity: qty, Supplied: content, Line: line, Col: col})
}

// span handles the bracketed mark constructs that share one shape: an opener,
// raw content, and a closer on the same source line.
func (s *tokenScanner) span(kind TokenKind, opener, closer, what string) {
	s.flushText()
	line, col := s.line, s.col
	start := s.pos
	s.advance(len(opener))
	content, ok := s.scanUntil(closer)
	if !ok {
		s.fallback(start, line, col, "unterminated "+what)
		return
	}
	s.emit(Token{Kind: kind, Text: content, Line: line, Col: col})
}

// abbrev handles `.abbr[abbr]{expansion}`.
func (s *tokenScanner) abbrev() {
	s.flushText()
	line, col := s.line, s.col
	start := s.pos
	s.advance(len(".abbr["))
	abbr, ok := s.scanUntil("]")
	if !ok {
		s.fallback(start, line, col, "unterminated abbreviation")
		return
	}
	if s.peek(0) != '{' {
		s.fallback(start, line, col, "abbreviation is missing its expansion")
		return
	}
	s.advance(1)
	expansion, ok := s.scanUntil("}")
	if !ok {
		s.fallback(start, line, col, "unterminated abbreviation expansion")
		return
	}
	s.emit(Token{Kind: TokenAbbrev, Abbr: abbr, Expansion: expansion, Line: line, Col: col})
}

// entityRef handles `:name:` with an alphanumeric name. A colon that does not
// open a well-formed reference stays literal text; whether the name is known
// is decided later by the resolver, not here.
func (s *tokenScanner) entityRef() {
	j := s.pos + 1
	for j < len(s.src) && isEntityRune(s.src[j]) {
		j++
	}
	if j == s.pos+1 || j >= len(s.src) || s.src[j] != ':' {
		s.literal(':')
		return
	}
	s.flushText()
	name := string(s.src[s.pos+1 : j])
	s.emit(Token{Kind: TokenEntityRef, Text: name, Line: s.line, Col: s.col})
	s.advance(j + 1 - s.pos)
}

// literal appends one rune to the pending text run.
func (s *tokenScanner) literal(r rune) {
	if s.text.Len() == 0 {
		s.textLine, s.textCol = s.line, s.col
	}
	s.text.WriteRune(r)
	s.advance(1)
}

// fallback recovers from a malformed construct: everything from start to the
// end of the source line becomes a literal text token, plus a warning.
func (s *tokenScanner) fallback(start, line, col int, what string) {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.advance(1)
	}
	s.emit(Token{Kind: TokenText, Text: string(s.src[start:s.pos]), Line: line, Col: col})
	s.warnAt(line, col, "%s", what)
}

// scanUntil consumes up to the closer on the current source line. It returns
// the consumed content and reports whether the closer was found; on failure
// the position is left unchanged relative to content already consumed.
func (s *tokenScanner) scanUntil(closer string) (string, bool) {
	cl := []rune(closer)
	for i := s.pos; i < len(s.src); i++ {
		if s.src[i] == '\n' {
			return "", false
		}
		if s.src[i] == cl[0] && s.matchAt(i, cl) {
			content := string(s.src[s.pos:i])
			s.advance(i + len(cl) - s.pos)
			return content, true
		}
	}
	return "", false
}

func (s *tokenScanner) matchAt(i int, runes []rune) bool {
	if i+len(runes) > len(s.src) {
		return false
	}
	for k, r := range runes {
		if s.src[i+k] != r {
			return false
		}
	}
	return true
}

func (s *tokenScanner) lookingAt(prefix string) bool {
	return s.matchAt(s.pos, []rune(prefix))
}

func (s *tokenScanner) peek(ahead int) rune {
	if s.pos+ahead >= len(s.src) {
		return 0
	}
	return s.src[s.pos+ahead]
}

func (s *tokenScanner) takeWhile(pred func(rune) bool) string {
	start := s.pos
	for s.pos < len(s.src) && pred(s.src[s.pos]) {
		s.advance(1)
	}
	return string(s.src[start:s.pos])
}

func (s *tokenScanner) advance(n int) {
	for i := 0; i < n && s.pos < len(s.src); i++ {
		if s.src[s.pos] == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
		s.pos++
	}
}

func (s *tokenScanner) flushText() {
	if s.text.Len() == 0 {
		return
	}
	s.emit(Token{Kind: TokenText, Text: s.text.String(), Line: s.textLine, Col: s.textCol})
	s.text.Reset()
}

func (s *tokenScanner) emit(t Token) {
	s.tokens = append(s.tokens, t)
}

func (s *tokenScanner) warnAt(line, col int, format string, args ...any) {
	s.diags = append(s.diags, Warnf(line, col, format, args...))
}

// scanFolio consumes a folio reference: leaf digits, a recto/verso side, and
// an optional column letter. It stops at the first rune that does not fit, so
// word text following the reference stays untouched.
func (s *tokenScanner) scanFolio() string {
	start := s.pos
	s.takeWhile(unicode.IsDigit)
	if r := s.peek(0); r == 'r' || r == 'v' {
		s.advance(1)
		if r := s.peek(0); r == 'a' || r == 'b' {
			s.advance(1)
		}
	}
	return string(s.src[start:s.pos])
}

func isEntityRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
