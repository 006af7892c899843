package dsl

import (
	"testing"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizePlainText(t *testing.T) {
	tokens, diags := Tokenize("hello world")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(tokens) != 1 || tokens[0].Kind != TokenText {
		t.Fatalf("expected one text token, got %v", tokens)
	}
	if tokens[0].Text != "hello world" {
		t.Errorf("text = %q", tokens[0].Text)
	}
	if tokens[0].Line != 1 || tokens[0].Col != 1 {
		t.Errorf("position = %d:%d, want 1:1", tokens[0].Line, tokens[0].Col)
	}
}

func TestTokenizeLineBreak(t *testing.T) {
	tokens, diags := Tokenize("abc//def")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	want := []TokenKind{TokenText, TokenLineBreak, TokenText}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}
	if tokens[1].Number != "" {
		t.Errorf("line break number = %q, want empty", tokens[1].Number)
	}
}

func TestTokenizeNumberedLineBreak(t *testing.T) {
	tokens, _ := Tokenize("abc//5def")
	if len(tokens) != 3 || tokens[1].Kind != TokenLineBreak {
		t.Fatalf("tokens = %v", tokens)
	}
	if tokens[1].Number != "5" {
		t.Errorf("number = %q, want 5", tokens[1].Number)
	}
	if tokens[2].Text != "def" {
		t.Errorf("trailing text = %q, want def", tokens[2].Text)
	}
}

func TestTokenizePageBreak(t *testing.T) {
	tokens, diags := Tokenize("///17rb")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(tokens) != 1 || tokens[0].Kind != TokenPageBreak {
		t.Fatalf("tokens = %v", tokens)
	}
	if tokens[0].Folio != "17rb" {
		t.Errorf("folio = %q", tokens[0].Folio)
	}
}

func TestTokenizePageBreakBadFolio(t *testing.T) {
	_, diags := Tokenize("///xyz9")
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for the malformed folio")
	}
	if diags[0].Severity != SeverityWarning {
		t.Errorf("severity = %q, want warning", diags[0].Severity)
	}
}

func TestTokenizeContinuations(t *testing.T) {
	tokens, _ := Tokenize("kon~//ungr")
	want := []TokenKind{TokenText, TokenContinuation, TokenLineBreak, TokenText}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}
	if tokens[1].Cont != ContinuationLine {
		t.Errorf("continuation kind = %v, want line", tokens[1].Cont)
	}

	tokens, _ = Tokenize("kon~///2vungr")
	if len(tokens) != 4 || tokens[1].Kind != TokenContinuation || tokens[2].Kind != TokenPageBreak {
		t.Fatalf("tokens = %v", tokens)
	}
	if tokens[1].Cont != ContinuationPage {
		t.Errorf("continuation kind = %v, want page", tokens[1].Cont)
	}
	if tokens[2].Folio != "2v" {
		t.Errorf("folio = %q, want 2v", tokens[2].Folio)
	}
}

func TestTokenizeGap(t *testing.T) {
	cases := []struct {
		src      string
		quantity int
		supplied string
	}{
		{"[...]", 0, ""},
		{"[...3]", 3, ""},
		{"[...5konung]", 5, "konung"},
	}
	for _, tc := range cases {
		tokens, diags := Tokenize(tc.src)
		if len(diags) != 0 {
			t.Fatalf("%q: unexpected diagnostics: %v", tc.src, diags)
		}
		if len(tokens) != 1 || tokens[0].Kind != TokenGap {
			t.Fatalf("%q: tokens = %v", tc.src, tokens)
		}
		if tokens[0].Quantity != tc.quantity {
			t.Errorf("%q: quantity = %d, want %d", tc.src, tokens[0].Quantity, tc.quantity)
		}
		if tokens[0].Supplied != tc.supplied {
			t.Errorf("%q: supplied = %q, want %q", tc.src, tokens[0].Supplied, tc.supplied)
		}
	}
}

func TestTokenizeStrayBracket(t *testing.T) {
	tokens, diags := Tokenize("a[b")
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want one", diags)
	}
	if len(tokens) != 1 || tokens[0].Text != "a[b" {
		t.Fatalf("tokens = %v, want single literal a[b", tokens)
	}
}

func TestTokenizeMarks(t *testing.T) {
	cases := []struct {
		src  string
		kind TokenKind
		text string
	}{
		{"<konungr>", TokenSupplied, "konungr"},
		{"-{ok}-", TokenDeleted, "ok"},
		{"+{en}+", TokenAdded, "en"},
		{"?{vel}?", TokenUnclear, "vel"},
		{"^{in marg}", TokenNote, "in marg"},
	}
	for _, tc := range cases {
		tokens, diags := Tokenize(tc.src)
		if len(diags) != 0 {
			t.Fatalf("%q: unexpected diagnostics: %v", tc.src, diags)
		}
		if len(tokens) != 1 || tokens[0].Kind != tc.kind {
			t.Fatalf("%q: tokens = %v", tc.src, tokens)
		}
		if tokens[0].Text != tc.text {
			t.Errorf("%q: text = %q, want %q", tc.src, tokens[0].Text, tc.text)
		}
	}
}

func TestTokenizeUnterminatedMark(t *testing.T) {
	tokens, diags := Tokenize("-{ok\nnext")
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want one", diags)
	}
	// The malformed construct degrades to literal text up to end of line.
	if len(tokens) != 2 || tokens[0].Kind != TokenText || tokens[0].Text != "-{ok" {
		t.Fatalf("tokens = %v", tokens)
	}
	if tokens[1].Text != "next" {
		t.Errorf("second token = %v", tokens[1])
	}
}

func TestTokenizeAbbrev(t *testing.T) {
	tokens, diags := Tokenize(".abbr[d.]{deus}")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(tokens) != 1 || tokens[0].Kind != TokenAbbrev {
		t.Fatalf("tokens = %v", tokens)
	}
	if tokens[0].Abbr != "d." || tokens[0].Expansion != "deus" {
		t.Errorf("abbrev = %q/%q", tokens[0].Abbr, tokens[0].Expansion)
	}
}

func TestTokenizeAbbrevMissingExpansion(t *testing.T) {
	tokens, diags := Tokenize(".abbr[d.]")
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want one", diags)
	}
	if len(tokens) != 1 || tokens[0].Kind != TokenText {
		t.Fatalf("tokens = %v, want literal fallback", tokens)
	}
}

func TestTokenizeEntityRef(t *testing.T) {
	tokens, diags := Tokenize(":rrot:egn")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(tokens) != 2 || tokens[0].Kind != TokenEntityRef {
		t.Fatalf("tokens = %v", tokens)
	}
	if tokens[0].Text != "rrot" {
		t.Errorf("entity name = %q", tokens[0].Text)
	}
	if tokens[1].Text != "egn" {
		t.Errorf("trailing text = %q", tokens[1].Text)
	}
}

func TestTokenizeLoneColonStaysLiteral(t *testing.T) {
	tokens, diags := Tokenize("a:b c")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(tokens) != 1 || tokens[0].Text != "a:b c" {
		t.Fatalf("tokens = %v, want single literal", tokens)
	}
}

func TestTokenizeWordBoundary(t *testing.T) {
	tokens, _ := Tokenize("ok|en")
	want := []TokenKind{TokenText, TokenWordBoundary, TokenText}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens, _ := Tokenize("ab\ncd//")
	if len(tokens) != 2 {
		t.Fatalf("tokens = %v", tokens)
	}
	if tokens[1].Kind != TokenLineBreak {
		t.Fatalf("second token = %v", tokens[1])
	}
	if tokens[1].Line != 2 || tokens[1].Col != 3 {
		t.Errorf("break position = %d:%d, want 2:3", tokens[1].Line, tokens[1].Col)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	tokens, diags := Tokenize("")
	if len(tokens) != 0 || len(diags) != 0 {
		t.Fatalf("tokens = %v, diags = %v", tokens, diags)
	}
}
