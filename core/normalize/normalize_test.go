package normalize

import (
	"strings"
	"testing"
)

func TestNormalizeDictHit(t *testing.T) {
	d := Dict{"konungr": "konungur"}
	if got := d.Normalize("konungr"); got != "konungur" {
		t.Errorf("Normalize = %q, want konungur", got)
	}
}

func TestNormalizeFallbackOnMiss(t *testing.T) {
	d := Dict{}
	if got := d.Normalize("ſtein"); got != "stein" {
		t.Errorf("Normalize = %q, want stein", got)
	}
}

func TestNormalizeNilDict(t *testing.T) {
	var d Dict
	if got := d.Normalize("gꝛein"); got != "grein" {
		t.Errorf("Normalize = %q, want grein", got)
	}
}

func TestFallbackRules(t *testing.T) {
	cases := []struct{ in, want string }{
		{"aa", "á"},
		{"saar", "sár"},
		{"been", "bén"},
		{"ſ", "s"},
		{"ꝛ", "r"},
		{"ꝼ", "f"},
		{"đ", "d"},
		{"ę", "æ"},
		{"ꜵ", "ǫ"},
		{"ʀunar", "runar"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Fallback(tc.in); got != tc.want {
			t.Errorf("Fallback(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFallbackIdempotent(t *testing.T) {
	inputs := []string{
		"aaeeiioouu",
		"ſꝛꝼđęꜵꜹʀ",
		"saaga ſtein gꝛein",
		"konungr",
	}
	for _, in := range inputs {
		once := Fallback(in)
		twice := Fallback(once)
		if once != twice {
			t.Errorf("Fallback not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestLoad(t *testing.T) {
	d, err := Load(strings.NewReader(`{"ok": "og"}`))
	if err != nil {
		t.Fatal(err)
	}
	if d["ok"] != "og" {
		t.Errorf("dict = %v", d)
	}

	if _, err := Load(strings.NewReader("not json")); err == nil {
		t.Error("invalid JSON should fail")
	}
}
