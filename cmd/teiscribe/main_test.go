package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	if err := (&VersionCmd{}).Run(); err != nil {
		t.Fatal(err)
	}
}

func TestCompileCmdEndToEnd(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "leaf.dsl")
	out := filepath.Join(dir, "leaf.xml")
	if err := os.WriteFile(src, []byte(":rrot:egn//ok konungr"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := &CompileCmd{Path: src, Out: out, Check: true, Quiet: true}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<me:facs>ꝛegn</me:facs>") {
		t.Errorf("output missing facsimile level\n%s", data)
	}
}

func TestCompileCmdMissingFile(t *testing.T) {
	cmd := &CompileCmd{Path: filepath.Join(t.TempDir(), "nope.dsl")}
	if err := cmd.Run(); err == nil {
		t.Fatal("missing source should fail")
	}
}

func TestProjectPackInfoRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "leaf.dsl")
	bundle := filepath.Join(dir, "leaf.tsproj")
	if err := os.WriteFile(src, []byte("ok konungr//"), 0644); err != nil {
		t.Fatal(err)
	}

	pack := &ProjectPackCmd{Source: src, Out: bundle, Name: "leaf"}
	if err := pack.Run(); err != nil {
		t.Fatal(err)
	}
	info := &ProjectInfoCmd{Bundle: bundle}
	if err := info.Run(); err != nil {
		t.Fatal(err)
	}

	extracted := filepath.Join(dir, "extracted.dsl")
	unpack := &ProjectUnpackCmd{Bundle: bundle, Out: extracted}
	if err := unpack.Run(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(extracted)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ok konungr//" {
		t.Errorf("extracted = %q", data)
	}
}
