package project

import (
	"path/filepath"
	"testing"

	"github.com/motheatensoul/tei-scribe-sub000/core/annotation"
	"github.com/motheatensoul/tei-scribe-sub000/core/entity"
	"github.com/motheatensoul/tei-scribe-sub000/core/errors"
	"github.com/motheatensoul/tei-scribe-sub000/core/template"
	"github.com/motheatensoul/tei-scribe-sub000/internal/archive"
)

func TestNewProject(t *testing.T) {
	p := New("heimskringla", "ok konungr//")
	if p.Manifest.ID == "" {
		t.Error("missing ID")
	}
	if p.Manifest.Version != 1 {
		t.Errorf("version = %d, want 1", p.Manifest.Version)
	}
	if p.Stale() {
		t.Error("fresh project reported stale")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heimskringla.tsproj")

	p := New("heimskringla", ":rrot:egn//ok")
	p.Template = template.Default()
	p.Annotations = []annotation.Record{
		annotation.New(annotation.WordTarget(0), annotation.Value{
			Kind: annotation.ValueLemma, Lemma: "regn",
		}),
	}
	p.Overrides = &entity.Mappings{User: map[string]string{"et": "och"}}

	if err := Save(p, path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Manifest.ID != p.Manifest.ID {
		t.Errorf("ID = %q, want %q", loaded.Manifest.ID, p.Manifest.ID)
	}
	if loaded.Source != p.Source {
		t.Errorf("source = %q", loaded.Source)
	}
	if loaded.Template == nil || !loaded.Template.MultiLevel {
		t.Errorf("template = %+v", loaded.Template)
	}
	if len(loaded.Annotations) != 1 || loaded.Annotations[0].Value.Lemma != "regn" {
		t.Errorf("annotations = %+v", loaded.Annotations)
	}
	if loaded.Overrides == nil || loaded.Overrides.User["et"] != "och" {
		t.Errorf("overrides = %+v", loaded.Overrides)
	}
	if loaded.Stale() {
		t.Error("round-tripped project reported stale")
	}
}

func TestOptionalPartsStayNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.tsproj")
	if err := Save(New("bare", "ok"), path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Template != nil || loaded.Annotations != nil || loaded.Overrides != nil {
		t.Errorf("optional parts should stay nil: %+v", loaded)
	}
}

func TestStaleDetection(t *testing.T) {
	p := New("x", "original")
	p.Source = "edited"
	if !p.Stale() {
		t.Error("edited source should report stale")
	}
	p.Touch()
	if p.Stale() {
		t.Error("touch should clear staleness")
	}
	if p.Manifest.Version != 2 {
		t.Errorf("version = %d, want 2", p.Manifest.Version)
	}
}

func TestLoadMissingManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.tsproj")
	// An archive without manifest.json is not a project bundle.
	if err := archive.Write(path, map[string][]byte{"source.dsl": []byte("ok")}); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("missing manifest should fail")
	}
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}
