// Package project bundles a transcription, its annotation store, template
// and entity overrides into a single portable archive file.
package project

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/motheatensoul/tei-scribe-sub000/core/annotation"
	"github.com/motheatensoul/tei-scribe-sub000/core/entity"
	"github.com/motheatensoul/tei-scribe-sub000/core/errors"
	"github.com/motheatensoul/tei-scribe-sub000/core/fingerprint"
	"github.com/motheatensoul/tei-scribe-sub000/core/normalize"
	"github.com/motheatensoul/tei-scribe-sub000/core/template"
	"github.com/motheatensoul/tei-scribe-sub000/internal/archive"
)

// Archive entry names inside a project bundle.
const (
	manifestFile    = "manifest.json"
	sourceFile      = "source.dsl"
	templateFile    = "template.json"
	annotationsFile = "annotations.json"
	overridesFile   = "overrides.json"
	normalizerFile  = "normalizer.json"
)

// Manifest identifies a project bundle. SourceHash is the fingerprint of the
// source text the annotations were authored against.
type Manifest struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Version    int       `json:"version"`
	Created    time.Time `json:"created"`
	SourceHash string    `json:"source_hash"`
}

// Project is a loaded bundle. Optional parts are nil when the archive does
// not carry them.
type Project struct {
	Manifest    Manifest
	Source      string
	Template    *template.Template
	Annotations []annotation.Record
	Overrides   *entity.Mappings
	Normalizer  normalize.Dict
}

// New creates an empty project around a source text.
func New(name, source string) *Project {
	return &Project{
		Manifest: Manifest{
			ID:         uuid.NewString(),
			Name:       name,
			Version:    1,
			Created:    time.Now().UTC(),
			SourceHash: fingerprint.SumString(source),
		},
		Source: source,
	}
}

// Stale reports whether the annotations were authored against a different
// version of the source than the one currently in the project.
func (p *Project) Stale() bool {
	return p.Manifest.SourceHash != fingerprint.SumString(p.Source)
}

// Touch updates the manifest after a source edit: the hash is recomputed and
// the version bumped.
func (p *Project) Touch() {
	p.Manifest.SourceHash = fingerprint.SumString(p.Source)
	p.Manifest.Version++
}

// Save writes the project to an archive at path.
func Save(p *Project, path string) error {
	files := make(map[string][]byte)

	manifest, err := json.MarshalIndent(p.Manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	files[manifestFile] = manifest
	files[sourceFile] = []byte(p.Source)

	if p.Template != nil {
		data, err := json.MarshalIndent(p.Template, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal template: %w", err)
		}
		files[templateFile] = data
	}
	if p.Annotations != nil {
		data, err := json.MarshalIndent(p.Annotations, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal annotations: %w", err)
		}
		files[annotationsFile] = data
	}
	if p.Overrides != nil {
		data, err := json.MarshalIndent(p.Overrides, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal overrides: %w", err)
		}
		files[overridesFile] = data
	}
	if p.Normalizer != nil {
		data, err := json.MarshalIndent(p.Normalizer, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal normalizer: %w", err)
		}
		files[normalizerFile] = data
	}

	if err := archive.Write(path, files); err != nil {
		return errors.NewIO("save project", path, err)
	}
	return nil
}

// Load reads a project bundle from path.
func Load(path string) (*Project, error) {
	files, err := archive.ReadAll(path)
	if err != nil {
		return nil, errors.NewIO("load project", path, err)
	}

	manifest, ok := files[manifestFile]
	if !ok {
		return nil, errors.NewValidation("project", "missing manifest.json")
	}

	p := &Project{}
	if err := json.Unmarshal(manifest, &p.Manifest); err != nil {
		return nil, errors.NewParse("manifest", manifestFile, err.Error())
	}
	p.Source = string(files[sourceFile])

	if data, ok := files[templateFile]; ok {
		p.Template = &template.Template{}
		if err := json.Unmarshal(data, p.Template); err != nil {
			return nil, errors.NewParse("template", templateFile, err.Error())
		}
	}
	if data, ok := files[annotationsFile]; ok {
		if err := json.Unmarshal(data, &p.Annotations); err != nil {
			return nil, errors.NewParse("annotations", annotationsFile, err.Error())
		}
	}
	if data, ok := files[overridesFile]; ok {
		p.Overrides = &entity.Mappings{}
		if err := json.Unmarshal(data, p.Overrides); err != nil {
			return nil, errors.NewParse("overrides", overridesFile, err.Error())
		}
	}
	if data, ok := files[normalizerFile]; ok {
		if err := json.Unmarshal(data, &p.Normalizer); err != nil {
			return nil, errors.NewParse("normalizer", normalizerFile, err.Error())
		}
	}
	return p, nil
}
