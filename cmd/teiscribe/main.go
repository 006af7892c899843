// Command teiscribe compiles manuscript transcription notation into
// multi-level TEI XML and manages the surrounding project files.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/motheatensoul/tei-scribe-sub000/core/annotation"
	"github.com/motheatensoul/tei-scribe-sub000/core/compile"
	"github.com/motheatensoul/tei-scribe-sub000/core/dsl"
	"github.com/motheatensoul/tei-scribe-sub000/core/entity"
	"github.com/motheatensoul/tei-scribe-sub000/core/normalize"
	"github.com/motheatensoul/tei-scribe-sub000/core/template"
	"github.com/motheatensoul/tei-scribe-sub000/core/xml"
	"github.com/motheatensoul/tei-scribe-sub000/internal/lexicon"
	"github.com/motheatensoul/tei-scribe-sub000/internal/logging"
	"github.com/motheatensoul/tei-scribe-sub000/internal/project"
	"github.com/motheatensoul/tei-scribe-sub000/internal/server"
)

const version = "0.2.0"

// CLI defines the command-line interface for teiscribe.
var CLI struct {
	LogLevel string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogJSON  bool   `name:"log-json" help:"Log in JSON format"`

	Compile  CompileCmd   `cmd:"" help:"Compile transcription source to XML"`
	Entities EntitiesCmd  `cmd:"" help:"List or inspect entity definitions"`
	Project  ProjectGroup `cmd:"" help:"Project bundle operations"`
	Lexicon  LexiconGroup `cmd:"" help:"Lexicon database operations"`
	Serve    ServeCmd     `cmd:"" help:"Start the live compile server"`
	Version  VersionCmd   `cmd:"" help:"Print version information"`
}

// CompileCmd compiles one source file.
type CompileCmd struct {
	Path        string `arg:"" help:"Transcription source file" type:"existingfile"`
	Out         string `short:"o" help:"Output path (default stdout)" type:"path"`
	Template    string `help:"Template JSON file" type:"existingfile"`
	Annotations string `help:"Annotation store JSON file" type:"existingfile"`
	Overrides   string `help:"Entity override JSON file" type:"existingfile"`
	Dict        string `help:"Normalization dictionary JSON file" type:"existingfile"`
	Punctuation string `help:"Punctuation rune set" default:""`
	Check       bool   `help:"Check output well-formedness"`
	Quiet       bool   `short:"q" help:"Suppress diagnostics"`
}

func (c *CompileCmd) Run() error {
	source, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	in := compile.Input{
		Source:       string(source),
		Segmentation: dsl.SegmentOptions{Punctuation: c.Punctuation},
	}

	if c.Template != "" {
		f, err := os.Open(c.Template)
		if err != nil {
			return fmt.Errorf("open template: %w", err)
		}
		in.Template, err = template.Load(f)
		f.Close()
		if err != nil {
			return err
		}
	}
	if c.Annotations != "" {
		f, err := os.Open(c.Annotations)
		if err != nil {
			return fmt.Errorf("open annotations: %w", err)
		}
		in.Annotations, err = annotation.Load(f)
		f.Close()
		if err != nil {
			return err
		}
	}
	if c.Overrides != "" {
		f, err := os.Open(c.Overrides)
		if err != nil {
			return fmt.Errorf("open overrides: %w", err)
		}
		in.Overrides, err = entity.LoadMappings(f)
		f.Close()
		if err != nil {
			return err
		}
	}
	if c.Dict != "" {
		f, err := os.Open(c.Dict)
		if err != nil {
			return fmt.Errorf("open dictionary: %w", err)
		}
		in.Normalizer, err = normalize.Load(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	start := time.Now()
	result := compile.Compile(in)
	logging.CompileEvent(c.Path, len(result.Diagnostics), time.Since(start))

	if !c.Quiet {
		for _, d := range result.Diagnostics {
			fmt.Fprintf(os.Stderr, "%s:%d:%d: %s: %s\n", c.Path, d.Line, d.Col, d.Severity, d.Message)
		}
	}

	if c.Check {
		check := xml.Validate([]byte(result.XML))
		if !check.Valid {
			for _, e := range check.Errors {
				fmt.Fprintf(os.Stderr, "not well-formed: %s\n", e.Message)
			}
			return fmt.Errorf("output failed well-formedness check")
		}
	}

	if c.Out != "" {
		return os.WriteFile(c.Out, []byte(result.XML), 0644)
	}
	fmt.Print(result.XML)
	return nil
}

// EntitiesCmd lists entity definitions or shows one.
type EntitiesCmd struct {
	Name string `arg:"" optional:"" help:"Entity name to show"`
}

func (c *EntitiesCmd) Run() error {
	table := entity.BaseTable()
	mappings := entity.BaseMappings()

	if c.Name != "" {
		e, ok := table.Lookup(c.Name)
		if !ok {
			return fmt.Errorf("unknown entity: %s", c.Name)
		}
		fmt.Printf("Name:        %s\n", c.Name)
		fmt.Printf("Glyph:       %s\n", e.Glyph)
		fmt.Printf("Diplomatic:  %s\n", mappings.Diplomatic(c.Name, e.Glyph))
		fmt.Printf("Category:    %s\n", e.Category)
		fmt.Printf("Description: %s\n", e.Description)
		return nil
	}

	for _, name := range table.Names() {
		e, _ := table.Lookup(name)
		fmt.Printf("%-12s %-4s %s\n", name, e.Glyph, e.Description)
	}
	return nil
}

// ProjectGroup contains project bundle operations.
type ProjectGroup struct {
	Pack   ProjectPackCmd   `cmd:"" help:"Create a project bundle from a source file"`
	Unpack ProjectUnpackCmd `cmd:"" help:"Extract a project bundle"`
	Info   ProjectInfoCmd   `cmd:"" help:"Show project bundle metadata"`
}

// ProjectPackCmd creates a bundle.
type ProjectPackCmd struct {
	Source string `arg:"" help:"Transcription source file" type:"existingfile"`
	Out    string `required:"" help:"Output bundle path" type:"path"`
	Name   string `help:"Project name (default source filename)"`
}

func (c *ProjectPackCmd) Run() error {
	source, err := os.ReadFile(c.Source)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	name := c.Name
	if name == "" {
		name = c.Source
	}
	p := project.New(name, string(source))
	if err := project.Save(p, c.Out); err != nil {
		return err
	}
	fmt.Printf("Created: %s\n", c.Out)
	fmt.Printf("  ID:   %s\n", p.Manifest.ID)
	fmt.Printf("  Hash: %s\n", p.Manifest.SourceHash)
	return nil
}

// ProjectUnpackCmd extracts the source from a bundle.
type ProjectUnpackCmd struct {
	Bundle string `arg:"" help:"Project bundle path" type:"existingfile"`
	Out    string `required:"" help:"Output source path" type:"path"`
}

func (c *ProjectUnpackCmd) Run() error {
	p, err := project.Load(c.Bundle)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Out, []byte(p.Source), 0644); err != nil {
		return fmt.Errorf("write source: %w", err)
	}
	fmt.Printf("Extracted: %s\n", c.Out)
	return nil
}

// ProjectInfoCmd shows bundle metadata.
type ProjectInfoCmd struct {
	Bundle string `arg:"" help:"Project bundle path" type:"existingfile"`
}

func (c *ProjectInfoCmd) Run() error {
	p, err := project.Load(c.Bundle)
	if err != nil {
		return err
	}
	fmt.Printf("Project: %s\n", p.Manifest.Name)
	fmt.Printf("  ID:          %s\n", p.Manifest.ID)
	fmt.Printf("  Version:     %d\n", p.Manifest.Version)
	fmt.Printf("  Created:     %s\n", p.Manifest.Created.Format(time.RFC3339))
	fmt.Printf("  Annotations: %d\n", len(p.Annotations))
	if p.Stale() {
		fmt.Println("  WARNING: annotations were authored against a different source version")
	}
	return nil
}

// LexiconGroup contains lexicon database operations.
type LexiconGroup struct {
	Import LexiconImportCmd `cmd:"" help:"Import wordforms from a TSV file"`
	Lookup LexiconLookupCmd `cmd:"" help:"Look up a wordform"`
}

// LexiconImportCmd imports TSV rows.
type LexiconImportCmd struct {
	DB   string `required:"" help:"Lexicon database path" type:"path"`
	Path string `arg:"" help:"TSV file: form, normalized, lemma, msa" type:"existingfile"`
}

func (c *LexiconImportCmd) Run() error {
	lex, err := lexicon.Open(c.DB)
	if err != nil {
		return err
	}
	defer lex.Close()

	f, err := os.Open(c.Path)
	if err != nil {
		return fmt.Errorf("open tsv: %w", err)
	}
	defer f.Close()

	count, err := lex.ImportTSV(context.Background(), f)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d wordforms\n", count)
	return nil
}

// LexiconLookupCmd looks up one wordform.
type LexiconLookupCmd struct {
	DB   string `required:"" help:"Lexicon database path" type:"existingfile"`
	Form string `arg:"" help:"Wordform to look up"`
}

func (c *LexiconLookupCmd) Run() error {
	lex, err := lexicon.Open(c.DB)
	if err != nil {
		return err
	}
	defer lex.Close()

	e, err := lex.Lookup(context.Background(), c.Form)
	if err != nil {
		return err
	}
	fmt.Printf("Form:       %s\n", e.Form)
	fmt.Printf("Normalized: %s\n", e.Normalized)
	if e.Lemma != "" {
		fmt.Printf("Lemma:      %s\n", e.Lemma)
	}
	if e.MSA != "" {
		fmt.Printf("MSA:        %s\n", e.MSA)
	}
	return nil
}

// ServeCmd starts the live compile server.
type ServeCmd struct {
	Addr      string        `default:":8710" help:"Listen address"`
	Debounce  time.Duration `default:"150ms" help:"Revision settle time before compiling"`
	CacheSize int           `default:"64" help:"Compile result cache capacity"`
}

func (c *ServeCmd) Run() error {
	srv := server.New(server.Config{
		Debounce:  c.Debounce,
		CacheSize: c.CacheSize,
	})
	return srv.ListenAndServe(c.Addr)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("teiscribe %s\n", version)
	return nil
}

func initLogging() {
	level := logging.LevelInfo
	switch CLI.LogLevel {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	format := logging.FormatText
	if CLI.LogJSON {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("teiscribe"),
		kong.Description("Manuscript transcription compiler for multi-level TEI XML"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
