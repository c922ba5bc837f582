package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	translator "github.com/ashokgit/Ultimate-Translator-sub000"
	"github.com/ashokgit/Ultimate-Translator-sub000/document"
)

type translateOptions struct {
	langs    []string
	tenant   string
	output   string
	jsonOut  bool
	dryRun   bool
	previous string
	diff     string
	index    string
	timeout  time.Duration
}

func translateCmd(g *globals) *cobra.Command {
	o := &translateOptions{}

	cmd := &cobra.Command{
		Use:   "translate [file | url | -]",
		Short: "Translate a JSON document",
		Long: `Translate every translatable field of a JSON document into one or more
languages. Identifiers, URLs, prices, dates and other technical values are
left untouched. The document is read from a file, an http(s) URL or stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locator := "-"
			if len(args) == 1 {
				locator = args[0]
			}
			return runTranslate(cmd, g, o, locator)
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&o.langs, "lang", "l", nil, "target language (repeatable or comma-separated)")
	f.StringVarP(&o.tenant, "tenant", "t", "", "tenant whose rules and learned patterns apply")
	f.StringVarP(&o.output, "output", "o", "", "output file (default: stdout)")
	f.BoolVar(&o.jsonOut, "json", false, "wrap each result with its language, direction and stats")
	f.BoolVar(&o.dryRun, "dry-run", false, "list the fields that would be translated without calling the provider")
	f.StringVar(&o.previous, "previous", "", "previous translated output whose url history is carried over")
	f.StringVar(&o.diff, "diff", "", "previous version of the source; report the fields that need translation")
	f.StringVar(&o.index, "index", "", "document id under which translated pairs are indexed for review")
	f.DurationVar(&o.timeout, "timeout", 10*time.Minute, "overall time limit")
	return cmd
}

func readDocument(ctx context.Context, locator string, stdin io.Reader) (*document.Node, error) {
	switch {
	case locator == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return document.Parse(data)
	case strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://"):
		src := document.NewHTTPSource("", 30*time.Second).SetHeader("User-Agent", translator.UserAgent())
		return src.Fetch(ctx, locator)
	}
	return document.FileSource{}.Fetch(ctx, locator)
}

func runTranslate(cmd *cobra.Command, g *globals, o *translateOptions, locator string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	a, err := newApp(g, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	doc, err := readDocument(ctx, locator, cmd.InOrStdin())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if o.output != "" {
		f, err := os.Create(o.output) // #nosec G304 - CLI tool writes user-specified files
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if o.diff != "" {
		return runDiff(ctx, out, doc, o)
	}
	if o.dryRun {
		return runDryRun(ctx, out, a, doc, o)
	}

	if len(o.langs) == 0 {
		return errors.New("--lang is required")
	}
	if o.previous != "" && len(o.langs) > 1 {
		return errors.New("--previous works with a single --lang")
	}

	tr, err := a.translator(ctx, g.apiKey)
	if err != nil {
		return err
	}

	var previous *document.Node
	if o.previous != "" {
		if previous, err = (document.FileSource{}).Fetch(ctx, o.previous); err != nil {
			return err
		}
	}

	results := make([]*translator.Result, 0, len(o.langs))
	for _, lang := range o.langs {
		var res *translator.Result
		if previous != nil {
			res, err = tr.Retranslate(ctx, previous, doc, lang, o.tenant)
		} else {
			res, err = tr.TranslateDocument(ctx, doc, lang, o.tenant)
		}
		if err != nil {
			return fmt.Errorf("translating to %s: %w", lang, err)
		}
		results = append(results, res)

		if o.index != "" {
			if err := indexResult(ctx, a, o.index, doc, res, tr.SourceLang()); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d translated, %d cached, %d skipped, %d errors\n",
			lang, res.Stats.Translated, res.Stats.Cached, res.Stats.Skipped, res.Stats.Errors)
	}

	return writeResults(out, results, o.jsonOut)
}

func indexResult(ctx context.Context, a *app, docID string, src *document.Node, res *translator.Result, sourceLang string) error {
	prop, _, err := a.propagator(ctx)
	if err != nil {
		return err
	}
	n, err := prop.IndexDocument(ctx, docID, src, res.Document, sourceLang, res.TargetLang)
	if err != nil {
		return err
	}
	a.logger.Info("document indexed for review", "document", docID, "lang", res.TargetLang, "pairs", n)
	return nil
}

// writeResults prints a single document as is and several as an object
// keyed by language. With wrap, each document is enveloped with its stats.
func writeResults(w io.Writer, results []*translator.Result, wrap bool) error {
	if wrap {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	}

	if len(results) == 1 {
		return document.Encode(w, results[0].Document, "  ")
	}
	byLang := document.NewObject()
	for _, r := range results {
		byLang.Set(r.TargetLang, r.Document)
	}
	return document.Encode(w, byLang, "  ")
}

type fieldDecision struct {
	Path      string `json:"path"`
	Text      string `json:"text"`
	Translate bool   `json:"translate"`
	Preserve  bool   `json:"preserve_formatting,omitempty"`
}

// runDryRun shows which fields would be translated without calling the
// provider.
func runDryRun(ctx context.Context, w io.Writer, a *app, doc *document.Node, o *translateOptions) error {
	clf, err := a.classifier()
	if err != nil {
		return err
	}
	if d := clf.Detector(); d != nil {
		if err := d.Load(ctx, o.tenant); err != nil {
			return err
		}
	}

	var decisions []fieldDecision
	count := 0
	var walk func(n *document.Node, key, path string)
	walk = func(n *document.Node, key, path string) {
		switch n.Kind() {
		case document.Object:
			for _, k := range n.Keys() {
				v, _ := n.Get(k)
				walk(v, k, document.Key(path, k))
			}
		case document.Array:
			for i, v := range n.Items() {
				walk(v, key, document.Index(path, i))
			}
		default:
			d := fieldDecision{Path: path, Text: n.Scalar(), Translate: clf.ShouldTranslate(key, n, o.tenant)}
			if d.Translate {
				d.Preserve = clf.ShouldPreserveFormatting(key, n, o.tenant)
				count++
			}
			decisions = append(decisions, d)
		}
	}
	walk(doc, "", "")

	if o.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(decisions)
	}

	fmt.Fprintf(w, "Dry run: %d of %d fields would be translated\n\n", count, len(decisions))
	for _, d := range decisions {
		mark := "-"
		if d.Translate {
			mark = "+"
		}
		text := d.Text
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Fprintf(w, "  %s %-30s %q\n", mark, d.Path, text)
	}
	return nil
}

// runDiff compares the document with a previous version of the source and
// shows what changed.
func runDiff(ctx context.Context, w io.Writer, doc *document.Node, o *translateOptions) error {
	old, err := (document.FileSource{}).Fetch(ctx, o.diff)
	if err != nil {
		return fmt.Errorf("reading previous version: %w", err)
	}
	diff := translator.DiffDocuments(old, doc)
	stats := diff.Stats()

	if o.jsonOut {
		type diffOutput struct {
			Stats            translator.DiffStats `json:"stats"`
			NeedsTranslation []string             `json:"needs_translation"`
			Removed          []string             `json:"removed,omitempty"`
		}
		out := diffOutput{Stats: stats, NeedsTranslation: []string{}}
		for _, f := range diff.NeedsTranslation() {
			out.NeedsTranslation = append(out.NeedsTranslation, f.Path)
		}
		for _, f := range diff.Removed {
			out.Removed = append(out.Removed, f.Path)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Unchanged: %d\n", stats.Unchanged)
	fmt.Fprintf(w, "  Added:     %d\n", stats.Added)
	fmt.Fprintf(w, "  Removed:   %d\n", stats.Removed)
	fmt.Fprintf(w, "  Modified:  %d\n", stats.Modified)

	if !diff.HasChanges() {
		fmt.Fprintf(w, "\nNo changes detected. All translations are up to date.\n")
		return nil
	}
	fmt.Fprintf(w, "\nNeeds translation:\n")
	for _, f := range diff.NeedsTranslation() {
		fmt.Fprintf(w, "  + %s\n", f.Path)
	}
	for _, f := range diff.Removed {
		fmt.Fprintf(w, "  - %s\n", f.Path)
	}
	return nil
}
