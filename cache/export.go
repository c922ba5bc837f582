package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ExportFormat is the JSON layout of a cache dump.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Languages  map[string]int    `json:"languages"` // entry count per language
	Entries    []Entry           `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// exportVersion is written into dumps. Importers accept any 1.x dump.
const exportVersion = "1.1"

// Exporter writes the contents of an enumerable cache as JSON, optionally
// limited to some target languages.
type Exporter struct {
	cache Enumerable
	langs map[string]bool
}

// NewExporter creates an exporter for every entry of cache.
func NewExporter(cache Enumerable) *Exporter {
	return &Exporter{cache: cache}
}

// Languages limits the export to the given target languages.
func (e *Exporter) Languages(langs ...string) *Exporter {
	if len(langs) == 0 {
		e.langs = nil
		return e
	}
	e.langs = make(map[string]bool, len(langs))
	for _, l := range langs {
		e.langs[l] = true
	}
	return e
}

// Export writes the selected entries to w.
func (e *Exporter) Export(ctx context.Context, w io.Writer, metadata map[string]string) error {
	all, err := e.cache.Entries(ctx)
	if err != nil {
		return fmt.Errorf("listing cache entries: %w", err)
	}

	dump := ExportFormat{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Languages:  map[string]int{},
		Entries:    make([]Entry, 0, len(all)),
		Metadata:   metadata,
	}
	for _, entry := range all {
		if e.langs != nil && !e.langs[entry.Lang] {
			continue
		}
		dump.Entries = append(dump.Entries, entry)
		dump.Languages[entry.Lang]++
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(dump); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ExportToFile writes the export to path.
func (e *Exporter) ExportToFile(ctx context.Context, path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := e.Export(ctx, f, metadata); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Importer loads a dump into any cache. Cached entries are never
// overwritten.
type Importer struct {
	cache TranslationCache
}

// NewImporter creates an importer writing to cache.
func NewImporter(cache TranslationCache) *Importer {
	return &Importer{cache: cache}
}

// ImportResult reports what an import did.
type ImportResult struct {
	Version  string            `json:"version"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Imported int               `json:"imported"`
	Skipped  int               `json:"skipped"` // already cached
	Failed   int               `json:"failed"`  // malformed or not writable
}

// Import reads a dump from r. It stops early only when ctx ends or the dump
// itself cannot be read.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var dump ExportFormat
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	if !strings.HasPrefix(dump.Version, "1.") {
		return nil, fmt.Errorf("unsupported cache dump version %q", dump.Version)
	}

	result := &ImportResult{Version: dump.Version, Metadata: dump.Metadata}
	for _, entry := range dump.Entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if entry.Text == "" || entry.Lang == "" {
			result.Failed++
			continue
		}
		if _, ok, err := i.cache.Get(ctx, entry.Text, entry.Lang); err == nil && ok {
			result.Skipped++
			continue
		}
		if err := i.cache.Set(ctx, entry.Text, entry.Lang, entry.Value); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}
	return result, nil
}

// ImportFromFile imports the dump stored at path.
func (i *Importer) ImportFromFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return i.Import(ctx, f)
}
