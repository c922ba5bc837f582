package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	translator "github.com/ashokgit/Ultimate-Translator-sub000"
	"github.com/ashokgit/Ultimate-Translator-sub000/document"
)

// Request is a single review decision.
type Request struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
	FieldPath      string `json:"field_path"`
	DocumentID     string `json:"document_id"`
	Status         Status `json:"status"`
	Reviewer       string `json:"reviewer"`
}

func (r Request) validate() error {
	if _, err := ParseStatus(string(r.Status)); err != nil {
		return err
	}
	if r.DocumentID == "" {
		return errors.New("document id is required")
	}
	if r.FieldPath == "" {
		return errors.New("field path is required")
	}
	if r.TargetLang == "" {
		return errors.New("target language is required")
	}
	return nil
}

// PropagationError lists the documents that could not be stamped. Updates
// applied to the other documents are kept.
type PropagationError struct {
	ContentHash string
	Failures    map[string]error // by document id
}

func (e *PropagationError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for id := range e.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("propagate %s: %d document(s) failed: %s", e.ContentHash, len(ids), strings.Join(ids, ", "))
}

func (e *PropagationError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, err := range e.Failures {
		out = append(out, err)
	}
	return out
}

// BulkResult is the outcome of one item of RecordApprovals.
type BulkResult struct {
	Index  int
	Record *Record
	Err    error
}

// Propagator applies review decisions across documents.
type Propagator struct {
	records RecordStore
	docs    DocumentStore
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Propagator.
type Option func(*Propagator)

// WithClock overrides the time source used for ReviewedAt.
func WithClock(now func() time.Time) Option {
	return func(p *Propagator) { p.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Propagator) { p.logger = l }
}

// NewPropagator creates a Propagator over the given stores.
func NewPropagator(records RecordStore, docs DocumentStore, opts ...Option) *Propagator {
	p := &Propagator{
		records: records,
		docs:    docs,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RecordApproval stores the decision for the request's translation pair and
// stamps it onto FieldPath of every document that shares the pair.
//
// The returned record is valid even when a *PropagationError is returned.
func (p *Propagator) RecordApproval(ctx context.Context, req Request) (*Record, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if _, err := p.docs.FieldApprovals(ctx, req.DocumentID, req.TargetLang); err != nil {
		return nil, err
	}

	hash := translator.ContentHash(req.OriginalText, req.TranslatedText, req.SourceLang, req.TargetLang)

	rec, err := p.records.GetRecord(ctx, hash)
	switch {
	case translator.IsNotFound(err):
		rec = &Record{
			ContentHash:    hash,
			OriginalText:   req.OriginalText,
			TranslatedText: req.TranslatedText,
			SourceLang:     req.SourceLang,
			TargetLang:     req.TargetLang,
		}
	case err != nil:
		return nil, err
	}

	rec.Status = req.Status
	rec.ReviewedBy = req.Reviewer
	rec.ReviewedAt = p.now().UTC()
	rec.AddRef(req.DocumentID)

	if err := p.records.SaveRecord(ctx, rec); err != nil {
		return nil, err
	}
	// Re-read to pick up refs added concurrently.
	if stored, err := p.records.GetRecord(ctx, hash); err == nil {
		rec = stored
	}

	stamp := FieldApproval{Status: rec.Status, ReviewedAt: rec.ReviewedAt, ReviewedBy: rec.ReviewedBy}
	failures := map[string]error{}
	for _, docID := range rec.DocumentRefs {
		if err := p.docs.SetFieldApproval(ctx, docID, req.TargetLang, req.FieldPath, stamp); err != nil {
			failures[docID] = err
			p.logger.Warn("approval propagation failed",
				"content_hash", hash, "document", docID, "field", req.FieldPath, "error", err)
		}
	}

	p.logger.Debug("approval recorded",
		"content_hash", hash, "status", rec.Status, "documents", len(rec.DocumentRefs), "failed", len(failures))

	if len(failures) > 0 {
		return rec, &PropagationError{ContentHash: hash, Failures: failures}
	}
	return rec, nil
}

// RecordApprovals applies reqs one after another. A failing item does not
// stop the rest.
func (p *Propagator) RecordApprovals(ctx context.Context, reqs []Request) []BulkResult {
	results := make([]BulkResult, len(reqs))
	for i, req := range reqs {
		rec, err := p.RecordApproval(ctx, req)
		results[i] = BulkResult{Index: i, Record: rec, Err: err}
	}
	return results
}

// Status returns the record stored under hash.
func (p *Propagator) Status(ctx context.Context, hash string) (*Record, error) {
	return p.records.GetRecord(ctx, hash)
}

// derivedKeys are produced by the translator, not translated from source.
var derivedKeys = map[string]bool{"url": true, "old_urls": true}

type pair struct {
	path       string
	original   string
	translated string
}

// IndexDocument registers docID under the content hash of every string the
// translation changed, creating pending records as needed, so that later
// reviews of the same pair reach this document. It returns the number of
// pairs indexed.
func (p *Propagator) IndexDocument(ctx context.Context, docID string, source, translated *document.Node, sourceLang, targetLang string) (int, error) {
	if err := p.docs.RegisterDocument(ctx, docID); err != nil {
		return 0, err
	}

	var pairs []pair
	collectPairs("", source, translated, &pairs)

	for _, pr := range pairs {
		hash := translator.ContentHash(pr.original, pr.translated, sourceLang, targetLang)
		_, err := p.records.GetRecord(ctx, hash)
		switch {
		case translator.IsNotFound(err):
			rec := &Record{
				ContentHash:    hash,
				OriginalText:   pr.original,
				TranslatedText: pr.translated,
				SourceLang:     sourceLang,
				TargetLang:     targetLang,
				Status:         StatusPending,
				DocumentRefs:   []string{docID},
			}
			err = p.records.SaveRecord(ctx, rec)
		case err == nil:
			err = p.records.AddDocumentRef(ctx, hash, docID)
		}
		if err != nil {
			return 0, fmt.Errorf("index %s at %s: %w", docID, pr.path, err)
		}
	}
	return len(pairs), nil
}

func collectPairs(path string, src, dst *document.Node, out *[]pair) {
	switch {
	case src.Kind() == document.Object && dst.Kind() == document.Object:
		for _, key := range dst.Keys() {
			if derivedKeys[key] {
				continue
			}
			s, ok := src.Get(key)
			if !ok {
				continue
			}
			d, _ := dst.Get(key)
			collectPairs(document.Key(path, key), s, d, out)
		}
	case src.Kind() == document.Array && dst.Kind() == document.Array:
		n := min(src.Len(), dst.Len())
		for i := 0; i < n; i++ {
			s, _ := src.Index(i)
			d, _ := dst.Index(i)
			collectPairs(document.Index(path, i), s, d, out)
		}
	default:
		o, ok1 := src.Str()
		t, ok2 := dst.Str()
		if ok1 && ok2 && o != t && strings.TrimSpace(o) != "" {
			*out = append(*out, pair{path: path, original: o, translated: t})
		}
	}
}
