package translator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashokgit/Ultimate-Translator-sub000/classify"
	"github.com/ashokgit/Ultimate-Translator-sub000/document"
	"github.com/ashokgit/Ultimate-Translator-sub000/numeral"
)

// DefaultCallTimeout bounds a single provider call.
const DefaultCallTimeout = 30 * time.Second

// Translator is the document translation engine. It is safe for concurrent
// use; concurrent documents share one concurrency limit.
type Translator struct {
	provider    Provider
	name        string
	sourceLang  string
	cache       TranslationCache
	classifier  *classify.Classifier
	detector    *classify.Detector
	numerals    *numeral.Converter
	concurrency int
	callTimeout time.Duration
	slugs       bool
	logger      *slog.Logger

	pool *pool
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithSourceLang sets the source language (default "en").
func WithSourceLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.sourceLang = lang
	}
}

// WithCache sets the translation cache. Without one every field is sent to
// the provider.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithClassifier sets the field classifier (default: classify.NewClassifier
// over the built-in rules).
func WithClassifier(c *classify.Classifier) TranslatorOption {
	return func(t *Translator) {
		t.classifier = c
	}
}

// WithDetector makes the translator show every document to d before
// translating it. When no classifier is given, the default classifier
// consults d.
func WithDetector(d *classify.Detector) TranslatorOption {
	return func(t *Translator) {
		t.detector = d
	}
}

// WithNumerals converts digits in translated text with c.
func WithNumerals(c *numeral.Converter) TranslatorOption {
	return func(t *Translator) {
		t.numerals = c
	}
}

// WithConcurrency bounds the number of provider calls in flight.
func WithConcurrency(n int) TranslatorOption {
	return func(t *Translator) {
		t.concurrency = n
	}
}

// WithCallTimeout bounds each provider call. A call that runs out of time
// counts as a field error.
func WithCallTimeout(d time.Duration) TranslatorOption {
	return func(t *Translator) {
		t.callTimeout = d
	}
}

// WithSlugs turns url slug generation on or off (default on).
func WithSlugs(enabled bool) TranslatorOption {
	return func(t *Translator) {
		t.slugs = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		t.logger = l
	}
}

// NewTranslator creates a Translator calling provider.
func NewTranslator(provider Provider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		provider:    provider,
		sourceLang:  "en",
		concurrency: DefaultConcurrency,
		callTimeout: DefaultCallTimeout,
		slugs:       true,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.classifier == nil {
		copts := []classify.Option{classify.WithLogger(t.logger)}
		if t.detector != nil {
			copts = append(copts, classify.WithDetector(t.detector))
		}
		t.classifier = classify.NewClassifier(nil, copts...)
	} else if t.detector == nil {
		t.detector = t.classifier.Detector()
	}
	if t.concurrency <= 0 {
		t.concurrency = DefaultConcurrency
	}
	t.name = ProviderName(provider)
	t.pool = newPool(t.concurrency)
	return t
}

// SourceLang returns the source language.
func (t *Translator) SourceLang() string {
	return t.sourceLang
}

// Classifier returns the classifier in use.
func (t *Translator) Classifier() *classify.Classifier {
	return t.classifier
}

// IsSourceLang reports whether lang is the source language, in which case
// documents are passed through untranslated.
func (t *Translator) IsSourceLang(lang string) bool {
	return SameLanguage(lang, t.sourceLang)
}

// TranslateDocument translates doc into targetLang using tenant's rules.
// doc is not modified. Field failures are counted in Stats.Errors and leave
// the original value in place; only a *CacheError or a nil document fail
// the whole call.
func (t *Translator) TranslateDocument(ctx context.Context, doc *document.Node, targetLang, tenant string) (*Result, error) {
	if doc == nil {
		return nil, &TranslationError{Message: "nil document"}
	}
	if targetLang == "" {
		return nil, &TranslationError{Message: "target language is required"}
	}

	out := doc.Clone()
	res := &Result{Document: out, TargetLang: targetLang, Direction: GetDirection(targetLang)}

	if t.IsSourceLang(targetLang) {
		res.Stats.Skipped = countPrimitives(out)
		return res, nil
	}

	if t.detector != nil {
		if err := t.detector.Observe(ctx, doc, tenant); err != nil {
			t.logger.Warn("auto-detection failed", "tenant", tenant, "error", err)
		}
	}

	s := &session{t: t, lang: targetLang, tenant: tenant}
	start := time.Now()

	var err error
	if out.IsContainer() {
		err = s.walk(ctx, out, "", "")
	} else {
		err = s.translateLeaves(ctx, []leaf{{value: out, set: func(v *document.Node) { res.Document = v }}})
	}
	if err != nil {
		return nil, err
	}

	res.Stats = s.snapshot()
	t.logger.Info("document translated",
		"lang", targetLang,
		"tenant", tenant,
		"translated", res.Stats.Translated,
		"cached", res.Stats.Cached,
		"skipped", res.Stats.Skipped,
		"errors", res.Stats.Errors,
		"duration", time.Since(start),
	)
	return res, nil
}

// TranslateAll translates doc into each language in turn. On error the
// results produced so far are returned with it.
func (t *Translator) TranslateAll(ctx context.Context, doc *document.Node, langs []string, tenant string) ([]*Result, error) {
	results := make([]*Result, 0, len(langs))
	for _, lang := range langs {
		res, err := t.TranslateDocument(ctx, doc, lang, tenant)
		if err != nil {
			return results, fmt.Errorf("translating to %s: %w", lang, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// TranslateFrom fetches the document at locator from src and translates
// it. Fetch errors are returned unchanged.
func (t *Translator) TranslateFrom(ctx context.Context, src document.Source, locator, targetLang, tenant string) (*Result, error) {
	doc, err := src.Fetch(ctx, locator)
	if err != nil {
		return nil, err
	}
	return t.TranslateDocument(ctx, doc, targetLang, tenant)
}

// Retranslate translates doc again, carrying url and old_urls over from a
// previous output so that changed slugs keep their history.
func (t *Translator) Retranslate(ctx context.Context, previous, doc *document.Node, targetLang, tenant string) (*Result, error) {
	if doc == nil {
		return nil, &TranslationError{Message: "nil document"}
	}
	merged := doc.Clone()
	if previous != nil {
		carryURLs(previous, merged)
	}
	return t.TranslateDocument(ctx, merged, targetLang, tenant)
}

// carryURLs copies url and old_urls from prev into next wherever both trees
// have an object at the same path.
func carryURLs(prev, next *document.Node) {
	switch next.Kind() {
	case document.Object:
		if prev.Kind() != document.Object {
			return
		}
		for _, k := range []string{urlKey, oldURLsKey} {
			if v, ok := prev.Get(k); ok {
				next.Set(k, v.Clone())
			}
		}
		for _, k := range next.Keys() {
			child, _ := next.Get(k)
			if p, ok := prev.Get(k); ok && child.IsContainer() {
				carryURLs(p, child)
			}
		}
	case document.Array:
		if prev.Kind() != document.Array {
			return
		}
		for i, child := range next.Items() {
			if p, ok := prev.Index(i); ok && child.IsContainer() {
				carryURLs(p, child)
			}
		}
	}
}

// Translate translates a single text through the cache, placeholder
// protection and numeral conversion, as a document field would be.
func (t *Translator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if t.IsSourceLang(targetLang) {
		return text, nil
	}
	s := &session{t: t, lang: targetLang}
	preserve := t.classifier.ShouldPreserveFormatting("", document.NewString(text), "")
	return s.translateText(ctx, text, "", preserve)
}

func countPrimitives(n *document.Node) int {
	switch n.Kind() {
	case document.Object:
		total := 0
		for _, k := range n.Keys() {
			v, _ := n.Get(k)
			total += countPrimitives(v)
		}
		return total
	case document.Array:
		total := 0
		for _, v := range n.Items() {
			total += countPrimitives(v)
		}
		return total
	}
	return 1
}
