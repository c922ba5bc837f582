package translator_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	translator "github.com/ashokgit/Ultimate-Translator-sub000"
	"github.com/ashokgit/Ultimate-Translator-sub000/approval"
	"github.com/ashokgit/Ultimate-Translator-sub000/cache"
	"github.com/ashokgit/Ultimate-Translator-sub000/classify"
	"github.com/ashokgit/Ultimate-Translator-sub000/document"
	"github.com/ashokgit/Ultimate-Translator-sub000/numeral"
	"github.com/ashokgit/Ultimate-Translator-sub000/provider"
)

// Integration tests using all real components

func field(t *testing.T, doc *document.Node, path string) string {
	t.Helper()
	n, err := document.Lookup(doc, path)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", path, err)
	}
	s, ok := n.Str()
	if !ok {
		t.Fatalf("%s is %s, not a string", path, n.Kind())
	}
	return s
}

func encode(t *testing.T, doc *document.Node) string {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return string(data)
}

func TestIntegration_BasicTranslation(t *testing.T) {
	p := provider.NewMockProvider()
	tr := translator.NewTranslator(p, translator.WithCache(cache.NewInMemoryCache()), translator.WithSlugs(false))

	doc := document.MustParse(`{"title":"Hello","api_key":"abc123","count":3}`)
	res, err := tr.TranslateDocument(context.Background(), doc, "es", "acme")
	if err != nil {
		t.Fatalf("TranslateDocument failed: %v", err)
	}

	if got := field(t, res.Document, "title"); got != "Hola" {
		t.Errorf("title = %q, want Hola", got)
	}
	if got := field(t, res.Document, "api_key"); got != "abc123" {
		t.Errorf("api_key = %q, want it untouched", got)
	}
	want := translator.Stats{Translated: 1, Skipped: 2}
	if res.Stats != want {
		t.Errorf("Stats = %+v, want %+v", res.Stats, want)
	}
	if got := field(t, doc, "title"); got != "Hello" {
		t.Errorf("input document was modified: title = %q", got)
	}
	if res.Direction != "ltr" {
		t.Errorf("Direction = %q", res.Direction)
	}
}

func TestIntegration_ValuePatternSkipped(t *testing.T) {
	p := provider.NewMockProvider()
	tr := translator.NewTranslator(p, translator.WithSlugs(false))

	doc := document.MustParse(`{"description":"¥15,000-30,000"}`)
	res, err := tr.TranslateDocument(context.Background(), doc, "ja", "acme")
	if err != nil {
		t.Fatalf("TranslateDocument failed: %v", err)
	}
	if res.Stats.Skipped != 1 || res.Stats.Translated != 0 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if got := field(t, res.Document, "description"); got != "¥15,000-30,000" {
		t.Errorf("description = %q", got)
	}
	if p.CallCount() != 0 {
		t.Errorf("provider called %d times", p.CallCount())
	}
}

func TestIntegration_CacheHit(t *testing.T) {
	ctx := context.Background()
	p := provider.NewMockProvider()
	c := cache.NewInMemoryCache()
	tr := translator.NewTranslator(p, translator.WithCache(c))

	first, err := tr.Translate(ctx, "Hello World", "es")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	second, err := tr.Translate(ctx, "Hello World", "es")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if first != "Hola Mundo" || second != "Hola Mundo" {
		t.Errorf("got %q and %q", first, second)
	}
	if p.CallCount() != 1 {
		t.Errorf("provider called %d times, want 1", p.CallCount())
	}

	doc := document.MustParse(`{"greeting":"Hello World"}`)
	res, err := tr.TranslateDocument(ctx, doc, "es", "")
	if err != nil {
		t.Fatalf("TranslateDocument failed: %v", err)
	}
	if res.Stats.Cached != 1 || res.Stats.Translated != 0 {
		t.Errorf("Stats = %+v, want one cached field", res.Stats)
	}
	if p.CallCount() != 1 {
		t.Errorf("provider called %d times, want 1", p.CallCount())
	}
}

func TestIntegration_PlaceholdersSurvive(t *testing.T) {
	p := provider.NewMockProvider()
	p.Func = func(ctx context.Context, req translator.TranslateRequest) (string, error) {
		if req.PreserveTokens && req.Text == "Hello TOKEN_0, you have TOKEN_1 messages." {
			return "Hola TOKEN_0, tienes TOKEN_1 mensajes.", nil
		}
		return "", errors.New("unexpected request: " + req.Text)
	}
	tr := translator.NewTranslator(p, translator.WithSlugs(false))

	doc := document.MustParse(`{"message":"Hello {{name}}, you have %d messages."}`)
	res, err := tr.TranslateDocument(context.Background(), doc, "es", "")
	if err != nil {
		t.Fatalf("TranslateDocument failed: %v", err)
	}
	if got := field(t, res.Document, "message"); got != "Hola {{name}}, tienes %d mensajes." {
		t.Errorf("message = %q", got)
	}
	if res.Stats.Translated != 1 || res.Stats.Errors != 0 {
		t.Errorf("Stats = %+v", res.Stats)
	}
}

func TestIntegration_TokenMismatchFallsBack(t *testing.T) {
	p := provider.NewMockProvider()
	p.Func = func(ctx context.Context, req translator.TranslateRequest) (string, error) {
		if req.PreserveTokens {
			return "Hola, tienes mensajes.", nil
		}
		return "Hola {{name}}, tienes %d mensajes.", nil
	}
	tr := translator.NewTranslator(p, translator.WithSlugs(false))

	doc := document.MustParse(`{"message":"Hello {{name}}, you have %d messages."}`)
	res, err := tr.TranslateDocument(context.Background(), doc, "es", "")
	if err != nil {
		t.Fatalf("TranslateDocument failed: %v", err)
	}
	if got := field(t, res.Document, "message"); got != "Hola {{name}}, tienes %d mensajes." {
		t.Errorf("message = %q", got)
	}
	if p.CallCount() != 2 {
		t.Errorf("provider called %d times, want 2", p.CallCount())
	}
	reqs := p.Requests()
	if reqs[1].PreserveTokens || reqs[1].Text != "Hello {{name}}, you have %d messages." {
		t.Errorf("fallback request = %+v", reqs[1])
	}
}

func TestIntegration_ProviderErrorKeepsOriginal(t *testing.T) {
	p := provider.NewMockProvider()
	p.Err = translator.NewProviderError("mock", translator.KindUnavailable, "down", nil)
	tr := translator.NewTranslator(p, translator.WithSlugs(false))

	doc := document.MustParse(`{"title":"Hello","body":"World","id":"x-1"}`)
	res, err := tr.TranslateDocument(context.Background(), doc, "es", "")
	if err != nil {
		t.Fatalf("a field failure must not fail the document: %v", err)
	}
	if res.Stats.Errors != 2 || res.Stats.Skipped != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if got := field(t, res.Document, "title"); got != "Hello" {
		t.Errorf("title = %q, want original", got)
	}
}

func TestIntegration_CallTimeout(t *testing.T) {
	p := provider.NewMockProvider()
	p.Func = func(ctx context.Context, req translator.TranslateRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	tr := translator.NewTranslator(p, translator.WithSlugs(false), translator.WithCallTimeout(20*time.Millisecond))

	doc := document.MustParse(`{"title":"Hello"}`)
	res, err := tr.TranslateDocument(context.Background(), doc, "es", "")
	if err != nil {
		t.Fatalf("TranslateDocument failed: %v", err)
	}
	if res.Stats.Errors != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if got := field(t, res.Document, "title"); got != "Hello" {
		t.Errorf("title = %q", got)
	}
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (brokenCache) Set(context.Context, string, string, string) error {
	return errors.New("connection refused")
}

func TestIntegration_CacheErrorAborts(t *testing.T) {
	p := provider.NewMockProvider()
	tr := translator.NewTranslator(p, translator.WithCache(brokenCache{}))

	doc := document.MustParse(`{"title":"Hello"}`)
	_, err := tr.TranslateDocument(context.Background(), doc, "es", "")

	var ce *translator.CacheError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CacheError, got %v", err)
	}
}

func TestIntegration_SourceEqualsTarget(t *testing.T) {
	p := provider.NewMockProvider()
	tr := translator.NewTranslator(p, translator.WithSourceLang("en_US"))

	doc := document.MustParse(`{"title":"Hello","tags":["a","b"],"n":1}`)
	res, err := tr.TranslateDocument(context.Background(), doc, "en", "")
	if err != nil {
		t.Fatalf("TranslateDocument failed: %v", err)
	}
	if encode(t, res.Document) != encode(t, doc) {
		t.Errorf("document changed: %s", encode(t, res.Document))
	}
	if res.Stats.Skipped != 4 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if p.CallCount() != 0 {
		t.Errorf("provider called %d times", p.CallCount())
	}
}

func TestIntegration_SlugForLeafEntity(t *testing.T) {
	p := provider.NewMockProvider()
	tr := translator.NewTranslator(p)

	doc := document.MustParse(`{"places":[{"name":"Fushimi Inari Shrine","type":"Religious Site","description":"Famous shrine"}]}`)
	res, err := tr.TranslateDocument(context.Background(), doc, "es", "")
	if err != nil {
		t.Fatalf("TranslateDocument failed: %v", err)
	}

	if got := field(t, res.Document, "places[0].url"); got != "fushimi-inari-shrine" {
		t.Errorf("url = %q", got)
	}
	old, err := document.Lookup(res.Document, "places[0].old_urls")
	if err != nil || old.Kind() != document.Array || old.Len() != 0 {
		t.Errorf("old_urls = %v (%v), want []", old, err)
	}
	if !strings.Contains(encode(t, res.Document), `"old_urls":[]`) {
		t.Errorf("encoded output lacks empty old_urls: %s", encode(t, res.Document))
	}
	// The container holding the entity gets no slug of its own.
	if _, ok := res.Document.Get("url"); ok {
		t.Error("root object should not get a url")
	}
}

func TestIntegration_RetranslateKeepsURLHistory(t *testing.T) {
	ctx := context.Background()
	p := provider.NewMockProvider()
	tr := translator.NewTranslator(p)

	first, err := tr.TranslateDocument(ctx, document.MustParse(`{"name":"Fushimi Inari Shrine","type":"Religious Site"}`), "es", "")
	if err != nil {
		t.Fatalf("TranslateDocument failed: %v", err)
	}

	edited := document.MustParse(`{"name":"Fushimi Shrine","type":"Religious Site"}`)
	second, err := tr.Retranslate(ctx, first.Document, edited, "es", "")
	if err != nil {
		t.Fatalf("Retranslate failed: %v", err)
	}
	if got := field(t, second.Document, "url"); got != "fushimi-shrine" {
		t.Errorf("url = %q", got)
	}
	if got := encode(t, mustLookup(t, second.Document, "old_urls")); got != `["fushimi-inari-shrine"]` {
		t.Errorf("old_urls = %s", got)
	}

	third, err := tr.Retranslate(ctx, second.Document, edited, "es", "")
	if err != nil {
		t.Fatalf("Retranslate failed: %v", err)
	}
	if got := encode(t, mustLookup(t, third.Document, "old_urls")); got != `["fushimi-inari-shrine"]` {
		t.Errorf("old_urls after unchanged rerun = %s", got)
	}
}

func mustLookup(t *testing.T, doc *document.Node, path string) *document.Node {
	t.Helper()
	n, err := document.Lookup(doc, path)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", path, err)
	}
	return n
}

func TestIntegration_NativeNumerals(t *testing.T) {
	p := provider.NewMockProvider()
	p.Translations["Room 123, Floor 5"] = "कमरा 123, मंज़िल 5"
	tr := translator.NewTranslator(p, translator.WithSlugs(false), translator.WithNumerals(numeral.NewConverter()))

	doc := document.MustParse(`{"label":"Room 123, Floor 5"}`)
	res, err := tr.TranslateDocument(context.Background(), doc, "hi", "")
	if err != nil {
		t.Fatalf("TranslateDocument failed: %v", err)
	}
	if got := field(t, res.Document, "label"); got != "कमरा १२३, मंज़िल ५" {
		t.Errorf("label = %q", got)
	}
	if res.Direction != "ltr" {
		t.Errorf("Direction = %q", res.Direction)
	}
}

func TestIntegration_RTLLanguage(t *testing.T) {
	tr := translator.NewTranslator(provider.NewMockProvider())
	res, err := tr.TranslateDocument(context.Background(), document.MustParse(`{"title":"Hello"}`), "ar", "")
	if err != nil {
		t.Fatalf("TranslateDocument failed: %v", err)
	}
	if res.Direction != "rtl" {
		t.Errorf("Direction = %q, want rtl", res.Direction)
	}
}

func TestIntegration_LearnedPatternsSkipFields(t *testing.T) {
	ctx := context.Background()
	p := provider.NewMockProvider()
	d := classify.NewDetector()
	tr := translator.NewTranslator(p, translator.WithDetector(d), translator.WithSlugs(false))

	doc := document.MustParse(`{"title":"Hello","productCode":"Summer collection"}`)
	for i := 0; i < classify.DefaultMinFrequency-1; i++ {
		res, err := tr.TranslateDocument(ctx, doc, "es", "acme")
		if err != nil {
			t.Fatalf("TranslateDocument failed: %v", err)
		}
		if got := field(t, res.Document, "productCode"); got == "Summer collection" {
			t.Fatalf("run %d: productCode should still be translated", i)
		}
	}

	res, err := tr.TranslateDocument(ctx, doc, "es", "acme")
	if err != nil {
		t.Fatalf("TranslateDocument failed: %v", err)
	}
	if got := field(t, res.Document, "productCode"); got != "Summer collection" {
		t.Errorf("productCode = %q, want it kept once learned", got)
	}

	other, err := tr.TranslateDocument(ctx, doc, "es", "globex")
	if err != nil {
		t.Fatalf("TranslateDocument failed: %v", err)
	}
	if got := field(t, other.Document, "productCode"); got == "Summer collection" {
		t.Error("learning must not leak into other tenants")
	}
}

func TestIntegration_LearnedKeySkipsPlaceholderValues(t *testing.T) {
	ctx := context.Background()
	d := classify.NewDetector()
	st := classify.NewState(0, 0)
	st.LearnedPatterns["promo_key_text"] = true
	if err := d.Import(ctx, "acme", st); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	tr := translator.NewTranslator(provider.NewMockProvider(), translator.WithDetector(d), translator.WithSlugs(false))

	doc := document.MustParse(`{"promo_key_text":"Hello {name}","title":"Hello there"}`)
	res, err := tr.TranslateDocument(ctx, doc, "es", "acme")
	if err != nil {
		t.Fatalf("TranslateDocument failed: %v", err)
	}
	if got := field(t, res.Document, "promo_key_text"); got != "Hello {name}" {
		t.Errorf("promo_key_text = %q, want it untouched", got)
	}
	if want := (translator.Stats{Translated: 1, Skipped: 1}); res.Stats != want {
		t.Errorf("Stats = %+v, want %+v", res.Stats, want)
	}
}

func TestIntegration_TranslateFrom(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "page.json"), []byte(`{"title":"Hello"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	tr := translator.NewTranslator(provider.NewMockProvider(), translator.WithSlugs(false))
	src := document.FileSource{Root: dir}

	res, err := tr.TranslateFrom(context.Background(), src, "page.json", "es", "")
	if err != nil {
		t.Fatalf("TranslateFrom failed: %v", err)
	}
	if got := field(t, res.Document, "title"); got != "Hola" {
		t.Errorf("title = %q", got)
	}

	_, err = tr.TranslateFrom(context.Background(), src, "missing.json", "es", "")
	var ue *document.UnreachableError
	if !errors.As(err, &ue) {
		t.Errorf("expected UnreachableError, got %v", err)
	}
}

func TestIntegration_ApprovalReachesDuplicateContent(t *testing.T) {
	ctx := context.Background()
	tr := translator.NewTranslator(provider.NewMockProvider(), translator.WithSlugs(false))
	store := approval.NewMemoryStore()
	prop := approval.NewPropagator(store, store)

	sources := map[string]*document.Node{
		"doc-a": document.MustParse(`{"title":"Hello","body":"World"}`),
		"doc-b": document.MustParse(`{"title":"Hello"}`),
	}
	for id, src := range sources {
		res, err := tr.TranslateDocument(ctx, src, "es", "")
		if err != nil {
			t.Fatalf("TranslateDocument(%s) failed: %v", id, err)
		}
		if _, err := prop.IndexDocument(ctx, id, src, res.Document, "en", "es"); err != nil {
			t.Fatalf("IndexDocument(%s) failed: %v", id, err)
		}
	}

	_, err := prop.RecordApproval(ctx, approval.Request{
		OriginalText:   "Hello",
		TranslatedText: "Hola",
		SourceLang:     "en",
		TargetLang:     "es",
		FieldPath:      "title",
		DocumentID:     "doc-a",
		Status:         approval.StatusApproved,
		Reviewer:       "maria",
	})
	if err != nil {
		t.Fatalf("RecordApproval failed: %v", err)
	}

	fas, err := store.FieldApprovals(ctx, "doc-b", "es")
	if err != nil {
		t.Fatalf("FieldApprovals failed: %v", err)
	}
	if fas["title"].Status != approval.StatusApproved || fas["title"].ReviewedBy != "maria" {
		t.Errorf("doc-b title approval = %+v", fas["title"])
	}
}

func TestIntegration_RetryableProvider(t *testing.T) {
	calls := 0
	p := provider.NewMockProvider()
	p.Func = func(ctx context.Context, req translator.TranslateRequest) (string, error) {
		calls++
		if calls < 3 {
			return "", translator.NewProviderError("mock", translator.KindRateLimited, "slow down", nil)
		}
		return "Hola", nil
	}

	retryable := translator.NewRetryableProvider(p, translator.RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	})
	tr := translator.NewTranslator(retryable, translator.WithSlugs(false))

	res, err := tr.TranslateDocument(context.Background(), document.MustParse(`{"title":"Hello"}`), "es", "")
	if err != nil {
		t.Fatalf("TranslateDocument failed: %v", err)
	}
	if got := field(t, res.Document, "title"); got != "Hola" {
		t.Errorf("title = %q", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}
