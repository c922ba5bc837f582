package translator

import (
	"context"

	"github.com/ashokgit/Ultimate-Translator-sub000/cache"
	"github.com/ashokgit/Ultimate-Translator-sub000/document"
)

// Provider is the interface for translation backends.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// Named is implemented by providers that report a name for errors and logs.
type Named interface {
	Name() string
}

// ProviderName returns p's name, or "provider" if it has none.
func ProviderName(p Provider) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return "provider"
}

// TranslateRequest contains the parameters for a single translation call.
type TranslateRequest struct {
	Text       string
	SourceLang string
	TargetLang string

	// PreserveTokens tells the provider that Text contains TOKEN_n markers
	// which must come back verbatim.
	PreserveTokens bool

	// Context is an optional hint about where the text is used (the field
	// path, for instance).
	Context string
}

// TranslationCache is the interface for translation caching.
type TranslationCache = cache.TranslationCache

// Stats counts what happened to the fields of one document.
type Stats struct {
	Translated int `json:"translated"`
	Cached     int `json:"cached"`
	Skipped    int `json:"skipped"`
	Errors     int `json:"errors"`
}

// Total returns the number of primitive fields seen.
func (s Stats) Total() int {
	return s.Translated + s.Cached + s.Skipped + s.Errors
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Translated += o.Translated
	s.Cached += o.Cached
	s.Skipped += o.Skipped
	s.Errors += o.Errors
}

// Result is the output of translating one document into one language.
type Result struct {
	Document   *document.Node `json:"document"`
	Stats      Stats          `json:"stats"`
	TargetLang string         `json:"target_lang"`
	Direction  string         `json:"direction"`
}
