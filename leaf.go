package translator

import (
	"context"
	"errors"
	"sync"

	"github.com/ashokgit/Ultimate-Translator-sub000/document"
	"github.com/ashokgit/Ultimate-Translator-sub000/tokenize"
)

// session is one document translated into one language.
type session struct {
	t      *Translator
	lang   string
	tenant string

	mu    sync.Mutex
	stats Stats
}

func (s *session) count(f func(*Stats)) {
	s.mu.Lock()
	f(&s.stats)
	s.mu.Unlock()
}

func (s *session) snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// leaf is a primitive value and the way to write its translation back.
type leaf struct {
	key   string
	path  string
	value *document.Node
	set   func(*document.Node)
}

// walk translates a container in two phases: its primitive children
// concurrently, then its container children one by one. Objects that end up
// as leaf entities get a slug.
func (s *session) walk(ctx context.Context, n *document.Node, key, path string) error {
	var leaves []leaf
	var children []func() error

	switch n.Kind() {
	case document.Object:
		for _, k := range n.Keys() {
			v, _ := n.Get(k)
			p := document.Key(path, k)
			if v.IsContainer() {
				children = append(children, func() error { return s.walk(ctx, v, k, p) })
				continue
			}
			leaves = append(leaves, leaf{key: k, path: p, value: v, set: func(nv *document.Node) { n.Set(k, nv) }})
		}
	case document.Array:
		for i, v := range n.Items() {
			p := document.Index(path, i)
			if v.IsContainer() {
				children = append(children, func() error { return s.walk(ctx, v, key, p) })
				continue
			}
			// Array items are classified under the array's key.
			leaves = append(leaves, leaf{key: key, path: p, value: v, set: func(nv *document.Node) { n.SetIndex(i, nv) }})
		}
	}

	if err := s.translateLeaves(ctx, leaves); err != nil {
		return err
	}
	for _, child := range children {
		if err := child(); err != nil {
			return err
		}
	}

	if s.t.slugs && SlugEligible(n) {
		ApplySlug(n)
	}
	return nil
}

// translateLeaves classifies leaves and translates the translatable ones on
// the shared pool. Results are written back once every call has returned.
func (s *session) translateLeaves(ctx context.Context, leaves []leaf) error {
	type job struct {
		leaf
		text     string
		preserve bool
	}

	var jobs []job
	for _, l := range leaves {
		if !s.t.classifier.ShouldTranslate(l.key, l.value, s.tenant) {
			s.count(func(st *Stats) { st.Skipped++ })
			continue
		}
		text, _ := l.value.Str()
		preserve := s.t.classifier.ShouldPreserveFormatting(l.key, l.value, s.tenant)
		jobs = append(jobs, job{leaf: l, text: text, preserve: preserve})
	}

	results := make([]*string, len(jobs))
	err := s.t.pool.run(ctx, len(jobs), func(ctx context.Context, i int) error {
		j := jobs[i]
		out, err := s.translateText(ctx, j.text, j.path, j.preserve)
		if err != nil {
			var ce *CacheError
			if errors.As(err, &ce) {
				return err
			}
			s.count(func(st *Stats) { st.Errors++ })
			s.t.logger.Warn("field translation failed, keeping original",
				"path", j.path, "lang", s.lang, "tenant", s.tenant, "error", err)
			return nil
		}
		results[i] = &out
		return nil
	})
	if err != nil {
		return err
	}

	for i, j := range jobs {
		if results[i] != nil {
			j.set(document.NewString(*results[i]))
		}
	}
	return nil
}

// translateText is the read-through path for one string: cache, then
// provider (tokenized when placeholders need protecting), then numeral
// conversion, then cache write. Stats are counted here.
func (s *session) translateText(ctx context.Context, text, path string, preserve bool) (string, error) {
	t := s.t

	if t.cache != nil {
		cached, ok, err := t.cache.Get(ctx, text, s.lang)
		if err != nil {
			return "", &CacheError{Message: "get failed", Cause: err}
		}
		if ok {
			s.count(func(st *Stats) { st.Cached++ })
			return cached, nil
		}
	}

	var out string
	var err error
	if preserve || tokenize.Contains(text) {
		out, err = s.translateProtected(ctx, text, path)
	} else {
		out, err = s.call(ctx, text, path, false)
	}
	if err != nil {
		return "", err
	}

	if t.numerals != nil {
		out = t.numerals.Convert(ctx, out, s.lang)
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, text, s.lang, out); err != nil {
			return "", &CacheError{Message: "set failed", Cause: err}
		}
	}
	s.count(func(st *Stats) { st.Translated++ })
	return out, nil
}

// translateProtected sends text with its placeholders replaced by tokens and
// restores them in the answer. If the call fails or tokens come back
// damaged, the raw text is sent instead.
func (s *session) translateProtected(ctx context.Context, text, path string) (string, error) {
	res := tokenize.Tokenize(text)
	if len(res.Map) == 0 {
		return s.call(ctx, text, path, false)
	}

	translated, err := s.call(ctx, res.Text, path, true)
	if err == nil {
		if err = tokenize.Verify(res.Text, translated); err == nil {
			return tokenize.Detokenize(translated, res.Map), nil
		}
	}

	s.t.logger.Debug("tokenized translation failed, sending raw text",
		"path", path, "lang", s.lang, "error", err)
	return s.call(ctx, text, path, false)
}

// call invokes the provider under the per-call timeout and normalises its
// error to a *ProviderError.
func (s *session) call(ctx context.Context, text, path string, tokens bool) (string, error) {
	t := s.t
	if t.provider == nil {
		return "", NewProviderError("none", KindUnavailable, "no provider configured", nil)
	}

	cctx := ctx
	if t.callTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, t.callTimeout)
		defer cancel()
	}

	out, err := t.provider.Translate(cctx, TranslateRequest{
		Text:           text,
		SourceLang:     t.sourceLang,
		TargetLang:     s.lang,
		PreserveTokens: tokens,
		Context:        path,
	})
	if err != nil {
		if errors.Is(cctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", NewProviderError(t.name, KindTimeout, "call timed out", err)
		}
		return "", AsProviderError(t.name, err)
	}
	return out, nil
}
