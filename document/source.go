package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Source fetches a document given a locator (file path, URL, ...).
type Source interface {
	Fetch(ctx context.Context, locator string) (*Node, error)
}

// UnreachableError reports that a document could not be fetched. It is
// passed through to the caller unchanged.
type UnreachableError struct {
	Locator string
	Cause   error
}

func (e *UnreachableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("document %q unreachable: %v", e.Locator, e.Cause)
	}
	return fmt.Sprintf("document %q unreachable", e.Locator)
}

func (e *UnreachableError) Unwrap() error {
	return e.Cause
}

// FileSource reads documents from the local filesystem. Relative locators
// are resolved against Root.
type FileSource struct {
	Root string
}

// Fetch implements Source.
func (s FileSource) Fetch(ctx context.Context, locator string) (*Node, error) {
	path := locator
	if s.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(s.Root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &UnreachableError{Locator: locator, Cause: err}
	}
	n, err := Parse(data)
	if err != nil {
		return nil, &UnreachableError{Locator: locator, Cause: err}
	}
	return n, nil
}

// HTTPSource fetches documents over HTTP(S).
type HTTPSource struct {
	http    *resty.Client
	headers map[string]string
}

// NewHTTPSource returns an HTTPSource resolving relative locators against
// baseURL. A zero timeout means 30 seconds.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := resty.New().SetTimeout(timeout)
	if baseURL != "" {
		c.SetBaseURL(strings.TrimRight(baseURL, "/"))
	}
	return &HTTPSource{http: c, headers: map[string]string{}}
}

// SetHeader adds a header sent with every fetch (e.g. Authorization).
func (s *HTTPSource) SetHeader(key, value string) *HTTPSource {
	s.headers[key] = value
	return s
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, locator string) (*Node, error) {
	url := locator
	if !strings.HasPrefix(locator, "http://") && !strings.HasPrefix(locator, "https://") {
		url = "/" + strings.TrimLeft(locator, "/")
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeaders(s.headers).
		Get(url)
	if err != nil {
		return nil, &UnreachableError{Locator: locator, Cause: err}
	}
	if resp.IsError() {
		return nil, &UnreachableError{Locator: locator, Cause: fmt.Errorf("fetch: %s", resp.Status())}
	}

	n, err := Parse(resp.Body())
	if err != nil {
		return nil, &UnreachableError{Locator: locator, Cause: err}
	}
	return n, nil
}
