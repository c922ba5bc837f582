package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	translator "github.com/ashokgit/Ultimate-Translator-sub000"
)

func TestDeepLProvider_Translate(t *testing.T) {
	var got deepLRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/translate" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"translations":[{"detected_source_language":"EN","text":"Hola mundo"}]}`))
	}))
	defer srv.Close()

	p := NewDeepLProvider(DeepLConfig{APIKey: "secret", BaseURL: srv.URL})
	out, err := p.Translate(context.Background(), TranslateRequest{Text: "Hello world", SourceLang: "en_US", TargetLang: "es"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if out != "Hola mundo" {
		t.Errorf("Translate() = %q", out)
	}
	if auth != "DeepL-Auth-Key secret" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.TargetLang != "ES" || got.SourceLang != "EN" || len(got.Text) != 1 {
		t.Errorf("unexpected request: %+v", got)
	}
}

func TestDeepLProvider_ErrorKinds(t *testing.T) {
	tests := []struct {
		status int
		kind   translator.ProviderErrorKind
	}{
		{http.StatusForbidden, translator.KindInvalidCredential},
		{http.StatusTooManyRequests, translator.KindRateLimited},
		{456, translator.KindRateLimited},
		{http.StatusInternalServerError, translator.KindUnavailable},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"message":"nope"}`))
		}))

		p := NewDeepLProvider(DeepLConfig{APIKey: "k", BaseURL: srv.URL})
		_, err := p.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "de"})
		srv.Close()

		var pe *translator.ProviderError
		if !errors.As(err, &pe) {
			t.Fatalf("status %d: expected ProviderError, got %v", tt.status, err)
		}
		if pe.Kind != tt.kind {
			t.Errorf("status %d: kind = %s, want %s", tt.status, pe.Kind, tt.kind)
		}
	}
}

func TestDeepLLang(t *testing.T) {
	tests := []struct {
		lang   string
		target bool
		want   string
	}{
		{"es", true, "ES"},
		{"en", true, "EN-US"},
		{"en_GB", true, "EN-GB"},
		{"pt", true, "PT-BR"},
		{"pt-PT", true, "PT-PT"},
		{"en_US", false, "EN"},
		{"", false, ""},
	}
	for _, tt := range tests {
		if got := deepLLang(tt.lang, tt.target); got != tt.want {
			t.Errorf("deepLLang(%q, %v) = %q, want %q", tt.lang, tt.target, got, tt.want)
		}
	}
}

func TestNewDeepLProvider_FreeKey(t *testing.T) {
	p := NewDeepLProvider(DeepLConfig{APIKey: "abc:fx"})
	if p.http.BaseURL != deepLFreeURL {
		t.Errorf("BaseURL = %q, want %q", p.http.BaseURL, deepLFreeURL)
	}
}

func TestDeepLProvider_RetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewDeepLProvider(DeepLConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := p.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "de"})

	var pe *translator.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", pe.RetryAfter)
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"30", 30 * time.Second},
		{" 2 ", 2 * time.Second},
		{"-5", 0},
		{"Sun, 01 Mar 2026 12:00:45 GMT", 45 * time.Second},
		{"Sun, 01 Mar 2026 11:00:00 GMT", 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := retryAfter(tt.header, now); got != tt.want {
			t.Errorf("retryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
