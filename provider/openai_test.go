package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	translator "github.com/ashokgit/Ultimate-Translator-sub000"
)

func TestBuildSystemPrompt(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	prompt := p.buildSystemPrompt(TranslateRequest{
		TargetLang: "pt_BR",
		SourceLang: "en",
		Context:    "places[0].name",
	})

	if !strings.Contains(prompt, "Portuguese") {
		t.Error("Prompt should contain target language name")
	}
	if !strings.Contains(prompt, "Brazilian") {
		t.Error("Prompt should contain locale hint for pt_BR")
	}
	if !strings.Contains(prompt, "places[0].name") {
		t.Error("Prompt should contain the field path")
	}
	if strings.Contains(prompt, "TOKEN_0") {
		t.Error("Prompt should not mention tokens unless asked to")
	}
}

func TestBuildSystemPrompt_PreserveTokens(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	prompt := p.buildSystemPrompt(TranslateRequest{TargetLang: "es", PreserveTokens: true})
	if !strings.Contains(prompt, "TOKEN_0") {
		t.Error("Prompt should explain token markers")
	}
}

func TestBuildUserMessage(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	msg := p.buildUserMessage(TranslateRequest{Text: `Say "hi"`})
	if msg != `{"text":"Say \"hi\""}` {
		t.Errorf("Unexpected message: %s", msg)
	}
}

func TestParseResponse(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	tests := []struct {
		content string
		want    string
	}{
		{`{"translation": "Hola"}`, "Hola"},
		{`{"result": "Hola"}`, "Hola"},
		{"```json\n{\"translation\": \"Hola\"}\n```", "Hola"},
		{`"Hola"`, "Hola"},
	}
	for _, tt := range tests {
		got, err := p.parseResponse(tt.content)
		if err != nil {
			t.Errorf("parseResponse(%q) error: %v", tt.content, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseResponse(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}

	if _, err := p.parseResponse("not json"); err == nil {
		t.Error("Expected error for invalid response")
	}
}

func newOpenAIServer(t *testing.T, status int, body string) (*httptest.Server, *[]openAIChat) {
	t.Helper()
	var seen []openAIChat
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		data, _ := io.ReadAll(r.Body)
		var req openAIChat
		json.Unmarshal(data, &req)
		seen = append(seen, req)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

type openAIChat struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestOpenAIProvider_Translate(t *testing.T) {
	srv, seen := newOpenAIServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"translation\": \"Hola TOKEN_0\"}"}, "finish_reason": "stop"}]
	}`)

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
	got, err := p.Translate(context.Background(), TranslateRequest{
		Text:           "Hello TOKEN_0",
		TargetLang:     "es",
		PreserveTokens: true,
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "Hola TOKEN_0" {
		t.Errorf("Translate() = %q", got)
	}
	if len(*seen) != 1 || (*seen)[0].Model != "gpt-4o-mini" {
		t.Fatalf("unexpected requests: %+v", *seen)
	}
	if !strings.Contains((*seen)[0].Messages[1].Content, "Hello TOKEN_0") {
		t.Errorf("user message = %q", (*seen)[0].Messages[1].Content)
	}
}

func TestOpenAIProvider_ErrorKinds(t *testing.T) {
	tests := []struct {
		status    int
		kind      translator.ProviderErrorKind
		retryable bool
	}{
		{http.StatusUnauthorized, translator.KindInvalidCredential, false},
		{http.StatusTooManyRequests, translator.KindRateLimited, true},
		{http.StatusServiceUnavailable, translator.KindUnavailable, true},
		{http.StatusBadRequest, translator.KindUnavailable, false},
	}

	for _, tt := range tests {
		srv, _ := newOpenAIServer(t, tt.status, `{"error": {"message": "nope", "type": "test"}}`)
		p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})

		_, err := p.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "es"})
		var pe *translator.ProviderError
		if !errors.As(err, &pe) {
			t.Fatalf("status %d: expected ProviderError, got %v", tt.status, err)
		}
		if pe.Kind != tt.kind || pe.Retryable != tt.retryable || pe.Provider != "openai" {
			t.Errorf("status %d: got kind=%s retryable=%v provider=%s", tt.status, pe.Kind, pe.Retryable, pe.Provider)
		}
	}
}

func TestOpenAIProvider_BlankText(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: "http://127.0.0.1:1"})
	got, err := p.Translate(context.Background(), TranslateRequest{Text: "  ", TargetLang: "es"})
	if err != nil || got != "  " {
		t.Errorf("Translate(blank) = %q, %v", got, err)
	}
}
