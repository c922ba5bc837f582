package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	translator "github.com/ashokgit/Ultimate-Translator-sub000"
)

const openAIName = "openai"

// OpenAIProvider implements Provider using OpenAI's chat completions API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Name implements translator.Named.
func (p *OpenAIProvider) Name() string {
	return openAIName
}

// Translate translates one text.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return req.Text, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: p.buildUserMessage(req)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", translator.NewProviderError(openAIName, translator.KindUnavailable, "no response from OpenAI", nil)
	}

	return p.parseResponse(resp.Choices[0].Message.Content)
}

func (p *OpenAIProvider) buildSystemPrompt(req TranslateRequest) string {
	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = "en"
	}

	targetName := translator.GetLanguageName(req.TargetLang)

	var b strings.Builder
	fmt.Fprintf(&b, `# Role
You are an expert native translator. You translate content from %s to %s with the fluency of a native speaker.

# Task
Translate the "text" value of the user message into idiomatic %s.

# Style Guide
- **Natural Flow**: Avoid literal translations. Rephrase so the result sounds natural.
- **Safety**: Do NOT translate URLs, email addresses, HTML tags or attribute values.
- **Interpolation**: Do NOT translate variables or placeholders (e.g., {{name}}, {count}, %%s).
- **Formatting**: Preserve leading and trailing whitespace and line breaks.`,
		translator.GetLanguageName(sourceLang), targetName, targetName)

	if hint := translator.GetLocaleHint(req.TargetLang); hint != "" {
		fmt.Fprintf(&b, "\n- **Locale**: %s", hint)
	}

	if req.PreserveTokens {
		b.WriteString(`

# Tokens
The text contains markers of the form TOKEN_0, TOKEN_1, ... that stand for
formatting. Copy every marker into the translation exactly as written, once
for each time it appears, and place it where the grammar of the translation
needs it. Never translate, renumber, merge or drop a marker.`)
	}

	if req.Context != "" {
		fmt.Fprintf(&b, "\n\n# Context\nThe text is the field %q of a JSON document.", req.Context)
	}

	b.WriteString(`

# Format
Return a valid JSON object with a single key "translation" holding the translated string.
Example: { "translation": "translated text" }
- Do NOT wrap in Markdown code blocks.`)

	return b.String()
}

func (p *OpenAIProvider) buildUserMessage(req TranslateRequest) string {
	data, _ := json.Marshal(map[string]string{"text": req.Text})
	return string(data)
}

func (p *OpenAIProvider) parseResponse(content string) (string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimSuffix(strings.TrimPrefix(content, "```"), "```")

	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		if s, ok := obj["translation"].(string); ok {
			return s, nil
		}
		// Fallback: first string value
		for _, v := range obj {
			if s, ok := v.(string); ok {
				return s, nil
			}
		}
	}

	var s string
	if err := json.Unmarshal([]byte(content), &s); err == nil {
		return s, nil
	}

	return "", &translator.ProviderError{
		Provider:  openAIName,
		Kind:      translator.KindUnavailable,
		Message:   "invalid response format from OpenAI",
		Retryable: false,
	}
}

// classifyOpenAIError maps a go-openai error to a ProviderError kind.
func classifyOpenAIError(err error) *translator.ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return translator.NewProviderError(openAIName, translator.KindTimeout, "OpenAI call timed out", err)
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	return errorForStatus(openAIName, status, "OpenAI API call failed", err)
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP
// date. Anything else yields zero.
func retryAfter(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	if at, err := http.ParseTime(header); err == nil {
		return max(at.Sub(now), 0)
	}
	return 0
}

// errorForStatus maps an HTTP status to a ProviderError. Status 0 means the
// request never got an answer.
func errorForStatus(provider string, status int, msg string, cause error) *translator.ProviderError {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return translator.NewProviderError(provider, translator.KindInvalidCredential, msg, cause)
	case status == http.StatusTooManyRequests:
		return translator.NewProviderError(provider, translator.KindRateLimited, msg, cause)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return translator.NewProviderError(provider, translator.KindTimeout, msg, cause)
	case status >= 400 && status < 500:
		pe := translator.NewProviderError(provider, translator.KindUnavailable, msg, cause)
		pe.Retryable = false
		return pe
	}
	return translator.NewProviderError(provider, translator.KindUnavailable, msg, cause)
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
