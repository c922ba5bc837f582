package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	translator "github.com/ashokgit/Ultimate-Translator-sub000"
)

const (
	deepLName    = "deepl"
	deepLFreeURL = "https://api-free.deepl.com"
	deepLProURL  = "https://api.deepl.com"

	// deepLQuotaExceeded is DeepL's "quota exceeded" status.
	deepLQuotaExceeded = 456
)

// DeepLConfig holds configuration for the DeepL provider.
type DeepLConfig struct {
	APIKey  string        // DeepL authentication key
	BaseURL string        // API base URL (default: chosen from the key type)
	Timeout time.Duration // HTTP timeout (default: 30s)
}

// DeepLProvider implements Provider using the DeepL REST API.
type DeepLProvider struct {
	http *resty.Client
}

// NewDeepLProvider creates a new DeepL provider. Keys ending in ":fx" use
// the free API endpoint.
func NewDeepLProvider(cfg DeepLConfig) *DeepLProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = deepLProURL
		if strings.HasSuffix(cfg.APIKey, ":fx") {
			baseURL = deepLFreeURL
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Authorization", "DeepL-Auth-Key "+cfg.APIKey).
		SetHeader("User-Agent", translator.UserAgent())

	return &DeepLProvider{http: c}
}

// Name implements translator.Named.
func (p *DeepLProvider) Name() string {
	return deepLName
}

type deepLRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
	SourceLang string   `json:"source_lang,omitempty"`
	Context    string   `json:"context,omitempty"`
}

type deepLResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

type deepLError struct {
	Message string `json:"message"`
}

// Translate translates one text.
func (p *DeepLProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return req.Text, nil
	}

	body := deepLRequest{
		Text:       []string{req.Text},
		TargetLang: deepLLang(req.TargetLang, true),
		SourceLang: deepLLang(req.SourceLang, false),
	}

	var result deepLResponse
	var apiErr deepLError
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/v2/translate")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", translator.NewProviderError(deepLName, translator.KindTimeout, "DeepL call timed out", err)
		}
		return "", translator.NewProviderError(deepLName, translator.KindUnavailable, "DeepL call failed", err)
	}

	if resp.IsError() {
		msg := fmt.Sprintf("DeepL returned %d", resp.StatusCode())
		if apiErr.Message != "" {
			msg += ": " + apiErr.Message
		}
		var pe *translator.ProviderError
		if resp.StatusCode() == deepLQuotaExceeded {
			pe = translator.NewProviderError(deepLName, translator.KindRateLimited, msg, nil)
		} else {
			pe = errorForStatus(deepLName, resp.StatusCode(), msg, nil)
		}
		pe.RetryAfter = retryAfter(resp.Header().Get("Retry-After"), time.Now())
		return "", pe
	}

	if len(result.Translations) == 0 {
		return "", translator.NewProviderError(deepLName, translator.KindUnavailable, "empty response from DeepL", nil)
	}
	return result.Translations[0].Text, nil
}

// deepLLang converts a language code to DeepL's upper-case form. Source
// languages carry no region; English and Portuguese targets need one.
func deepLLang(lang string, target bool) string {
	if lang == "" {
		return ""
	}
	norm := strings.ToUpper(translator.NormalizeLocale(lang))
	base := strings.ToUpper(translator.BaseLanguage(lang))
	if !target {
		return base
	}
	switch norm {
	case "EN", "PT":
		defaults := map[string]string{"EN": "EN-US", "PT": "PT-BR"}
		return defaults[norm]
	}
	if base == "EN" || base == "PT" {
		return norm
	}
	return base
}

var _ Provider = (*DeepLProvider)(nil)
