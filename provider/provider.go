// Package provider implements translation backends.
package provider

import (
	"fmt"
	"strings"
	"time"

	translator "github.com/ashokgit/Ultimate-Translator-sub000"
	"github.com/ashokgit/Ultimate-Translator-sub000/credentials"
)

// Provider is an alias to the main package interface for convenience.
type Provider = translator.Provider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = translator.TranslateRequest

// Config selects and tunes a provider built by New.
type Config struct {
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// New builds the provider called name ("openai", "deepl" or "mock"),
// looking its API key up in creds.
func New(name string, cfg Config, creds credentials.Provider) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "mock" {
		return NewMockProvider(), nil
	}

	if creds == nil {
		return nil, fmt.Errorf("provider %s: no credential provider", name)
	}
	key, err := creds.GetCredential(name)
	if err != nil {
		return nil, translator.NewProviderError(name, translator.KindInvalidCredential, "no API key", err)
	}

	switch name {
	case "openai":
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:      key,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
		}), nil
	case "deepl":
		return NewDeepLProvider(DeepLConfig{
			APIKey:  key,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}), nil
	}
	return nil, fmt.Errorf("unknown provider %q", name)
}
