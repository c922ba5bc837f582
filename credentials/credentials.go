// Package credentials resolves provider API keys.
//
// Lookup order when the sources are chained the usual way:
//  1. an explicit key (command-line flag)
//  2. the <PROVIDER>_API_KEY environment variable
//  3. the credentials file
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a source holds no key for a provider.
var ErrNotFound = errors.New("credential not found")

// Provider looks up the API key for a named translation provider.
type Provider interface {
	GetCredential(name string) (string, error)
}

// Static serves keys from a fixed map.
type Static map[string]string

// GetCredential implements Provider.
func (s Static) GetCredential(name string) (string, error) {
	if key := strings.TrimSpace(s[normalize(name)]); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

// Env reads keys from <NAME>_API_KEY environment variables.
type Env struct {
	// Prefix is prepended to the variable name, e.g. "UT_" for UT_OPENAI_API_KEY.
	Prefix string
}

// EnvVar returns the variable consulted for name.
func (e Env) EnvVar(name string) string {
	n := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(normalize(name)))
	return e.Prefix + n + "_API_KEY"
}

// GetCredential implements Provider.
func (e Env) GetCredential(name string) (string, error) {
	if key := strings.TrimSpace(os.Getenv(e.EnvVar(name))); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

// File reads keys from a YAML file mapping provider names to keys:
//
//	openai: sk-...
//	deepl: 0123...:fx
//
// The file is read once, on first use. A missing file holds no keys.
type File struct {
	path string

	once sync.Once
	keys map[string]string
	err  error
}

// NewFile returns a File source reading path.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) load() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.err = fmt.Errorf("reading credentials file: %w", err)
		}
		return
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		f.err = fmt.Errorf("parsing credentials file %s: %w", f.path, err)
		return
	}
	f.keys = make(map[string]string, len(raw))
	for k, v := range raw {
		f.keys[normalize(k)] = v
	}
}

// GetCredential implements Provider.
func (f *File) GetCredential(name string) (string, error) {
	f.once.Do(f.load)
	if f.err != nil {
		return "", f.err
	}
	return Static(f.keys).GetCredential(name)
}

// Chain asks each source in order and returns the first key found. Errors
// other than ErrNotFound stop the lookup.
type Chain []Provider

// GetCredential implements Provider.
func (c Chain) GetCredential(name string) (string, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		key, err := p.GetCredential(name)
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

// Resolve builds the usual chain: an explicit key for provider (if
// non-empty), then the environment, then the file at path (if non-empty).
func Resolve(provider, explicit, path string) Chain {
	var c Chain
	if explicit != "" {
		c = append(c, Static{normalize(provider): explicit})
	}
	c = append(c, Env{})
	if path != "" {
		c = append(c, NewFile(path))
	}
	return c
}

// MaskKey shortens a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var (
	_ Provider = Static(nil)
	_ Provider = Env{}
	_ Provider = (*File)(nil)
	_ Provider = Chain(nil)
)
