// Package numeral rewrites ASCII digits into the native numerals of a
// target script.
//
// Only the digits 0-9 change; every other byte keeps its value and
// position, so "Room 123, Floor 5" becomes "Room १२३, Floor ५" in Hindi.
// Languages written with Latin numerals are left untouched.
package numeral

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	"github.com/ashokgit/Ultimate-Translator-sub000/cache"
	"github.com/ashokgit/Ultimate-Translator-sub000/tokenize"
)

// zeros maps a base language to the code point of its native zero. The
// nine following code points are 1-9 for every script listed.
var zeros = map[string]rune{
	"hi": 0x0966, "mr": 0x0966, "ne": 0x0966, "sa": 0x0966, // Devanagari
	"ar": 0x0660, // Arabic-Indic
	"fa": 0x06F0, "ur": 0x06F0, "ps": 0x06F0, // Extended Arabic-Indic
	"bn": 0x09E6, "as": 0x09E6, // Bengali
	"pa": 0x0A66, // Gurmukhi
	"gu": 0x0AE6, // Gujarati
	"or": 0x0B66, // Odia
	"ta": 0x0BE6, // Tamil
	"te": 0x0C66, // Telugu
	"kn": 0x0CE6, // Kannada
	"ml": 0x0D66, // Malayalam
	"th": 0x0E50, // Thai
	"lo": 0x0ED0, // Lao
	"bo": 0x0F20, "dz": 0x0F20, // Tibetan
	"my": 0x1040, // Myanmar
	"km": 0x17E0, // Khmer
}

// cjkDigits are not contiguous in Unicode.
var cjkDigits = [10]rune{'〇', '一', '二', '三', '四', '五', '六', '七', '八', '九'}

var cjk = map[string]bool{"zh": true, "ja": true}

// Base returns the lower-case base language of tag ("hi-IN", "hi_IN" and
// "HI" all give "hi"). Unparseable tags are returned lower-cased.
func Base(tag string) string {
	t := strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	parsed, err := language.Parse(t)
	if err != nil {
		if i := strings.IndexByte(t, '-'); i > 0 {
			t = t[:i]
		}
		return strings.ToLower(t)
	}
	base, _ := parsed.Base()
	return base.String()
}

// Supports reports whether lang has a native numeral system in the table.
func Supports(lang string) bool {
	b := Base(lang)
	_, ok := zeros[b]
	return ok || cjk[b]
}

// digitsFor returns the ten digits of lang or false.
func digitsFor(lang string) ([10]rune, bool) {
	b := Base(lang)
	if cjk[b] {
		return cjkDigits, true
	}
	zero, ok := zeros[b]
	if !ok {
		return [10]rune{}, false
	}
	var d [10]rune
	for i := range d {
		d[i] = zero + rune(i)
	}
	return d, true
}

// Converter converts numerals and caches the results.
type Converter struct {
	cache   cache.TranslationCache
	protect func(string) [][]int
	logger  *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithCache caches conversions, independently of the translation cache.
func WithCache(c cache.TranslationCache) Option {
	return func(cv *Converter) { cv.cache = c }
}

// WithProtector sets a function returning byte ranges whose digits must be
// kept (placeholders such as {count_2}). The default is tokenize.Spans; nil
// protects nothing.
func WithProtector(fn func(string) [][]int) Option {
	return func(cv *Converter) { cv.protect = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cv *Converter) { cv.logger = l }
}

// NewConverter creates a Converter.
func NewConverter(opts ...Option) *Converter {
	cv := &Converter{protect: tokenize.Spans, logger: slog.Default()}
	for _, opt := range opts {
		opt(cv)
	}
	return cv
}

// Cache returns the conversion cache, or nil.
func (cv *Converter) Cache() cache.TranslationCache {
	return cv.cache
}

// Convert returns text with its ASCII digits in lang's numerals. It never
// fails: on any internal error the input is returned unchanged.
func (cv *Converter) Convert(ctx context.Context, text, lang string) (out string) {
	digits, ok := digitsFor(lang)
	if !ok || !hasASCIIDigit(text) {
		return text
	}

	defer func() {
		if r := recover(); r != nil {
			cv.logger.Warn("numeral conversion failed", "lang", lang, "panic", fmt.Sprint(r))
			out = text
		}
	}()

	if cv.cache != nil {
		cached, hit, err := cv.cache.Get(ctx, text, lang)
		if err != nil {
			cv.logger.Warn("numeral cache read failed", "lang", lang, "error", err)
		} else if hit {
			return cached
		}
	}

	var spans [][]int
	if cv.protect != nil {
		spans = cv.protect(text)
	}
	out = replace(text, digits, spans)

	if cv.cache != nil {
		if err := cv.cache.Set(ctx, text, lang, out); err != nil {
			cv.logger.Warn("numeral cache write failed", "lang", lang, "error", err)
		}
	}
	return out
}

// replace maps every ASCII digit outside spans.
func replace(text string, digits [10]rune, spans [][]int) string {
	var b strings.Builder
	b.Grow(len(text) * 2)

	next := 0
	for i := 0; i < len(text); i++ {
		for next < len(spans) && spans[next][1] <= i {
			next++
		}
		c := text[i]
		inSpan := next < len(spans) && spans[next][0] <= i
		if c >= '0' && c <= '9' && !inSpan {
			b.WriteRune(digits[c-'0'])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func hasASCIIDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			return true
		}
	}
	return false
}
