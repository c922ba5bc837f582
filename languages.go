package translator

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// RTLLanguages contains base language codes written right to left.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
	"yi": true, // Yiddish
}

// localeHints disambiguate regional variants in provider prompts.
var localeHints = map[string]string{
	"pt-BR": "Use Brazilian Portuguese spelling and vocabulary.",
	"pt-PT": "Use European Portuguese spelling and vocabulary.",
	"zh-TW": "Use Traditional Chinese characters.",
	"zh-CN": "Use Simplified Chinese characters.",
	"es-MX": "Use Mexican Spanish vocabulary.",
	"en-GB": "Use British English spelling.",
}

// NormalizeLocale converts a language code to BCP 47 form ("es_es" → "es-ES").
// Codes that do not parse are returned with underscores replaced.
func NormalizeLocale(lang string) string {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	return tag.String()
}

// BaseLanguage returns the lower-case base language of a code ("pt_BR" → "pt").
func BaseLanguage(lang string) string {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	tag, err := language.Parse(lang)
	if err != nil {
		base, _, _ := strings.Cut(lang, "-")
		return strings.ToLower(base)
	}
	base, _ := tag.Base()
	return base.String()
}

// SameLanguage reports whether two codes share a base language.
func SameLanguage(a, b string) bool {
	return BaseLanguage(a) == BaseLanguage(b)
}

// GetLanguageName returns the English name of a language code, falling back
// to the code itself.
func GetLanguageName(lang string) string {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(lang), "_", "-"))
	if err != nil {
		return lang
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return lang
}

// GetLocaleHint returns a prompt hint for regional variants, or "".
func GetLocaleHint(lang string) string {
	return localeHints[NormalizeLocale(lang)]
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(lang string) string {
	if RTLLanguages[BaseLanguage(lang)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(lang string) bool {
	return GetDirection(lang) == "rtl"
}
