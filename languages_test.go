package translator

import "testing"

func TestGetLanguageName(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"ja", "Japanese"},
		{"de", "German"},
		{"unknown", "unknown"}, // fallback
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			result := GetLanguageName(tt.code)
			if result != tt.expected {
				t.Errorf("GetLanguageName(%q) = %q, want %q", tt.code, result, tt.expected)
			}
		})
	}
}

func TestGetDirection(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"ar_SA", "rtl"},
		{"he-IL", "rtl"},
		{"fa", "rtl"},
		{"ur_PK", "rtl"},
		{"es_ES", "ltr"},
		{"en", "ltr"},
		{"ja_JP", "ltr"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := GetDirection(tt.code); got != tt.expected {
				t.Errorf("GetDirection(%q) = %q, want %q", tt.code, got, tt.expected)
			}
		})
	}
}

func TestBaseLanguage(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"pt_BR", "pt"},
		{"hi-IN", "hi"},
		{"EN", "en"},
		{"zh_Hant_TW", "zh"},
	}

	for _, tt := range tests {
		if got := BaseLanguage(tt.code); got != tt.expected {
			t.Errorf("BaseLanguage(%q) = %q, want %q", tt.code, got, tt.expected)
		}
	}
}

func TestSameLanguage(t *testing.T) {
	if !SameLanguage("en_US", "en") {
		t.Error("expected en_US and en to match")
	}
	if SameLanguage("en", "es") {
		t.Error("expected en and es to differ")
	}
}

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"es_ES", "es-ES"},
		{"pt-br", "pt-BR"},
		{"ja", "ja"},
	}

	for _, tt := range tests {
		if got := NormalizeLocale(tt.input); got != tt.expected {
			t.Errorf("NormalizeLocale(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGetLocaleHint(t *testing.T) {
	if GetLocaleHint("pt_BR") == "" {
		t.Error("expected a hint for pt_BR")
	}
	if GetLocaleHint("fr") != "" {
		t.Error("expected no hint for fr")
	}
}
