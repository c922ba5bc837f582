package classify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ashokgit/Ultimate-Translator-sub000/document"
)

func str(s string) *document.Node { return document.NewString(s) }

func TestShouldTranslate_BlockedKeys(t *testing.T) {
	c := NewClassifier(nil)
	for _, tenant := range []string{"", "acme", "globex"} {
		assert.False(t, c.ShouldTranslate("api_key", str("abc123"), tenant))
		assert.False(t, c.ShouldTranslate("API_KEY", str("abc123"), tenant))
		assert.False(t, c.ShouldTranslate("old_urls", str("a-b"), tenant))
	}
}

func TestShouldTranslate_BlockedKeyBeatsTenantRule(t *testing.T) {
	reg := NewRegistry()
	errs := reg.SetTenantRules("acme", []Rule{{Match: KeyExact, Pattern: "id", Action: Translate}})
	require.Empty(t, errs)

	c := NewClassifier(reg)
	assert.False(t, c.ShouldTranslate("id", str("Hello there"), "acme"))
}

func TestShouldTranslate_ValuePatterns(t *testing.T) {
	c := NewClassifier(nil)
	excluded := []string{
		"¥15,000-30,000",
		"$1,299.99",
		"€ 45",
		"120 USD",
		"2024-03-15",
		"2024-03-15T10:30:00Z",
		"03/04/2024",
		"550e8400-e29b-41d4-a716-446655440000",
		"#ff8800",
		"rgba(0, 0, 0, 0.5)",
		"12px",
		"1.5rem",
		"info@example.com",
		"+1 (555) 123-4567",
		"https://example.com/a",
		"www.example.com",
		"/images/logo.png",
		"42",
		"3.14",
		"<br/><hr/>",
	}
	for _, v := range excluded {
		assert.False(t, c.ShouldTranslate("description", str(v), ""), "value %q", v)
	}

	translated := []string{
		"Famous shrine",
		"Fushimi Inari Shrine",
		"Open 24 hours",
		"May I help you?",
		"<b>Welcome</b> home",
		"Hello {{name}}",
	}
	for _, v := range translated {
		assert.True(t, c.ShouldTranslate("description", str(v), ""), "value %q", v)
	}
}

func TestShouldTranslate_KeyPatterns(t *testing.T) {
	c := NewClassifier(nil)
	for _, key := range []string{"user_id", "userId", "created_at", "updatedAt", "image_url", "is_active", "accessToken", "country_code"} {
		assert.False(t, c.ShouldTranslate(key, str("Some readable words"), ""), "key %q", key)
	}
	for _, key := range []string{"description", "title", "name", "paid_note", "caption", "button"} {
		assert.True(t, c.ShouldTranslate(key, str("Some readable words"), ""), "key %q", key)
	}
}

func TestShouldTranslate_NonStrings(t *testing.T) {
	c := NewClassifier(nil)
	assert.False(t, c.ShouldTranslate("title", document.NewNumber("5"), ""))
	assert.False(t, c.ShouldTranslate("title", document.NewBool(true), ""))
	assert.False(t, c.ShouldTranslate("title", document.NewNull(), ""))
	assert.False(t, c.ShouldTranslate("title", str("   "), ""))
}

func TestShouldTranslate_TenantRulesShadowGlobal(t *testing.T) {
	reg := NewRegistry()
	errs := reg.SetTenantRules("acme", []Rule{
		{ID: "keep-sku", Match: KeyExact, Pattern: "product_label", Action: Exclude},
		{ID: "translate-prices", Match: ValuePattern, Pattern: `^\$`, Action: Translate},
	})
	require.Empty(t, errs)
	c := NewClassifier(reg)

	assert.False(t, c.ShouldTranslate("product_label", str("Blue shirt"), "acme"))
	assert.True(t, c.ShouldTranslate("product_label", str("Blue shirt"), "globex"))

	assert.True(t, c.ShouldTranslate("note", str("$5 off"), "acme"))
	assert.False(t, c.ShouldTranslate("note", str("$5"), "globex"))
}

func TestShouldPreserveFormatting(t *testing.T) {
	reg := NewRegistry()
	reg.SetTenantRules("acme", []Rule{
		{Match: KeyPattern, Pattern: `^msg_`, Action: Translate, PreserveFormatting: true},
	})
	c := NewClassifier(reg)

	assert.True(t, c.ShouldPreserveFormatting("body", str("<p>Hi</p>"), ""))
	assert.True(t, c.ShouldPreserveFormatting("body", str("Hi {name}"), ""))
	assert.False(t, c.ShouldPreserveFormatting("body", str("Hi there"), ""))
	assert.True(t, c.ShouldPreserveFormatting("msg_welcome", str("Hi there"), "acme"))
	assert.False(t, c.ShouldPreserveFormatting("msg_welcome", str("Hi there"), ""))

	// Translatable and protected at the same time.
	assert.True(t, c.ShouldTranslate("body", str("<p>Hi</p>"), ""))
}

func TestShouldTranslate_LearnedKeyWithPlaceholders(t *testing.T) {
	d := NewDetector()
	st := NewState(0, 0)
	st.LearnedPatterns["promo_key_text"] = true
	require.NoError(t, d.Import(context.Background(), "acme", st))
	c := NewClassifier(NewRegistry(), WithDetector(d))

	for _, v := range []string{"Hello {name}", "<b>Hello</b> there", "Hello there"} {
		assert.False(t, c.ShouldTranslate("promo_key_text", str(v), "acme"), v)
	}
	assert.True(t, c.ShouldTranslate("promo_key_text", str("Hello {name}"), "globex"))

	// Protection is still reported for the skipped value.
	assert.True(t, c.ShouldPreserveFormatting("promo_key_text", str("Hello {name}"), "acme"))
}

func TestRuleSet_InvalidRegexIsSkipped(t *testing.T) {
	rs, errs := NewRuleSet([]Rule{
		{ID: "broken", Match: KeyPattern, Pattern: `([a-z`},
		{ID: "ok", Match: KeyExact, Pattern: "sku"},
		{ID: "bad-type", Match: ContentType, Pattern: "nonsense"},
	})
	assert.Equal(t, 1, rs.Len())
	require.Len(t, errs, 2)

	var re *RuleError
	require.True(t, errors.As(errs[0], &re))
	assert.Equal(t, "broken", re.RuleID)
	assert.Equal(t, `([a-z`, re.Pattern)
}

func TestRegistry_InvalidTenantRuleDoesNotBreakClassification(t *testing.T) {
	reg := NewRegistry()
	errs := reg.SetTenantRules("acme", []Rule{
		{Match: ValuePattern, Pattern: `(unclosed`},
		{Match: KeyExact, Pattern: "internal_note"},
	})
	require.Len(t, errs, 1)

	c := NewClassifier(reg)
	assert.True(t, c.ShouldTranslate("title", str("Hello"), "acme"))
	assert.False(t, c.ShouldTranslate("internal_note", str("Hello"), "acme"))
}

func TestMatchType_Text(t *testing.T) {
	var m MatchType
	require.NoError(t, m.UnmarshalText([]byte("valuePattern")))
	assert.Equal(t, ValuePattern, m)
	require.NoError(t, m.UnmarshalText([]byte("content_type")))
	assert.Equal(t, ContentType, m)
	assert.Error(t, m.UnmarshalText([]byte("regex")))

	var a Action
	require.NoError(t, a.UnmarshalText([]byte("include")))
	assert.Equal(t, Translate, a)
	require.NoError(t, a.UnmarshalText([]byte("skip")))
	assert.Equal(t, Exclude, a)
}

func TestRegistry_LoadAndWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `
global:
  - id: internal
    match_type: key_exact
    pattern: internal_ref
    action: exclude
tenants:
  acme:
    - id: acme-codes
      match_type: valuePattern
      pattern: '^ACME-\d+$'
    - id: broken
      match_type: key_pattern
      pattern: '(['
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg := NewRegistry()
	diags, err := reg.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Error(), "tenant acme")
	assert.Equal(t, []string{"acme"}, reg.Tenants())

	c := NewClassifier(reg)
	assert.False(t, c.ShouldTranslate("internal_ref", str("Readable"), "globex"))
	assert.False(t, c.ShouldTranslate("label", str("ACME-42"), "acme"))
	assert.True(t, c.ShouldTranslate("label", str("ACME-42"), "globex"))

	out := filepath.Join(dir, "out.yaml")
	require.NoError(t, reg.WriteFile(out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var f RuleFile
	require.NoError(t, yaml.Unmarshal(data, &f))
	require.Len(t, f.Global, 1)
	assert.Equal(t, "internal_ref", f.Global[0].Pattern)
	require.Len(t, f.Tenants["acme"], 1)
	assert.Equal(t, ValuePattern, f.Tenants["acme"][0].Match)
}

func TestRegistry_LoadFileErrors(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("global: [\n"), 0o644))
	_, err = reg.LoadFile(path)
	assert.Error(t, err)
}

func TestRegisterContentType(t *testing.T) {
	RegisterContentType("sku", func(s string) bool { return len(s) == 8 && s[:3] == "SKU" })
	reg := NewRegistry()
	errs := reg.SetGlobalRules([]Rule{{Match: ContentType, Pattern: "sku"}})
	require.Empty(t, errs)

	c := NewClassifier(reg)
	assert.False(t, c.ShouldTranslate("label", str("SKU12345"), ""))
	assert.True(t, c.ShouldTranslate("label", str("Blue shirt"), ""))
}
