// Package tokenize protects format markers inside translatable text.
//
// Placeholders ({{name}}, {name}, %var%, %d, %1$s) and HTML tags are
// replaced with ordinal tokens (TOKEN_0, TOKEN_1, ...) before the text is
// sent to a translation provider and restored afterwards:
//
//	res := tokenize.Tokenize("Hello {{name}}, you have %d messages.")
//	// res.Text == "Hello TOKEN_0, you have TOKEN_1 messages."
//	out := tokenize.Detokenize("Hola TOKEN_0, tienes TOKEN_1 mensajes.", res.Map)
//	// out == "Hola {{name}}, tienes %d mensajes."
//
// Detokenize(Tokenize(x).Text, Tokenize(x).Map) == x holds for every x.
package tokenize

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// TokenMap maps a token (TOKEN_n) to the substring it replaced.
type TokenMap map[string]string

// Result is the output of Tokenize.
type Result struct {
	Text string
	Map  TokenMap
}

const tokenPrefix = "TOKEN_"

var tokenRe = regexp.MustCompile(`TOKEN_\d+`)

var literalRe = regexp.MustCompile(`^TOKEN_\d+$`)

// patterns in order of specificity. A match contained in a match of a more
// specific pattern is ignored ({name} inside {{name}}, %u inside %user%).
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\{\{[^{}]*\}\}`),
	regexp.MustCompile(`\{[^{}]*\}`),
	regexp.MustCompile(`%[A-Za-z_][A-Za-z0-9_]*%`),
	regexp.MustCompile(`%(?:\d+\$)?[-+#0]*\d*(?:\.\d+)?[sdfiuxX]`),
	regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9:-]*(?:\s[^<>]*)?/?>`),
}

type span struct {
	start, end int
	rank       int
}

func (s span) contains(o span) bool {
	return s.start <= o.start && o.end <= s.end && (s.start != o.start || s.end != o.end)
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// Tokenize replaces protected constructs in text with ordinal tokens.
//
// Each round substitutes the innermost remaining construct, so one level of
// nesting ({outer {inner}}) reduces in two steps. Identical substrings share
// a token. Constructs preceded by a backslash are left as they are.
func Tokenize(text string) Result {
	t := &tokenizer{m: TokenMap{}, byOriginal: map[string]string{}}

	// Literal TOKEN_n text would be indistinguishable from our own tokens.
	s := tokenRe.ReplaceAllStringFunc(text, t.assign)

	for {
		next, ok := pick(s)
		if !ok {
			break
		}
		end := next.end
		// A token followed by a digit would read as a different token.
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
		s = s[:next.start] + t.assign(s[next.start:end]) + s[end:]
	}

	return Result{Text: s, Map: t.m}
}

type tokenizer struct {
	m          TokenMap
	byOriginal map[string]string
	next       int
}

func (t *tokenizer) assign(original string) string {
	if tok, ok := t.byOriginal[original]; ok {
		return tok
	}
	tok := tokenPrefix + strconv.Itoa(t.next)
	t.next++
	t.m[tok] = original
	t.byOriginal[original] = tok
	return tok
}

// candidates returns the non-escaped protected spans in s.
func candidates(s string) []span {
	var all, frozen []span
	for rank, re := range patterns {
		for _, loc := range re.FindAllStringIndex(s, -1) {
			sp := span{start: loc[0], end: loc[1], rank: rank}
			if sp.start > 0 && s[sp.start-1] == '\\' {
				frozen = append(frozen, span{start: sp.start - 1, end: sp.end, rank: rank})
				continue
			}
			all = append(all, sp)
		}
	}

	out := make([]span, 0, len(all))
	for _, c := range all {
		if overlapsAny(c, frozen) || shadowed(c, all) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func overlapsAny(c span, spans []span) bool {
	for _, f := range spans {
		if c.overlaps(f) {
			return true
		}
	}
	return false
}

// shadowed reports whether c lies inside a match of a more specific pattern.
func shadowed(c span, all []span) bool {
	for _, o := range all {
		if o.rank < c.rank && o.contains(c) {
			return true
		}
	}
	return false
}

// pick chooses the next span to substitute: innermost first, then leftmost,
// then most specific.
func pick(s string) (span, bool) {
	cands := candidates(s)
	if len(cands) == 0 {
		return span{}, false
	}

	var inner []span
	for _, c := range cands {
		nested := false
		for _, o := range cands {
			if c.contains(o) {
				nested = true
				break
			}
		}
		if !nested {
			inner = append(inner, c)
		}
	}

	sort.Slice(inner, func(i, j int) bool {
		if inner[i].start != inner[j].start {
			return inner[i].start < inner[j].start
		}
		return inner[i].rank < inner[j].rank
	})
	return inner[0], true
}

// Detokenize restores every token in text from m. Tokens nested inside
// restored substrings are restored too. Tokens missing from m are kept.
func Detokenize(text string, m TokenMap) string {
	if len(m) == 0 {
		return text
	}
	return expand(text, m, len(m)+1)
}

func expand(text string, m TokenMap, depth int) string {
	return tokenRe.ReplaceAllStringFunc(text, func(tok string) string {
		original, ok := m[tok]
		if !ok {
			return tok
		}
		if literalRe.MatchString(original) || depth == 0 {
			return original
		}
		return expand(original, m, depth-1)
	})
}

// Contains reports whether text holds at least one protected construct.
func Contains(text string) bool {
	return len(candidates(text)) > 0
}

// Spans returns the byte ranges [start, end) of the protected constructs in
// text, sorted and merged.
func Spans(text string) [][]int {
	cands := candidates(text)
	if len(cands) == 0 {
		return nil
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].start < cands[j].start })

	var out [][]int
	for _, c := range cands {
		if n := len(out); n > 0 && c.start <= out[n-1][1] {
			if c.end > out[n-1][1] {
				out[n-1][1] = c.end
			}
			continue
		}
		out = append(out, []int{c.start, c.end})
	}
	return out
}

// MismatchError reports tokens that a provider dropped from, or invented in,
// a translated string.
type MismatchError struct {
	Missing    []string
	Unexpected []string
}

func (e *MismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Unexpected, ", "))
	}
	return fmt.Sprintf("token mismatch: %s", strings.Join(parts, "; "))
}

// Verify checks that translated carries the same set of tokens as
// tokenized. Order and repetition may change.
func Verify(tokenized, translated string) error {
	want := tokenSet(tokenized)
	got := tokenSet(translated)

	var missing, unexpected []string
	for tok := range want {
		if !got[tok] {
			missing = append(missing, tok)
		}
	}
	for tok := range got {
		if !want[tok] {
			unexpected = append(unexpected, tok)
		}
	}
	if len(missing) == 0 && len(unexpected) == 0 {
		return nil
	}
	sort.Strings(missing)
	sort.Strings(unexpected)
	return &MismatchError{Missing: missing, Unexpected: unexpected}
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, tok := range tokenRe.FindAllString(s, -1) {
		set[tok] = true
	}
	return set
}
