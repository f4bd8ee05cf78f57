package asr

import (
	"sort"
	"strings"
	"unicode"
)

// Hotword is one vocabulary entry submitted to a recognizer, either
// registered up front (vocabulary mode) or attached per-call (param mode).
type Hotword struct {
	Text   string
	Weight int // 1..5
}

// HotwordSource is where a candidate hotword term came from, kept only
// for logging; it does not affect scoring.
type HotwordSource string

const (
	SourceTitleAlias HotwordSource = "title_alias"
	SourceGlossary   HotwordSource = "glossary"
	SourceCharacter  HotwordSource = "character"
)

// candidate pairs a raw term with its source prior to cleaning.
type candidate struct {
	text   string
	source HotwordSource
}

// BuildHotwords assembles the final hotword list from resolved title
// aliases, work-glossary keys, and character names, applying §4.7's
// cleaning/dedup/language-filter/length-cap/weight rules. targetLang
// rejects CJK terms when transcribing English and vice versa is left to
// the caller (the rule only names the CJK-into-English direction).
func BuildHotwords(titleAliases, glossaryKeys, characterNames []string, targetLang string, maxCount int) []Hotword {
	var candidates []candidate
	for _, t := range titleAliases {
		candidates = append(candidates, candidate{t, SourceTitleAlias})
	}
	for _, g := range glossaryKeys {
		candidates = append(candidates, candidate{g, SourceGlossary})
	}
	for _, c := range characterNames {
		candidates = append(candidates, candidate{c, SourceCharacter})
	}

	seen := map[string]bool{}
	var words []Hotword
	for _, c := range candidates {
		text := strings.TrimSpace(c.text)
		if text == "" {
			continue
		}
		key := strings.ToLower(text)
		if seen[key] {
			continue
		}

		if strings.EqualFold(targetLang, "en") && isCJKText(text) {
			continue
		}

		if !withinLengthCap(text) {
			continue
		}

		seen[key] = true
		words = append(words, Hotword{Text: text, Weight: weightFor(c.source)})
	}

	sort.SliceStable(words, func(i, j int) bool { return words[i].Weight > words[j].Weight })
	if maxCount > 0 && len(words) > maxCount {
		words = words[:maxCount]
	}
	return words
}

func weightFor(source HotwordSource) int {
	switch source {
	case SourceTitleAlias:
		return 5
	case SourceCharacter:
		return 4
	case SourceGlossary:
		return 3
	default:
		return 1
	}
}

func isCJKText(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

// withinLengthCap applies the ASCII (≤7 space-separated segments) and
// non-ASCII (≤15 characters) caps of §4.7.
func withinLengthCap(text string) bool {
	if isASCII(text) {
		return len(strings.Fields(text)) <= 7
	}
	return len([]rune(text)) <= 15
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
