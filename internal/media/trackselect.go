package media

import (
	"strings"

	iso "github.com/barbashov/iso639-3"
)

// langCode returns the shortest canonical code for lang, matching the
// teacher's Str() preference order (ISO 639-1, then -3, then -2T/-2B).
func langCode(lang *iso.Language) string {
	if lang == nil {
		return ""
	}
	switch {
	case lang.Part1 != "":
		return lang.Part1
	case lang.Part3 != "":
		return lang.Part3
	case lang.Part2T != "":
		return lang.Part2T
	case lang.Part2B != "":
		return lang.Part2B
	}
	return ""
}

// AudioSelection is the outcome of SelectAudio: the chosen track, or none
// if the probe carried no audio streams at all.
type AudioSelection struct {
	Track AudioTrack
	Found bool
}

// SelectAudio scores tracks by the strict lexicographic ordering of §4.5:
// (lang_rank, default_first, -channels, index). preferLangs ranks by
// position (absent ⇒ worst rank); excludeTitles deprioritises but never
// removes a track whose title contains any keyword (case-insensitive).
// userIndex, if >= 0, short-circuits straight to that stream index.
// userLang, if non-empty, restricts the candidate pool first.
func SelectAudio(tracks []AudioTrack, preferLangs []string, excludeTitles []string, userIndex int, userLang string) AudioSelection {
	if userIndex >= 0 {
		for _, t := range tracks {
			if t.Index == userIndex {
				return AudioSelection{Track: t, Found: true}
			}
		}
	}

	pool := tracks
	if userLang != "" {
		var restricted []AudioTrack
		for _, t := range tracks {
			if trackMatchesLang(t.Lang, userLang) {
				restricted = append(restricted, t)
			}
		}
		if len(restricted) > 0 {
			pool = restricted
		}
	}
	if len(pool) == 0 {
		return AudioSelection{}
	}

	best := pool[0]
	bestKey := audioScoreKey(best, preferLangs, excludeTitles)
	for _, t := range pool[1:] {
		key := audioScoreKey(t, preferLangs, excludeTitles)
		if key.less(bestKey) {
			best = t
			bestKey = key
		}
	}
	return AudioSelection{Track: best, Found: true}
}

type audioKey struct {
	langRank     int
	notDefault   int
	negChannels  int
	excluded     int
	index        int
}

func (a audioKey) less(b audioKey) bool {
	if a.langRank != b.langRank {
		return a.langRank < b.langRank
	}
	if a.excluded != b.excluded {
		return a.excluded < b.excluded
	}
	if a.notDefault != b.notDefault {
		return a.notDefault < b.notDefault
	}
	if a.negChannels != b.negChannels {
		return a.negChannels < b.negChannels
	}
	return a.index < b.index
}

func audioScoreKey(t AudioTrack, preferLangs, excludeTitles []string) audioKey {
	notDefault := 0
	if !t.IsDefault {
		notDefault = 1
	}
	excluded := 0
	if titleMatchesAny(t.Title, excludeTitles) {
		excluded = 1
	}
	return audioKey{
		langRank:    langRank(t.Lang, preferLangs),
		notDefault:  notDefault,
		negChannels: -t.Channels,
		excluded:    excluded,
		index:       t.Index,
	}
}

func langRank(lang *iso.Language, preferLangs []string) int {
	code := langCode(lang)
	if code == "" {
		return len(preferLangs)
	}
	for i, p := range preferLangs {
		if strings.EqualFold(p, code) {
			return i
		}
	}
	return len(preferLangs)
}

func trackMatchesLang(lang *iso.Language, want string) bool {
	code := langCode(lang)
	if code == "" {
		return false
	}
	return strings.EqualFold(code, want)
}

func titleMatchesAny(title string, keywords []string) bool {
	if title == "" {
		return false
	}
	lower := strings.ToLower(title)
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// SubtitleMode is the configured subtitle-reuse policy (spec §4.5).
type SubtitleMode string

const (
	SubtitleModeIgnore      SubtitleMode = "ignore"
	SubtitleModeReference    SubtitleMode = "reference"
	SubtitleModeReuseIfGood SubtitleMode = "reuse_if_good"
)

// SelectSubtitle picks at most one subtitle candidate per §4.5. In
// reuse_if_good mode it tries the destination-language preference list
// first (so an existing target-language subtitle wins outright), then the
// source-language list. Image-based tracks are rejected for reuse but may
// still surface in reference mode via the forced-hint track, never loaded.
func SelectSubtitle(mode SubtitleMode, tracks []SubtitleTrack, dstPreferLangs, srcPreferLangs, excludeTitles []string) (SubtitleTrack, bool) {
	if mode == SubtitleModeIgnore || len(tracks) == 0 {
		return SubtitleTrack{}, false
	}

	reusable := make([]SubtitleTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.IsImageBased {
			continue
		}
		reusable = append(reusable, t)
	}

	if mode == SubtitleModeReference {
		if len(reusable) == 0 {
			for _, t := range tracks {
				if t.IsForced {
					return t, true
				}
			}
			return SubtitleTrack{}, false
		}
	}

	if best, ok := bestSubtitleByLangs(reusable, dstPreferLangs, excludeTitles); ok {
		return best, true
	}
	if best, ok := bestSubtitleByLangs(reusable, srcPreferLangs, excludeTitles); ok {
		return best, true
	}
	return SubtitleTrack{}, false
}

func bestSubtitleByLangs(tracks []SubtitleTrack, preferLangs, excludeTitles []string) (SubtitleTrack, bool) {
	var best SubtitleTrack
	bestRank := -1
	found := false
	for _, t := range tracks {
		rank := langRank(t.Lang, preferLangs)
		if rank >= len(preferLangs) {
			continue
		}
		excluded := titleMatchesAny(t.Title, excludeTitles)
		if !found || rank < bestRank || (rank == bestRank && !excluded) {
			best = t
			bestRank = rank
			found = true
		}
	}
	return best, found
}
