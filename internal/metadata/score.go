package metadata

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// titleSimilarity scores how close two titles are, normalised to [0,1],
// using edit distance over the longer title's length — the same
// scoring-chain idiom the teacher applies in internal/core/lang.go's
// subtagQuality, adapted from subtag comparison to free-text titles.
func titleSimilarity(a, b string) float64 {
	a, b = normalizeTitle(a), normalizeTitle(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	sim := 1 - float64(dist)/float64(maxLen)
	if sim < 0 {
		sim = 0
	}
	return sim
}

func normalizeTitle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// aliasBonus rewards an exact or prefix alias match over plain
// similarity, per §4.10.
func aliasBonus(candidate string, aliases []string) float64 {
	norm := normalizeTitle(candidate)
	for _, alias := range aliases {
		a := normalizeTitle(alias)
		if a == norm {
			return 0.3
		}
		if strings.HasPrefix(norm, a) || strings.HasPrefix(a, norm) {
			return 0.15
		}
	}
	return 0
}

// yearProximity penalises candidates whose year is far from the query
// year; 0 distance -> 1.0, decaying linearly, floored at 0.
func yearProximity(candidateYear, queryYear int) float64 {
	if queryYear == 0 || candidateYear == 0 {
		return 0.5
	}
	diff := candidateYear - queryYear
	if diff < 0 {
		diff = -diff
	}
	score := 1 - float64(diff)/10.0
	if score < 0 {
		return 0
	}
	return score
}

// impossibleEpisodePenalty penalises high episode numbers against release
// years implausibly early for a long-running series to have reached that
// count (spec §4.10's anti-false-positive rule).
func impossibleEpisodePenalty(episodeNumber, releaseYear, queryYear int) float64 {
	if episodeNumber <= 0 || releaseYear == 0 {
		return 0
	}
	yearsRunning := queryYear - releaseYear
	if yearsRunning <= 0 {
		return 0
	}
	plausibleMaxEpisodes := yearsRunning * 60
	if episodeNumber > plausibleMaxEpisodes {
		return 0.5
	}
	return 0
}

// scoreCandidate combines the signals named in §4.10 into one match
// score for a provider's raw result against the query.
func scoreCandidate(q Query, m *Metadata) float64 {
	best := 0.0
	for _, title := range q.Titles {
		sim := titleSimilarity(title, m.OriginalTitle)
		for _, loc := range m.LocalizedTitles {
			if s := titleSimilarity(title, loc); s > sim {
				sim = s
			}
		}
		if sim > best {
			best = sim
		}
	}

	score := best + aliasBonus(q.Titles[0], titlesOf(m)) + yearProximity(m.Year, q.Year)
	score -= impossibleEpisodePenalty(q.EpisodeNumber, m.Year, q.Year)
	if score < 0 {
		score = 0
	}
	return score
}

func titlesOf(m *Metadata) []string {
	titles := []string{m.OriginalTitle}
	for _, t := range m.LocalizedTitles {
		titles = append(titles, t)
	}
	return titles
}
