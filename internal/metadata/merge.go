package metadata

import "sort"

// Merge combines per-provider results into one record per §4.10: weight
// each by provider_weight * confidence, sort descending, take the
// highest-weighted record as primary (title/year/season/episode),
// merge localised titles and external ids in weight order (first wins
// per key), union character lists by name, and compute the final
// weighted-average confidence. Returns nil if that average is below
// minConfidence.
func Merge(results []scored, minConfidence float64) *Metadata {
	if len(results) == 0 {
		return nil
	}

	weighted := make([]scored, len(results))
	copy(weighted, results)
	for i := range weighted {
		weighted[i].score = weighted[i].provider.Weight() * weighted[i].result.Confidence
	}
	sort.SliceStable(weighted, func(i, j int) bool { return weighted[i].score > weighted[j].score })

	primary := weighted[0].result
	merged := &Metadata{
		OriginalTitle:   primary.OriginalTitle,
		Year:            primary.Year,
		Season:          primary.Season,
		Episode:         primary.Episode,
		LocalizedTitles: map[string]string{},
		ExternalIDs:     map[string]string{},
	}

	seenChar := map[string]bool{}
	var weightSum, confSum float64
	for _, w := range weighted {
		for lang, title := range w.result.LocalizedTitles {
			if _, exists := merged.LocalizedTitles[lang]; !exists {
				merged.LocalizedTitles[lang] = title
			}
		}
		for provider, id := range w.result.ExternalIDs {
			if _, exists := merged.ExternalIDs[provider]; !exists {
				merged.ExternalIDs[provider] = id
			}
		}
		for _, c := range w.result.Characters {
			if !seenChar[c] {
				seenChar[c] = true
				merged.Characters = append(merged.Characters, c)
			}
		}

		weight := w.provider.Weight()
		weightSum += weight
		confSum += weight * w.result.Confidence
	}

	if weightSum == 0 {
		return nil
	}
	merged.Confidence = confSum / weightSum
	if merged.Confidence < minConfidence {
		return nil
	}
	return merged
}
