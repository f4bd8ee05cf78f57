package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/watchsub/watchsub/internal/subs"
)

// Polish re-chunks translated cues into batchSize pairs of
// (source, translation) and asks the model to refine wording only,
// preserving line count; any mismatch leaves that block unchanged
// (spec §4.9).
func Polish(ctx context.Context, model ChatModel, cues []*subs.Cue, dstLang string, batchSize int) error {
	if batchSize <= 0 {
		batchSize = len(cues)
	}
	for start := 0; start < len(cues); start += batchSize {
		end := start + batchSize
		if end > len(cues) {
			end = len(cues)
		}
		if err := polishBlock(ctx, model, cues[start:end], dstLang); err != nil {
			return err
		}
	}
	return nil
}

func polishBlock(ctx context.Context, model ChatModel, block []*subs.Cue, dstLang string) error {
	systemPrompt := fmt.Sprintf("Refine the wording of these %s subtitle translations without re-translating or changing meaning. Return exactly one refined line per input, in order.", dstLang)

	var b strings.Builder
	for i, c := range block {
		fmt.Fprintf(&b, "[%d] source: %s\n[%d] translation: %s\n", i+1, c.Text, i+1, c.TextDst)
	}

	raw, err := model.Complete(ctx, systemPrompt, b.String())
	if err != nil {
		return fmt.Errorf("translate: polish request: %w", err)
	}

	lines, ok := parseResponse(raw, ModeBulk, len(block))
	if !ok {
		return nil
	}
	for i, c := range block {
		c.TextDst = lines[i]
	}
	return nil
}
