package translate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchsub/watchsub/internal/subs"
)

func TestPolishRewritesEachCueInBlock(t *testing.T) {
	model := &fakeModel{responses: []string{"[1] 更好的翻译\n[2] 另一个更好的翻译"}}
	cues := []*subs.Cue{
		{Text: "hello", TextDst: "你好"},
		{Text: "bye", TextDst: "再见"},
	}

	err := Polish(context.Background(), model, cues, "zh", 10)
	require.NoError(t, err)
	assert.Equal(t, "更好的翻译", cues[0].TextDst)
	assert.Equal(t, "另一个更好的翻译", cues[1].TextDst)
}

func TestPolishSplitsIntoBatchSizeBlocks(t *testing.T) {
	model := &fakeModel{responses: []string{"[1] a2", "[1] b2"}}
	cues := []*subs.Cue{
		{Text: "a", TextDst: "a1"},
		{Text: "b", TextDst: "b1"},
	}

	err := Polish(context.Background(), model, cues, "zh", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, model.call)
	assert.Equal(t, "a2", cues[0].TextDst)
	assert.Equal(t, "b2", cues[1].TextDst)
}

func TestPolishLeavesBlockUnchangedOnLineCountMismatch(t *testing.T) {
	model := &fakeModel{responses: []string{"only one line"}}
	cues := []*subs.Cue{
		{Text: "a", TextDst: "a1"},
		{Text: "b", TextDst: "b1"},
	}

	err := Polish(context.Background(), model, cues, "zh", 10)
	require.NoError(t, err)
	assert.Equal(t, "a1", cues[0].TextDst, "a mismatch must leave the original translations untouched")
	assert.Equal(t, "b1", cues[1].TextDst)
}

func TestPolishZeroBatchSizeTreatsAllCuesAsOneBlock(t *testing.T) {
	model := &fakeModel{responses: []string{"[1] x\n[2] y"}}
	cues := []*subs.Cue{{Text: "a", TextDst: "a1"}, {Text: "b", TextDst: "b1"}}

	err := Polish(context.Background(), model, cues, "zh", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, model.call)
}
