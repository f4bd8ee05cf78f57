package asr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/watchsub/watchsub/internal/segment"
)

func TestPlanChunksHitsTargetCountWithinBounds(t *testing.T) {
	plans := PlanChunks(100*time.Second, 10, 60, 5, 0)
	require := func(cond bool, msg string) {
		if !cond {
			t.Fatal(msg)
		}
	}
	require(len(plans) > 0, "expected at least one chunk")
	for _, p := range plans {
		assert.GreaterOrEqual(t, p.Duration, time.Duration(0))
	}
}

func TestPlanChunksClampsToMinSeconds(t *testing.T) {
	// total/targetCount would be tiny, must clamp up to minSeconds.
	plans := PlanChunks(20*time.Second, 10, 60, 100, 0)
	assert.Greater(t, len(plans), 0)
	// with a 10s floor and 20s total, expect 2 chunks.
	assert.Len(t, plans, 2)
}

func TestPlanChunksClampsToMaxSeconds(t *testing.T) {
	// total/targetCount would be huge, must clamp down to maxSeconds.
	plans := PlanChunks(120*time.Second, 10, 30, 1, 0)
	assert.Len(t, plans, 4)
}

func TestPlanChunksLastChunkNeverExceedsTotalDuration(t *testing.T) {
	total := 95 * time.Second
	plans := PlanChunks(total, 10, 30, 3, 0)
	last := plans[len(plans)-1]
	assert.LessOrEqual(t, last.OverlapEnd, total)
}

func TestPlanChunksAppliesOverlapExceptOnFinalChunk(t *testing.T) {
	total := 90 * time.Second
	plans := PlanChunks(total, 10, 30, 3, 2000)
	if len(plans) < 2 {
		t.Fatal("expected multiple chunks to observe overlap behavior")
	}
	nonFinal := plans[0]
	stepToNext := plans[1].Start - nonFinal.Start
	assert.Greater(t, nonFinal.Duration, stepToNext, "a non-final chunk's window must extend past the next chunk's start by the overlap amount")
	lastPlan := plans[len(plans)-1]
	assert.Equal(t, total, lastPlan.OverlapEnd, "final chunk's overlap end must clamp to total duration")
}

func TestHalveChunkSecondsNeverGoesBelowMinimum(t *testing.T) {
	assert.Equal(t, 15, HalveChunkSeconds(30, 10))
	assert.Equal(t, 10, HalveChunkSeconds(15, 10), "halving below the floor clamps to minSeconds")
	assert.Equal(t, 10, HalveChunkSeconds(10, 10))
}

func TestStitchDropsSentencesFullyInsideOverlapTail(t *testing.T) {
	chunk0 := &Result{Sentences: []segment.Sentence{
		{StartMS: 0, EndMS: 5000, Text: "a"},
		{StartMS: 9000, EndMS: 11000, Text: "overlap-tail"},
	}}
	chunk1 := &Result{Sentences: []segment.Sentence{
		{StartMS: 9000, EndMS: 11000, Text: "overlap-tail"},
		{StartMS: 11000, EndMS: 15000, Text: "b"},
	}}
	boundaries := []time.Duration{10 * time.Second, 20 * time.Second}

	out := Stitch([]*Result{chunk0, chunk1}, boundaries)

	var texts []string
	for _, s := range out {
		texts = append(texts, s.Text)
	}
	assert.Equal(t, []string{"a", "overlap-tail", "b"}, texts, "the second chunk's duplicate of the tail sentence must be dropped, not the first's")
}

func TestStitchSkipsNilChunkResults(t *testing.T) {
	chunk0 := &Result{Sentences: []segment.Sentence{{StartMS: 0, EndMS: 1000, Text: "only"}}}
	out := Stitch([]*Result{chunk0, nil}, []time.Duration{1 * time.Second})
	assert.Len(t, out, 1)
	assert.Equal(t, "only", out[0].Text)
}

func TestStitchIsMonotonicallyAdvancing(t *testing.T) {
	chunk0 := &Result{Sentences: []segment.Sentence{{StartMS: 0, EndMS: 5000, Text: "a"}}}
	chunk1 := &Result{Sentences: []segment.Sentence{{StartMS: 3000, EndMS: 4000, Text: "stale-overlap"}, {StartMS: 5000, EndMS: 9000, Text: "b"}}}
	out := Stitch([]*Result{chunk0, chunk1}, []time.Duration{5 * time.Second})

	var last int64 = -1
	for _, s := range out {
		assert.GreaterOrEqual(t, s.StartMS, last)
		last = s.StartMS
	}
	var texts []string
	for _, s := range out {
		texts = append(texts, s.Text)
	}
	assert.NotContains(t, texts, "stale-overlap")
}
