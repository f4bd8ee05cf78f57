package asr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildHotwordsDedupesCaseInsensitively(t *testing.T) {
	words := BuildHotwords([]string{"Eren Yeager", "eren yeager"}, nil, nil, "en", 10)
	assert.Len(t, words, 1)
}

func TestBuildHotwordsOrdersByWeightDescending(t *testing.T) {
	words := BuildHotwords([]string{"Title Alias"}, []string{"glossary term"}, []string{"Character Name"}, "en", 10)
	require := func(cond bool, msg string) {
		if !cond {
			t.Fatal(msg)
		}
	}
	require(len(words) == 3, "expected all three distinct candidates")
	assert.Equal(t, "Title Alias", words[0].Text)
	assert.Equal(t, 5, words[0].Weight)
	assert.Equal(t, "Character Name", words[1].Text)
	assert.Equal(t, 4, words[1].Weight)
	assert.Equal(t, "glossary term", words[2].Text)
	assert.Equal(t, 3, words[2].Weight)
}

func TestBuildHotwordsRejectsCJKWhenTargetIsEnglish(t *testing.T) {
	words := BuildHotwords([]string{"進撃の巨人", "Attack on Titan"}, nil, nil, "en", 10)
	assert.Len(t, words, 1)
	assert.Equal(t, "Attack on Titan", words[0].Text)
}

func TestBuildHotwordsAllowsCJKWhenTargetIsNotEnglish(t *testing.T) {
	words := BuildHotwords([]string{"進撃の巨人"}, nil, nil, "ja", 10)
	assert.Len(t, words, 1)
}

func TestBuildHotwordsEnforcesLengthCaps(t *testing.T) {
	tooManyWords := "one two three four five six seven eight"
	words := BuildHotwords([]string{tooManyWords}, nil, nil, "en", 10)
	assert.Empty(t, words, "an 8-segment ASCII phrase exceeds the 7-segment cap")

	tooLongCJK := "一二三四五六七八九十一二三四五六"
	words = BuildHotwords([]string{tooLongCJK}, nil, nil, "ja", 10)
	assert.Empty(t, words, "a 16-rune CJK phrase exceeds the 15-rune cap")
}

func TestBuildHotwordsRespectsMaxCount(t *testing.T) {
	words := BuildHotwords([]string{"a", "b", "c", "d"}, nil, nil, "en", 2)
	assert.Len(t, words, 2)
}

func TestBuildHotwordsSkipsBlankEntries(t *testing.T) {
	words := BuildHotwords([]string{"  ", ""}, nil, nil, "en", 10)
	assert.Empty(t, words)
}
