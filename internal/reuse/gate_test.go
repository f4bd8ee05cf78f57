package reuse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeVariantFromFilenameTokens(t *testing.T) {
	assert.Equal(t, VariantSimplified, DescribeVariant("movie.sc.srt", "", 50))
	assert.Equal(t, VariantTraditional, DescribeVariant("movie.cht.srt", "", 50))
}

func TestDescribeVariantFromContentHanzi(t *testing.T) {
	assert.Equal(t, VariantSimplified, DescribeVariant("movie.srt", "这里说来国还", 50))
	assert.Equal(t, VariantTraditional, DescribeVariant("movie.srt", "這裡說來國還", 50))
}

func TestDescribeVariantKanaIsUnknown(t *testing.T) {
	assert.Equal(t, VariantUnknown, DescribeVariant("movie.srt", "こんにちは", 50))
}

func TestDescribeVariantKanaOverridesSimplifiedFilenameTag(t *testing.T) {
	assert.Equal(t, VariantUnknown, DescribeVariant("movie.chs.srt", "こんにちは", 50),
		"a chs/sc-tagged file whose content is actually Japanese must not be labeled simplified")
}

func TestDescribeVariantPlainLatinIsUnknown(t *testing.T) {
	assert.Equal(t, VariantUnknown, DescribeVariant("movie.srt", "hello world", 50))
}

func TestConfidenceScoresDominantScript(t *testing.T) {
	assert.Greater(t, Confidence("ja", "こんにちは"), 0.9)
	assert.Greater(t, Confidence("en", "hello world"), 0.9)
	assert.Equal(t, 0.0, Confidence("en", "こんにちは"))
}

func TestConfidenceEmptySampleIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Confidence("en", ""))
}

func TestEvaluateReusesHighConfidenceCandidate(t *testing.T) {
	d := Evaluate("movie.en.srt", "this is clearly english text", "en", 50, 0.5)
	assert.Equal(t, ActionReuse, d.Action)
}

func TestEvaluateRecognisesLowConfidenceCandidate(t *testing.T) {
	d := Evaluate("movie.srt", "こんにちは世界", "en", 50, 0.5)
	assert.Equal(t, ActionRecognise, d.Action)
}

func TestAcceptMatchesEvaluateThreshold(t *testing.T) {
	sample := "this is clearly english text"
	assert.Equal(t, Accept("en", sample, 0.5), Evaluate("x.srt", sample, "en", 50, 0.5).Action == ActionReuse)
}
