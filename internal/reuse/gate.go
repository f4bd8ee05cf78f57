package reuse

// Action is what the job-state orchestrator should do with a candidate
// subtitle once the gate has classified it (spec §4.4 step 4).
type Action string

const (
	ActionReuse     Action = "reuse"
	ActionRecognise Action = "recognise"
)

// Decision is the outcome of evaluating one non-target-language candidate
// subtitle against the configured minimum confidence.
type Decision struct {
	Variant    Variant
	Confidence float64
	Action     Action
}

// Evaluate classifies filenameOrLabel/text and scores it against lang
// (the candidate's believed language), returning whether to reuse the
// candidate verbatim or fall back to recognition (spec §4.6).
func Evaluate(filenameOrLabel, text, lang string, sampleChars int, minConfidence float64) Decision {
	sample := firstRunes(text, sampleChars)
	variant := DescribeVariant(filenameOrLabel, text, sampleChars)
	confidence := Confidence(lang, sample)

	action := ActionRecognise
	if confidence >= minConfidence {
		action = ActionReuse
	}

	return Decision{
		Variant:    variant,
		Confidence: confidence,
		Action:     action,
	}
}
