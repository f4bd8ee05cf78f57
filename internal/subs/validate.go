package subs

// Validate repairs cues in place per §4.8 and re-indexes 1..N. It is
// idempotent: Validate(Validate(cues)) reports no new issues and returns
// cues unchanged. Returned issues describe what was repaired, for
// logging at Warn per §7 (SRT structural anomaly: repair locally, log
// warning).
func Validate(cues []*Cue) ([]*Cue, []string) {
	var issues []string
	out := make([]*Cue, 0, len(cues))

	var prevEnd int64
	for _, c := range cues {
		if c.Text == "" {
			issues = append(issues, "dropped empty cue")
			continue
		}
		if c.EndMS <= c.StartMS {
			issues = append(issues, "fixed end<=start")
			c.EndMS = c.StartMS + 500
		}
		if c.StartMS < 0 {
			issues = append(issues, "clamped negative start")
			dur := c.Duration()
			c.StartMS = 0
			c.EndMS = dur
		}
		if c.StartMS < prevEnd {
			issues = append(issues, "shifted forward to resolve overlap")
			dur := c.Duration()
			c.StartMS = prevEnd
			c.EndMS = c.StartMS + dur
		}
		prevEnd = c.EndMS
		out = append(out, c)
	}

	for i, c := range out {
		c.Index = i + 1
	}

	return out, issues
}
