// Package subs implements the Cue/Group data model, SRT read/write and the
// idempotent validator of spec §3/§4.8.
package subs

import (
	"fmt"
	"strings"
	"time"

	astisub "github.com/asticode/go-astisub"
)

// Cue is one subtitle line. StartMS/EndMS are milliseconds from the start
// of the media; EndMS >= StartMS is an invariant maintained by Validate,
// not assumed on construction.
type Cue struct {
	Index   int
	StartMS int64
	EndMS   int64
	Text    string
	GroupID int
	TextDst string
}

func (c *Cue) Duration() int64 { return c.EndMS - c.StartMS }

// ReadSRT parses path into an ordered cue list using go-astisub, the same
// library the teacher wraps in pkg/subs for dubtitle post-processing.
func ReadSRT(path string) ([]*Cue, error) {
	subs, err := astisub.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("subs: read %s: %w", path, err)
	}
	cues := make([]*Cue, 0, len(subs.Items))
	for i, item := range subs.Items {
		cues = append(cues, &Cue{
			Index:   i + 1,
			StartMS: item.StartAt.Milliseconds(),
			EndMS:   item.EndAt.Milliseconds(),
			Text:    joinLines(item),
		})
	}
	return cues, nil
}

func joinLines(item *astisub.Item) string {
	var b strings.Builder
	for i, line := range item.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line.String())
	}
	return b.String()
}

// WriteSRT serialises cues to path as strict SRT: integer index,
// HH:MM:SS,mmm --> HH:MM:SS,mmm, UTF-8 without BOM.
func WriteSRT(path string, cues []*Cue) error {
	subs := astisub.NewSubtitles()
	for _, c := range cues {
		text := c.Text
		if c.TextDst != "" {
			text = c.TextDst
		}
		lines := toLines(text)
		subs.Items = append(subs.Items, &astisub.Item{
			StartAt: time.Duration(c.StartMS) * time.Millisecond,
			EndAt:   time.Duration(c.EndMS) * time.Millisecond,
			Lines:   lines,
		})
	}
	return subs.Write(path)
}

// WriteBilingualSRT interleaves source and destination text per cue,
// ordered by order ("raw_first" or "translation_first"), implementing the
// BILINGUAL supplemented feature.
func WriteBilingualSRT(path string, cues []*Cue, order string) error {
	subs := astisub.NewSubtitles()
	for _, c := range cues {
		first, second := c.Text, c.TextDst
		if order == "translation_first" {
			first, second = c.TextDst, c.Text
		}
		var lines []astisub.Line
		lines = append(lines, toLines(first)...)
		if second != "" {
			lines = append(lines, toLines(second)...)
		}
		subs.Items = append(subs.Items, &astisub.Item{
			StartAt: time.Duration(c.StartMS) * time.Millisecond,
			EndAt:   time.Duration(c.EndMS) * time.Millisecond,
			Lines:   lines,
		})
	}
	return subs.Write(path)
}

func toLines(text string) []astisub.Line {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	lines := make([]astisub.Line, 0, len(parts))
	for _, p := range parts {
		lines = append(lines, astisub.Line{Items: []astisub.LineItem{{Text: p}}})
	}
	return lines
}
