// Package media implements MediaProbe, AudioExtractor and SubtitleExtractor
// (spec §6) by wrapping the ffprobe/ffmpeg subprocesses, plus the track
// selector (§4.5). External binaries are the abstraction boundary named by
// spec §6, so wrapping them via os/exec is not a stdlib-over-library gap.
package media

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	iso "github.com/barbashov/iso639-3"
	"github.com/rs/zerolog"
)

var (
	FFprobePath = "ffprobe"
	FFmpegPath  = "ffmpeg"
)

// AudioTrack describes one audio stream (spec §3).
type AudioTrack struct {
	Index     int
	Lang      *iso.Language
	Title     string
	Codec     string
	Channels  int
	IsDefault bool
	IsForced  bool
}

// SubtitleKind distinguishes an embedded container stream from an
// external sibling file.
type SubtitleKind int

const (
	KindEmbedded SubtitleKind = iota
	KindExternal
)

// SubtitleTrack describes one subtitle stream or external sibling file
// (spec §3). Image-based tracks (PGS, VobSub) are never reusable.
type SubtitleTrack struct {
	Index        int
	Lang         *iso.Language
	Title        string
	Codec        string
	IsDefault    bool
	IsForced     bool
	IsImageBased bool
	Kind         SubtitleKind
	Path         string
}

// Probe is the result of enumerating one media file's streams.
type Probe struct {
	DurationSeconds float64
	AudioTracks     []AudioTrack
	SubtitleTracks  []SubtitleTrack
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	Index         int               `json:"index"`
	CodecType     string            `json:"codec_type"`
	CodecName     string            `json:"codec_name"`
	Channels      int               `json:"channels"`
	Disposition   map[string]int    `json:"disposition"`
	Tags          map[string]string `json:"tags"`
}

// imageBasedCodecs lists subtitle codecs that carry bitmap frames rather
// than text; these are never reusable (spec §4.5/§4.6).
var imageBasedCodecs = map[string]bool{
	"hdmv_pgs_subtitle": true,
	"dvd_subtitle":       true,
	"dvb_subtitle":        true,
	"xsub":                true,
}

// MediaProbe enumerates audio/subtitle streams via ffprobe.
type MediaProbe struct {
	log zerolog.Logger
}

func NewMediaProbe(log zerolog.Logger) *MediaProbe {
	return &MediaProbe{log: log}
}

func (p *MediaProbe) Probe(path string) (*Probe, error) {
	defer acquireFFmpegGate()()
	cmd := exec.Command(FFprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("media: ffprobe %s: %w", path, err)
	}

	var raw ffprobeOutput
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("media: parse ffprobe output for %s: %w", path, err)
	}

	probe := &Probe{}
	if d, err := strconv.ParseFloat(strings.TrimSpace(raw.Format.Duration), 64); err == nil {
		probe.DurationSeconds = d
	}

	for _, s := range raw.Streams {
		switch s.CodecType {
		case "audio":
			probe.AudioTracks = append(probe.AudioTracks, AudioTrack{
				Index:     s.Index,
				Lang:      iso.FromAnyCode(s.Tags["language"]),
				Title:     s.Tags["title"],
				Codec:     s.CodecName,
				Channels:  s.Channels,
				IsDefault: s.Disposition["default"] == 1,
				IsForced:  s.Disposition["forced"] == 1,
			})
		case "subtitle":
			probe.SubtitleTracks = append(probe.SubtitleTracks, SubtitleTrack{
				Index:        s.Index,
				Lang:         iso.FromAnyCode(s.Tags["language"]),
				Title:        s.Tags["title"],
				Codec:        s.CodecName,
				IsDefault:    s.Disposition["default"] == 1,
				IsForced:     s.Disposition["forced"] == 1,
				IsImageBased: imageBasedCodecs[s.CodecName],
				Kind:         KindEmbedded,
			})
		}
	}

	return probe, nil
}
