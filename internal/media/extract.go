package media

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FFmpegGate is acquired around every ffmpeg/ffprobe subprocess
// invocation, the hook internal/queue wires to the FFMPEG_CONCURRENCY
// semaphore of spec §4.3 so the nested resource cap applies regardless
// of which pipeline stage shells out. The zero value never blocks.
var FFmpegGate func() (release func())

func acquireFFmpegGate() (release func()) {
	if FFmpegGate == nil {
		return func() {}
	}
	return FFmpegGate()
}

// ffmpegPosition formats a duration the way ffmpeg's -ss/-to flags expect:
// "H:MM:SS.mmm".
func ffmpegPosition(d time.Duration) string {
	total := d.Seconds()
	h := int(total) / 3600
	m := (int(total) % 3600) / 60
	s := total - float64(h*3600+m*60)
	return fmt.Sprintf("%d:%02d:%06.3f", h, m, s)
}

// ExtractAudio extracts the audio track at streamIndex from srcPath into a
// mono WAV file at sampleRate Hz, the format every ASR backend in §6
// expects. outPath's parent directory must already exist.
func ExtractAudio(srcPath string, streamIndex int, sampleRate int, outPath string) error {
	args := []string{
		"-y", "-v", "error",
		"-i", srcPath,
		"-map", fmt.Sprintf("0:%d", streamIndex),
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "wav",
		outPath,
	}
	defer acquireFFmpegGate()()
	cmd := exec.Command(FFmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("media: extract audio from %s: %w: %s", srcPath, err, out)
	}
	return nil
}

// ExtractAudioRange extracts [start, start+dur) of streamIndex's audio,
// used by the realtime chunker (spec §4.7) to cut fixed-size windows
// without decoding the whole file up front.
func ExtractAudioRange(srcPath string, streamIndex int, sampleRate int, start, dur time.Duration, outPath string) error {
	args := []string{
		"-y", "-v", "error",
		"-ss", ffmpegPosition(start),
		"-i", srcPath,
		"-t", ffmpegPosition(dur),
		"-map", fmt.Sprintf("0:%d", streamIndex),
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "wav",
		outPath,
	}
	defer acquireFFmpegGate()()
	cmd := exec.Command(FFmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("media: extract audio range from %s: %w: %s", srcPath, err, out)
	}
	return nil
}

// ExtractSubtitleTrack dumps an embedded text-based subtitle stream to an
// SRT file at outPath, for the reuse gate (spec §4.6) to inspect.
func ExtractSubtitleTrack(srcPath string, streamIndex int, outPath string) error {
	args := []string{
		"-y", "-v", "error",
		"-i", srcPath,
		"-map", fmt.Sprintf("0:%d", streamIndex),
		outPath,
	}
	defer acquireFFmpegGate()()
	cmd := exec.Command(FFmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("media: extract subtitle track from %s: %w: %s", srcPath, err, out)
	}
	return nil
}

var durationLineRe = regexp.MustCompile(`time=(\d+):(\d+):(\d+\.\d+)`)

// ProbeDuration returns a file's duration in seconds, trying ffprobe first
// and falling back to parsing ffmpeg's stderr progress line if ffprobe is
// unavailable or returns N/A (e.g. a raw elementary audio stream).
func ProbeDuration(path string) (float64, error) {
	cmd := exec.Command(FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err == nil {
		if d, perr := strconv.ParseFloat(strings.TrimSpace(string(out)), 64); perr == nil && d > 0 {
			return d, nil
		}
	}
	return probeDurationViaFFmpeg(path)
}

func probeDurationViaFFmpeg(path string) (float64, error) {
	cmd := exec.Command(FFmpegPath, "-i", path, "-f", "null", "-")
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, fmt.Errorf("media: stderr pipe for %s: %w", path, err)
	}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("media: start ffmpeg for %s: %w", path, err)
	}

	var last string
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if m := durationLineRe.FindStringSubmatch(scanner.Text()); m != nil {
			last = scanner.Text()
			_ = last
			h, _ := strconv.Atoi(m[1])
			mm, _ := strconv.Atoi(m[2])
			s, _ := strconv.ParseFloat(m[3], 64)
			return float64(h*3600+mm*60) + s, nil
		}
	}
	_ = cmd.Wait()
	return 0, fmt.Errorf("media: could not determine duration for %s", path)
}

// FormatDuration renders seconds as a compact human string ("1h 12m 34s"),
// used in log lines and run-meta summaries.
func FormatDuration(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// ExternalSubtitleSiblings finds subtitle files sitting next to videoPath
// sharing its base name (e.g. "movie.en.srt" for "movie.mkv"), the external
// half of the track selector's candidate pool (spec §4.5).
func ExternalSubtitleSiblings(videoPath string, exts []string) ([]string, error) {
	dir := filepath.Dir(videoPath)
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("media: list siblings of %s: %w", videoPath, err)
	}
	extSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		extSet[strings.ToLower(e)] = true
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if !extSet[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}
