// Package jobstate implements the per-file on-disk state machine of
// spec §3/§4.4: markers, run log/meta, operator overrides, and the
// 7-stage pipeline orchestrator.
package jobstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// basename strips the extension from a video path, the "N" every marker
// filename is built from.
func basename(videoPath string) string {
	return strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
}

func markerPath(dir, base, suffix string) string {
	return filepath.Join(dir, base+suffix)
}

func lockMarker(dir, base string) string       { return markerPath(dir, base, ".lock") }
func doneMarker(dir, base string) string       { return markerPath(dir, base, ".done") }
func asrFailedMarker(dir, base string) string  { return markerPath(dir, base, ".asr_failed") }
func jobOverridePath(dir, base string) string  { return markerPath(dir, base, ".job.json") }

func translateFailedLog(dir, base, lang string) string {
	if lang == "" {
		return markerPath(dir, base, ".translate_failed.log")
	}
	return markerPath(dir, base, ".translate_failed."+lang+".log")
}

func srtPath(dir, base, suffix string) string {
	if suffix == "" {
		return markerPath(dir, base, ".srt")
	}
	return markerPath(dir, base, "."+suffix+".srt")
}

func translatedSRTPath(dir, base, lang string) string {
	return markerPath(dir, base, "."+lang+".srt")
}

func bilingualSRTPath(dir, base string) string {
	return markerPath(dir, base, ".bi.srt")
}

// AcquireLock creates the lock marker with exclusive-create semantics,
// embedding the acquisition epoch, and fails if the lock already exists
// (spec §4.2 step 6).
func AcquireLock(dir, base string) error {
	path := lockMarker(dir, base)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("jobstate: acquire lock %s: %w", path, err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%d\n", time.Now().Unix())
	return err
}

// ReleaseLock removes the lock marker on exit, success or failure.
func ReleaseLock(dir, base string) error {
	path := lockMarker(dir, base)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("jobstate: release lock %s: %w", path, err)
	}
	return nil
}

// LockAge returns how long ago the lock at dir/base was acquired.
func LockAge(dir, base string) (time.Duration, error) {
	path := lockMarker(dir, base)
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return time.Since(info.ModTime()), nil
}

// MarkDone writes the terminal success marker (spec §4.4 step 7).
func MarkDone(dir, base string) error {
	path := doneMarker(dir, base)
	return os.WriteFile(path, []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0o644)
}

// DoneExists reports whether the done marker is present.
func DoneExists(dir, base string) bool {
	_, err := os.Stat(doneMarker(dir, base))
	return err == nil
}

// AsrFailure is the JSON body of N.asr_failed (spec §3).
type AsrFailure struct {
	Count int       `json:"count"`
	Ts    time.Time `json:"ts"`
	Stage string    `json:"stage"`
	Error string    `json:"error"`
	Fatal bool      `json:"fatal"`
}

// ReadAsrFailure loads N.asr_failed if present.
func ReadAsrFailure(dir, base string) (*AsrFailure, bool, error) {
	path := asrFailedMarker(dir, base)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("jobstate: read %s: %w", path, err)
	}
	var f AsrFailure
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, false, fmt.Errorf("jobstate: parse %s: %w", path, err)
	}
	return &f, true, nil
}

// RecordAsrFailure increments the failure count (or creates a fresh
// record) and marks it fatal once count reaches maxFailures (spec §4.4).
func RecordAsrFailure(dir, base, stage string, cause error, maxFailures int) error {
	existing, ok, err := ReadAsrFailure(dir, base)
	if err != nil {
		return err
	}
	count := 1
	if ok {
		count = existing.Count + 1
	}
	f := AsrFailure{
		Count: count,
		Ts:    time.Now().UTC(),
		Stage: stage,
		Error: cause.Error(),
		Fatal: count >= maxFailures,
	}
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("jobstate: marshal asr_failed: %w", err)
	}
	return os.WriteFile(asrFailedMarker(dir, base), data, 0o644)
}

// ClearAsrFailure removes N.asr_failed, called on a successful finalize
// (spec §4.4 step 7).
func ClearAsrFailure(dir, base string) error {
	err := os.Remove(asrFailedMarker(dir, base))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("jobstate: clear asr_failed: %w", err)
	}
	return nil
}

// AppendTranslateFailedLog appends one line to the per-language
// translate-failed log, creating it if absent.
func AppendTranslateFailedLog(dir, base, lang, message string) error {
	path := translateFailedLog(dir, base, lang)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("jobstate: open %s: %w", path, err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%s\t%s\n", time.Now().UTC().Format(time.RFC3339), message)
	return err
}

// AnyTranslateFailedLog reports whether any N.translate_failed* log
// exists, the signal the priority queue uses to boost a path to FAILED
// (spec §4.3).
func AnyTranslateFailedLog(dir, base string) bool {
	matches, err := filepath.Glob(filepath.Join(dir, base+".translate_failed*"))
	return err == nil && len(matches) > 0
}
