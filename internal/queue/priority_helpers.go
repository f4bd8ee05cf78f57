package queue

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/watchsub/watchsub/internal/jobstate"
)

// ComputePriority recomputes a path's queue priority at enqueue time per
// spec §4.3: a translate-failed log wins over a missing simplified
// target, which wins over the default tier.
func ComputePriority(path, simplifiedLang string) Priority {
	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if jobstate.AnyTranslateFailedLog(dir, base) {
		return PriorityFailed
	}

	targetPath := filepath.Join(dir, base+"."+simplifiedLang+".srt")
	if !fileExists(targetPath) {
		return PriorityMissingTarget
	}

	return PriorityDefault
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
