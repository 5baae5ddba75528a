package table

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LatestFile returns the most recently modified file in dir matching the
// glob pattern. Reports and exports land in a shared downloads folder with
// timestamped names; "latest wins" is the selection rule.
func LatestFile(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	var latest string
	var latestMod time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = m
			latestMod = info.ModTime()
		}
	}

	if latest == "" {
		return "", fmt.Errorf("no files matching %q in %s", pattern, dir)
	}
	return latest, nil
}
