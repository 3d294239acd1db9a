package watcher

import (
	"path/filepath"
	"time"
)

// Options configures the file watcher behavior.
type Options struct {
	// IgnorePatterns are filepath.Match patterns tested against base names.
	IgnorePatterns []string
	// SettleDelay is how long a file must stay unchanged before it is reported.
	SettleDelay time.Duration
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay == 0 {
		o.SettleDelay = 100 * time.Millisecond
	}

	// nil means defaults; an explicit empty slice disables ignoring.
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{
			"*.tmp",
			"*~",
			".DS_Store",
		}
	}
}

// shouldIgnore checks if a path matches ignore patterns.
func (o *Options) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range o.IgnorePatterns {
		matched, err := filepath.Match(pattern, base)
		if err == nil && matched {
			return true
		}
	}
	return false
}
