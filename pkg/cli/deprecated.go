package cli

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// DeprecationPause is how long the rename notice stays alone on screen.
const DeprecationPause = 1500 * time.Millisecond

// TranslateDeprecated rewrites obsolete flag spellings in argv before parsing.
// For every obsolete spelling present it prints one notice to w, waits via
// sleep, removes each occurrence and appends the canonical spelling once.
// argv is not modified; running it on its own output is a no-op.
func TranslateDeprecated(argv []string, deprecated map[string]string, w io.Writer, sleep func(time.Duration)) []string {
	out := append([]string(nil), argv...)

	// Map iteration order is random; keep notices and appends stable.
	olds := make([]string, 0, len(deprecated))
	for old := range deprecated {
		olds = append(olds, old)
	}
	sort.Strings(olds)

	for _, old := range olds {
		if !containsToken(out, old) {
			continue
		}
		replacement := deprecated[old]

		fmt.Fprintf(w, "\n`%s` has been renamed to `%s`.\n\n", old, replacement)
		if sleep != nil {
			sleep(DeprecationPause)
		}

		kept := out[:0]
		for _, arg := range out {
			if arg != old {
				kept = append(kept, arg)
			}
		}
		out = append(kept, replacement)
	}
	return out
}

func containsToken(argv []string, token string) bool {
	for _, arg := range argv {
		if arg == token {
			return true
		}
	}
	return false
}
