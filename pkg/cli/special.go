package cli

import (
	"fmt"
	"io"
)

// ProductName prefixes the version line.
const ProductName = "Open Interpreter"

// RunSpecialCommand runs the first special command present in inv. It
// reports handled=true when one ran, in which case startup must stop.
func RunSpecialCommand(inv *Invocation, profiles ProfileStore, w io.Writer, version, release string) (bool, error) {
	if inv.Bool(OptProfiles) {
		if err := profiles.OpenDir(); err != nil {
			return true, fmt.Errorf("failed to open profile directory: %w", err)
		}
		return true, nil
	}

	if value, ok := inv.Lookup(OptResetProfile); ok && value != nil {
		name := ""
		if value != Bare {
			name, _ = value.(string)
		}
		if err := profiles.Reset(name); err != nil {
			return true, fmt.Errorf("failed to reset profile: %w", err)
		}
		if name == "" {
			fmt.Fprintln(w, "Default profiles have been reset.")
		} else {
			fmt.Fprintf(w, "Profile %s has been reset.\n", name)
		}
		return true, nil
	}

	if inv.Bool(OptVersion) {
		fmt.Fprintf(w, "%s %s %s\n", ProductName, version, release)
		return true, nil
	}

	return false, nil
}
