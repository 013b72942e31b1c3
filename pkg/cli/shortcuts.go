package cli

import (
	"fmt"
	"strings"

	"github.com/openinterpreter/oi/pkg/interpreter"
)

// Shortcut is a boolean flag that selects a bundled profile.
type Shortcut struct {
	Option  string
	Profile string
}

// Shortcuts lists the profile shortcuts in resolution order.
var Shortcuts = []Shortcut{
	{Option: OptFast, Profile: "fast.yaml"},
	{Option: OptVision, Profile: "vision.yaml"},
	{Option: OptOS, Profile: "os.yaml"},
	{Option: OptLocal, Profile: "local.yaml"},
}

// ResolveShortcuts rewrites the profile selection when a shortcut flag is set.
// Shortcuts are mutually exclusive; combining them is a usage error.
func ResolveShortcuts(inv *Invocation) error {
	var selected []Shortcut
	for _, sc := range Shortcuts {
		if inv.Bool(sc.Option) {
			selected = append(selected, sc)
		}
	}

	switch len(selected) {
	case 0:
		return nil
	case 1:
		inv.Set(OptProfile, selected[0].Profile)
		return nil
	default:
		return buildShortcutConflictError(selected)
	}
}

func buildShortcutConflictError(selected []Shortcut) error {
	var sb strings.Builder
	sb.WriteString("profile shortcuts are mutually exclusive: ")

	flags := make([]string, len(selected))
	for i, sc := range selected {
		flags[i] = fmt.Sprintf("--%s (%s)", sc.Option, sc.Profile)
	}
	sb.WriteString(strings.Join(flags, ", "))
	sb.WriteString("; pick one, or select a profile with --profile")

	return &UsageError{Err: fmt.Errorf("%s", sb.String())}
}

// EnforceSafeMode turns auto_run off whenever a safe mode other than "off" is
// active. Code must never run unreviewed in safe mode.
func EnforceSafeMode(it *interpreter.Interpreter) {
	if it.AutoRun && it.SafeMode != "" && it.SafeMode != interpreter.SafeModeOff {
		it.AutoRun = false
	}
}
