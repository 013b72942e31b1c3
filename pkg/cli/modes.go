package cli

import (
	"context"

	"github.com/openinterpreter/oi/pkg/interpreter"
)

// ProfileStore loads and manages configuration profiles.
type ProfileStore interface {
	// Apply applies the named profile to it. The returned interpreter may be
	// it or a replacement.
	Apply(ctx context.Context, it *interpreter.Interpreter, name string) (*interpreter.Interpreter, error)
	// Reset restores a built-in profile to its shipped content. An empty name
	// resets every built-in profile.
	Reset(name string) error
	// OpenDir creates the profile directory and opens it for the user.
	OpenDir() error
}

// SettingsValidator checks the final configuration before a mode starts.
type SettingsValidator interface {
	Validate(ctx context.Context, it *interpreter.Interpreter) error
}

// UpdateChecker reports whether a newer release is available.
type UpdateChecker interface {
	Check(ctx context.Context) (bool, error)
}

// Mode is a terminal operating mode.
type Mode interface {
	Run(ctx context.Context, it *interpreter.Interpreter) error
}

// ModeFunc adapts a function to Mode.
type ModeFunc func(ctx context.Context, it *interpreter.Interpreter) error

func (f ModeFunc) Run(ctx context.Context, it *interpreter.Interpreter) error {
	return f(ctx, it)
}
