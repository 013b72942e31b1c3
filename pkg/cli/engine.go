// Package cli turns the process arguments into a configured interpreter and
// hands it to one terminal mode.
//
// Precedence is structural: supplied flags are bound, the selected profile is
// applied, and supplied flags are bound again, so a flag always beats the
// profile and the profile always beats the built-in defaults.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/openinterpreter/oi/pkg/interpreter"
)

// DefaultUpdateTimeout bounds the update check.
const DefaultUpdateTimeout = 5 * time.Second

// UpdateNotice is shown when a newer release exists.
const UpdateNotice = "> **A new version of Open Interpreter is available.**\n" +
	">\n" +
	"> Please run: `go install github.com/openinterpreter/oi/cmd/interpreter@latest`\n\n---"

// ErrNoMode is returned when the selected mode has no handler.
var ErrNoMode = errors.New("no handler configured for mode")

// Engine runs the startup pipeline. Zero-valued fields fall back to the
// shipped schema, the process streams and the default logger.
type Engine struct {
	Options    []OptionDescriptor
	Deprecated map[string]string

	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Sleep pauses after a deprecation notice; nil skips the pause.
	Sleep func(time.Duration)
	// Exit is called by the parser after printing --help.
	Exit func(int)
	// Display renders a markdown notice; nil writes it verbatim to Stdout.
	Display func(markdown string)
	// OnParse observes the parsed invocation before anything acts on it.
	OnParse func(inv *Invocation)
	// OnProfile observes the interpreter after the profile is applied and
	// before command-line values are bound again.
	OnProfile func(it *interpreter.Interpreter)

	Version string
	Release string

	Profiles      ProfileStore
	Validator     SettingsValidator
	Updates       UpdateChecker
	UpdateTimeout time.Duration

	Navigator Mode
	Server    Mode
	Chat      Mode
}

// Run configures it from argv (without the program name) and dispatches to a
// mode. The returned interpreter is the configured one, which may differ
// from it when the profile replaced it.
func (e *Engine) Run(ctx context.Context, it *interpreter.Interpreter, argv []string) (*interpreter.Interpreter, error) {
	if e.Profiles == nil {
		return it, errors.New("engine has no profile store")
	}
	options := e.Options
	if options == nil {
		options = Options()
	}
	deprecated := e.Deprecated
	if deprecated == nil {
		deprecated = DeprecatedFlags
	}
	stdout := writerOr(e.Stdout, os.Stdout)
	stderr := writerOr(e.Stderr, os.Stderr)
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	argv = TranslateDeprecated(argv, deprecated, stdout, e.Sleep)

	parserOpts := []ParserOption{WithWriters(stdout, stderr)}
	if e.Exit != nil {
		parserOpts = append(parserOpts, WithExit(e.Exit))
	}
	parser, err := NewParser(options, parserOpts...)
	if err != nil {
		return it, err
	}
	inv, err := parser.Parse(argv)
	if err != nil {
		return it, err
	}
	if e.OnParse != nil {
		e.OnParse(inv)
	}

	if handled, err := RunSpecialCommand(inv, e.Profiles, stdout, e.Version, e.Release); handled || err != nil {
		return it, err
	}

	if err := ResolveShortcuts(inv); err != nil {
		return it, err
	}

	if err := Bind(inv, options, it, logger); err != nil {
		return it, err
	}

	profile, _ := inv.String(OptProfile)
	if profile == "" {
		profile = DefaultProfile
	}
	next, err := e.Profiles.Apply(ctx, it, profile)
	if err != nil {
		return it, fmt.Errorf("failed to apply profile %s: %w", profile, err)
	}
	if next != nil {
		it = next
	}
	if e.OnProfile != nil {
		e.OnProfile(it)
	}

	if err := Bind(inv, options, it, logger); err != nil {
		return it, err
	}

	if it.LLM == nil {
		it.LLM = &interpreter.LLM{Model: interpreter.DefaultModel}
	}
	EnforceSafeMode(it)
	InferModelDefaults(it)

	if e.Validator != nil {
		if err := e.Validator.Validate(ctx, it); err != nil {
			return it, fmt.Errorf("settings validation failed: %w", err)
		}
	}

	if !it.Offline {
		e.checkForUpdate(ctx, logger, stdout)
	}

	it.InTerminalInterface = true

	name, mode := "chat", e.Chat
	switch {
	case inv.Bool(OptConvs):
		name, mode = OptConvs, e.Navigator
	case inv.Bool(OptServer):
		name, mode = OptServer, e.Server
	}
	if mode == nil {
		return it, fmt.Errorf("%w: %s", ErrNoMode, name)
	}

	logger.Debug("Starting mode", "mode", name, "profile", profile, "model", it.LLM.Model)
	return it, mode.Run(ctx, it)
}

// checkForUpdate never fails startup: errors and panics are logged and dropped.
func (e *Engine) checkForUpdate(ctx context.Context, logger *slog.Logger, stdout io.Writer) {
	if e.Updates == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("Update check panicked", "panic", r)
		}
	}()

	timeout := e.UpdateTimeout
	if timeout <= 0 {
		timeout = DefaultUpdateTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	newer, err := e.Updates.Check(ctx)
	if err != nil {
		logger.Debug("Update check failed", "error", err)
		return
	}
	if !newer {
		return
	}

	if e.Display != nil {
		e.Display(UpdateNotice)
		return
	}
	fmt.Fprintln(stdout, UpdateNotice)
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
