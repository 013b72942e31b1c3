// Package validate checks language model settings before a session starts.
package validate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/openinterpreter/oi/pkg/display"
	"github.com/openinterpreter/oi/pkg/interpreter"
	"github.com/openinterpreter/oi/pkg/llm"
)

// ErrMissingAPIKey is returned when a hosted model has no key and none was entered.
var ErrMissingAPIKey = errors.New("no OpenAI API key provided")

// ApprovalNotice is shown when generated code needs confirmation.
const ApprovalNotice = "**Open Interpreter** will require approval before running code.\n\n" +
	"Use `interpreter -y` to bypass this.\n\n" +
	"Press `CTRL-C` to exit."

// LLMSettings is the pre-flight check run before any mode.
type LLMSettings struct {
	Display *display.Display
	// ReadSecret reads a line without echo. Defaults to the terminal on stdin.
	ReadSecret func() (string, error)
	Getenv     func(string) string
}

// NewLLMSettings creates a validator writing to d.
func NewLLMSettings(d *display.Display) *LLMSettings {
	return &LLMSettings{
		Display:    d,
		ReadSecret: readTerminalSecret,
		Getenv:     os.Getenv,
	}
}

// Validate prompts for an API key when a hosted OpenAI model has none, then
// announces the model unless code runs automatically.
func (v *LLMSettings) Validate(ctx context.Context, it *interpreter.Interpreter) error {
	if it.LLM == nil {
		return errors.New("no language model configured")
	}

	if v.needsKey(it) {
		v.Display.Markdown("---\n> OpenAI API key not found\n\n" +
			"To use `" + it.LLM.Model + "` please provide an OpenAI API key. " +
			"It is kept for this session only; set `OPENAI_API_KEY` to skip this step.\n\n---")
		fmt.Fprint(v.Display.Writer(), "OpenAI API key: ")

		key, err := v.readSecret(ctx)
		fmt.Fprintln(v.Display.Writer())
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return ErrMissingAPIKey
		}
		it.LLM.APIKey = key
	}

	if !it.AutoRun {
		v.Display.Markdown(fmt.Sprintf("> Model set to `%s`\n\n%s", it.LLM.Model, ApprovalNotice))
	}
	return nil
}

type secretResult struct {
	value string
	err   error
}

// readSecret runs ReadSecret on a goroutine so an interrupt cancels the
// prompt. The goroutine is abandoned on cancellation.
func (v *LLMSettings) readSecret(ctx context.Context) (string, error) {
	done := make(chan secretResult, 1)
	go func() {
		value, err := v.ReadSecret()
		done <- secretResult{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.value, r.err
	}
}

func (v *LLMSettings) needsKey(it *interpreter.Interpreter) bool {
	if it.Offline || it.LLM.APIBase != "" || it.LLM.APIKey != "" {
		return false
	}
	if !llm.HostedByOpenAI(it.LLM.Model) {
		return false
	}
	return v.Getenv(llm.EnvAPIKey) == ""
}

func readTerminalSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal")
	}
	b, err := term.ReadPassword(fd)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
