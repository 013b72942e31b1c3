// Package chat implements the interactive terminal conversation.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/openinterpreter/oi/pkg/conversations"
	"github.com/openinterpreter/oi/pkg/display"
	"github.com/openinterpreter/oi/pkg/interpreter"
	"github.com/openinterpreter/oi/pkg/llm"
)

const (
	// Prompt precedes each user message.
	Prompt = "> "
	// fence opens and closes a multi-line message.
	fence = "```"
)

// CompleterFactory builds a completer for the final model settings.
type CompleterFactory func(settings interpreter.LLM) llm.Completer

// REPL reads user messages, sends the conversation to the language model and
// prints replies until the user leaves.
type REPL struct {
	Display      *display.Display
	Input        *display.Input
	NewCompleter CompleterFactory

	// Store persists the conversation after every reply when set.
	Store  *conversations.Store
	Logger *slog.Logger
}

// Run implements cli.Mode. It returns nil on exit, quit or end of input.
func (r *REPL) Run(ctx context.Context, it *interpreter.Interpreter) error {
	if it.LLM == nil {
		return errors.New("language model settings missing")
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	completer := r.NewCompleter(*it.LLM)
	conv := r.resume(it)

	for {
		message, err := r.read(ctx, it.MultiLine)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.Display.Writer())
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.TrimSpace(message) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		it.Messages = append(it.Messages, interpreter.Message{Role: "user", Content: message})
		logger.Debug("Sending conversation", "model", it.LLM.Model, "messages", len(it.Messages))

		reply, err := completer.Complete(ctx, it.FullSystemMessage(), it.Messages)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			it.Messages = it.Messages[:len(it.Messages)-1]
			r.Display.Error(fmt.Sprintf("Error: %v", err))
			continue
		}

		it.Messages = append(it.Messages, interpreter.Message{Role: "assistant", Content: reply})
		r.Display.Markdown(reply)

		if r.Store != nil {
			conv.Messages = it.Messages
			if err := r.Store.Save(conv); err != nil {
				logger.Warn("Failed to save conversation", "error", err)
				continue
			}
			it.ConversationID = conv.ID
		}
	}
}

// resume returns the stored conversation matching it, or a fresh one.
func (r *REPL) resume(it *interpreter.Interpreter) *conversations.Conversation {
	if r.Store != nil && it.ConversationID != "" {
		if conv, err := r.Store.Load(it.ConversationID); err == nil {
			return conv
		}
	}
	return &conversations.Conversation{ID: it.ConversationID}
}

// read returns one user message. With multiLine set, a message opening with
// ``` continues until a line ending with ```, and the fences are dropped.
func (r *REPL) read(ctx context.Context, multiLine bool) (string, error) {
	fmt.Fprint(r.Display.Writer(), Prompt)
	line, err := r.Input.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	if !multiLine || !strings.HasPrefix(line, fence) {
		return line, nil
	}

	body := strings.TrimPrefix(line, fence)
	if strings.HasSuffix(body, fence) {
		return strings.TrimSuffix(body, fence), nil
	}

	lines := []string{body}
	for {
		next, err := r.Input.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if strings.HasSuffix(strings.TrimSpace(next), fence) {
			lines = append(lines, strings.TrimSuffix(strings.TrimSpace(next), fence))
			break
		}
		lines = append(lines, next)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
