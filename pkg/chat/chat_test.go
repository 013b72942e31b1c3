package chat

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openinterpreter/oi/pkg/conversations"
	"github.com/openinterpreter/oi/pkg/display"
	"github.com/openinterpreter/oi/pkg/interpreter"
	"github.com/openinterpreter/oi/pkg/llm"
)

type fakeCompleter struct {
	system   string
	received [][]interpreter.Message
	replies  []string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, system string, messages []interpreter.Message) (string, error) {
	f.system = system
	f.received = append(f.received, append([]interpreter.Message(nil), messages...))
	if f.err != nil {
		return "", f.err
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func newTestREPL(input string, completer *fakeCompleter) (*REPL, *bytes.Buffer) {
	var out bytes.Buffer
	return &REPL{
		Display: display.New(&out),
		Input:   display.NewInput(strings.NewReader(input)),
		NewCompleter: func(interpreter.LLM) llm.Completer {
			return completer
		},
	}, &out
}

func TestREPL_Conversation(t *testing.T) {
	completer := &fakeCompleter{replies: []string{"first reply", "second reply"}}
	repl, out := newTestREPL("hello\n\nagain\nexit\nignored\n", completer)

	it := interpreter.New()
	it.CustomInstructions = "be brief"
	require.NoError(t, repl.Run(context.Background(), it))

	require.Len(t, completer.received, 2)
	assert.Equal(t, it.FullSystemMessage(), completer.system)
	assert.Equal(t, []interpreter.Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "first reply"},
		{Role: "user", Content: "again"},
		{Role: "assistant", Content: "second reply"},
	}, it.Messages)

	text := out.String()
	assert.Contains(t, text, Prompt)
	assert.Contains(t, text, "second reply")
}

func TestREPL_EndOfInput(t *testing.T) {
	repl, _ := newTestREPL("", &fakeCompleter{})
	assert.NoError(t, repl.Run(context.Background(), interpreter.New()))
}

func TestREPL_CompletionError(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("rate limited")}
	repl, out := newTestREPL("hello\nquit\n", completer)

	it := interpreter.New()
	require.NoError(t, repl.Run(context.Background(), it))

	assert.Empty(t, it.Messages)
	assert.Contains(t, out.String(), "Error: rate limited")
}

func TestREPL_MultiLine(t *testing.T) {
	tests := []struct {
		name      string
		multiLine bool
		input     string
		want      string
	}{
		{name: "fenced block", multiLine: true, input: "```first\nsecond\nthird```\n", want: "first\nsecond\nthird"},
		{name: "single line fence", multiLine: true, input: "```inline```\n", want: "inline"},
		{name: "disabled", multiLine: false, input: "```first\n", want: "```first"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{replies: []string{"ok"}}
			repl, _ := newTestREPL(tt.input, completer)

			it := interpreter.New()
			it.MultiLine = tt.multiLine
			require.NoError(t, repl.Run(context.Background(), it))

			require.Len(t, completer.received, 1)
			assert.Equal(t, tt.want, completer.received[0][0].Content)
		})
	}
}

func TestREPL_Persists(t *testing.T) {
	store := conversations.NewStore(filepath.Join(t.TempDir(), "conversations"))
	completer := &fakeCompleter{replies: []string{"saved"}}
	repl, _ := newTestREPL("remember me\n", completer)
	repl.Store = store

	it := interpreter.New()
	require.NoError(t, repl.Run(context.Background(), it))
	require.NotEmpty(t, it.ConversationID)

	conv, err := store.Load(it.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "remember me", conv.Title)
	assert.Len(t, conv.Messages, 2)
}

func TestREPL_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repl, _ := newTestREPL("", &fakeCompleter{})
	repl.Input = display.NewInput(blockingReader{})
	assert.ErrorIs(t, repl.Run(ctx, interpreter.New()), context.Canceled)
}

type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) {
	select {}
}
