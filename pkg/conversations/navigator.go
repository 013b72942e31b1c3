package conversations

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/openinterpreter/oi/pkg/cli"
	"github.com/openinterpreter/oi/pkg/display"
	"github.com/openinterpreter/oi/pkg/interpreter"
)

// timeLayout is how conversation timestamps are listed.
const timeLayout = "2006-01-02 15:04"

// Navigator lists saved conversations, lets the user choose one and resumes
// it in the chat mode.
type Navigator struct {
	Store   *Store
	Display *display.Display
	Input   *display.Input
	Chat    cli.Mode
}

// Run implements cli.Mode. An empty selection leaves without resuming.
func (n *Navigator) Run(ctx context.Context, it *interpreter.Interpreter) error {
	convs, err := n.Store.List()
	if err != nil {
		return err
	}
	if len(convs) == 0 {
		n.Display.Muted("No conversations found.")
		return nil
	}

	n.Display.Title("Conversations")
	w := n.Display.Writer()
	for i, c := range convs {
		fmt.Fprintf(w, "  [%d] %s (%s)\n", i+1, c.Title, c.UpdatedAt.Local().Format(timeLayout))
	}

	conv, err := n.choose(ctx, convs)
	if err != nil || conv == nil {
		return err
	}

	it.ConversationID = conv.ID
	it.Messages = append([]interpreter.Message(nil), conv.Messages...)
	for _, m := range conv.Messages {
		n.replay(m)
	}

	if n.Chat == nil {
		return nil
	}
	return n.Chat.Run(ctx, it)
}

// choose prompts until the user enters a valid index or nothing.
func (n *Navigator) choose(ctx context.Context, convs []*Conversation) (*Conversation, error) {
	w := n.Display.Writer()
	for {
		fmt.Fprintf(w, "\nSelect a conversation [1-%d], or press enter to cancel: ", len(convs))
		line, err := n.Input.ReadLine(ctx)
		if err != nil {
			fmt.Fprintln(w)
			return nil, ignoreEOF(err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			return nil, nil
		}
		idx, err := strconv.Atoi(line)
		if err != nil || idx < 1 || idx > len(convs) {
			n.Display.Error(fmt.Sprintf("%q is not a valid choice.", line))
			continue
		}
		return convs[idx-1], nil
	}
}

func (n *Navigator) replay(m interpreter.Message) {
	switch m.Role {
	case "user":
		n.Display.Muted("> " + m.Content)
	default:
		n.Display.Markdown(m.Content)
	}
}
