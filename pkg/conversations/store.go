// Package conversations persists chat transcripts and lets the user pick one
// to resume.
//
// Each conversation is a JSON file named after its UUID inside the
// conversations directory.
package conversations

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openinterpreter/oi/pkg/interpreter"
)

// titleLength caps derived titles.
const titleLength = 60

// ErrNotFound is returned by Load for an unknown conversation ID.
var ErrNotFound = errors.New("conversation not found")

// Conversation is one persisted transcript.
type Conversation struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	Messages  []interpreter.Message `json:"messages"`
}

// Store reads and writes conversations in Dir.
type Store struct {
	Dir string
	now func() time.Time
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir, now: time.Now}
}

// DefaultDir returns the per-user conversations directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(base, "open-interpreter", "conversations"), nil
}

// Save writes c, assigning an ID, creation time and title when missing.
func (s *Store) Save(c *Conversation) error {
	now := s.now()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Title == "" {
		c.Title = deriveTitle(c.Messages)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create conversations directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}

	// Write then rename so readers never see a partial file.
	tmp, err := os.CreateTemp(s.Dir, ".conversation-*")
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(c.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// Load reads the conversation with the given ID.
func (s *Store) Load(id string) (*Conversation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid conversation id %q: %w", id, err)
	}
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}

	var c Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode conversation %s: %w", id, err)
	}
	return &c, nil
}

// List returns every readable conversation, most recently updated first.
// Unreadable files are skipped with a warning.
func (s *Store) List() ([]*Conversation, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	var out []*Conversation
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		c, err := s.Load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			slog.Warn("Skipping conversation", "file", name, "error", err)
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.Dir, id+".json")
}

// deriveTitle uses the first user message, collapsed to one line.
func deriveTitle(messages []interpreter.Message) string {
	for _, m := range messages {
		if m.Role != "user" {
			continue
		}
		title := strings.Join(strings.Fields(m.Content), " ")
		if title == "" {
			continue
		}
		if r := []rune(title); len(r) > titleLength {
			title = string(r[:titleLength-3]) + "..."
		}
		return title
	}
	return "Untitled conversation"
}
