// Package profiles stores, resolves and applies configuration profiles.
//
// A profile is a YAML file whose keys mirror the interpreter settings, with
// an optional llm mapping for the language model. Built-in profiles are
// embedded in the binary and written to the profile directory on first use.
package profiles

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/openinterpreter/oi/pkg/httpclient"
	"github.com/openinterpreter/oi/pkg/interpreter"
)

//go:embed defaults/*.yaml
var builtinFS embed.FS

// EnvProfilesDir overrides the profile directory.
const EnvProfilesDir = "OPEN_INTERPRETER_PROFILES_DIR"

// FetchTimeout bounds downloading a profile from a URL.
const FetchTimeout = 10 * time.Second

// maxProfileSize caps profile files fetched over the network.
const maxProfileSize = 1 << 20

// ErrNotBuiltin is returned when resetting a profile that is not shipped.
var ErrNotBuiltin = errors.New("not a built-in profile")

// ErrNotFound is returned when a profile identifier resolves to nothing.
var ErrNotFound = errors.New("profile not found")

// Store manages the profile directory.
type Store struct {
	Dir string

	client *httpclient.Client
	opener func(dir string) error
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient sets the client used to fetch profiles from URLs.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(s *Store) {
		s.client = c
	}
}

// WithOpener sets how OpenDir reveals the directory.
func WithOpener(fn func(dir string) error) Option {
	return func(s *Store) {
		s.opener = fn
	}
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		Dir:    dir,
		client: httpclient.New(httpclient.WithTimeout(FetchTimeout), httpclient.WithMaxRetries(1)),
		opener: openInFileManager,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultDir returns the profile directory for this user.
func DefaultDir() (string, error) {
	if dir := os.Getenv(EnvProfilesDir); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(base, "open-interpreter", "profiles"), nil
}

// Builtins lists the shipped profile names.
func Builtins() []string {
	entries, err := fs.ReadDir(builtinFS, "defaults")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// Builtin returns the shipped content of a built-in profile.
func Builtin(name string) ([]byte, error) {
	if !slices.Contains(Builtins(), name) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotBuiltin)
	}
	return builtinFS.ReadFile(path.Join("defaults", name))
}

// Apply resolves name and applies the profile to it. The identifier may be
// an http(s) URL, a file path, or a name inside the profile directory with
// or without the .yaml extension.
func (s *Store) Apply(ctx context.Context, it *interpreter.Interpreter, name string) (*interpreter.Interpreter, error) {
	data, source, err := s.Read(ctx, name)
	if err != nil {
		return nil, err
	}

	settings, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", source, err)
	}
	if err := Decode(settings, it); err != nil {
		return nil, fmt.Errorf("profile %s: %w", source, err)
	}

	slog.Debug("Applied profile", "profile", name, "source", source)
	return it, nil
}

// Read returns the raw profile and where it was found.
func (s *Store) Read(ctx context.Context, name string) ([]byte, string, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		data, err := s.fetch(ctx, name)
		return data, name, err
	}

	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		data, err := os.ReadFile(name)
		return data, name, err
	}

	if err := s.ensureBuiltins(); err != nil {
		return nil, "", err
	}

	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = append(candidates, name+".yaml", name+".yml")
	}
	for _, candidate := range candidates {
		p := filepath.Join(s.Dir, candidate)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, p, fmt.Errorf("failed to read profile: %w", err)
		}
	}

	return nil, "", fmt.Errorf("%w: %q (looked in %s)", ErrNotFound, name, s.Dir)
}

func (s *Store) fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	resp, err := s.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", url, err)
	}
	return data, nil
}

// Reset restores a built-in profile. An empty name restores all of them.
func (s *Store) Reset(name string) error {
	names := Builtins()
	if name != "" {
		if !slices.Contains(names, name) {
			return fmt.Errorf("%s: %w", name, ErrNotBuiltin)
		}
		names = []string{name}
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	for _, n := range names {
		if err := s.writeBuiltin(n); err != nil {
			return err
		}
	}
	return nil
}

// OpenDir creates the profile directory and reveals it in the file manager.
func (s *Store) OpenDir() error {
	if err := s.ensureBuiltins(); err != nil {
		return err
	}
	return s.opener(s.Dir)
}

// ensureBuiltins writes every built-in profile that is missing.
func (s *Store) ensureBuiltins() error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	for _, n := range Builtins() {
		if _, err := os.Stat(filepath.Join(s.Dir, n)); err == nil {
			continue
		}
		if err := s.writeBuiltin(n); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeBuiltin(name string) error {
	data, err := Builtin(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write profile %s: %w", name, err)
	}
	return nil
}
