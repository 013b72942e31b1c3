package profiles

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openinterpreter/oi/pkg/interpreter"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "profiles"), WithOpener(func(string) error { return nil }))
}

func TestBuiltins(t *testing.T) {
	assert.ElementsMatch(t, []string{"default.yaml", "fast.yaml", "local.yaml", "os.yaml", "vision.yaml"}, Builtins())

	_, err := Builtin("mine.yaml")
	assert.ErrorIs(t, err, ErrNotBuiltin)
}

func TestBuiltinsDecode(t *testing.T) {
	for _, name := range Builtins() {
		t.Run(name, func(t *testing.T) {
			data, err := Builtin(name)
			require.NoError(t, err)

			settings, err := Parse(data)
			require.NoError(t, err)
			assert.NotContains(t, settings, "version")

			it := interpreter.New()
			require.NoError(t, Decode(settings, it))
			assert.NotEmpty(t, it.LLM.Model)
		})
	}
}

func TestStore_ApplyByName(t *testing.T) {
	store := newTestStore(t)
	it := interpreter.New()

	got, err := store.Apply(context.Background(), it, "fast")
	require.NoError(t, err)
	assert.Same(t, it, got)
	assert.Equal(t, "gpt-3.5-turbo", it.LLM.Model)
	assert.Contains(t, it.CustomInstructions, "FAST mode")

	_, err = os.Stat(filepath.Join(store.Dir, "default.yaml"))
	assert.NoError(t, err, "built-ins are written on first use")
}

func TestStore_ApplyKeepsUnsetValues(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(store.Dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, "mine.yaml"), []byte("auto_run: true\nllm:\n  temperature: 0.5\n"), 0o644))

	it := interpreter.New()
	it.LLM.Model = "from-cli"
	it.CustomInstructions = "keep me"

	_, err := store.Apply(context.Background(), it, "mine.yaml")
	require.NoError(t, err)
	assert.True(t, it.AutoRun)
	assert.Equal(t, 0.5, it.LLM.Temperature)
	assert.Equal(t, "from-cli", it.LLM.Model)
	assert.Equal(t, "keep me", it.CustomInstructions)
}

func TestStore_ApplyFilePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_output: 50\nllm:\n  context_window: 2048\n"), 0o644))

	it := interpreter.New()
	_, err := newTestStore(t).Apply(context.Background(), it, path)
	require.NoError(t, err)
	assert.Equal(t, 50, it.MaxOutput)
	require.NotNil(t, it.LLM.ContextWindow)
	assert.Equal(t, 2048, *it.LLM.ContextWindow)
}

func TestStore_ApplyExpandsEnv(t *testing.T) {
	t.Setenv("OI_TEST_KEY", "sk-test")
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  api_key: ${OI_TEST_KEY}\n  api_base: ${OI_TEST_UNSET:-http://localhost:1234}\n  max_tokens: \"${OI_TEST_TOKENS:-512}\"\n"), 0o644))

	it := interpreter.New()
	_, err := newTestStore(t).Apply(context.Background(), it, path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", it.LLM.APIKey)
	assert.Equal(t, "http://localhost:1234", it.LLM.APIBase)
	require.NotNil(t, it.LLM.MaxTokens)
	assert.Equal(t, 512, *it.LLM.MaxTokens)
}

func TestStore_ApplyURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"offline": true, "llm": {"model": "remote"}}`))
	}))
	defer server.Close()

	it := interpreter.New()
	_, err := newTestStore(t).Apply(context.Background(), it, server.URL+"/profile.json")
	require.NoError(t, err)
	assert.True(t, it.Offline)
	assert.Equal(t, "remote", it.LLM.Model)
}

func TestStore_ApplyErrors(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Apply(context.Background(), interpreter.New(), "missing.yaml")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, "bad.yaml"), []byte("auto_run: [1, 2"), 0o644))
	_, err = store.Apply(context.Background(), interpreter.New(), "bad.yaml")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, "typed.yaml"), []byte("max_output: lots\n"), 0o644))
	_, err = store.Apply(context.Background(), interpreter.New(), "typed.yaml")
	assert.Error(t, err)
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Reset(""))

	fast := filepath.Join(store.Dir, "fast.yaml")
	vision := filepath.Join(store.Dir, "vision.yaml")
	require.NoError(t, os.WriteFile(fast, []byte("edited"), 0o644))
	require.NoError(t, os.WriteFile(vision, []byte("edited"), 0o644))

	require.NoError(t, store.Reset("fast.yaml"))
	data, err := os.ReadFile(fast)
	require.NoError(t, err)
	shipped, _ := Builtin("fast.yaml")
	assert.Equal(t, shipped, data)

	data, err = os.ReadFile(vision)
	require.NoError(t, err)
	assert.Equal(t, "edited", string(data), "named reset touches only that profile")

	require.NoError(t, store.Reset(""))
	data, err = os.ReadFile(vision)
	require.NoError(t, err)
	shipped, _ = Builtin("vision.yaml")
	assert.Equal(t, shipped, data)

	err = store.Reset("mine.yaml")
	assert.True(t, errors.Is(err, ErrNotBuiltin))
}

func TestStore_OpenDir(t *testing.T) {
	var opened string
	store := NewStore(filepath.Join(t.TempDir(), "p"), WithOpener(func(dir string) error {
		opened = dir
		return nil
	}))

	require.NoError(t, store.OpenDir())
	assert.Equal(t, store.Dir, opened)
	_, err := os.Stat(filepath.Join(store.Dir, "local.yaml"))
	assert.NoError(t, err)
}

func TestDefaultDir(t *testing.T) {
	t.Setenv(EnvProfilesDir, "/tmp/oi-profiles")
	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/oi-profiles", dir)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OI_DOTENV_NEW=from-file\nOI_DOTENV_SET=from-file\n"), 0o644))
	t.Setenv("OI_DOTENV_SET", "from-env")
	t.Setenv("OI_DOTENV_NEW", "")
	os.Unsetenv("OI_DOTENV_NEW")

	LoadDotEnv(path)

	assert.Equal(t, "from-file", os.Getenv("OI_DOTENV_NEW"))
	assert.Equal(t, "from-env", os.Getenv("OI_DOTENV_SET"))
}
