package cli

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openinterpreter/oi/pkg/interpreter"
)

func parseArgs(t *testing.T, argv ...string) *Invocation {
	t.Helper()
	inv, err := newTestParser(t).Parse(argv)
	require.NoError(t, err)
	return inv
}

func TestBind_SuppliedValues(t *testing.T) {
	it := interpreter.New()
	inv := parseArgs(t,
		"--model", "gpt-3.5-turbo",
		"--temperature", "0.7",
		"--context_window", "4000",
		"--max_budget", "0.5",
		"--no-llm_supports_vision",
		"--auto_run",
		"--max_output", "100",
		"--safe_mode", "ask",
		"--disable_telemetry",
	)

	require.NoError(t, Bind(inv, Options(), it, nil))

	assert.Equal(t, "gpt-3.5-turbo", it.LLM.Model)
	assert.Equal(t, 0.7, it.LLM.Temperature)
	require.NotNil(t, it.LLM.ContextWindow)
	assert.Equal(t, 4000, *it.LLM.ContextWindow)
	require.NotNil(t, it.LLM.MaxBudget)
	assert.Equal(t, 0.5, *it.LLM.MaxBudget)
	require.NotNil(t, it.LLM.SupportsVision)
	assert.False(t, *it.LLM.SupportsVision)
	assert.True(t, it.AutoRun)
	assert.Equal(t, 100, it.MaxOutput)
	assert.Equal(t, "ask", it.SafeMode)
	assert.False(t, it.AnonymousTelemetry)
}

func TestBind_LeavesUnsuppliedAlone(t *testing.T) {
	it := interpreter.New()
	it.SafeMode = interpreter.SafeModeAuto
	it.AnonymousTelemetry = false
	it.LLM.ContextWindow = interpreter.IntPtr(512)

	require.NoError(t, Bind(parseArgs(t), Options(), it, nil))

	assert.Equal(t, interpreter.SafeModeAuto, it.SafeMode, "declared default must not overwrite")
	assert.False(t, it.AnonymousTelemetry, "declared default must not overwrite")
	assert.Equal(t, 512, *it.LLM.ContextWindow)
	assert.Equal(t, interpreter.DefaultModel, it.LLM.Model)
}

func TestBind_AllocatesFreshPointers(t *testing.T) {
	shared := interpreter.IntPtr(10)
	it := interpreter.New()
	it.LLM.MaxTokens = shared

	require.NoError(t, Bind(parseArgs(t, "--max_tokens", "20"), Options(), it, nil))

	assert.Equal(t, 20, *it.LLM.MaxTokens)
	assert.Equal(t, 10, *shared)
}

func TestBind_AllocatesLLM(t *testing.T) {
	it := &interpreter.Interpreter{}
	require.NoError(t, Bind(parseArgs(t, "-m", "local"), Options(), it, nil))
	require.NotNil(t, it.LLM)
	assert.Equal(t, "local", it.LLM.Model)
}

func TestBind_VerboseLogsAssignments(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	it := interpreter.New()
	require.NoError(t, Bind(parseArgs(t, "--verbose", "--model", "phi"), Options(), it, logger))

	assert.Contains(t, buf.String(), "Setting attribute")
	assert.Contains(t, buf.String(), "target=llm")
	assert.Contains(t, buf.String(), "attr=model")
	assert.Contains(t, buf.String(), "value=phi")
}

func TestBind_QuietWithoutVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	require.NoError(t, Bind(parseArgs(t, "--model", "phi"), Options(), interpreter.New(), logger))
	assert.Empty(t, buf.String())
}
