package profiles

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/openinterpreter/oi/pkg/interpreter"
)

// metaKeys are profile keys that describe the file rather than settings.
var metaKeys = []string{"version"}

// Parse reads a YAML (or JSON) profile and expands environment references in
// its string values.
func Parse(data []byte) (map[string]any, error) {
	raw, err := parseBytes(data)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	for _, key := range metaKeys {
		delete(raw, key)
	}
	return expandEnvVars(raw), nil
}

// Decode applies parsed profile settings onto it. Keys that match no
// setting are logged and ignored.
func Decode(settings map[string]any, it *interpreter.Interpreter) error {
	if it.LLM == nil {
		it.LLM = &interpreter.LLM{}
	}

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           it,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		Metadata:         &md,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(settings); err != nil {
		return fmt.Errorf("failed to decode: %w", err)
	}

	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		slog.Warn("Ignoring unknown profile settings", "keys", strings.Join(md.Unused, ","))
	}
	return nil
}

// parseBytes parses raw bytes into a map.
// Supports YAML (primary) and JSON (fallback).
func parseBytes(data []byte) (map[string]any, error) {
	var result map[string]any

	if err := yaml.Unmarshal(data, &result); err == nil {
		return result, nil
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse as YAML or JSON: %w", err)
	}

	return result, nil
}

func expandEnvVars(input map[string]any) map[string]any {
	result := make(map[string]any, len(input))
	for k, v := range input {
		result[k] = expandValue(v)
	}
	return result
}

func expandValue(v any) any {
	switch val := v.(type) {
	case string:
		return expandEnvString(val)
	case map[string]any:
		return expandEnvVars(val)
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = expandValue(item)
		}
		return result
	default:
		return v
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default}, and $VAR
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

func expandEnvString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if !strings.HasPrefix(match, "${") {
			return os.Getenv(match[1:])
		}

		inner := match[2 : len(match)-1]
		if name, fallback, ok := strings.Cut(inner, ":-"); ok {
			if val := os.Getenv(name); val != "" {
				return val
			}
			return fallback
		}
		return os.Getenv(inner)
	})
}
