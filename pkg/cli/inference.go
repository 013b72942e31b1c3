package cli

import "github.com/openinterpreter/oi/pkg/interpreter"

// ModelDefaults are known-good limits for a model identifier.
type ModelDefaults struct {
	ContextWindow     int
	MaxTokens         int
	SupportsFunctions bool
}

// KnownModels maps model identifiers to their defaults.
var KnownModels = map[string]ModelDefaults{
	"gpt-4-1106-preview": {ContextWindow: 128000, MaxTokens: 4096, SupportsFunctions: true},
	"gpt-3.5-turbo-1106": {ContextWindow: 16000, MaxTokens: 4096, SupportsFunctions: true},
}

// InferModelDefaults fills unset LLM limits for recognized models. Values set
// on the command line or by a profile are never overwritten.
func InferModelDefaults(it *interpreter.Interpreter) {
	if it.LLM == nil {
		return
	}
	defaults, ok := KnownModels[it.LLM.Model]
	if !ok {
		return
	}

	if it.LLM.ContextWindow == nil {
		it.LLM.ContextWindow = interpreter.IntPtr(defaults.ContextWindow)
	}
	if it.LLM.MaxTokens == nil {
		it.LLM.MaxTokens = interpreter.IntPtr(defaults.MaxTokens)
	}
	if it.LLM.SupportsFunctions == nil {
		it.LLM.SupportsFunctions = interpreter.BoolPtr(defaults.SupportsFunctions)
	}
}
