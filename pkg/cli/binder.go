package cli

import (
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"github.com/openinterpreter/oi/pkg/interpreter"
)

// Bind copies every explicitly supplied, bound option value onto its target.
// Options that were not supplied are left alone, so Bind never resets an
// attribute that a profile or the built-in defaults already set.
func Bind(inv *Invocation, options []OptionDescriptor, it *interpreter.Interpreter, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	byTarget := map[Target]map[string]any{}
	for _, opt := range options {
		if opt.Binding == nil || !inv.Supplied(opt.Name) {
			continue
		}
		value, ok := inv.Lookup(opt.Name)
		if !ok || value == nil || value == Bare {
			continue
		}

		attrs, ok := byTarget[opt.Binding.Target]
		if !ok {
			attrs = map[string]any{}
			byTarget[opt.Binding.Target] = attrs
		}
		attrs[opt.Binding.Attr] = value
	}

	for _, target := range []Target{TargetInterpreter, TargetLLM} {
		attrs := byTarget[target]
		if len(attrs) == 0 {
			continue
		}

		var dest any = it
		if target == TargetLLM {
			if it.LLM == nil {
				it.LLM = &interpreter.LLM{}
			}
			dest = it.LLM
		}

		if err := decodeAttrs(attrs, dest); err != nil {
			return fmt.Errorf("failed to bind %s attributes: %w", target, err)
		}

		// Read after decoding so verbose set on this pass is honored.
		if it.Verbose {
			for attr, value := range attrs {
				logger.Info("Setting attribute", "target", target.String(), "attr", attr, "value", value)
			}
		}
	}
	return nil
}

func decodeAttrs(attrs map[string]any, dest any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  dest,
		// Allocate fresh pointees instead of writing through shared pointers.
		ZeroFields: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(attrs)
}
