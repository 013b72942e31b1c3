package cli

import (
	"fmt"

	"github.com/openinterpreter/oi/pkg/interpreter"
)

// ValueType is the type a flag value is coerced to.
type ValueType int

const (
	TypeBool ValueType = iota
	TypeString
	TypeInt
	TypeFloat
)

func (t ValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// Action controls how a boolean option is set.
type Action int

const (
	// ActionStoreTrue sets true when the flag is present.
	ActionStoreTrue Action = iota
	// ActionStoreFalse sets false when the flag is present.
	ActionStoreFalse
	// ActionBooleanOptional accepts --name and --no-name.
	ActionBooleanOptional
)

// Arity is the number of values an option consumes.
type Arity int

const (
	ArityOne Arity = iota
	// ArityZeroOrOne allows the flag without a value; the bare form yields Bare.
	ArityZeroOrOne
)

// Target names the object a binding writes to.
type Target int

const (
	TargetInterpreter Target = iota
	TargetLLM
)

func (t Target) String() string {
	if t == TargetLLM {
		return "llm"
	}
	return "interpreter"
}

// Binding maps an option onto a target attribute. Attr is the attribute's
// mapstructure key.
type Binding struct {
	Target Target
	Attr   string
}

// OptionDescriptor is one entry of the argument schema. It carries no behavior.
type OptionDescriptor struct {
	Name     string
	Nickname string
	Help     string
	Type     ValueType
	Default  any
	Choices  []string
	Arity    Arity
	Action   Action
	Binding  *Binding
}

func bind(target Target, attr string) *Binding {
	return &Binding{Target: target, Attr: attr}
}

// DefaultProfile is the profile applied when none is selected.
const DefaultProfile = "default.yaml"

// Option names referenced by the pipeline.
const (
	OptProfile      = "profile"
	OptVerbose      = "verbose"
	OptDebug        = "debug"
	OptFast         = "fast"
	OptVision       = "vision"
	OptOS           = "os"
	OptLocal        = "local"
	OptResetProfile = "reset_profile"
	OptProfiles     = "profiles"
	OptConvs        = "conversations"
	OptServer       = "server"
	OptVersion      = "version"
)

// DeprecatedFlags maps obsolete flag spellings to their replacement.
var DeprecatedFlags = map[string]string{
	"--debug_mode": "--verbose",
}

// Options returns the ordered argument schema.
func Options() []OptionDescriptor {
	return []OptionDescriptor{
		{
			Name:     OptProfile,
			Nickname: "p",
			Help:     "name of profile. run `--profiles` to open profile directory",
			Type:     TypeString,
			Default:  DefaultProfile,
		},
		{
			Name:     "custom_instructions",
			Nickname: "ci",
			Help:     "custom instructions for the language model. will be appended to the system_message",
			Type:     TypeString,
			Binding:  bind(TargetInterpreter, "custom_instructions"),
		},
		{
			Name:     "system_message",
			Nickname: "s",
			Help:     "(we don't recommend changing this) base prompt for the language model",
			Type:     TypeString,
			Binding:  bind(TargetInterpreter, "system_message"),
		},
		{
			Name:     "auto_run",
			Nickname: "y",
			Help:     "automatically run generated code",
			Type:     TypeBool,
			Binding:  bind(TargetInterpreter, "auto_run"),
		},
		{
			Name:     OptVerbose,
			Nickname: "v",
			Help:     "print detailed logs",
			Type:     TypeBool,
			Binding:  bind(TargetInterpreter, "verbose"),
		},
		{
			Name:     "model",
			Nickname: "m",
			Help:     "language model to use",
			Type:     TypeString,
			Binding:  bind(TargetLLM, "model"),
		},
		{
			Name:     "temperature",
			Nickname: "t",
			Help:     "optional temperature setting for the language model",
			Type:     TypeFloat,
			Binding:  bind(TargetLLM, "temperature"),
		},
		{
			Name:     "llm_supports_vision",
			Nickname: "lsv",
			Help:     "inform OI that your model supports vision, and can receive vision inputs",
			Type:     TypeBool,
			Action:   ActionBooleanOptional,
			Binding:  bind(TargetLLM, "supports_vision"),
		},
		{
			Name:     "llm_supports_functions",
			Nickname: "lsf",
			Help:     "inform OI that your model supports OpenAI-style functions, and can make function calls",
			Type:     TypeBool,
			Action:   ActionBooleanOptional,
			Binding:  bind(TargetLLM, "supports_functions"),
		},
		{
			Name:     "context_window",
			Nickname: "cw",
			Help:     "optional context window size for the language model",
			Type:     TypeInt,
			Binding:  bind(TargetLLM, "context_window"),
		},
		{
			Name:     "max_tokens",
			Nickname: "x",
			Help:     "optional maximum number of tokens for the language model",
			Type:     TypeInt,
			Binding:  bind(TargetLLM, "max_tokens"),
		},
		{
			Name:     "max_budget",
			Nickname: "b",
			Help:     "optionally set the max budget (in USD) for your llm calls",
			Type:     TypeFloat,
			Binding:  bind(TargetLLM, "max_budget"),
		},
		{
			Name:     "api_base",
			Nickname: "ab",
			Help:     "optionally set the API base URL for your llm calls (this will override environment variables)",
			Type:     TypeString,
			Binding:  bind(TargetLLM, "api_base"),
		},
		{
			Name:     "api_key",
			Nickname: "ak",
			Help:     "optionally set the API key for your llm calls (this will override environment variables)",
			Type:     TypeString,
			Binding:  bind(TargetLLM, "api_key"),
		},
		{
			Name:     "api_version",
			Nickname: "av",
			Help:     "optionally set the API version for your llm calls (this will override environment variables)",
			Type:     TypeString,
			Binding:  bind(TargetLLM, "api_version"),
		},
		{
			Name:     "max_output",
			Nickname: "xo",
			Help:     "optional maximum number of characters for code outputs",
			Type:     TypeInt,
			Binding:  bind(TargetInterpreter, "max_output"),
		},
		{
			Name:     "force_task_completion",
			Nickname: "fc",
			Help:     "runs OI in a loop, requiring it to admit to completing/failing task",
			Type:     TypeBool,
			Binding:  bind(TargetInterpreter, "force_task_completion"),
		},
		{
			Name:     "disable_telemetry",
			Nickname: "dt",
			Help:     "disables sending of basic anonymous usage stats",
			Type:     TypeBool,
			Default:  true,
			Action:   ActionStoreFalse,
			Binding:  bind(TargetInterpreter, "anonymous_telemetry"),
		},
		{
			Name:     "offline",
			Nickname: "o",
			Help:     "turns off all online features (except the language model, if it's hosted)",
			Type:     TypeBool,
			Binding:  bind(TargetInterpreter, "offline"),
		},
		{
			Name:     "speak_messages",
			Nickname: "sm",
			Help:     "(Mac only, experimental) use the applescript `say` command to read messages aloud",
			Type:     TypeBool,
			Binding:  bind(TargetInterpreter, "speak_messages"),
		},
		{
			Name:     "safe_mode",
			Nickname: "safe",
			Help:     "optionally enable safety mechanisms like code scanning; valid options are off, ask, and auto",
			Type:     TypeString,
			Choices:  []string{interpreter.SafeModeOff, interpreter.SafeModeAsk, interpreter.SafeModeAuto},
			Default:  interpreter.SafeModeOff,
			Binding:  bind(TargetInterpreter, "safe_mode"),
		},
		{
			Name:     OptDebug,
			Nickname: "debug",
			Help:     "debug mode for open interpreter developers",
			Type:     TypeBool,
			Binding:  bind(TargetInterpreter, "debug"),
		},
		{
			Name:     OptFast,
			Nickname: "f",
			Help:     "runs `interpreter --model gpt-3.5-turbo` and asks OI to be extremely concise",
			Type:     TypeBool,
		},
		{
			Name:     "multi_line",
			Nickname: "ml",
			Help:     "enable multi-line inputs starting and ending with ```",
			Type:     TypeBool,
			Binding:  bind(TargetInterpreter, "multi_line"),
		},
		{
			Name:     OptLocal,
			Nickname: "l",
			Help:     "experimentally run the LLM locally via Llamafile (this changes many more settings than `--offline`)",
			Type:     TypeBool,
		},
		{
			Name:     OptVision,
			Nickname: "vi",
			Help:     "experimentally use vision for supported languages",
			Type:     TypeBool,
		},
		{
			Name:     OptOS,
			Nickname: "os",
			Help:     "experimentally let Open Interpreter control your mouse and keyboard",
			Type:     TypeBool,
		},

		// Special commands
		{
			Name:  OptResetProfile,
			Help:  "reset a profile file. run `--reset_profile` without an argument to reset all default profiles",
			Type:  TypeString,
			Arity: ArityZeroOrOne,
		},
		{Name: OptProfiles, Help: "opens profiles directory", Type: TypeBool},
		{Name: OptConvs, Help: "list conversations to resume", Type: TypeBool},
		{Name: OptServer, Help: "start open interpreter as a server", Type: TypeBool},
		{Name: OptVersion, Help: "get Open Interpreter's version number", Type: TypeBool},
	}
}

// ValidateOptions checks the registry invariants: unique names, unique
// nicknames, and no nickname shadowing another option's name.
func ValidateOptions(options []OptionDescriptor) error {
	names := make(map[string]bool, len(options))
	for _, opt := range options {
		if opt.Name == "" {
			return fmt.Errorf("option with empty name")
		}
		if names[opt.Name] {
			return fmt.Errorf("duplicate option name %q", opt.Name)
		}
		names[opt.Name] = true
	}

	nicks := make(map[string]string, len(options))
	for _, opt := range options {
		if opt.Nickname == "" {
			continue
		}
		if other, ok := nicks[opt.Nickname]; ok {
			return fmt.Errorf("nickname %q used by both %q and %q", opt.Nickname, other, opt.Name)
		}
		if opt.Nickname != opt.Name && names[opt.Nickname] {
			return fmt.Errorf("nickname %q of %q shadows an option name", opt.Nickname, opt.Name)
		}
		nicks[opt.Nickname] = opt.Name
	}

	for _, opt := range options {
		if opt.Arity == ArityZeroOrOne && opt.Type == TypeBool {
			return fmt.Errorf("option %q: zero-or-one arity needs a value type", opt.Name)
		}
		if opt.Action != ActionStoreTrue && opt.Type != TypeBool {
			return fmt.Errorf("option %q: boolean action on %s option", opt.Name, opt.Type)
		}
	}
	return nil
}

// lookupOption returns the descriptor named name.
func lookupOption(options []OptionDescriptor, name string) (OptionDescriptor, bool) {
	for _, opt := range options {
		if opt.Name == name {
			return opt, true
		}
	}
	return OptionDescriptor{}, false
}
