// Package interpreter holds the mutable session configuration that command-line
// flags, profiles and inferred model defaults converge on.
//
// An Interpreter is created once with built-in defaults (New), mutated by the
// startup pipeline in pkg/cli, and then read by whichever terminal mode runs
// (chat, server or the conversation browser).
package interpreter

// Safe mode values.
const (
	SafeModeOff  = "off"
	SafeModeAsk  = "ask"
	SafeModeAuto = "auto"
)

// DefaultModel is the model used when neither flags nor profiles pick one.
const DefaultModel = "gpt-4"

// DefaultMaxOutput is the default character limit for code output.
const DefaultMaxOutput = 2800

// DefaultSystemMessage is the base prompt sent to the language model.
const DefaultSystemMessage = `You are Open Interpreter, a world-class programmer that can complete any goal by executing code.
First, write a plan. Always recap the plan between each code block.
When you execute code, it will be executed on the user's machine. The user has given you full and complete permission to execute any code necessary to complete the task.
If you want to send data between programming languages, save the data to a txt or json.
You can access the internet. Run any code to achieve the goal, and if at first you don't succeed, try again and again.
You can install new packages.
When a user refers to a filename, they're likely referring to an existing file in the directory you're currently executing code in.
Write messages to the user in Markdown.
In general, try to make plans with as few steps as possible.
You are capable of any task.`

// Message is a single conversation turn.
type Message struct {
	Role    string `mapstructure:"role" yaml:"role" json:"role"`
	Content string `mapstructure:"content" yaml:"content" json:"content"`
}

// LLM holds language-model client settings.
//
// Pointer fields are nullable: nil means "not set" and lets model-default
// inference fill them in later.
type LLM struct {
	Model             string   `mapstructure:"model" yaml:"model,omitempty" json:"model"`
	Temperature       float64  `mapstructure:"temperature" yaml:"temperature,omitempty" json:"temperature"`
	SupportsVision    *bool    `mapstructure:"supports_vision" yaml:"supports_vision,omitempty" json:"supports_vision,omitempty"`
	SupportsFunctions *bool    `mapstructure:"supports_functions" yaml:"supports_functions,omitempty" json:"supports_functions,omitempty"`
	ContextWindow     *int     `mapstructure:"context_window" yaml:"context_window,omitempty" json:"context_window,omitempty"`
	MaxTokens         *int     `mapstructure:"max_tokens" yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
	MaxBudget         *float64 `mapstructure:"max_budget" yaml:"max_budget,omitempty" json:"max_budget,omitempty"`
	APIBase           string   `mapstructure:"api_base" yaml:"api_base,omitempty" json:"api_base,omitempty"`
	APIKey            string   `mapstructure:"api_key" yaml:"api_key,omitempty" json:"api_key,omitempty"`
	APIVersion        string   `mapstructure:"api_version" yaml:"api_version,omitempty" json:"api_version,omitempty"`
}

// Interpreter is the session configuration holder.
type Interpreter struct {
	CustomInstructions  string `mapstructure:"custom_instructions" yaml:"custom_instructions,omitempty" json:"custom_instructions"`
	SystemMessage       string `mapstructure:"system_message" yaml:"system_message,omitempty" json:"system_message"`
	AutoRun             bool   `mapstructure:"auto_run" yaml:"auto_run,omitempty" json:"auto_run"`
	Verbose             bool   `mapstructure:"verbose" yaml:"verbose,omitempty" json:"verbose"`
	MaxOutput           int    `mapstructure:"max_output" yaml:"max_output,omitempty" json:"max_output"`
	ForceTaskCompletion bool   `mapstructure:"force_task_completion" yaml:"force_task_completion,omitempty" json:"force_task_completion"`
	AnonymousTelemetry  bool   `mapstructure:"anonymous_telemetry" yaml:"anonymous_telemetry,omitempty" json:"anonymous_telemetry"`
	Offline             bool   `mapstructure:"offline" yaml:"offline,omitempty" json:"offline"`
	SpeakMessages       bool   `mapstructure:"speak_messages" yaml:"speak_messages,omitempty" json:"speak_messages"`
	SafeMode            string `mapstructure:"safe_mode" yaml:"safe_mode,omitempty" json:"safe_mode"`
	Debug               bool   `mapstructure:"debug" yaml:"debug,omitempty" json:"debug"`
	MultiLine           bool   `mapstructure:"multi_line" yaml:"multi_line,omitempty" json:"multi_line"`

	// InTerminalInterface is set right before a terminal mode starts so
	// downstream components can suppress programmatic-only output.
	InTerminalInterface bool `mapstructure:"in_terminal_interface" yaml:"-" json:"in_terminal_interface"`

	// ConversationID identifies the persisted conversation, if any.
	ConversationID string    `mapstructure:"conversation_id" yaml:"-" json:"conversation_id,omitempty"`
	Messages       []Message `mapstructure:"messages" yaml:"messages,omitempty" json:"messages,omitempty"`

	LLM *LLM `mapstructure:"llm" yaml:"llm,omitempty" json:"llm"`
}

// New returns an Interpreter carrying the built-in defaults.
func New() *Interpreter {
	return &Interpreter{
		SystemMessage:      DefaultSystemMessage,
		MaxOutput:          DefaultMaxOutput,
		AnonymousTelemetry: true,
		SafeMode:           SafeModeOff,
		LLM: &LLM{
			Model: DefaultModel,
		},
	}
}

// FullSystemMessage returns the system message with custom instructions appended.
func (it *Interpreter) FullSystemMessage() string {
	if it.CustomInstructions == "" {
		return it.SystemMessage
	}
	return it.SystemMessage + "\n\n" + it.CustomInstructions
}

// Redacted returns a copy safe to print or serve: the API key is masked.
func (it *Interpreter) Redacted() Interpreter {
	cp := *it
	if it.LLM != nil {
		llm := *it.LLM
		if llm.APIKey != "" {
			llm.APIKey = "[REDACTED]"
		}
		cp.LLM = &llm
	}
	cp.Messages = append([]Message(nil), it.Messages...)
	return cp
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }

// IntPtr returns a pointer to i.
func IntPtr(i int) *int { return &i }

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 { return &f }
