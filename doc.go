// Package oi is Open Interpreter's terminal interface: a command-line
// configuration engine that lets a language model run code on your machine.
//
// # Quick Start
//
// Install the binary:
//
//	go install github.com/openinterpreter/oi/cmd/interpreter@latest
//
// Start chatting with the default profile:
//
//	interpreter
//
// Pick a model and let generated code run without confirmation:
//
//	interpreter --model gpt-4-1106-preview --auto_run
//
// # Configuration
//
// Settings are resolved in three layers. Flags given on the command line win
// over the selected profile, and the profile wins over built-in defaults.
// Profiles are YAML files kept in the profile directory:
//
//	interpreter --profiles            # open the profile directory
//	interpreter --profile fast.yaml   # or: interpreter --fast
//	interpreter --reset_profile       # restore the shipped profiles
//
// A profile mirrors the interpreter's settings:
//
//	auto_run: false
//	safe_mode: ask
//	llm:
//	  model: gpt-3.5-turbo
//	  api_key: ${OPENAI_API_KEY}
//
// # Modes
//
// Exactly one mode runs per invocation: the conversation browser
// (--conversations), the HTTP server (--server) or the interactive chat.
//
// # Packages
//
//   - pkg/cli: option schema, parser and startup pipeline
//   - pkg/interpreter: the configuration target
//   - pkg/profiles: profile storage and loading
//   - pkg/chat, pkg/conversations, pkg/server: terminal modes
package oi
