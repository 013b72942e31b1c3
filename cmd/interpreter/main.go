// Command interpreter is the Open Interpreter terminal interface.
//
// Usage:
//
//	interpreter
//	interpreter --model gpt-3.5-turbo -y
//	interpreter --profile local.yaml
//	interpreter --conversations
//	interpreter --server
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openinterpreter/oi"
	"github.com/openinterpreter/oi/pkg/chat"
	"github.com/openinterpreter/oi/pkg/cli"
	"github.com/openinterpreter/oi/pkg/conversations"
	"github.com/openinterpreter/oi/pkg/display"
	"github.com/openinterpreter/oi/pkg/httpclient"
	"github.com/openinterpreter/oi/pkg/interpreter"
	"github.com/openinterpreter/oi/pkg/llm"
	"github.com/openinterpreter/oi/pkg/logger"
	"github.com/openinterpreter/oi/pkg/profiles"
	"github.com/openinterpreter/oi/pkg/server"
	"github.com/openinterpreter/oi/pkg/update"
	"github.com/openinterpreter/oi/pkg/validate"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	profiles.LoadDotEnv()

	log, cleanup, err := initLogger()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()
	log.Debug("Starting", "build", oi.GetVersion().String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := newEngine(log, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	_, err = engine.Run(ctx, interpreter.New(), argv)
	return exitCode(err, stderr)
}

// exitCode reports err and maps it to a process status.
func exitCode(err error, stderr io.Writer) int {
	var usageErr *cli.UsageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &usageErr):
		if usageErr.Usage != "" {
			fmt.Fprint(stderr, usageErr.Usage)
		}
		fmt.Fprintf(stderr, "interpreter: error: %v\n", usageErr)
		return cli.UsageExitCode
	case errors.Is(err, context.Canceled):
		return 0
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

// newEngine wires the shipped collaborators into the startup pipeline.
func newEngine(log *slog.Logger, stdout, stderr io.Writer) (*cli.Engine, error) {
	transport, err := httpclient.ConfigureTLS(httpclient.TLSConfigFromEnv())
	if err != nil {
		return nil, err
	}
	version := oi.ResolveVersion()
	userAgent := fmt.Sprintf("open-interpreter/%s", version)

	profileDir, err := profiles.DefaultDir()
	if err != nil {
		return nil, err
	}
	profileStore := profiles.NewStore(profileDir, profiles.WithHTTPClient(httpclient.New(
		httpclient.WithTransport(transport),
		httpclient.WithTimeout(profiles.FetchTimeout),
		httpclient.WithMaxRetries(1),
		httpclient.WithUserAgent(userAgent),
		httpclient.WithLogger(log),
	)))

	conversationDir, err := conversations.DefaultDir()
	if err != nil {
		return nil, err
	}
	conversationStore := conversations.NewStore(conversationDir)

	out := display.New(stdout)
	input := display.NewInput(os.Stdin)

	newCompleter := func(settings interpreter.LLM) llm.Completer {
		return llm.New(settings,
			httpclient.WithTransport(transport),
			httpclient.WithUserAgent(userAgent),
			httpclient.WithLogger(log),
		)
	}

	updates := update.NewChecker(version)
	updates.Client = httpclient.New(
		httpclient.WithTransport(transport),
		httpclient.WithMaxRetries(0),
		httpclient.WithUserAgent(userAgent),
		httpclient.WithLogger(log),
	)

	repl := &chat.REPL{
		Display:      out,
		Input:        input,
		NewCompleter: newCompleter,
		Store:        conversationStore,
		Logger:       log,
	}
	srv := server.New(newCompleter)
	srv.Logger = log

	return &cli.Engine{
		Stdout:  stdout,
		Stderr:  stderr,
		Logger:  log,
		Sleep:   time.Sleep,
		Display: out.Markdown,
		OnParse: func(inv *cli.Invocation) {
			if inv.Bool(cli.OptVerbose) || inv.Bool(cli.OptDebug) {
				logger.SetLevel(slog.LevelDebug)
			}
		},
		// A profile may turn on verbose output too.
		OnProfile: func(it *interpreter.Interpreter) {
			if it.Verbose || it.Debug {
				logger.SetLevel(slog.LevelDebug)
			}
		},
		Version:   version,
		Release:   oi.ReleaseName,
		Profiles:  profileStore,
		Validator: validate.NewLLMSettings(out),
		Updates:   updates,
		Navigator: &conversations.Navigator{
			Store:   conversationStore,
			Display: out,
			Input:   input,
			Chat:    repl,
		},
		Server: srv,
		Chat:   repl,
	}, nil
}
