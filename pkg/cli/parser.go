package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/kong"
)

// Parser applies an argument schema to an argument vector.
//
// The schema is compiled into a kong grammar, one field per descriptor built
// with reflect.StructOf. Whether a flag was supplied is read from the parse
// path, so a flag set to its zero value is distinguishable from an unset one.
type Parser struct {
	options     []OptionDescriptor
	grammar     reflect.Type
	longNicks   map[string]string // multi-rune nickname -> option name
	shortNicks  map[string]string // single-rune nickname -> option name
	zeroOrOne   map[string]bool
	numeric     map[string]bool
	name        string
	description string
	stdout      io.Writer
	stderr      io.Writer
	exit        func(int)
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithWriters sets where help and errors are written.
func WithWriters(stdout, stderr io.Writer) ParserOption {
	return func(p *Parser) {
		p.stdout = stdout
		p.stderr = stderr
	}
}

// WithExit sets the function called after --help is printed.
func WithExit(exit func(int)) ParserOption {
	return func(p *Parser) {
		p.exit = exit
	}
}

// WithProgram sets the program name and description shown in help.
func WithProgram(name, description string) ParserOption {
	return func(p *Parser) {
		p.name = name
		p.description = description
	}
}

// NewParser compiles options into a Parser.
func NewParser(options []OptionDescriptor, opts ...ParserOption) (*Parser, error) {
	if err := ValidateOptions(options); err != nil {
		return nil, fmt.Errorf("invalid argument schema: %w", err)
	}

	p := &Parser{
		options:     options,
		longNicks:   make(map[string]string),
		shortNicks:  make(map[string]string),
		zeroOrOne:   make(map[string]bool),
		numeric:     make(map[string]bool),
		name:        "interpreter",
		description: "Open Interpreter",
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		exit:        os.Exit,
	}
	for _, opt := range opts {
		opt(p)
	}

	fields := make([]reflect.StructField, 0, len(options))
	for i, opt := range options {
		fieldType, err := goType(opt.Type)
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", opt.Name, err)
		}
		fields = append(fields, reflect.StructField{
			Name: fmt.Sprintf("Opt%d", i),
			Type: fieldType,
			Tag:  kongTag(opt),
		})

		switch utf8.RuneCountInString(opt.Nickname) {
		case 0:
		case 1:
			p.shortNicks[opt.Nickname] = opt.Name
		default:
			p.longNicks[opt.Nickname] = opt.Name
		}
		if opt.Type == TypeInt || opt.Type == TypeFloat {
			p.numeric[opt.Name] = true
		}
		if opt.Arity == ArityZeroOrOne {
			p.zeroOrOne[opt.Name] = true
		}
	}
	p.grammar = reflect.StructOf(fields)

	return p, nil
}

func goType(t ValueType) (reflect.Type, error) {
	switch t {
	case TypeBool:
		return reflect.TypeOf(false), nil
	case TypeString:
		return reflect.TypeOf(""), nil
	case TypeInt:
		return reflect.TypeOf(0), nil
	case TypeFloat:
		return reflect.TypeOf(float64(0)), nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", t)
	}
}

// kongTag renders the struct tag kong reads for one descriptor.
func kongTag(opt OptionDescriptor) reflect.StructTag {
	help := strings.ReplaceAll(opt.Help, `"`, "'")
	if utf8.RuneCountInString(opt.Nickname) > 1 && opt.Nickname != opt.Name {
		help += fmt.Sprintf(" [-%s]", opt.Nickname)
	}
	if len(opt.Choices) > 0 {
		help += fmt.Sprintf(" (%s)", strings.Join(opt.Choices, ", "))
	}

	parts := []string{
		fmt.Sprintf("name:%q", opt.Name),
		fmt.Sprintf("help:%q", help),
	}
	if utf8.RuneCountInString(opt.Nickname) == 1 {
		parts = append(parts, fmt.Sprintf("short:%q", opt.Nickname))
	}
	if opt.Type == TypeBool && opt.Action == ActionBooleanOptional {
		parts = append(parts, `negatable:""`)
	}
	return reflect.StructTag(strings.Join(parts, " "))
}

// Parse applies the schema to argv (without the program name). Failures are
// returned as *UsageError.
func (p *Parser) Parse(argv []string) (*Invocation, error) {
	grammar := reflect.New(p.grammar)

	k, err := kong.New(grammar.Interface(),
		kong.Name(p.name),
		kong.Description(p.description),
		kong.Writers(p.stdout, p.stderr),
		kong.Exit(p.exit),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	kctx, err := k.Parse(p.normalize(argv))
	if err != nil {
		var perr *kong.ParseError
		if errors.As(err, &perr) && perr.Context != nil {
			kctx = perr.Context
		}
		return nil, &UsageError{Err: err, Usage: renderUsage(k, kctx)}
	}

	supplied := make(map[string]bool)
	for _, path := range kctx.Path {
		if path.Flag != nil {
			supplied[path.Flag.Name] = true
		}
	}

	inv := newInvocation()
	values := grammar.Elem()
	for i, opt := range p.options {
		if !supplied[opt.Name] {
			if opt.Default != nil {
				inv.setDefault(opt.Name, opt.Default)
			}
			continue
		}

		value := values.Field(i).Interface()
		switch {
		case opt.Arity == ArityZeroOrOne && value == "":
			value = Bare
		case opt.Type == TypeBool && opt.Action == ActionStoreFalse:
			value = !value.(bool)
		}

		if s, ok := value.(string); ok && len(opt.Choices) > 0 && !slices.Contains(opt.Choices, s) {
			return nil, usageErrorf(renderUsage(k, kctx),
				"--%s: invalid choice: %q (choose from %s)", opt.Name, s, quoteAll(opt.Choices))
		}

		inv.Set(opt.Name, value)
	}

	return inv, nil
}

// normalize rewrites argv into a form kong understands: multi-rune nicknames
// (-ci, -lsv=...) become long flags, a zero-or-one option without a value
// becomes --name= so it parses as the empty string, and a numeric option
// followed by a negative number becomes --name=-N.
func (p *Parser) normalize(argv []string) []string {
	out := make([]string, 0, len(argv))
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" {
			out = append(out, argv[i:]...)
			break
		}

		if strings.HasPrefix(arg, "-") && !strings.HasPrefix(arg, "--") {
			flag, value, hasValue := strings.Cut(arg[1:], "=")
			if name, ok := p.longNicks[flag]; ok {
				arg = "--" + name
				if hasValue {
					arg += "=" + value
				}
			}
		}

		if strings.HasPrefix(arg, "--") && p.zeroOrOne[arg[2:]] {
			if i+1 >= len(argv) || strings.HasPrefix(argv[i+1], "-") {
				arg += "="
			}
		}

		if name, ok := p.numericFlag(arg); ok && i+1 < len(argv) && isNegativeNumber(argv[i+1]) {
			arg = "--" + name + "=" + argv[i+1]
			i++
		}

		out = append(out, arg)
	}
	return out
}

// numericFlag returns the option name when arg is a numeric option spelled
// without an inline value.
func (p *Parser) numericFlag(arg string) (string, bool) {
	var name string
	switch {
	case strings.Contains(arg, "="):
		return "", false
	case strings.HasPrefix(arg, "--"):
		name = arg[2:]
	case strings.HasPrefix(arg, "-"):
		name = p.shortNicks[arg[1:]]
	}
	return name, name != "" && p.numeric[name]
}

func isNegativeNumber(s string) bool {
	if !strings.HasPrefix(s, "-") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// renderUsage captures kong's usage summary for kctx.
func renderUsage(k *kong.Kong, kctx *kong.Context) string {
	if kctx == nil {
		return ""
	}
	var buf bytes.Buffer
	stdout := k.Stdout
	k.Stdout = &buf
	defer func() { k.Stdout = stdout }()

	if err := kctx.PrintUsage(true); err != nil {
		return ""
	}
	return buf.String()
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
