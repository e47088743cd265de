package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mcncl/gloss/internal/cache"
	"github.com/mcncl/gloss/internal/config"
	"github.com/mcncl/gloss/internal/decoder"
	"github.com/mcncl/gloss/internal/encoder"
	"github.com/mcncl/gloss/internal/errors"
	"github.com/mcncl/gloss/internal/logging"
	"github.com/mcncl/gloss/internal/models"
	"github.com/mcncl/gloss/internal/parser"
	"github.com/mcncl/gloss/internal/schema"
	"github.com/mcncl/gloss/internal/transport"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string   `help:"Path to input file. The format follows the extension. If not specified, reads from stdin." short:"i" type:"path"`
	URL         string   `help:"Fetch input from this URL instead of a file or stdin." short:"u" name:"url"`
	Method      string   `help:"HTTP method used with --url." short:"X" default:"GET"`
	Header      []string `help:"Extra request header as 'Name: value' (repeatable)." short:"H"`
	InputFormat string   `help:"Format of stdin input (json, yaml, toml, msgpack, cbor, protobuf)." default:"json"`
	Output      string   `help:"Path to output JSON file. If not specified, writes to stdout." short:"o" type:"path"`
	Field       []string `help:"Field to decode as key:kind, e.g. id:int! or topics:[]string (repeatable)." short:"F"`
	DateFormat  string   `help:"Go time layout for date fields." name:"date-format"`
	KeyStyle    string   `help:"Rename output keys (none, snake, camel, lower_camel, kebab)." name:"key-style"`
	Indent      *int     `help:"Indent output JSON by this many spaces; 0 writes compact JSON."`
	Config      string   `help:"Path to config file. If not specified, searches for .gloss.yml in current and parent directories." short:"c" type:"path"`
	Debug       bool     `help:"Enable debug logging." short:"d"`
	Version     bool     `help:"Show version information." short:"v"`
	Interactive bool     `help:"Run in interactive mode, allowing direct input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Logger logging.Logger
	Cache  cache.Provider
	Stdout io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("gloss"),
		kong.Description("Decode typed fields from JSON documents and API responses"),
		kong.UsageOnError(),
	)

	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("gloss version %s\n", Version)
		return
	}

	ctx, err := newContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}
	err = run(ctx)
	if ctx.Cache != nil {
		_ = ctx.Cache.Close(context.Background())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: gloss --help\n")
		os.Exit(1)
	}
}

// newContext loads configuration and builds the logger and cache it names.
func newContext() (*Context, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	headers, err := parseHeaders(CLI.Header)
	if err != nil {
		return nil, errors.NewConfigError("invalid header", err)
	}

	cfg, err := config.LoadConfigWithCLI(configPath, config.CLIOverrides{
		Fields:     CLI.Field,
		DateLayout: CLI.DateFormat,
		KeyStyle:   CLI.KeyStyle,
		Indent:     CLI.Indent,
		Headers:    headers,
		Debug:      CLI.Debug,
	})
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}
	if err := cfg.ValidateForCLI(); err != nil {
		return nil, errors.NewConfigError("invalid configuration", err)
	}

	logger, err := logging.New(logging.Backend(cfg.Log.Backend), cfg.Log.Level)
	if err != nil {
		return nil, errors.NewConfigError("failed to create logger", err)
	}
	if configPath != "" {
		logger.Debug("loaded config file", logging.Fields{"path": configPath})
	}

	provider, err := cache.New(cfg.CacheOptions())
	if err != nil {
		return nil, errors.NewConfigError("failed to create cache", err)
	}

	return &Context{
		Debug:  CLI.Debug,
		Config: cfg,
		Logger: logger,
		Cache:  provider,
		Stdout: os.Stdout,
	}, nil
}

// parseHeaders splits "Name: value" pairs.
func parseHeaders(raw []string) (map[string]string, error) {
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("header %q must look like 'Name: value'", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

// run executes the main program logic
func run(ctx *Context) error {
	if ctx.Config == nil {
		ctx.Config = config.NewConfig()
	}
	ctx.Logger = logging.OrNop(ctx.Logger)
	cfg := ctx.Config

	// 1. Build the field schema
	fields, err := schema.Parse(cfg.Fields)
	if err != nil {
		return err
	}
	if len(fields.Fields) == 0 {
		return errors.NewConfigError("no fields declared: pass -F key:kind or list them under 'fields' in the config file", nil)
	}
	ctx.Logger.Debug("decoding fields", logging.Fields{"schema": fields.Describe()})

	format, err := cfg.DateFormat()
	if err != nil {
		return errors.NewConfigError("invalid date settings", err)
	}
	style, err := encoder.ParseKeyStyle(cfg.Encoding.KeyStyle)
	if err != nil {
		return errors.NewConfigError("invalid key style", err)
	}

	// 2. Read the input document
	ir, err := readInput(ctx)
	if err != nil {
		return err
	}

	// 3. Decode and re-encode
	out, err := decode(ctx, fields, ir, format, style)
	if err != nil {
		return err
	}

	// 4. Output the result
	data, err := encoder.MarshalIndent(out, cfg.Encoding.Indent)
	if err != nil {
		return err
	}
	return writeOutput(ctx, data)
}

func decode(ctx *Context, fields *schema.Schema, ir models.IntermediateRepresentation, format decoder.DateFormat, style encoder.KeyStyle) (models.JSONValue, error) {
	if arr, ok := ir.Array(); ok {
		records, err := fields.DecodeAll(arr, format)
		if err != nil {
			return nil, err
		}
		out := make(models.JSONArray, len(records))
		for i, rec := range records {
			logAbsent(ctx.Logger, rec.Absent, i)
			out[i] = encoder.Rekey(rec.Object, style)
		}
		return out, nil
	}

	obj, ok := ir.Object()
	if !ok {
		return nil, errors.NewDecodeError("input root is neither an object nor an array", errors.ErrNotObject)
	}
	rec, err := fields.Decode(obj, format)
	logAbsent(ctx.Logger, rec.Absent, -1)
	if err != nil {
		return nil, err
	}
	return encoder.Rekey(rec.Object, style), nil
}

func logAbsent(logger logging.Logger, keys []string, index int) {
	for _, key := range keys {
		fields := logging.Fields{"key": key}
		if index >= 0 {
			fields["index"] = index
		}
		logger.Warn("field absent", fields)
	}
}

// readInput reads the document from a URL, a file or stdin
func readInput(ctx *Context) (models.IntermediateRepresentation, error) {
	if CLI.URL != "" {
		return fetchInput(ctx)
	}

	if CLI.Input != "" {
		return parser.ParseFile(CLI.Input)
	}

	format := parser.FormatJSON
	if CLI.InputFormat != "" {
		f, err := parser.ParseFormat(CLI.InputFormat)
		if err != nil {
			return models.IntermediateRepresentation{}, err
		}
		format = f
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		if CLI.Interactive {
			return readInteractiveInput(format)
		}
		return models.IntermediateRepresentation{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to read from stdin", err)
	}
	if len(data) == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return parser.ParseAs(format, data)
}

func fetchInput(ctx *Context) (models.IntermediateRepresentation, error) {
	cfg := ctx.Config
	method := transport.MethodGet
	if CLI.Method != "" {
		m, err := transport.ParseMethod(CLI.Method)
		if err != nil {
			return models.IntermediateRepresentation{}, errors.NewConfigError("invalid method", err)
		}
		method = m
	}

	opts := []transport.Option{
		transport.WithBaseURL(cfg.Transport.BaseURL),
		transport.WithHeaders(cfg.Transport.Headers),
		transport.WithTimeout(cfg.Transport.Timeout),
		transport.WithLogger(ctx.Logger),
	}
	if ctx.Cache != nil {
		opts = append(opts, transport.WithCache(ctx.Cache, cfg.Cache.TTL))
	}
	client, err := transport.New(opts...)
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}

	resp, err := client.Do(context.Background(), transport.Request{Method: method, URL: CLI.URL})
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}
	ir, err := resp.Parse()
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewDecodeError(fmt.Sprintf("response from %s could not be parsed", CLI.URL), err)
	}
	return ir, nil
}

// writeOutput writes the encoded result to file or stdout
func writeOutput(ctx *Context, data []byte) error {
	if CLI.Output != "" {
		if err := os.WriteFile(CLI.Output, append(data, '\n'), 0644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Decoded output written to %s\n", CLI.Output)
		return nil
	}

	w := ctx.Stdout
	if w == nil {
		w = os.Stdout
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput lets users paste a document and signal completion
// with Ctrl+D (EOF)
func readInteractiveInput(format parser.Format) (models.IntermediateRepresentation, error) {
	fmt.Fprintln(os.Stderr, "gloss interactive mode")
	fmt.Fprintf(os.Stderr, "Paste your %s below and press Ctrl+D (or Ctrl+Z on Windows) when done:\n", strings.ToUpper(string(format)))

	reader := bufio.NewReader(os.Stdin)
	var builder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		builder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.IntermediateRepresentation{}, errors.NewInputError("error reading input", err)
		}
	}

	if builder.Len() == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing input...")
	return parser.ParseAs(format, []byte(builder.String()))
}
