// Command blx issues one request against the BillingLogix API and prints
// the JSON result.
//
//	blx [flags] METHOD PATH [BODY]
//
// BODY is sent verbatim; a leading "@" reads it from a file and "-" reads
// it from stdin. Credentials come from flags, BILLINGLOGIX_* environment
// variables, a .env file or billinglogix.yml.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"

	billinglogix "github.com/billinglogix/billinglogix-go"
	"github.com/billinglogix/billinglogix-go/config"
	"github.com/billinglogix/billinglogix-go/observability"
	"github.com/billinglogix/billinglogix-go/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("blx", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.RegisterFlags(fs)
	query := fs.StringToString("query", nil, "query parameter (name=value, repeatable)")
	headers := fs.StringToString("request-header", nil, "header for this request only (Name=value, repeatable)")
	timeout := fs.Duration("request-timeout", 0, "timeout for this request (1s-60s)")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: blx [flags] METHOD PATH [BODY]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.GetFullVersion())
		return 0
	}
	if fs.NArg() < 2 || fs.NArg() > 3 {
		fs.Usage()
		return 2
	}

	body, err := readBody(fs.Arg(2), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "blx: %v\n", err)
		return 1
	}

	cfg, err := config.Load(config.WithFlags(fs))
	if err != nil {
		fmt.Fprintf(stderr, "blx: %v\n", err)
		return 1
	}

	opts, err := cfg.ClientOptions()
	if err != nil {
		fmt.Fprintf(stderr, "blx: %v\n", err)
		return 1
	}
	if cfg.Telemetry.Enabled {
		shutdown, err := setupTelemetry(ctx, cfg, opts)
		if err != nil {
			fmt.Fprintf(stderr, "blx: telemetry: %v\n", err)
			return 1
		}
		defer shutdown()
	}

	client, err := billinglogix.NewWithCredentials(cfg.Account, cfg.Credentials(), opts)
	if err != nil {
		fmt.Fprintf(stderr, "blx: %v\n", err)
		return 1
	}

	req := &billinglogix.Request{
		Method:  fs.Arg(0),
		Path:    fs.Arg(1),
		Body:    body,
		Timeout: *timeout,
		Headers: *headers,
	}
	if len(*query) > 0 {
		req.Query = make(map[string]any, len(*query))
		for k, v := range *query {
			req.Query[k] = v
		}
	}

	result, err := client.Do(ctx, req)
	if err != nil {
		writeError(stderr, err)
		return 1
	}
	if err := writeJSON(stdout, result); err != nil {
		fmt.Fprintf(stderr, "blx: %v\n", err)
		return 1
	}
	return 0
}

// readBody resolves the BODY argument.
func readBody(arg string, stdin io.Reader) (any, error) {
	switch {
	case arg == "":
		return nil, nil
	case arg == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	case strings.HasPrefix(arg, "@"):
		data, err := os.ReadFile(arg[1:])
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return data, nil
	default:
		return arg, nil
	}
}

func setupTelemetry(ctx context.Context, cfg *config.Config, opts *billinglogix.Options) (func(), error) {
	tcfg := observability.DefaultTracerConfig(cfg.Telemetry.ServiceName)
	tcfg.ServiceVersion = version.Version
	tcfg.Endpoint = cfg.Telemetry.Endpoint
	tcfg.Insecure = cfg.Telemetry.Insecure
	if cfg.Telemetry.SampleRate > 0 {
		tcfg.SampleRate = cfg.Telemetry.SampleRate
	}
	tp, err := observability.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, err
	}

	mcfg := observability.DefaultMeterConfig(cfg.Telemetry.ServiceName)
	mcfg.ServiceVersion = version.Version
	mcfg.Endpoint = cfg.Telemetry.Endpoint
	mcfg.Insecure = cfg.Telemetry.Insecure
	mp, err := observability.InitMeter(ctx, &mcfg)
	if err != nil {
		tp.Shutdown(ctx)
		return nil, err
	}

	opts.TracerProvider = tp
	opts.MeterProvider = mp
	return func() {
		// flush with a fresh context; ctx may already be cancelled
		flushCtx := context.Background()
		tp.Shutdown(flushCtx)
		mp.Shutdown(flushCtx)
	}, nil
}

// writeError prints API errors as JSON and anything else as plain text.
func writeError(w io.Writer, err error) {
	if _, ok := err.(json.Marshaler); ok {
		if werr := writeJSON(w, err); werr == nil {
			return
		}
	}
	fmt.Fprintf(w, "blx: %v\n", err)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
