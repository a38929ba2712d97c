// Command objc2dart translates front-end AST dumps of C and Objective-C
// units into Dart source that runs on the objc2dart runtime library.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/objc2dart/objc2dart/internal/cli"
	"github.com/objc2dart/objc2dart/internal/term"
	"github.com/objc2dart/objc2dart/internal/watch"
)

const toolName = "objc2dart"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, term.ColorEnabled(os.Stderr))
	stop()
	os.Exit(code)
}

// options are the parsed command line.
type options struct {
	cfg    *cli.Config
	inputs []string
	watch  bool
	diff   bool
}

// run is main without the process exits. It returns the exit status:
// 0 on success, 1 when a unit failed and 2 for usage errors.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, color bool) int {
	fs := flag.NewFlagSet(toolName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		outDir      = fs.String("o", "", "write generated files to `dir` instead of next to the inputs")
		configPath  = fs.String("config", "", "load configuration from `file`")
		jobs        = fs.Int("j", 0, "translate at most `n` units at once")
		watchMode   = fs.Bool("watch", false, "regenerate when an input changes")
		diffMode    = fs.Bool("diff", false, "print a unified diff against the existing output instead of writing it")
		verbose     = fs.Bool("v", false, "log each unit")
		debug       = fs.Bool("debug", false, "log each emitted declaration")
		showVersion = fs.Bool("version", false, "show version information")
		jsonOutput  = fs.Bool("json", false, "print version information as JSON")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [flags] dump.json... (use - for stdin)\n\nflags:\n", toolName)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if *showVersion {
		if err := cli.PrintVersion(stdout, toolName, *jsonOutput); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	cfg, err := cli.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.OutputDir = *outDir
		case "j":
			cfg.Jobs = *jobs
		case "v":
			cfg.Verbose = *verbose
		case "debug":
			cfg.Debug = *debug
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	opts := options{cfg: cfg, inputs: fs.Args(), watch: *watchMode, diff: *diffMode}
	if len(opts.inputs) == 0 {
		fs.Usage()
		return 2
	}
	if opts.watch && contains(opts.inputs, "-") {
		fmt.Fprintln(stderr, "error: -watch cannot read from stdin")
		return 2
	}

	d := &driver{
		opts:   opts,
		log:    cli.NewLoggerTo(stderr, cfg.Verbose, cfg.Debug),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		color:  color,
	}
	failed := d.translateAll(ctx, opts.inputs)
	if !opts.watch {
		if failed {
			return 1
		}
		return 0
	}

	w, err := watch.New(opts.inputs)
	if err != nil {
		fmt.Fprintf(stderr, "error: watching inputs: %v\n", err)
		return 1
	}
	defer w.Close()
	d.log.Info("watching %d input(s)", len(opts.inputs))
	err = w.Run(ctx, 100*time.Millisecond, func(changed []string) {
		d.translateAll(ctx, changed)
	})
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
