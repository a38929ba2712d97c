package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/objc2dart/objc2dart/internal/cli"
	"github.com/objc2dart/objc2dart/internal/codegen"
	"github.com/objc2dart/objc2dart/internal/diagnostics"
	"github.com/objc2dart/objc2dart/internal/errors"
	"github.com/objc2dart/objc2dart/internal/format"
	"github.com/objc2dart/objc2dart/internal/frontend"
)

// driver translates units and reports on them. Units are independent: each
// gets its own front end and generator.
type driver struct {
	opts   options
	log    *cli.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	color  bool
}

// result is the outcome of one unit. Text goes to stdout after every unit
// has finished so concurrent units do not interleave.
type result struct {
	input  string
	stdout []byte
	err    error
}

// translateAll translates inputs with at most cfg.Jobs running at once and
// reports whether any failed.
func (d *driver) translateAll(ctx context.Context, inputs []string) bool {
	results := make([]result, len(inputs))
	g := new(errgroup.Group)
	g.SetLimit(d.opts.cfg.Jobs)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			results[i] = d.unit(ctx, in)
			return nil
		})
	}
	_ = g.Wait()

	dm := diagnostics.NewDiagnosticManager()
	for _, r := range results {
		d.stdout.Write(r.stdout)
		if r.err != nil {
			dm.AddError(r.err)
		}
	}
	if !dm.HasErrors() {
		return false
	}
	dm.SortDiagnostics()
	for _, diag := range dm.GetDiagnostics() {
		fmt.Fprint(d.stderr, dm.FormatDiagnostic(diag, d.color))
	}
	if len(dm.GetDiagnostics()) > 1 {
		fmt.Fprintln(d.stderr, dm.FormatSummary())
	}
	return true
}

// unit translates one input and writes, diffs or returns its output.
func (d *driver) unit(ctx context.Context, input string) result {
	res := result{input: input}
	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(d.stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		res.err = errors.IO("read", input, err)
		return res
	}

	d.log.Info("translating %s", input)
	out, err := translate(ctx, d.opts.cfg, d.log, input, data)
	if err != nil {
		res.err = err
		return res
	}

	if input == "-" {
		res.stdout = out
		return res
	}
	dest := outputPath(input, d.opts.cfg.OutputDir)
	if d.opts.diff {
		old, err := os.ReadFile(dest)
		if err != nil && !os.IsNotExist(err) {
			res.err = errors.IO("read", dest, err)
			return res
		}
		res.stdout = []byte(format.Unified("a/"+dest, "b/"+dest, string(old), string(out)))
		return res
	}
	if err := writeOutput(dest, out); err != nil {
		res.err = err
		return res
	}
	d.log.Info("wrote %s", dest)
	return res
}

// translate decodes one dump and generates its Dart source.
func translate(ctx context.Context, cfg *cli.Config, log codegen.Logger, source string, data []byte) ([]byte, error) {
	unit, fe, err := frontend.LoadBytes(data, source, cfg.FrontendOptions())
	if err != nil {
		return nil, err
	}
	if unit.Name == "" {
		unit.Name = unitName(source)
	}
	gen := codegen.NewGenerator(fe, codegen.Options{RuntimePackage: cfg.RuntimePackage, Logger: log})
	out, err := gen.Generate(ctx, unit)
	if err != nil {
		return nil, err
	}
	return format.FormatBytes(out, format.DefaultOptions()), nil
}

// outputPath maps x.json to x.dart, in dir when one is given.
func outputPath(input, dir string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input)) + ".dart"
	if dir == "" {
		return base
	}
	return filepath.Join(dir, filepath.Base(base))
}

// unitName is the name used in log lines for a dump without one.
func unitName(source string) string {
	if source == "-" {
		return "stdin"
	}
	return strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
}

// writeOutput replaces dest only when its contents change, so watchers of
// the generated files are not woken needlessly.
func writeOutput(dest string, out []byte) error {
	if old, err := os.ReadFile(dest); err == nil && bytes.Equal(old, out) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.IO("create directory", filepath.Dir(dest), err)
	}
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		return errors.IO("write", dest, err)
	}
	return nil
}
