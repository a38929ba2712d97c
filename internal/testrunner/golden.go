// Package testrunner holds the golden-file harness shared by package tests.
//
// A golden case is a txtar archive under testdata/. Its comment section is a
// free-form description, and its files are the inputs plus the expected
// outputs of one run. Running the tests with -update rewrites the expected
// files in place from the actual output.
package testrunner

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/objc2dart/objc2dart/internal/format"
)

var update = flag.Bool("update", false, "rewrite golden files from actual output")

// Updating reports whether golden files are being rewritten.
func Updating() bool { return *update }

// Golden is one loaded archive.
type Golden struct {
	Name    string // Base name without extension
	Path    string
	archive *txtar.Archive
	dirty   bool
}

// LoadGolden reads every archive matching pattern, sorted by name. It fails
// the test when nothing matches.
func LoadGolden(t testing.TB, pattern string) []*Golden {
	t.Helper()
	paths, err := filepath.Glob(pattern)
	if err != nil {
		t.Fatalf("golden pattern %q: %v", pattern, err)
	}
	if len(paths) == 0 {
		t.Fatalf("no golden files match %q", pattern)
	}
	sort.Strings(paths)

	out := make([]*Golden, 0, len(paths))
	for _, p := range paths {
		a, err := txtar.ParseFile(p)
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		out = append(out, &Golden{
			Name:    strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)),
			Path:    p,
			archive: a,
		})
	}
	return out
}

// Comment returns the archive's leading description.
func (g *Golden) Comment() string { return string(g.archive.Comment) }

// File returns the contents of the named section.
func (g *Golden) File(name string) ([]byte, bool) {
	for _, f := range g.archive.Files {
		if f.Name == name {
			return f.Data, true
		}
	}
	return nil, false
}

// MustFile is File that fails the test for a missing section.
func (g *Golden) MustFile(t testing.TB, name string) []byte {
	t.Helper()
	data, ok := g.File(name)
	if !ok {
		t.Fatalf("%s: no section %q", g.Path, name)
	}
	return data
}

// Check compares got against the named section and reports a unified diff
// on mismatch. Under -update the section is replaced (or appended) and the
// archive is rewritten by Flush.
func (g *Golden) Check(t testing.TB, name string, got []byte) bool {
	t.Helper()
	want, ok := g.File(name)
	if ok && bytes.Equal(want, got) {
		return true
	}
	if *update {
		g.set(name, got)
		return true
	}
	if !ok {
		t.Errorf("%s: no section %q; run with -update to create it", g.Path, name)
		return false
	}
	t.Errorf("%s: %s differs from golden\n%s", g.Path, name,
		format.Unified("want/"+name, "got/"+name, string(want), string(got)))
	return false
}

func (g *Golden) set(name string, data []byte) {
	g.dirty = true
	for i := range g.archive.Files {
		if g.archive.Files[i].Name == name {
			g.archive.Files[i].Data = data
			return
		}
	}
	g.archive.Files = append(g.archive.Files, txtar.File{Name: name, Data: data})
}

// Flush writes the archive back if Check changed it.
func (g *Golden) Flush(t testing.TB) {
	t.Helper()
	if !g.dirty {
		return
	}
	if err := os.WriteFile(g.Path, txtar.Format(g.archive), 0o644); err != nil {
		t.Fatalf("writing %s: %v", g.Path, err)
	}
	g.dirty = false
}
