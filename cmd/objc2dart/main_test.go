package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/objc2dart/objc2dart/internal/testrunner"
	"github.com/objc2dart/objc2dart/internal/testrunner/assert"
)

const goldens = "../../internal/codegen/testdata/*.txtar"

func runCmd(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr, false)
	return code, stdout.String(), stderr.String()
}

// dumps writes every golden input into dir as <name>.json and returns the
// paths and expected outputs of the units that translate cleanly.
func dumps(t *testing.T, dir string) (inputs []string, want map[string]string) {
	t.Helper()
	want = make(map[string]string)
	for _, g := range testrunner.LoadGolden(t, goldens) {
		out, ok := g.File("output.dart")
		if !ok {
			continue
		}
		p := filepath.Join(dir, g.Name+".json")
		if err := os.WriteFile(p, g.MustFile(t, "input.json"), 0o644); err != nil {
			t.Fatal(err)
		}
		inputs = append(inputs, p)
		want[g.Name] = string(out)
	}
	return inputs, want
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in, dir, want string
	}{
		{"add.json", "", "add.dart"},
		{"src/add.json", "", "src/add.dart"},
		{"src/add.json", "gen", "gen/add.dart"},
		{"dump", "", "dump.dart"},
	}
	for _, tt := range tests {
		assert.Equal(t, filepath.ToSlash(outputPath(tt.in, tt.dir)), tt.want)
	}
	assert.Equal(t, unitName("-"), "stdin")
	assert.Equal(t, unitName("dir/add.json"), "add")
}

func TestRunTranslatesUnits(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	inputs, want := dumps(t, in)

	args := append([]string{"-o", out, "-j", "2"}, inputs...)
	code, stdout, stderr := runCmd(t, "", args...)
	assert.Equal(t, code, 0, stderr)
	assert.Equal(t, stdout, "")
	for name, text := range want {
		got, err := os.ReadFile(filepath.Join(out, name+".dart"))
		if assert.NoError(t, err) {
			assert.Equal(t, string(got), text, name)
		}
	}
}

func TestRunFromStdin(t *testing.T) {
	g := testrunner.LoadGolden(t, "../../internal/codegen/testdata/basic.txtar")[0]
	code, stdout, stderr := runCmd(t, string(g.MustFile(t, "input.json")), "-")
	assert.Equal(t, code, 0, stderr)
	assert.Equal(t, stdout, string(g.MustFile(t, "output.dart")))
}

func TestRunDiff(t *testing.T) {
	dir := t.TempDir()
	inputs, want := dumps(t, dir)
	input := inputs[0]
	dest := outputPath(input, "")
	name := strings.TrimSuffix(filepath.Base(input), ".json")
	stale := strings.Replace(want[name], "DO NOT EDIT.", "DO NOT EDIT!", 1)
	if err := os.WriteFile(dest, []byte(stale), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runCmd(t, "", "-diff", input)
	assert.Equal(t, code, 0, stderr)
	assert.Contains(t, stdout, "--- a/"+dest+"\n+++ b/"+dest+"\n@@ -1,4 +1,4 @@\n")
	assert.Contains(t, stdout, "-// Code generated by objc2dart. DO NOT EDIT!\n+// Code generated by objc2dart. DO NOT EDIT.\n")

	kept, err := os.ReadFile(dest)
	if assert.NoError(t, err) {
		assert.Equal(t, string(kept), stale)
	}
}

func TestRunReportsFailures(t *testing.T) {
	dir := t.TempDir()
	g := testrunner.LoadGolden(t, "../../internal/codegen/testdata/vla.txtar")[0]
	bad := filepath.Join(dir, "vla.json")
	if err := os.WriteFile(bad, g.MustFile(t, "input.json"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.json")

	code, _, stderr := runCmd(t, "", bad, missing)
	assert.Equal(t, code, 1)
	assert.Contains(t, stderr, "error[VARIABLE_LENGTH_ARRAY]: variable-length arrays are not supported\n  --> vla.c:2:7\n")
	assert.Contains(t, stderr, "error[IO_FAILURE]: read "+missing)
	assert.Contains(t, stderr, "Found 2 error(s) and 0 warning(s).")
	_, err := os.Stat(filepath.Join(dir, "vla.dart"))
	assert.True(t, os.IsNotExist(err), "no output for a failed unit")
}

func TestRunUsageErrors(t *testing.T) {
	dir := t.TempDir()
	badConfig := filepath.Join(dir, "c.json")
	if err := os.WriteFile(badConfig, []byte(`{"runtime_version": "3.0.0"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no inputs", nil, "usage: objc2dart"},
		{"unknown flag", []string{"-x"}, "flag provided but not defined"},
		{"bad jobs", []string{"-j", "0", "a.json"}, "jobs: must be at least 1"},
		{"incompatible runtime", []string{"-config", badConfig, "a.json"}, "runtime_version"},
		{"watch stdin", []string{"-watch", "-"}, "-watch cannot read from stdin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCmd(t, "", tt.args...)
			assert.Equal(t, code, 2)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := runCmd(t, "", "-version")
	assert.Equal(t, code, 0)
	assert.True(t, strings.HasPrefix(stdout, "objc2dart v"))

	code, stdout, _ = runCmd(t, "", "-version", "-json")
	assert.Equal(t, code, 0)
	assert.Contains(t, stdout, `"tool": "objc2dart"`)
}
