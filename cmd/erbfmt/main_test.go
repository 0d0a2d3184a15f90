package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	messyView = "<ul>\n<% items.each do |item| %>\n<li><%=item.name%></li>\n<% end %>\n</ul>\n"
	tidyView  = "<ul>\n  <% items.each do |item| %>\n    <li><%= item.name %></li>\n  <% end %>\n</ul>\n"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--ui", "off", "--color", "off"}, args...))
	err := root.Execute()
	return cliResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

func writeTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFmtStdin(t *testing.T) {
	res := runCLI(t, messyView, "fmt", "--no-script-formatter")
	if res.err != nil {
		t.Fatalf("fmt: %v (%s)", res.err, res.stderr)
	}
	if res.stdout != tidyView {
		t.Fatalf("stdout\nwant %q\ngot  %q", tidyView, res.stdout)
	}
}

func TestFmtStdinIndentFlag(t *testing.T) {
	res := runCLI(t, "<div>\n<p>x</p>\n</div>\n", "fmt", "-", "--indent", "4")
	if res.err != nil {
		t.Fatal(res.err)
	}
	want := "<div>\n    <p>x</p>\n</div>\n"
	if res.stdout != want {
		t.Fatalf("stdout\nwant %q\ngot  %q", want, res.stdout)
	}
}

func TestFmtRewritesFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "index.html.erb", messyView)

	res := runCLI(t, "", "fmt", dir)
	if res.err != nil {
		t.Fatalf("fmt: %v (%s)", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "reformatted "+path) {
		t.Fatalf("missing report line:\n%s", res.stdout)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != tidyView {
		t.Fatalf("file\nwant %q\ngot  %q", tidyView, data)
	}
}

func TestCheckReportsAndExits(t *testing.T) {
	dir := t.TempDir()
	messy := writeTemplate(t, dir, "a.html.erb", messyView)
	writeTemplate(t, dir, "b.html.erb", tidyView)

	res := runCLI(t, "", "check", dir)
	if !errors.Is(res.err, errChangesNeeded) {
		t.Fatalf("want errChangesNeeded, got %v", res.err)
	}
	if res.stdout != messy+"\n" {
		t.Fatalf("stdout\nwant %q\ngot  %q", messy+"\n", res.stdout)
	}
	if !strings.Contains(res.stderr, "2 file(s) checked, 1 would be reformatted") {
		t.Fatalf("missing summary:\n%s", res.stderr)
	}
	data, err := os.ReadFile(messy)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != messyView {
		t.Fatal("check modified a file")
	}
}

func TestCheckCleanTree(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.html.erb", tidyView)
	if res := runCLI(t, "", "fmt", "--check", dir); res.err != nil {
		t.Fatalf("clean tree failed check: %v", res.err)
	}
}

func TestCheckDiff(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "a.html.erb", "<div>\n<p>x</p>\n</div>\n")
	res := runCLI(t, "", "check", "--diff", path)
	if !errors.Is(res.err, errChangesNeeded) {
		t.Fatalf("want errChangesNeeded, got %v", res.err)
	}
	for _, want := range []string{"--- " + path, "-<p>x</p>", "+  <p>x</p>"} {
		if !strings.Contains(res.stdout, want) {
			t.Fatalf("diff missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestFmtJSON(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.html.erb", messyView)
	res := runCLI(t, "", "fmt", "--check", "--format", "json", dir)
	if !errors.Is(res.err, errChangesNeeded) {
		t.Fatalf("want errChangesNeeded, got %v", res.err)
	}
	var payload []struct {
		Path    string `json:"path"`
		Changed bool   `json:"changed"`
		Check   bool   `json:"check"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &payload); err != nil {
		t.Fatalf("invalid json %q: %v", res.stdout, err)
	}
	if len(payload) != 1 || !payload[0].Changed || !payload[0].Check {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestFmtConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, ".erbformatterrc", `{"indentSize": 3}`)
	path := writeTemplate(t, dir, "a.html.erb", "<div>\n<p>x</p>\n</div>\n")

	res := runCLI(t, "", "fmt", "--stdout", path)
	if res.err != nil {
		t.Fatal(res.err)
	}
	if want := "<div>\n   <p>x</p>\n</div>\n"; res.stdout != want {
		t.Fatalf("stdout\nwant %q\ngot  %q", want, res.stdout)
	}

	// флаг сильнее файла
	res = runCLI(t, "", "fmt", "--stdout", "--indent", "1", path)
	if res.err != nil {
		t.Fatal(res.err)
	}
	if want := "<div>\n <p>x</p>\n</div>\n"; res.stdout != want {
		t.Fatalf("stdout with flag\nwant %q\ngot  %q", want, res.stdout)
	}
}

func TestFmtFlagValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"stdout with check", []string{"fmt", "--check", "--stdout", "x.erb"}, "--stdout cannot be used with --check"},
		{"bad format", []string{"fmt", "--format", "xml"}, "unsupported output format"},
		{"bad lines", []string{"fmt", "--lines", "9:2"}, "end before start"},
		{"bad indent", []string{"fmt", "--indent", "0"}, "indentSize"},
		{"bad ui", []string{"--ui", "maybe", "fmt", "x.erb"}, "invalid --ui value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, "", tt.args...)
			if res.err == nil || !strings.Contains(res.err.Error(), tt.want) {
				t.Fatalf("want error containing %q, got %v", tt.want, res.err)
			}
		})
	}
}

func TestFmtLinesStdin(t *testing.T) {
	in := "<div>\n<p>a</p>\n</div>\n<div>\n<p>b</p>\n</div>\n"
	res := runCLI(t, in, "fmt", "--lines", "4:6")
	if res.err != nil {
		t.Fatal(res.err)
	}
	want := "<div>\n<p>a</p>\n</div>\n<div>\n  <p>b</p>\n</div>\n"
	if res.stdout != want {
		t.Fatalf("stdout\nwant %q\ngot  %q", want, res.stdout)
	}
}

func TestTokenizeJSON(t *testing.T) {
	res := runCLI(t, "<p><%= x %></p>", "tokenize", "--format", "json", "-")
	if res.err != nil {
		t.Fatal(res.err)
	}
	var toks []map[string]any
	if err := json.Unmarshal([]byte(res.stdout), &toks); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(toks) != 3 || toks[1]["kind"] != "CodeOutput" {
		t.Fatalf("unexpected tokens %v", toks)
	}
}

func TestInitWritesConfigOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "app")
	res := runCLI(t, "", "init", dir)
	if res.err != nil {
		t.Fatal(res.err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".erbformatter.toml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if res := runCLI(t, "", "init", dir); res.err == nil {
		t.Fatal("second init should fail")
	}
}

func TestVersionJSON(t *testing.T) {
	res := runCLI(t, "", "version", "--format", "json")
	if res.err != nil {
		t.Fatal(res.err)
	}
	if !strings.Contains(res.stdout, `"tool": "erbfmt"`) {
		t.Fatalf("unexpected output %q", res.stdout)
	}
}

func TestCacheCommands(t *testing.T) {
	res := runCLI(t, "", "cache", "info")
	if res.err != nil {
		t.Fatal(res.err)
	}
	if !strings.Contains(res.stdout, "entries: 0") {
		t.Fatalf("unexpected info %q", res.stdout)
	}
	if res := runCLI(t, "", "cache", "clean"); res.err != nil {
		t.Fatal(res.err)
	}
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := humanBytes(tt.n); got != tt.want {
			t.Fatalf("humanBytes(%d)\nwant %q\ngot  %q", tt.n, tt.want, got)
		}
	}
}

// closableBuffer drops writes after Close, like a closed stderr.
type closableBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closableBuffer) Write(p []byte) (int, error) {
	if b.closed {
		return 0, os.ErrClosed
	}
	return b.Buffer.Write(p)
}

func (b *closableBuffer) Close() error {
	b.closed = true
	return nil
}

func TestErrorReachesStderrWithLogging(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir := t.TempDir()
	good := writeTemplate(t, dir, "a.html.erb", "<p>x</p>\n")
	missing := filepath.Join(dir, "missing.erb")

	root := newRootCmd()
	stderr := &closableBuffer{}
	root.SetOut(&bytes.Buffer{})
	root.SetErr(stderr)
	root.SetArgs([]string{"--ui", "off", "--color", "off", "--log-level", "info", "check", "--no-cache", good, missing})

	if code := execute(root); code != 1 {
		t.Fatalf("exit code: want 1, got %d", code)
	}
	if stderr.closed {
		t.Fatalf("stderr was closed by the tracer")
	}
	if !strings.Contains(stderr.String(), "erbfmt: ") || !strings.Contains(stderr.String(), "missing.erb") {
		t.Fatalf("error text missing from stderr:\n%s", stderr.String())
	}
}
