package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"erbfmt/internal/format"
	"erbfmt/internal/observ"
	"erbfmt/internal/trace"
)

const (
	messyView = "<div>\n<% if user %>\n<p><%= user.name %></p>\n<% end %>\n</div>\n"
	tidyView  = "<div>\n  <% if user %>\n    <p><%= user.name %></p>\n  <% end %>\n</div>\n"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func testOptions() FormatOptions {
	opt := format.DefaultOptions()
	opt.ScriptDelegate = false
	return FormatOptions{Options: opt, Jobs: 2}
}

func TestCollectFilesSortedAndFiltered(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app/views/b.html.erb":         "",
		"app/views/a.html.erb":         "",
		"app/views/readme.md":          "",
		"node_modules/pkg/x.erb":       "",
		".git/hooks/y.erb":             "",
		"app/views/shared/_c.html.erb": "",
		"app/views/shared/_d.text.erb": "",
	})
	got, err := CollectFiles(context.Background(), []string{root, filepath.Join(root, "app/views/a.html.erb")})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, "app/views/a.html.erb"),
		filepath.Join(root, "app/views/b.html.erb"),
		filepath.Join(root, "app/views/shared/_c.html.erb"),
		filepath.Join(root, "app/views/shared/_d.text.erb"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatPathsWritesChangedFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"messy.html.erb": messyView,
		"tidy.html.erb":  tidyView,
	})
	results, err := FormatPaths(context.Background(), []string{root}, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("want 2 results, got %d", len(results))
	}
	if !results[0].Changed || results[1].Changed {
		t.Fatalf("unexpected changed flags: %+v", results)
	}
	if got := readFile(t, filepath.Join(root, "messy.html.erb")); got != tidyView {
		t.Fatalf("rewritten file\nwant %q\ngot  %q", tidyView, got)
	}
}

func TestFormatPathsCheckWritesNothing(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.html.erb": messyView,
		"a.html.erb": messyView,
		"c.html.erb": tidyView,
	})
	opts := testOptions()
	opts.Check = true
	results, err := FormatPaths(context.Background(), []string{root}, opts)
	if err != nil {
		t.Fatal(err)
	}
	var changed []string
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("%s: %v", r.Path, r.Err)
		}
		if r.Changed {
			changed = append(changed, filepath.Base(r.Path))
		}
	}
	if diff := cmp.Diff([]string{"a.html.erb", "b.html.erb"}, changed); diff != "" {
		t.Fatalf("changed files (-want +got):\n%s", diff)
	}
	for _, name := range []string{"a.html.erb", "b.html.erb"} {
		if got := readFile(t, filepath.Join(root, name)); got != messyView {
			t.Fatalf("%s modified under check", name)
		}
	}
	if string(results[0].Formatted) != tidyView {
		t.Fatalf("check result\nwant %q\ngot  %q", tidyView, results[0].Formatted)
	}
}

func TestFormatPathsKeepsCRLFAndBOM(t *testing.T) {
	crlf := "\xEF\xBB\xBF<ul>\r\n<li>a</li>\r\n</ul>\r\n"
	root := writeTree(t, map[string]string{"list.html.erb": crlf})
	if _, err := FormatPaths(context.Background(), []string{root}, testOptions()); err != nil {
		t.Fatal(err)
	}
	want := "\xEF\xBB\xBF<ul>\r\n  <li>a</li>\r\n</ul>\r\n"
	if got := readFile(t, filepath.Join(root, "list.html.erb")); got != want {
		t.Fatalf("line endings\nwant %q\ngot  %q", want, got)
	}
}

func TestFormatPathsNoFiles(t *testing.T) {
	root := writeTree(t, map[string]string{"notes.txt": "x"})
	_, err := FormatPaths(context.Background(), []string{root}, testOptions())
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("want ErrNoFiles, got %v", err)
	}
}

func TestFormatPathsMissingPath(t *testing.T) {
	_, err := FormatPaths(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, testOptions())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want ErrNotExist, got %v", err)
	}
}

func TestFormatPathsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FormatPaths(ctx, []string{t.TempDir()}, testOptions()); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestFormatPathsUsesCache(t *testing.T) {
	root := writeTree(t, map[string]string{"a.html.erb": messyView})
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := testOptions()
	opts.Check = true
	opts.Cache = cache

	first, err := FormatPaths(context.Background(), []string{root}, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := FormatPaths(context.Background(), []string{root}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Cached || !second[0].Cached {
		t.Fatalf("cached flags: first %v, second %v", first[0].Cached, second[0].Cached)
	}
	if string(second[0].Formatted) != tidyView {
		t.Fatalf("cached output\nwant %q\ngot  %q", tidyView, second[0].Formatted)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func TestFormatPathsProgressAndTimings(t *testing.T) {
	root := writeTree(t, map[string]string{"a.html.erb": messyView, "b.html.erb": tidyView})
	sink := &recordingSink{}
	opts := testOptions()
	opts.Check = true
	opts.Progress = sink
	opts.Timer = observ.NewTimer()

	if _, err := FormatPaths(context.Background(), []string{root}, opts); err != nil {
		t.Fatal(err)
	}
	done := 0
	for _, ev := range sink.events {
		if ev.Status == StatusDone {
			done++
		}
	}
	if done != 2 {
		t.Fatalf("want 2 done events, got %d: %+v", done, sink.events)
	}
	counts := map[string]int{}
	for _, p := range opts.Timer.Report().Phases {
		counts[p.Name] = p.Count
	}
	want := map[string]int{"collect": 1, "read": 2, "cache": 2, "format": 2, "run": 1}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Fatalf("phase counts (-want +got):\n%s", diff)
	}
}

func TestFormatSourceLineRange(t *testing.T) {
	src := "<div>\n<p>a</p>\n</div>\n<section>\n<p>b</p>\n</section>\n"
	opts := testOptions()
	opts.Lines = &LineRange{From: 4, To: -1}

	res := FormatSource(context.Background(), "<stdin>", []byte(src), opts)
	want := "<div>\n<p>a</p>\n</div>\n<section>\n  <p>b</p>\n</section>\n"
	if string(res.Formatted) != want {
		t.Fatalf("range output\nwant %q\ngot  %q", want, res.Formatted)
	}
	if !res.Changed {
		t.Fatal("expected Changed")
	}
}

func TestFormatSourceTracesUnterminated(t *testing.T) {
	rec := trace.NewRecorder(16, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), rec)
	src := "<div>\n<%= oops\n"

	res := FormatSource(ctx, "<stdin>", []byte(src), testOptions())
	if string(res.Formatted) != src || res.Changed {
		t.Fatalf("broken input must be left unchanged, got %q", res.Formatted)
	}
	found := false
	for _, name := range rec.Names() {
		if name == "left unchanged" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no degradation event, got %v", rec.Names())
	}
}
