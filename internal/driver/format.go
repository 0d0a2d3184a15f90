package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"erbfmt/internal/format"
	"erbfmt/internal/observ"
	"erbfmt/internal/source"
	"erbfmt/internal/trace"
)

// ErrNoFiles is returned when the given paths hold no templates.
var ErrNoFiles = errors.New("format: no .erb files found")

// FormatOptions configures a formatting run.
type FormatOptions struct {
	Check    bool // report only, never write
	Stdout   bool // return output in FormatResult.Formatted instead of writing
	Options  format.Options
	Lines    *LineRange // nil formats whole files
	Jobs     int        // <= 0 means GOMAXPROCS
	Cache    *DiskCache // nil disables caching
	Progress ProgressSink
	Timer    *observ.Timer
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path      string
	Changed   bool
	Cached    bool
	Err       error
	Original  []byte // set in Check and Stdout modes
	Formatted []byte // set in Check and Stdout modes
}

// FormatPaths formats provided files or directories (recursively collecting
// .erb files). Results come back in path order. Per-file failures are
// reported in FormatResult.Err; the returned error is reserved for collection
// failures and cancellation.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracer := trace.FromContext(ctx)

	stopCollect := opts.Timer.Start(observ.PhaseCollect)
	files, err := CollectFiles(ctx, paths)
	stopCollect(strconv.Itoa(len(files)) + " files")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageRead, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	trace.Log(tracer, trace.LevelInfo, trace.ScopeDriver, "format paths",
		fmt.Sprintf("%d files, %d jobs", len(files), jobs))

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]FormatResult, len(files))
	var cached atomic.Int64

	stopRun := opts.Timer.Start(observ.PhaseRun)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = formatPath(gctx, path, opts)
			if results[i].Cached {
				cached.Add(1)
			}
			return nil
		})
	}
	err = g.Wait()
	stopRun(fmt.Sprintf("%d jobs, %d cached", jobs, cached.Load()))
	if err != nil {
		return results, err
	}
	return results, nil
}

func formatPath(ctx context.Context, path string, opts FormatOptions) FormatResult {
	start := time.Now()
	ctx = trace.WithFile(ctx, path)
	res := FormatResult{Path: path}
	fail := func(stage Stage, err error) FormatResult {
		res.Err = err
		trace.LogContext(ctx, trace.LevelError, trace.ScopeFile, "format failed", err.Error())
		emit(opts.Progress, Event{File: path, Stage: stage, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return res
	}

	emit(opts.Progress, Event{File: path, Stage: StageRead, Status: StatusWorking})
	// #nosec G304 -- path is provided by the caller
	readStart := time.Now()
	raw, err := os.ReadFile(path)
	opts.Timer.Add(observ.PhaseRead, time.Since(readStart))
	if err != nil {
		return fail(StageRead, err)
	}

	emit(opts.Progress, Event{File: path, Stage: StageFormat, Status: StatusWorking})
	res = formatBytes(ctx, path, raw, opts)
	if res.Err != nil {
		return fail(StageFormat, res.Err)
	}

	if !opts.Check && !opts.Stdout && res.Changed {
		emit(opts.Progress, Event{File: path, Stage: StageWrite, Status: StatusWorking})
		mode := os.FileMode(0o644)
		if info, statErr := os.Stat(path); statErr == nil {
			mode = info.Mode()
		}
		writeStart := time.Now()
		err := os.WriteFile(path, res.Formatted, mode.Perm())
		opts.Timer.Add(observ.PhaseWrite, time.Since(writeStart))
		if err != nil {
			res.Changed = false
			return fail(StageWrite, err)
		}
		res.Original, res.Formatted = nil, nil
	}

	emit(opts.Progress, Event{File: path, Stage: StageFormat, Status: StatusDone, Changed: res.Changed, Elapsed: time.Since(start)})
	return res
}

// FormatSource formats in-memory bytes named name, such as stdin. Nothing is
// written; the output is always in Formatted.
func FormatSource(ctx context.Context, name string, data []byte, opts FormatOptions) FormatResult {
	return formatBytes(ctx, name, data, opts)
}

func formatBytes(ctx context.Context, name string, raw []byte, opts FormatOptions) FormatResult {
	ctx = trace.WithFile(ctx, name)
	res := FormatResult{Path: name, Original: raw}

	fileSet := source.NewFileSet()
	content, flags := source.Normalize(raw)
	f := fileSet.Get(fileSet.Add(name, content, flags))

	key := cacheKey(opts.Options, opts.Lines, f.Content)
	cacheStart := time.Now()
	out, hit, err := opts.Cache.Get(key)
	opts.Timer.Add(observ.PhaseCache, time.Since(cacheStart))
	if err != nil {
		trace.LogContext(ctx, trace.LevelWarn, trace.ScopeFile, "cache read", err.Error())
	}
	if hit {
		res.Cached = true
	} else {
		renderStart := time.Now()
		out = []byte(render(trace.FromContext(ctx), f, opts))
		opts.Timer.Add(observ.PhaseFormat, time.Since(renderStart))
		if err := opts.Cache.Put(key, out); err != nil {
			trace.LogContext(ctx, trace.LevelWarn, trace.ScopeFile, "cache write", err.Error())
		}
	}

	res.Formatted = f.Restore(out)
	res.Changed = !bytes.Equal(raw, res.Formatted)
	return res
}

func render(tracer trace.Tracer, f *source.File, opts FormatOptions) string {
	fm := format.New(opts.Options, format.WithTracer(tracer))
	text := string(f.Content)
	if opts.Lines == nil {
		return fm.Format(text)
	}
	from, to := opts.Lines.clamp(f.LineCount())
	return fm.FormatRange(text, from, to)
}
