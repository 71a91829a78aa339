// Command corrmatch is the JSON-driven CLI collaborator described in
// spec.md §6: it consumes a JSON request naming a template image, a
// search image, a CompileConfig and a MatchConfig, runs the match, and
// prints the result(s) as JSON to stdout. Grounded on the teacher's
// root main.go/logger.go (slog JSON handler, init-time panic-recover
// fallback) adapted from a GUI app entry point to a batch CLI one.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/soocke/corrmatch"
	"github.com/soocke/corrmatch/errs"
	"github.com/soocke/corrmatch/internal/diag"
	"github.com/soocke/corrmatch/internal/imageio"
)

func main() {
	var (
		reqPath      = flag.String("req", "", "path to a JSON request file; defaults to stdin")
		batch        = flag.String("batch", "", "path to a file of newline-delimited JSON requests; enables the template cache")
		cacheSize    = flag.Int("cache-size", 8, "max compiled templates held by the template cache")
		debugFlag    = flag.Bool("debug", false, "enable debug logging and a runtime diagnostics snapshot")
		debugDir     = flag.String("debug-dir", "", "with --debug, directory to dump a downsampled PNG preview of each request's template and image into")
		printSchema  = flag.Bool("print-schema", false, "print the request JSON schema and exit")
		printExample = flag.Bool("print-example", false, "print an example request JSON and exit")
	)
	flag.Parse()

	if *printSchema {
		fmt.Println(schemaText)
		return
	}
	if *printExample {
		fmt.Println(exampleText)
		return
	}

	level := slog.LevelInfo
	if *debugFlag {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)

	tc, err := newTemplateCache(*cacheSize)
	if err != nil {
		logger.Error("failed to create template cache", "error", err)
		os.Exit(exitInternal)
	}

	if *batch != "" {
		f, err := os.Open(*batch)
		if err != nil {
			logger.Error("failed to open batch file", "error", err)
			os.Exit(exitInvalidInput)
		}
		defer f.Close()
		os.Exit(runBatch(f, tc, logger, *debugFlag, *debugDir))
	}

	var r io.Reader = os.Stdin
	if *reqPath != "" {
		f, err := os.Open(*reqPath)
		if err != nil {
			logger.Error("failed to open request file", "error", err)
			os.Exit(exitInvalidInput)
		}
		defer f.Close()
		r = f
	}

	os.Exit(runOne(r, tc, logger, *debugFlag, *debugDir))
}

// runBatch processes one JSON request per line, each with its own
// request id, reusing tc across lines. The exit code is the worst
// (highest) code seen across every line.
func runBatch(r io.Reader, tc *templateCache, logger *slog.Logger, debugOn bool, debugDir string) int {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	code := exitOK
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if c := runRequest(line, tc, logger, debugOn, debugDir); c > code {
			code = c
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("failed to read batch file", "error", err)
		return exitInternal
	}
	return code
}

func runOne(r io.Reader, tc *templateCache, logger *slog.Logger, debugOn bool, debugDir string) int {
	body, err := io.ReadAll(r)
	if err != nil {
		logger.Error("failed to read request", "error", err)
		return exitInvalidInput
	}
	return runRequest(body, tc, logger, debugOn, debugDir)
}

// Exit codes, mapped from errs.Kind per spec.md §6 ("exit code 0 on
// success, non-zero on error").
const (
	exitOK = iota
	exitInvalidInput
	exitInvalidConfig
	exitParallelUnavailable
	exitDegenerate
	exitInternal
)

func exitCodeFor(err error) int {
	kind, ok := errs.As(err)
	if !ok {
		return exitInternal
	}
	switch kind {
	case errs.InvalidInput:
		return exitInvalidInput
	case errs.InvalidConfig:
		return exitInvalidConfig
	case errs.ParallelUnavailable:
		return exitParallelUnavailable
	case errs.Degenerate:
		return exitDegenerate
	default:
		return exitInternal
	}
}

// runRequest decodes, validates and executes one request, writing the
// result as a JSON line to stdout. Every request gets its own
// correlation id attached to every log line it produces, so --batch
// output in a shared log stream can be sorted back out per request.
func runRequest(body []byte, tc *templateCache, parent *slog.Logger, debugOn bool, debugDir string) int {
	reqID := uuid.New().String()
	logger := parent.With(slog.String("request_id", reqID))

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		logger.Error("failed to parse request JSON", "error", err)
		return exitInvalidInput
	}

	start := time.Now()
	matches, err := execute(req, tc, logger, reqID, debugOn, debugDir)
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("match failed", "error", err, "elapsed", elapsed)
		fmt.Fprintln(os.Stderr, formatError(err))
		return exitCodeFor(err)
	}

	out, err := json.Marshal(matches)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return exitInternal
	}
	fmt.Println(string(out))

	if debugOn {
		diag.Sample().Log(logger, "post-match diagnostics")
	}
	printHumanSummary(reqID, matches, elapsed)
	return exitOK
}

// execute loads the template and image named by req, compiles and
// matches, and returns every requested Match (one, unless
// match.top_k > 1). When debugOn and debugDir are both set, it also
// dumps a downsampled PNG preview of the image and template next to
// each other under debugDir, named by reqID (SPEC_FULL.md §4.10/§6's
// --debug preview dump, the one real call site for
// internal/imageio's PreviewResize/golang.org/x/image/draw).
func execute(req Request, tc *templateCache, logger *slog.Logger, reqID string, debugOn bool, debugDir string) ([]corrmatch.Match, error) {
	matchCfg, err := req.Match.toConfig()
	if err != nil {
		return nil, errs.Wrap(errs.InvalidConfig, "invalid match config", err)
	}

	ct, err := tc.Compiled(req.Template.Path, req.Compile.toConfig(), matchCfg.Rotation)
	if err != nil {
		return nil, err
	}

	view, err := imageio.DecodeGrayFile(req.Image.Path)
	if err != nil {
		return nil, err
	}

	if debugOn && debugDir != "" {
		dumpDebugPreviews(logger, debugDir, reqID, view, req)
	}

	m, err := corrmatch.NewMatcher(ct, matchCfg)
	if err != nil {
		return nil, err
	}

	logger.Debug("starting match", "template", req.Template.Path, "image", req.Image.Path)

	if req.Match.TopK > 1 {
		return m.MatchImageTopK(view, req.Match.TopK)
	}
	match, err := m.MatchImage(view)
	if err != nil {
		return nil, err
	}
	return []corrmatch.Match{match}, nil
}

// debugPreviewMaxDim bounds the longer side of each dumped preview PNG.
const debugPreviewMaxDim = 256

// dumpDebugPreviews writes a downsampled preview of the search image
// (and, if it decodes cleanly, the template) to debugDir. Failures are
// logged and otherwise ignored: the preview dump is a best-effort
// debugging aid, never part of the match result.
func dumpDebugPreviews(logger *slog.Logger, debugDir, reqID string, imageView corrmatch.View, req Request) {
	imgPath := filepath.Join(debugDir, reqID+"-image.png")
	if err := imageio.WritePreviewPNG(imgPath, imageView, debugPreviewMaxDim); err != nil {
		logger.Warn("failed to write image debug preview", "error", err, "path", imgPath)
	} else {
		logger.Debug("wrote image debug preview", "path", imgPath)
	}

	tplView, err := imageio.DecodeGrayFile(req.Template.Path)
	if err != nil {
		logger.Warn("failed to decode template for debug preview", "error", err)
		return
	}
	tplPath := filepath.Join(debugDir, reqID+"-template.png")
	if err := imageio.WritePreviewPNG(tplPath, tplView, debugPreviewMaxDim); err != nil {
		logger.Warn("failed to write template debug preview", "error", err, "path", tplPath)
		return
	}
	logger.Debug("wrote template debug preview", "path", tplPath)
}

func formatError(err error) string {
	if kind, ok := errs.As(err); ok {
		return fmt.Sprintf("error: %s: %v", kind, err)
	}
	return fmt.Sprintf("error: %v", err)
}

// printHumanSummary writes a one-line, human-oriented summary to
// stderr when stdout is a terminal (an interactive invocation), so
// piping stdout to a file or another program never mixes prose into a
// log stream that's being consumed by something other than a human.
func printHumanSummary(reqID string, matches []corrmatch.Match, elapsed time.Duration) {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return
	}
	if len(matches) == 0 {
		return
	}
	best := matches[0]
	fmt.Fprintf(os.Stderr, "[%s] best match (%.1f, %.1f) @ %.2f deg, score %.4f, %d result(s) in %s\n",
		reqID[:8], best.X, best.Y, best.AngleDeg, best.Score, len(matches), humanize.RelTime(time.Now().Add(-elapsed), time.Now(), "", ""))
}

// init mirrors the shape of the teacher's root main.go global panic
// fallback: a panic recovered here is reported on stderr and exits
// non-zero. The deferred recover covers only this function's own body,
// which is empty; panics in other init functions or in main are not
// caught by it.
func init() {
	defer func() {
		if r := recover(); r != nil {
			os.Stderr.WriteString("panic during init: ")
			os.Stderr.WriteString(fmt.Sprintf("%v\n%s", r, debug.Stack()))
			os.Exit(exitInternal)
		}
	}()
}
