// planner builds multi-page planner PDFs from YAML plans and serves an
// editing API.
//
// Usage:
//
//	planner build [options] <plan.yaml>
//	planner thumbs [options] <plan.yaml>
//	planner info <file.pdf>
//	planner serve [-addr :8080]
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	planner "github.com/porticus-lab/go-planner"
	"github.com/porticus-lab/go-planner/canvas"
	"github.com/porticus-lab/go-planner/chrome"
	"github.com/porticus-lab/go-planner/internal/config"
	"github.com/porticus-lab/go-planner/internal/plan"
	"github.com/porticus-lab/go-planner/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		config.Exitf("error: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	switch os.Args[1] {
	case "build":
		runErr = runBuild(ctx, cfg, os.Args[2:])
	case "thumbs":
		runErr = runThumbs(ctx, cfg, os.Args[2:])
	case "info":
		runErr = runInfo(os.Args[2:])
	case "serve":
		runErr = runServe(ctx, cfg, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if runErr != nil {
		stop()
		config.Exitf("error: %v", runErr)
	}
}

func printUsage() {
	fmt.Print(`planner - multi-page planner builder

Usage:
  planner build [options] <plan.yaml>
  planner thumbs [options] <plan.yaml>
  planner info <file.pdf>
  planner serve [-addr :8080]

Commands:
  build     Replay a plan and export it as planner.pdf
  thumbs    Replay a plan and write page thumbnails as PNG files
  info      Display page count and page dimensions of a PDF
  serve     Run the HTTP editing API

Build and thumbs options:
  -o <dir>        Output directory (default: $PLANNER_OUTPUT or .)
  -r <renderer>   Rasterizer: native, chrome (default: $PLANNER_RASTERIZER or native)
  -s <size>       Page size: planner, a4, a5, letter, legal (default: planner)
  -l              Landscape orientation
  -p <range>      Pages for thumbs, e.g. "1", "1-5", "1,3,5" (default: all)
  -f <format>     Thumbnail format: png, jpeg (default: png)

Environment:
  PLANNER_OUTPUT, PLANNER_RASTERIZER, PLANNER_CHROME_PATH, PLANNER_NO_SANDBOX,
  PLANNER_TIMEOUT, PLANNER_LOG_LEVEL, PLANNER_STICKER_ROOT, PLANNER_ADDR,
  PLANNER_EXPORT_SCALE

Examples:
  planner build week.yaml
  planner build -r chrome -s a4 -o out week.yaml
  planner thumbs -p 1-3 -f jpeg week.yaml
  planner info planner.pdf
`)
}

// buildArgs holds the options shared by build and thumbs.
type buildArgs struct {
	outputDir  string
	rasterizer string
	size       planner.PageSize
	landscape  bool
	pageRange  string
	format     string
	inputFile  string
}

func parseBuildArgs(cfg config.Config, args []string) (buildArgs, error) {
	a := buildArgs{outputDir: cfg.Output, rasterizer: cfg.Rasterizer, size: planner.Planner, format: canvas.FormatPNG}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o", "-r", "-s", "-p", "-f":
			flag := args[i]
			i++
			if i >= len(args) {
				return a, fmt.Errorf("%s requires an argument", flag)
			}
			switch flag {
			case "-o":
				a.outputDir = args[i]
			case "-r":
				a.rasterizer = args[i]
			case "-p":
				a.pageRange = args[i]
			case "-f":
				if args[i] != canvas.FormatPNG && args[i] != canvas.FormatJPEG {
					return a, fmt.Errorf("unknown thumbnail format: %s", args[i])
				}
				a.format = args[i]
			case "-s":
				size, ok := planner.LookupPageSize(args[i])
				if !ok {
					return a, fmt.Errorf("unknown page size: %s", args[i])
				}
				a.size = size
			}
		case "-l":
			a.landscape = true
		default:
			if strings.HasPrefix(args[i], "-") {
				return a, fmt.Errorf("unknown option: %s", args[i])
			}
			a.inputFile = args[i]
		}
	}
	if a.inputFile == "" {
		return a, fmt.Errorf("no plan file specified")
	}
	if a.landscape {
		a.size = a.size.Oriented(planner.Landscape)
	}
	return a, nil
}

// newSurface returns a surface of the given size rasterized by the named
// backend, and a function releasing the backend.
func newSurface(cfg config.Config, rasterizer string, size planner.PageSize) (*canvas.Surface, func(), error) {
	w, h := size.Points()
	opts := []canvas.Option{
		canvas.WithSize(w, h),
		canvas.WithLoader(canvas.DefaultLoader(cfg.StickerRoot)),
	}
	release := func() {}

	switch rasterizer {
	case config.RasterizerNative:
	case config.RasterizerChrome:
		copts := []chrome.Option{chrome.WithTimeout(cfg.Timeout)}
		if cfg.ChromePath != "" {
			copts = append(copts, chrome.WithChromePath(cfg.ChromePath))
		} else {
			copts = append(copts, chrome.WithAutoDownload())
		}
		if cfg.NoSandbox {
			copts = append(copts, chrome.WithNoSandbox())
		}
		r, err := chrome.NewRenderer(copts...)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, canvas.WithRenderer(r))
		release = func() { r.Close() }
	default:
		return nil, nil, fmt.Errorf("unknown rasterizer: %s", rasterizer)
	}

	s, err := canvas.New(opts...)
	if err != nil {
		release()
		return nil, nil, err
	}
	return s, release, nil
}

// replay builds an editor and applies the plan file to it.
func replay(ctx context.Context, cfg config.Config, a buildArgs) (*planner.Editor, func(), error) {
	p, err := plan.Load(a.inputFile)
	if err != nil {
		return nil, nil, err
	}
	s, release, err := newSurface(cfg, a.rasterizer, a.size)
	if err != nil {
		return nil, nil, err
	}
	e, err := planner.New(ctx, s, planner.WithExportScale(cfg.ExportScale))
	if err != nil {
		release()
		return nil, nil, err
	}
	cleanup := func() {
		e.Close()
		release()
	}
	if err := plan.Apply(ctx, e, p); err != nil {
		cleanup()
		return nil, nil, err
	}
	return e, cleanup, nil
}

// runBuild implements the "build" command.
func runBuild(ctx context.Context, cfg config.Config, args []string) error {
	a, err := parseBuildArgs(cfg, args)
	if err != nil {
		return err
	}
	e, cleanup, err := replay(ctx, cfg, a)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path, err := e.ExportFile(ctx, a.outputDir)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

// runThumbs implements the "thumbs" command.
func runThumbs(ctx context.Context, cfg config.Config, args []string) error {
	a, err := parseBuildArgs(cfg, args)
	if err != nil {
		return err
	}
	e, cleanup, err := replay(ctx, cfg, a)
	if err != nil {
		return err
	}
	defer cleanup()

	pages, _ := e.Pages()
	indices, err := parsePageRange(a.pageRange, len(pages))
	if err != nil {
		return fmt.Errorf("invalid page range %q: %w", a.pageRange, err)
	}
	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, idx := range indices {
		thumb := pages[idx].Thumbnail
		if thumb == nil {
			fmt.Fprintf(os.Stderr, "warning: page %d: blank, no thumbnail\n", idx+1)
			continue
		}
		ext := "png"
		if a.format == canvas.FormatJPEG {
			if thumb, err = canvas.Reencode(thumb, canvas.RasterOptions{Format: canvas.FormatJPEG}); err != nil {
				return err
			}
			ext = "jpg"
		}
		path := filepath.Join(a.outputDir, fmt.Sprintf("page-%03d.%s", idx+1, ext))
		if err := os.WriteFile(path, thumb, 0o644); err != nil {
			return fmt.Errorf("writing thumbnail: %w", err)
		}
		fmt.Println(path)
	}
	return nil
}

// runInfo implements the "info" command.
func runInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no input file specified")
	}
	inputFile := args[0]

	res, err := planner.ReadResult(inputFile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inputFile, err)
	}
	dims, err := res.PageDims()
	if err != nil {
		return err
	}

	fmt.Printf("File:    %s\n", inputFile)
	fmt.Printf("Size:    %d bytes\n", res.Len())
	fmt.Printf("Pages:   %d\n", res.Pages())

	if len(dims) > 0 {
		fmt.Println()
		fmt.Println("Page dimensions:")
		for i, d := range dims {
			fmt.Printf("  Page %d: %.0f x %.0f pt\n", i+1, d.Width, d.Height)
		}
	}
	return nil
}

// runServe implements the "serve" command.
func runServe(ctx context.Context, cfg config.Config, args []string) error {
	addr := cfg.Addr
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-addr":
			i++
			if i >= len(args) {
				return fmt.Errorf("-addr requires an argument")
			}
			addr = args[i]
		default:
			return fmt.Errorf("unknown option: %s", args[i])
		}
	}

	s, release, err := newSurface(cfg, cfg.Rasterizer, planner.Planner)
	if err != nil {
		return err
	}
	defer release()
	e, err := planner.New(ctx, s, planner.WithExportScale(cfg.ExportScale))
	if err != nil {
		return err
	}
	defer e.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(e, slog.Default()).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr, "rasterizer", cfg.Rasterizer)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	slog.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// parsePageRange converts a page range string to a slice of 0-based page indices.
// Supported formats: "" (all), "3" (single page), "1-5" (range), "1,3,5" (list).
func parsePageRange(spec string, total int) ([]int, error) {
	if spec == "" {
		indices := make([]int, total)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	var indices []int
	seen := make(map[int]bool)
	add := func(p int) {
		if !seen[p] {
			indices = append(indices, p-1)
			seen[p] = true
		}
	}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			p, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid page number: %s", part)
			}
			if p < 1 || p > total {
				return nil, fmt.Errorf("page %d out of bounds (1-%d)", p, total)
			}
			add(p)
			continue
		}
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid page number: %s", lo)
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("invalid page number: %s", hi)
		}
		if start < 1 || end > total || start > end {
			return nil, fmt.Errorf("page range %d-%d out of bounds (1-%d)", start, end, total)
		}
		for p := start; p <= end; p++ {
			add(p)
		}
	}
	return indices, nil
}
