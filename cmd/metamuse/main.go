// Package main is the metamuse CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/metamuse/internal/cli"
	"github.com/hyperjump/metamuse/internal/config"
	"github.com/hyperjump/metamuse/internal/embedding"
	"github.com/hyperjump/metamuse/internal/extract"
	"github.com/hyperjump/metamuse/internal/metadata"
	"github.com/hyperjump/metamuse/internal/mlclient"
	"github.com/hyperjump/metamuse/internal/nlp"
	"github.com/hyperjump/metamuse/internal/server"
	"github.com/hyperjump/metamuse/internal/watcher"
	"github.com/hyperjump/metamuse/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/metamuse/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory wins if it exists, and a missing default file yields the
// built-in defaults. Returns the config and the path that was actually used.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		cfg, err := config.LoadOrDefault(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "extract":
		runExtract()
	case "server":
		runServer()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("metamuse version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// argsReorder moves any flags (and their values) that appear after the file
// arguments to the front so that flag.Parse sees them.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// setup loads config, builds a logger and the components shared by every command.
func setup(configPath string, debugFlag bool) (*config.Config, string, *zap.Logger, *Components) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))

	comps, err := buildComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, resolved, logger, comps
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	saveDir := fs.String("save", "", "also write <name>_metadata.json files into this directory")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: metamuse extract [flags] <file> [file...]")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, _, logger, comps := setup(*configPath, *debug)
	defer logger.Sync()
	defer comps.Close()

	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout(cfg))
	defer cancel()
	recs, err := extractFiles(ctx, comps, fs.Args(), *saveDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extract failed: %v\n", err)
		os.Exit(1)
	}

	if len(recs) == 1 {
		err = cli.WriteRecord(os.Stdout, recs[0].Record, format)
	} else {
		err = cli.WriteRecords(os.Stdout, recs, format)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// extractTimeout bounds one extract run: every model call may take the full
// models timeout, plus slack for parsing.
func extractTimeout(cfg *config.Config) time.Duration {
	return 4*cfg.Models.Timeout + time.Minute
}

// extractFiles runs the pipeline on every path. The first file that cannot be
// read or decoded aborts the run.
func extractFiles(ctx context.Context, comps *Components, paths []string, saveDir string) ([]cli.SourceRecord, error) {
	recs := make([]cli.SourceRecord, 0, len(paths))
	for _, path := range paths {
		text, err := comps.Extractor.Extract(ctx, path)
		if err != nil {
			if errors.Is(err, extract.ErrUnsupportedFormat) {
				return nil, fmt.Errorf("%s: unsupported file format", path)
			}
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		rec := comps.Pipeline.Generate(ctx, text)
		if saveDir != "" {
			if _, err := watcher.SaveRecord(saveDir, path, rec); err != nil {
				return nil, err
			}
		}
		recs = append(recs, cli.SourceRecord{Source: path, Record: rec})
	}
	return recs, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (directory changes, file processing, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger, comps := setup(*configPath, *debug)
	defer logger.Sync()
	defer comps.Close()

	watchSvc := newWatcher(cfg, cfg.Watch.Directories, comps, logger)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	go watchSvc.ProcessExisting()

	srv := server.NewServer(
		comps.Extractor,
		comps.Pipeline,
		&cfg.Server,
		logger,
		watchSvc,
		resolvedConfigPath,
		cfg,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	waitForSignal()
	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func newWatcher(cfg *config.Config, roots []string, comps *Components, logger *zap.Logger) *watcher.Watcher {
	sidecars := watcher.NewSidecarWriter(cfg.Watch.OutputDir, comps.Extractor, comps.Pipeline, extractTimeout(cfg), logger)
	return watcher.New(watcher.Config{
		Roots:      roots,
		Extensions: cfg.Watch.Extensions,
		Recursive:  cfg.Watch.RecursiveOrDefault(),
	}, sidecars, watcher.WithLogger(logger))
}

func waitForSignal() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
}

func runWatch() {
	args := os.Args[2:]
	if len(args) > 0 {
		switch args[0] {
		case "add", "remove", "list":
			runWatchRemote(args[0], args[1:])
			return
		}
	}

	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(args))

	cfg, _, logger, comps := setup(*configPath, *debug)
	defer logger.Sync()
	defer comps.Close()

	roots := cfg.Watch.Directories
	if fs.NArg() > 0 {
		roots = make([]string, 0, fs.NArg())
		for _, a := range fs.Args() {
			abs, err := filepath.Abs(a)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid path %q: %v\n", a, err)
				os.Exit(1)
			}
			roots = append(roots, abs)
		}
	}
	if len(roots) == 0 {
		fmt.Println("Usage: metamuse watch [flags] <dir> [dir...]  (or set watch.directories in config)")
		os.Exit(1)
	}

	w := newWatcher(cfg, roots, comps, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	w.ProcessExisting()
	logger.Info("watching", zap.Strings("directories", roots), zap.String("output_dir", cfg.Watch.OutputDir))

	waitForSignal()
	logger.Info("Shutting down...")
	w.Stop()
}

// runWatchRemote manages the watch directories of a running server.
func runWatchRemote(sub string, args []string) {
	fs := flag.NewFlagSet("watch "+sub, flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(argsReorder(args))
	endpoint := strings.TrimRight(*serverURL, "/") + "/api/v1/watch/directories"

	if sub == "list" {
		var out struct {
			Directories []string `json:"directories"`
		}
		if err := watchRequest(http.MethodGet, endpoint, nil, http.StatusOK, &out); err != nil {
			fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
			os.Exit(1)
		}
		for _, d := range out.Directories {
			fmt.Println(d)
		}
		return
	}

	if fs.NArg() < 1 {
		fmt.Printf("Usage: metamuse watch %s <path>\n", sub)
		os.Exit(1)
	}
	path, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid path: %v\n", err)
		os.Exit(1)
	}
	if sub == "add" {
		body, _ := json.Marshal(map[string]interface{}{"path": path, "sync": true})
		err = watchRequest(http.MethodPost, endpoint, body, http.StatusCreated, nil)
	} else {
		err = watchRequest(http.MethodDelete, endpoint+"?path="+url.QueryEscape(path), nil, http.StatusOK, nil)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Watch %s failed: %v\n", sub, err)
		os.Exit(1)
	}
	if sub == "add" {
		fmt.Printf("Added: %s\n", path)
	} else {
		fmt.Printf("Removed: %s\n", path)
	}
}

// watchRequest sends one request to the server's watch API and decodes the
// response into out when out is non-nil.
func watchRequest(method, endpoint string, body []byte, want int, out interface{}) error {
	req, err := http.NewRequest(method, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// Components holds the long-lived objects built from config.
type Components struct {
	Extractor *extract.Extractor
	Pipeline  *metadata.Pipeline
	Embedder  embedding.Embedder
}

// Close releases the embedder, if any.
func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

// buildCapabilities wires the model-backed collaborators selected by cfg.
// It returns the capabilities and the OCR backend, which is nil when OCR is off.
func buildCapabilities(cfg *config.Config, logger *zap.Logger) (metadata.Capabilities, extract.OCR) {
	var caps metadata.Capabilities
	var ocr extract.OCR

	if cfg.Models.Endpoint != "" {
		client := mlclient.NewClient(cfg.Models.Endpoint, cfg.Models.APIKey, mlclient.WithTimeout(cfg.Models.Timeout))
		caps.Recognizer = client
		caps.Summarizer = client
		if cfg.Models.OCREnabled() {
			ocr = client
		}
		logger.Debug("model service configured", zap.String("endpoint", cfg.Models.Endpoint), zap.Bool("ocr", ocr != nil))
	} else {
		caps.Recognizer = nlp.NewPatternRecognizer()
		logger.Debug("no model service configured, using pattern entity recognition")
	}

	if cfg.Pipeline.LanguageGate {
		caps.Language = nlp.NewLinguaDetector()
	}

	if cfg.Pipeline.KeyPhrase.Strategy == config.StrategyEmbedding {
		caps.Embedder = buildEmbedder(cfg, logger)
	}
	return caps, ocr
}

// buildEmbedder returns the configured embedder, or nil when none is configured
// or the ONNX model cannot be loaded.
func buildEmbedder(cfg *config.Config, logger *zap.Logger) embedding.Embedder {
	ec := cfg.Embedding
	switch ec.Provider {
	case config.EmbeddingONNX:
		e, err := embedding.NewONNXEmbedder(ec.ModelPath, ec.Dimensions, ec.MaxTokens, ec.CacheSize)
		if err != nil {
			logger.Warn("onnx embedder unavailable", zap.String("model_path", ec.ModelPath), zap.Error(err))
			return nil
		}
		return e
	case config.EmbeddingOllama:
		var opts []embedding.OllamaOption
		if ec.BaseURL != "" {
			opts = append(opts, embedding.WithBaseURL(ec.BaseURL))
		}
		return embedding.NewOllamaEmbedder(ec.Model, ec.Dimensions, ec.CacheSize, opts...)
	}
	return nil
}

func buildComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	caps, ocr := buildCapabilities(cfg, logger)

	extractOpts := []extract.Option{extract.WithLogger(logger)}
	if ocr != nil {
		extractOpts = append(extractOpts, extract.WithOCR(ocr))
	}
	pipeline := metadata.New(metadata.OptionsFromConfig(cfg), caps, metadata.WithLogger(logger))

	return &Components{
		Extractor: extract.NewExtractor(extractOpts...),
		Pipeline:  pipeline,
		Embedder:  caps.Embedder,
	}, nil
}

func printUsage() {
	fmt.Println(`metamuse - Document metadata inference

Usage:
  metamuse extract [flags] <file...>   Infer metadata for documents
  metamuse server [flags]              Start the HTTP server (and configured watchers)
  metamuse watch [flags] <dir...>      Watch drop folders and write metadata files
  metamuse watch <add|remove|list>     Manage the watched directories of a running server
  metamuse version                     Show version
  metamuse help                        Show this help

Extract Flags:
  --config string    Config file path (default: /usr/local/etc/metamuse/config.yaml)
  --output string    Output format: text or json (default: text)
  --save string      Also write <name>_metadata.json files into this directory
  --debug            Enable debug logging

Server Flags:
  --config string    Config file path
  --debug            Enable debug logging

Watch Flags:
  --config string    Config file path (output_dir and extensions come from it)
  --server string    Server URL for add/remove/list (default: http://localhost:8080)

Examples:
  metamuse extract report.pdf
  metamuse extract --output json --save ./out paper.docx notes.txt
  metamuse server
  metamuse watch ~/Inbox
  metamuse watch add /path/to/docs
  metamuse watch list`)
}
