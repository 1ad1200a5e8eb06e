package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
models:
  endpoint: "http://localhost:5000"
  timeout: 5s
pipeline:
  date:
    on_not_found: current_year
  readability:
    threshold: 20
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Models.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.Models.Timeout)
	}
	if cfg.Pipeline.Date.OnNotFound != DateCurrentYear {
		t.Errorf("on_not_found = %q", cfg.Pipeline.Date.OnNotFound)
	}
	if cfg.Pipeline.Readability.Threshold != 20 {
		t.Errorf("threshold = %v", cfg.Pipeline.Readability.Threshold)
	}
	if !cfg.Models.OCREnabled() {
		t.Error("OCR should default to enabled when an endpoint is set")
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "debug: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
	p := cfg.Pipeline
	if p.KeyPhrase.Strategy != StrategyGraph || p.KeyPhrase.TopK != 5 {
		t.Errorf("keyphrase defaults: %+v", p.KeyPhrase)
	}
	if p.Summary.MinWords != 100 || p.Summary.InputChars != 4100 || p.Summary.MinLength != 30 || p.Summary.MaxLength != 150 {
		t.Errorf("summary defaults: %+v", p.Summary)
	}
	if p.Date.OnNotFound != DateSentinel {
		t.Errorf("date default: %q", p.Date.OnNotFound)
	}
	if p.Author.Pattern != AuthorStrict || p.Author.NERWindow != 2000 {
		t.Errorf("author defaults: %+v", p.Author)
	}
	if cfg.Models.OCREnabled() {
		t.Error("OCR must be disabled without an endpoint")
	}
}

func TestLoad_embeddingTopKDefault(t *testing.T) {
	cfg, err := Load(writeConfig(t, "pipeline:\n  keyphrase:\n    strategy: embedding\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Pipeline.KeyPhrase.TopK != 7 {
		t.Errorf("top_k = %d, want 7", cfg.Pipeline.KeyPhrase.TopK)
	}
}

func TestLoad_invalidEnum(t *testing.T) {
	_, err := Load(writeConfig(t, "pipeline:\n  date:\n    on_not_found: yesterday\n"))
	if err == nil {
		t.Fatal("expected error for invalid on_not_found")
	}
	if !strings.Contains(err.Error(), "pipeline.date.on_not_found") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestLoad_unknownTopic(t *testing.T) {
	_, err := Load(writeConfig(t, "pipeline:\n  topics:\n    Sports: [football]\n"))
	if err == nil {
		t.Fatal("expected error for a topic outside the built-in set")
	}
	if !strings.Contains(err.Error(), "Sports") {
		t.Errorf("error should name the topic: %v", err)
	}

	cfg, err := Load(writeConfig(t, "pipeline:\n  topics:\n    Finance: [crypto]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Pipeline.Topics["Finance"]; len(got) != 1 || got[0] != "crypto" {
		t.Errorf("Finance keywords = %v", got)
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
watch:
  directories: ["./inbox"]
  output_dir: "./out"
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Watch.OutputDir != filepath.Join(dir, "out") {
		t.Errorf("output_dir = %q", cfg.Watch.OutputDir)
	}
	if len(cfg.Watch.Directories) != 1 || cfg.Watch.Directories[0] != filepath.Join(dir, "inbox") {
		t.Errorf("directories = %v", cfg.Watch.Directories)
	}
	if !cfg.Watch.RecursiveOrDefault() {
		t.Error("recursive should default to true")
	}
}

func TestLoadOrDefault_missingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected defaults, got %+v", cfg.Server)
	}
}

func TestLoad_parseError(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [unterminated")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSave_roundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Watch.Directories = []string{"/srv/inbox"}
	cfg.Pipeline.Author.Pattern = AuthorLoose
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Watch.Directories) != 1 || loaded.Watch.Directories[0] != "/srv/inbox" {
		t.Errorf("directories = %v", loaded.Watch.Directories)
	}
	if loaded.Pipeline.Author.Pattern != AuthorLoose {
		t.Errorf("author pattern = %q", loaded.Pipeline.Author.Pattern)
	}
}
