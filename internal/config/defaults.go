package config

import "time"

// Enumerated setting values.
const (
	EmbeddingNone   = "none"
	EmbeddingONNX   = "onnx"
	EmbeddingOllama = "ollama"

	AuthorStrict = "strict"
	AuthorLoose  = "loose"

	DateSentinel    = "sentinel"
	DateCurrentYear = "current_year"

	StrategyGraph     = "graph"
	StrategyEmbedding = "embedding"

	ShortTruncate = "truncate"
	ShortFull     = "full"
	ShortNotice   = "notice"
)

// TopicNames are the topics whose keywords pipeline.topics may override.
var TopicNames = []string{"Technology", "Finance", "Healthcare", "Education", "Environment", "Government"}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxUploadSize == 0 {
		cfg.Server.MaxUploadSize = 32 << 20
	}
	if cfg.Models.Timeout == 0 {
		cfg.Models.Timeout = 30 * time.Second
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = EmbeddingNone
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/metamuse/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "all-minilm"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}

	p := &cfg.Pipeline
	if p.Author.Pattern == "" {
		p.Author.Pattern = AuthorStrict
	}
	if p.Author.LineWindow == 0 {
		p.Author.LineWindow = 25
	}
	if p.Author.NERWindow == 0 {
		p.Author.NERWindow = 2000
	}
	if p.Date.OnNotFound == "" {
		p.Date.OnNotFound = DateSentinel
	}
	if p.Date.NERWindow == 0 {
		p.Date.NERWindow = 5000
	}
	if p.KeyPhrase.Strategy == "" {
		p.KeyPhrase.Strategy = StrategyGraph
	}
	if p.KeyPhrase.TopK == 0 {
		if p.KeyPhrase.Strategy == StrategyEmbedding {
			p.KeyPhrase.TopK = 7
		} else {
			p.KeyPhrase.TopK = 5
		}
	}
	if p.KeyPhrase.MaxCandidates == 0 {
		p.KeyPhrase.MaxCandidates = 300
	}
	if p.Readability.Threshold == 0 {
		p.Readability.Threshold = 25
	}
	if p.Summary.MinWords == 0 {
		p.Summary.MinWords = 100
	}
	if p.Summary.InputChars == 0 {
		p.Summary.InputChars = 4100
	}
	if p.Summary.MinLength == 0 {
		p.Summary.MinLength = 30
	}
	if p.Summary.MaxLength == 0 {
		p.Summary.MaxLength = 150
	}
	if p.Summary.ShortMode == "" {
		p.Summary.ShortMode = ShortTruncate
	}

	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".odt", ".rtf", ".xlsx", ".html"}
	}
	if cfg.Watch.OutputDir == "" {
		cfg.Watch.OutputDir = "/usr/local/var/metamuse/metadata"
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
