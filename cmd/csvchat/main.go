package main

import (
	"flag"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"csvchat/internal/config"
	"csvchat/internal/domain"
	"csvchat/internal/embedding"
	"csvchat/internal/llm"
	"csvchat/internal/session"
	"csvchat/internal/tui"
	"csvchat/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/csvchat/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer logger.Sync()

	// Assemble components
	var newEmbedder func() domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		newEmbedder = func() domain.Embedder { return embedding.NewTFIDF() }
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatalf("openai embedder config missing")
		}
		client, err := embedding.NewRemote(embedding.RemoteConfig{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		newEmbedder = func() domain.Embedder { return client }
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	model, err := llm.NewClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKeyEnv:   cfg.LLM.APIKeyEnv,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("llm init failed: %v", err)
	}

	newStore := func() domain.VectorStore { return vectorstore.NewMemory() }
	sess := session.New(newEmbedder, newStore, model, cfg.Retrieval.TopK, logger)

	if path := flag.Arg(0); path != "" {
		if err := sess.LoadFile(path); err != nil {
			log.Fatalf("failed to load %s: %v", path, err)
		}
	}

	if _, err := tea.NewProgram(tui.New(sess)).Run(); err != nil {
		log.Fatal(err)
	}
}

// buildLogger writes structured logs to a file so they stay out of the
// terminal UI. No log file configured means no logging.
func buildLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
}
