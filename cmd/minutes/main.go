package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"

	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/gemini"
	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/metrics"
	"github.com/nguyentantai21042004/minutes-flow/internal/minutes"
	"github.com/nguyentantai21042004/minutes-flow/internal/processor"
	"github.com/nguyentantai21042004/minutes-flow/internal/stt"
	"github.com/nguyentantai21042004/minutes-flow/internal/watcher"
	"github.com/nguyentantai21042004/minutes-flow/pkg/executor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	watch := flag.Bool("watch", false, "Watch the input folder for new recordings")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-config path] [-watch] [audio-file]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if !*watch && flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *watch, flag.Arg(0)); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger, watch bool, audioPath string) error {
	log.Info(ctx, "========================================")
	log.Info(ctx, "Meeting Minutes Pipeline")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s, CPU Cores: %d", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())

	if err := ensureDirectories(cfg); err != nil {
		return err
	}

	m := metrics.New()
	if cfg.Metrics.Enabled {
		srv := startMetricsServer(ctx, cfg.Metrics.Address, m, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	proc, err := buildProcessor(cfg, log, m)
	if err != nil {
		return err
	}

	if !watch {
		return proc.Process(ctx, audioPath)
	}

	w, err := watcher.New(cfg.Paths.Input, proc.Process, log, cfg.Performance.MaxConcurrent)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	log.Info(ctx, "========================================")
	log.Info(ctx, "Meeting Pipeline is ready!")
	log.Info(ctx, "Monitoring: %s", cfg.Paths.Input)
	log.Info(ctx, "Output: %s", cfg.Paths.Output)
	log.Info(ctx, "Transcription: %s, %d worker(s), %s chunks", cfg.Transcription.Provider, cfg.Transcription.Workers, cfg.Audio.ChunkDuration)
	log.Info(ctx, "Minutes: %s/%s", cfg.LLM.Provider, cfg.LLM.Model)
	log.Info(ctx, "Press Ctrl+C to stop")
	log.Info(ctx, "========================================")

	err = w.Start(ctx)
	log.Info(ctx, "Meeting Pipeline stopped")
	return err
}

// buildProcessor wires the provider clients, engines and crew
func buildProcessor(cfg *config.Config, log logger.Logger, m *metrics.Metrics) (processor.Processor, error) {
	creds := config.LoadCredentials()
	exec := executor.New()

	var openAIClient *openai.Client
	if creds.OpenAIKey != "" {
		oc := openai.DefaultConfig(creds.OpenAIKey)
		if creds.OpenAIBaseURL != "" {
			oc.BaseURL = creds.OpenAIBaseURL
		}
		openAIClient = openai.NewClientWithConfig(oc)
	}

	var pool *gemini.Pool
	if cfg.Uses("gemini") {
		p, err := gemini.NewPool(creds.GeminiKeys, creds.GeminiBaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("create gemini pool: %w", err)
		}
		pool = p
	}

	engine, err := stt.New(cfg, stt.Deps{OpenAI: openAIClient, Gemini: pool, Executor: exec})
	if err != nil {
		return nil, fmt.Errorf("create transcription engine: %w", err)
	}

	client, err := llm.New(cfg.LLM, openAIClient, pool)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}

	def, err := minutes.LoadDefinition(cfg.Crew.Path)
	if err != nil {
		return nil, err
	}
	crew, err := minutes.New(client, def, minutes.Options{
		Temperature:   cfg.LLM.Temperature,
		MaxToolRounds: cfg.LLM.MaxToolRounds,
	}, log, m)
	if err != nil {
		return nil, fmt.Errorf("create crew: %w", err)
	}

	loader := audio.NewLoader(exec, log, cfg.Paths.Temp, cfg.Audio.SampleRate)
	return processor.New(cfg, loader, engine, crew, log, m), nil
}

func startMetricsServer(ctx context.Context, addr string, m *metrics.Metrics, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info(ctx, "Metrics server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "Metrics server error: %v", err)
		}
	}()

	return srv
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Processing,
		cfg.Paths.Output,
		cfg.Paths.Archived,
		cfg.Paths.Temp,
		cfg.Paths.Chunks,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
