package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Audio         AudioConfig         `yaml:"audio"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Whisper       WhisperConfig       `yaml:"whisper"`
	LLM           LLMConfig           `yaml:"llm"`
	Crew          CrewConfig          `yaml:"crew"`
	Paths         PathsConfig         `yaml:"paths"`
	Logging       LoggingConfig       `yaml:"logging"`
	Performance   PerformanceConfig   `yaml:"performance"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

type AudioConfig struct {
	ChunkDuration time.Duration `yaml:"chunk_duration"`
	// SampleRate is used when ffmpeg converts unsupported containers
	SampleRate int `yaml:"sample_rate"`
}

type TranscriptionConfig struct {
	Provider   string        `yaml:"provider"` // openai, gemini or whisper
	Model      string        `yaml:"model"`
	Language   string        `yaml:"language"`
	Prompt     string        `yaml:"prompt"`
	Workers    int           `yaml:"workers"`
	JobTimeout time.Duration `yaml:"job_timeout"`
	Deadline   time.Duration `yaml:"deadline"`
	KeepChunks bool          `yaml:"keep_chunks"`
}

// WhisperConfig configures the local whisper.cpp backend
type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Threads    int    `yaml:"threads"`
}

type LLMConfig struct {
	Provider      string  `yaml:"provider"` // openai or gemini
	Model         string  `yaml:"model"`
	Temperature   float32 `yaml:"temperature"`
	MaxToolRounds int     `yaml:"max_tool_rounds"`
}

type CrewConfig struct {
	// Path to an optional YAML file overriding the built-in agents and tasks
	Path string `yaml:"path"`
}

type PathsConfig struct {
	Input      string `yaml:"input"`
	Processing string `yaml:"processing"`
	Output     string `yaml:"output"`
	Archived   string `yaml:"archived"`
	Temp       string `yaml:"temp"`
	Chunks     string `yaml:"chunks"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// Load reads, parses and validates the configuration file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Audio.ChunkDuration < 0 {
		return fmt.Errorf("audio.chunk_duration must be positive")
	}
	if c.Transcription.Workers < 0 {
		return fmt.Errorf("transcription.workers must not be negative")
	}
	if c.Transcription.JobTimeout < 0 || c.Transcription.Deadline < 0 {
		return fmt.Errorf("transcription timeouts must not be negative")
	}
	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}

	switch c.Transcription.Provider {
	case "":
		c.Transcription.Provider = "openai"
	case "openai", "gemini":
	case "whisper":
		if c.Whisper.ModelPath == "" {
			return fmt.Errorf("whisper.model_path is required for the whisper provider")
		}
		if c.Whisper.BinaryPath == "" {
			return fmt.Errorf("whisper.binary_path is required for the whisper provider")
		}
	default:
		return fmt.Errorf("unknown transcription.provider %q", c.Transcription.Provider)
	}

	switch c.LLM.Provider {
	case "":
		c.LLM.Provider = "openai"
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown llm.provider %q", c.LLM.Provider)
	}

	if c.Audio.ChunkDuration == 0 {
		c.Audio.ChunkDuration = time.Minute
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultTranscriptionModel(c.Transcription.Provider)
	}
	if c.Transcription.Workers == 0 {
		c.Transcription.Workers = 4
	}
	if c.Transcription.JobTimeout == 0 {
		c.Transcription.JobTimeout = 2 * time.Minute
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel(c.LLM.Provider)
	}
	if c.LLM.MaxToolRounds == 0 {
		c.LLM.MaxToolRounds = 8
	}
	if c.Paths.Processing == "" {
		c.Paths.Processing = "data/processing"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Paths.Chunks == "" {
		c.Paths.Chunks = "data/audio_chunks"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 1
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = ":9090"
	}

	return nil
}

func defaultTranscriptionModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-2.5-flash"
	case "whisper":
		return ""
	default:
		return "whisper-1"
	}
}

func defaultLLMModel(provider string) string {
	if provider == "gemini" {
		return "gemini-2.5-flash"
	}
	return "gpt-4o-mini"
}
