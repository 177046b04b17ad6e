package processor

import (
	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/minutes"
	"github.com/nguyentantai21042004/minutes-flow/internal/stt"
)

type implProcessor struct {
	cfg      *config.Config
	loader   Loader
	engine   stt.Engine
	crew     minutes.Crew
	logger   logger.Logger
	observer Observer
}

// New creates a new Processor instance. observer may be nil.
func New(cfg *config.Config, loader Loader, engine stt.Engine, crew minutes.Crew, log logger.Logger, observer Observer) Processor {
	return &implProcessor{
		cfg:      cfg,
		loader:   loader,
		engine:   engine,
		crew:     crew,
		logger:   log,
		observer: observer,
	}
}
