package transcriber

import (
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/stt"
)

// Options bounds a run
type Options struct {
	// Workers is the number of concurrent transcription calls
	Workers int
	// JobTimeout limits a single transcription call, zero means none
	JobTimeout time.Duration
	// Deadline limits the whole run, zero means none
	Deadline time.Duration
}

type implAggregator struct {
	engine   stt.Engine
	exchange Exchange
	opts     Options
	logger   logger.Logger
	observer Observer
}

// New creates an Aggregator. observer may be nil.
func New(engine stt.Engine, exchange Exchange, opts Options, log logger.Logger, observer Observer) Aggregator {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &implAggregator{
		engine:   engine,
		exchange: exchange,
		opts:     opts,
		logger:   log,
		observer: observer,
	}
}
