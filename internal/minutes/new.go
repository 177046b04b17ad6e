package minutes

import (
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

type Options struct {
	Temperature float32
	// MaxToolRounds bounds the tool calling turns of a single task
	MaxToolRounds int
}

type implCrew struct {
	client   llm.Client
	def      Definition
	opts     Options
	logger   logger.Logger
	observer Observer
}

type nopObserver struct{}

func (nopObserver) ObserveTask(string, time.Duration, error) {}
func (nopObserver) ObserveToolCall(string, error)            {}

// New creates a Crew. observer may be nil.
func New(client llm.Client, def Definition, opts Options, log logger.Logger, observer Observer) (Crew, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = 8
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &implCrew{
		client:   client,
		def:      def,
		opts:     opts,
		logger:   log,
		observer: observer,
	}, nil
}
