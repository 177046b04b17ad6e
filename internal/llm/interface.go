package llm

import (
	"context"
	"errors"
)

// Client is a chat model that may answer with tool calls
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// ErrEmptyResponse is returned when the model answered with neither text nor
// tool calls
var ErrEmptyResponse = errors.New("empty response from model")
