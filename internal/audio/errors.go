package audio

import "fmt"

// SplitError reports a recording that cannot be split: an invalid chunk
// duration, or a stream that is unreadable or malformed.
type SplitError struct {
	Op  string
	Err error
}

func (e *SplitError) Error() string {
	return fmt.Sprintf("split audio: %s: %v", e.Op, e.Err)
}

func (e *SplitError) Unwrap() error {
	return e.Err
}
