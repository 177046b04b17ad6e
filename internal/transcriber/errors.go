package transcriber

import "fmt"

// TranscriptionError reports the segment whose transcription failed first.
// A run that returns it produced no transcript.
type TranscriptionError struct {
	Index int
	Err   error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcribe segment %d: %v", e.Index, e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}
