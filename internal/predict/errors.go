package predict

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMaxAttempts is returned by Submit when the learner has used every
// attempt allowed for the unit.
var ErrMaxAttempts = errors.New("maximum attempts reached")

// ErrModelUnavailable indicates the prediction service could not be reached,
// timed out, failed its health check or answered with a non-2xx status.
type ErrModelUnavailable struct {
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *ErrModelUnavailable) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("model unavailable (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("model unavailable: %v", e.Err)
}

func (e *ErrModelUnavailable) Unwrap() error { return e.Err }

// ErrMalformedResponse indicates the prediction service answered, but the
// payload does not have the expected shape.
type ErrMalformedResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("malformed model response: %v", e.Err)
}

func (e *ErrMalformedResponse) Unwrap() error { return e.Err }
