package llm

import (
	"errors"
	"fmt"
)

// APIError is returned for any non-2xx vendor response, carrying the HTTP
// status and whatever body the vendor sent.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// ErrEmptyCompletion is returned when a 2xx response contains no completion
// text.
var ErrEmptyCompletion = errors.New("llm: response contained no completion text")
