package checkout

import (
	"errors"
	"net/http"
	"sync"

	"froid-storefront/internal/backend"
	"froid-storefront/internal/model"
)

const genericSubmitMessage = "An error occurred while creating your order"

// SubmitError is a failed order submission. The cart is left untouched
// and the submission may be retried.
type SubmitError struct {
	Status  int
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return "order submission failed: " + e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Retryable is always true: nothing was committed.
func (e *SubmitError) Retryable() bool {
	return true
}

// NewSubmitError maps a backend failure to the message shown to the user.
func NewSubmitError(err error) *SubmitError {
	se := &SubmitError{Message: genericSubmitMessage, Err: err}

	var status int
	var backendMsg string
	if berr, ok := asStatusError(err); ok {
		status, backendMsg = berr.Status, berr.Message
	}
	se.Status = status
	if backendMsg != "" {
		se.Message = backendMsg
	}

	switch status {
	case http.StatusUnauthorized:
		se.Message = "You must be signed in to place a customer order"
	case http.StatusForbidden:
		se.Message = "You do not have permission to place this order"
	case http.StatusBadRequest:
		se.Message = "The order data is invalid"
	}

	return se
}

func asStatusError(err error) (*backend.StatusError, bool) {
	var se *backend.StatusError
	ok := errors.As(err, &se)
	return se, ok
}

// Gate allows one submission per cart session at a time.
type Gate struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{inFlight: make(map[string]struct{})}
}

// Acquire marks key as submitting. It fails with
// model.ErrSubmissionInProgress while another submission holds key.
func (g *Gate) Acquire(key string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[key]; busy {
		return nil, model.ErrSubmissionInProgress
	}
	g.inFlight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, key)
			g.mu.Unlock()
		})
	}, nil
}

// Submitting reports whether key has a submission in flight.
func (g *Gate) Submitting(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inFlight[key]
	return busy
}
