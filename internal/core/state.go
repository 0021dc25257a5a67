package core

import (
	"errors"
	"sync"

	"github.com/Rorical/RoriChat/internal/models"
)

// ErrRequestInFlight is returned when a send or retry arrives while another
// request has not finished.
var ErrRequestInFlight = errors.New("a request is already in flight")

// SessionState holds the controller's request state.
type SessionState struct {
	mu          sync.RWMutex
	status      models.Status
	inFlight    bool
	lastMessage string
	lastModel   string
	lastError   error
}

func NewSessionState() *SessionState {
	return &SessionState{
		status: models.StatusReady,
	}
}

// BeginRequest atomically claims the in-flight slot, records the request for
// retry and moves to sending.
func (s *SessionState) BeginRequest(message, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return ErrRequestInFlight
	}
	s.inFlight = true
	s.status = models.StatusSending
	s.lastMessage = message
	s.lastModel = model
	s.lastError = nil
	return nil
}

// FinishWithSuccess moves to ready. The in-flight slot stays claimed until
// EndRequest.
func (s *SessionState) FinishWithSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = models.StatusReady
	s.lastError = nil
}

func (s *SessionState) FinishWithError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = models.StatusError
	s.lastError = err
}

// FinishCanceled moves back to ready without recording a failure. The request
// stays available for retry.
func (s *SessionState) FinishCanceled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = models.StatusReady
}

// EndRequest releases the in-flight slot.
func (s *SessionState) EndRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
}

// MarkReady resets the status unless a request is in flight. It reports
// whether the status changed.
func (s *SessionState) MarkReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.status = models.StatusReady
	return true
}

func (s *SessionState) Status() models.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *SessionState) IsInFlight() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight
}

// LastRequest returns the most recently sent message and model.
func (s *SessionState) LastRequest() (message, model string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessage, s.lastModel, s.lastMessage != ""
}

func (s *SessionState) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}
