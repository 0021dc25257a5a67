package eventbus

import (
	"errors"
	"sync"
	"time"

	"github.com/Rorical/RoriChat/internal/models"
)

const defaultBufferSize = 256

var (
	ErrCircuitOpen = errors.New("circuit breaker is open")
	ErrBusClosed   = errors.New("event bus is closed")
)

// UIEvent represents events sent from UI to Core
type UIEvent interface {
	UIEvent()
}

// CoreEvent represents events sent from Core to UI
type CoreEvent interface {
	CoreEvent()
}

// StartupEvent - UI is up, core should initialize the view
type StartupEvent struct{}

func (e StartupEvent) UIEvent() {}

// SendEvent - user pressed send
type SendEvent struct {
	Input string
	Model string
}

func (e SendEvent) UIEvent() {}

// RetryEvent - user chose retry in the error dialog
type RetryEvent struct{}

func (e RetryEvent) UIEvent() {}

// DismissErrorEvent - user closed the error dialog
type DismissErrorEvent struct{}

func (e DismissErrorEvent) UIEvent() {}

// InputChangedEvent - input box content changed
type InputChangedEvent struct {
	Value string
}

func (e InputChangedEvent) UIEvent() {}

// ModelSelectedEvent - user picked another model
type ModelSelectedEvent struct {
	Model string
}

func (e ModelSelectedEvent) UIEvent() {}

// TranscriptEvent - Core pushes a new transcript snapshot
type TranscriptEvent struct {
	Messages []models.Message
}

func (e TranscriptEvent) CoreEvent() {}

// ScrollEvent - Core asks the UI to scroll the transcript to the bottom
type ScrollEvent struct{}

func (e ScrollEvent) CoreEvent() {}

type InputEvent struct {
	Value string
}

func (e InputEvent) CoreEvent() {}

type ModelEvent struct {
	Model string
}

func (e ModelEvent) CoreEvent() {}

type ModelsEvent struct {
	Models   []string
	Selected string
}

func (e ModelsEvent) CoreEvent() {}

type FocusEvent struct{}

func (e FocusEvent) CoreEvent() {}

// FeedbackEvent - flash visual feedback on a control
type FeedbackEvent struct {
	Target   models.FeedbackTarget
	Feedback models.Feedback
}

func (e FeedbackEvent) CoreEvent() {}

type StatusEvent struct {
	Status models.Status
}

func (e StatusEvent) CoreEvent() {}

type SendEnabledEvent struct {
	Enabled bool
}

func (e SendEnabledEvent) CoreEvent() {}

type LoadingEvent struct {
	Loading bool
}

func (e LoadingEvent) CoreEvent() {}

// ErrorEvent - show or hide the error dialog
type ErrorEvent struct {
	Message string
	Visible bool
}

func (e ErrorEvent) CoreEvent() {}

type CharCountEvent struct {
	Count int
	Level models.CountLevel
}

func (e CharCountEvent) CoreEvent() {}

// EventBusError represents errors in event processing
type EventBusError struct {
	Operation string
	Err       error
	Timestamp time.Time
}

func (e EventBusError) Error() string {
	return e.Operation + ": " + e.Err.Error()
}

func (e EventBusError) Unwrap() error {
	return e.Err
}

// CircuitBreakerState represents the state of circuit breaker
type CircuitBreakerState int

const (
	CircuitClosed CircuitBreakerState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker implements circuit breaker pattern
type CircuitBreaker struct {
	mu              sync.Mutex
	maxFailures     int
	resetTimeout    time.Duration
	failureCount    int
	lastFailureTime time.Time
	state           CircuitBreakerState
	now             func() time.Time
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        CircuitClosed,
		now:          time.Now,
	}
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen {
		// Check if we should transition to half-open
		if cb.now().Sub(cb.lastFailureTime) > cb.resetTimeout {
			cb.state = CircuitHalfOpen
		}
	}
	return cb.state == CircuitOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount = 0
	cb.state = CircuitClosed
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount++
	cb.lastFailureTime = cb.now()

	if cb.failureCount >= cb.maxFailures {
		cb.state = CircuitOpen
	}
}

func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// EventBus handles communication between UI and Core with circuit breaker
type EventBus struct {
	mu             sync.RWMutex
	closed         bool
	closeOnce      sync.Once
	uiToCore       chan UIEvent
	coreToUI       chan CoreEvent
	errorCallback  func(EventBusError)
	circuitBreaker *CircuitBreaker
}

type Option func(*EventBus)

// WithBufferSize sets the capacity of both channels.
func WithBufferSize(size int) Option {
	return func(eb *EventBus) {
		eb.uiToCore = make(chan UIEvent, size)
		eb.coreToUI = make(chan CoreEvent, size)
	}
}

func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(eb *EventBus) {
		eb.circuitBreaker = cb
	}
}

func NewEventBus(opts ...Option) *EventBus {
	eb := &EventBus{
		uiToCore:       make(chan UIEvent, defaultBufferSize),
		coreToUI:       make(chan CoreEvent, defaultBufferSize),
		circuitBreaker: NewCircuitBreaker(5, 30*time.Second),
	}
	for _, opt := range opts {
		opt(eb)
	}
	return eb
}

func (eb *EventBus) SetErrorCallback(callback func(EventBusError)) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.errorCallback = callback
}

func (eb *EventBus) reportError(operation string, err error) {
	busError := EventBusError{
		Operation: operation,
		Err:       err,
		Timestamp: time.Now(),
	}

	eb.circuitBreaker.RecordFailure()

	if eb.errorCallback != nil {
		eb.errorCallback(busError)
	}
}

func (eb *EventBus) SendToCore(event UIEvent) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return ErrBusClosed
	}
	if eb.circuitBreaker.IsOpen() {
		eb.reportError("SendToCore", ErrCircuitOpen)
		return ErrCircuitOpen
	}

	select {
	case eb.uiToCore <- event:
		eb.circuitBreaker.RecordSuccess()
		return nil
	default:
		err := errors.New("UI to Core channel is full")
		eb.reportError("SendToCore", err)
		return err
	}
}

func (eb *EventBus) SendToUI(event CoreEvent) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return ErrBusClosed
	}
	if eb.circuitBreaker.IsOpen() {
		eb.reportError("SendToUI", ErrCircuitOpen)
		return ErrCircuitOpen
	}

	select {
	case eb.coreToUI <- event:
		eb.circuitBreaker.RecordSuccess()
		return nil
	default:
		err := errors.New("Core to UI channel is full")
		eb.reportError("SendToUI", err)
		return err
	}
}

func (eb *EventBus) UIToCore() <-chan UIEvent {
	return eb.uiToCore
}

func (eb *EventBus) CoreToUI() <-chan CoreEvent {
	return eb.coreToUI
}

func (eb *EventBus) GetCircuitBreakerState() CircuitBreakerState {
	return eb.circuitBreaker.State()
}

// Close closes both channels. Sends after Close return ErrBusClosed.
func (eb *EventBus) Close() {
	eb.closeOnce.Do(func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		eb.closed = true
		close(eb.uiToCore)
		close(eb.coreToUI)
	})
}
