package chatapi

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FailureKind is the failure taxonomy of a chat request.
type FailureKind int

const (
	KindUnknown     FailureKind = iota
	KindNetwork                 // transport unreachable
	KindTimeout                 // transport deadline exceeded
	KindHTTP                    // non-2xx status
	KindApplication             // 2xx with success=false
	KindDecode                  // 2xx with a body that is not a chat response
	KindCanceled                // caller's context cancelled
)

func (k FailureKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindHTTP:
		return "http"
	case KindApplication:
		return "application"
	case KindDecode:
		return "decode"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// RequestError is returned by Client for every failed request. Message is the
// raw failure text that classification works on.
type RequestError struct {
	Kind       FailureKind
	StatusCode int // zero for transport failures
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsCanceled reports whether err comes from the caller cancelling the request.
func IsCanceled(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Kind == KindCanceled {
		return true
	}
	return errors.Is(err, context.Canceled)
}

func transportError(err error) *RequestError {
	if errors.Is(err, context.Canceled) {
		return &RequestError{
			Kind:    KindCanceled,
			Message: fmt.Sprintf("request canceled: %v", err),
			Err:     err,
		}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &RequestError{
			Kind:    KindTimeout,
			Message: fmt.Sprintf("request timeout: %v", err),
			Err:     err,
		}
	}
	return &RequestError{
		Kind:    KindNetwork,
		Message: fmt.Sprintf("NetworkError: %v", err),
		Err:     err,
	}
}
