package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request.
type Kind int

const (
	KindNetwork    Kind = iota + 1 // no response: dial error, timeout, cancelled context
	KindAuth                       // 401
	KindServer                     // any other non-2xx status
	KindDecode                     // 2xx with a body that does not match the expected shape
	KindValidation                 // rejected locally before anything was sent
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by every Client call.
type Error struct {
	Kind      Kind
	Method    string
	URL       string
	Status    int
	Message   string
	RequestID string
	Payload   []byte
	Err       error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %s failure (status %d): %s", e.Method, e.URL, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %s failure: %s", e.Method, e.URL, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

func IsAuth(err error) bool { return KindOf(err) == KindAuth }
