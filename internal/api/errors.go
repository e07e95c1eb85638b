package api

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUnauthenticated: no usable credential, or the backend said 401/403.
	KindUnauthenticated
	// KindNotFound: the backend has nothing for the requested id.
	KindNotFound
	// KindValidationFailed: the client refused to send a malformed request.
	KindValidationFailed
	// KindTransport: the request never completed or the body was unreadable.
	KindTransport
	// KindServerRejected: any other non-2xx response.
	KindServerRejected
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not found"
	case KindValidationFailed:
		return "validation failed"
	case KindTransport:
		return "transport"
	case KindServerRejected:
		return "server rejected"
	}
	return "unknown"
}

// Error is returned by every Client method.
type Error struct {
	Kind Kind
	// Op names the gateway operation, e.g. "submit_review".
	Op string
	// Status is the HTTP status, or 0 when no response was received.
	Status int
	// Detail is the backend's human-readable message, verbatim.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Status != 0 {
		msg += fmt.Sprintf(" (%d)", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns what should be shown to a learner for err: the backend's
// detail when there is one, otherwise the error text.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func classifyStatus(status int) Kind {
	switch status {
	case 401, 403:
		return KindUnauthenticated
	case 404:
		return KindNotFound
	}
	return KindServerRejected
}
