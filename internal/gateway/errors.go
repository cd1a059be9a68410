package gateway

import "errors"

type Kind string

const (
	// KindUnavailable covers timeouts and transport failures; safe to retry.
	KindUnavailable Kind = "unavailable"
	// KindRejected means the gateway answered and refused the request.
	KindRejected Kind = "rejected"
	// KindInvalidResponse means the gateway answered with something we cannot parse.
	KindInvalidResponse Kind = "invalid_response"
)

type Error struct {
	Kind      Kind
	Retryable bool
	Op        string
	Err       error
}

func (e *Error) Error() string {
	msg := "gateway " + e.Op + ": " + string(e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a gateway error worth retrying.
func IsRetryable(err error) bool {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Retryable
	}
	return false
}

func unavailable(op string, err error) *Error {
	return &Error{Kind: KindUnavailable, Retryable: true, Op: op, Err: err}
}

func rejected(op string, err error) *Error {
	return &Error{Kind: KindRejected, Retryable: false, Op: op, Err: err}
}

func invalidResponse(op string, err error) *Error {
	return &Error{Kind: KindInvalidResponse, Retryable: false, Op: op, Err: err}
}
