package domain

import "errors"

// Common errors
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Kind classifies the failures a caller can act on.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindNotFound
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Error is a workflow failure carrying a human readable message.
// Anything that is not an *Error is treated as an infrastructure failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func BadRequest(msg string) error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func IsBadRequest(err error) bool   { return isKind(err, KindBadRequest) }
func IsNotFound(err error) bool     { return isKind(err, KindNotFound) }
func IsUnauthorized(err error) bool { return isKind(err, KindUnauthorized) }

func isKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
