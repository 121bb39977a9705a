package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind represents the type of error
type Kind int

const (
	ErrInternal Kind = iota
	ErrRoomNotFound
	ErrNotAuthorized
	ErrInvalidPayload
	ErrWrongPhase
	ErrRateLimited
)

// Code returns the stable identifier sent to clients on acknowledgments
func (k Kind) Code() string {
	switch k {
	case ErrRoomNotFound:
		return "ROOM_NOT_FOUND"
	case ErrNotAuthorized:
		return "NOT_AUTHORIZED"
	case ErrInvalidPayload:
		return "INVALID_PAYLOAD"
	case ErrWrongPhase:
		return "WRONG_PHASE"
	case ErrRateLimited:
		return "RATE_LIMITED"
	default:
		return "INTERNAL"
	}
}

func (k Kind) String() string {
	return k.Code()
}

// Error is an application-level error with a kind for classification
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, errors.RoomNotFound()) matches regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or ErrInternal if err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrInternal
}

// Constructor functions for common error types

func RoomNotFound() *Error {
	return &Error{Kind: ErrRoomNotFound, Message: "room not found"}
}

func NotAuthorized(msg string) *Error {
	return &Error{Kind: ErrNotAuthorized, Message: msg}
}

func NotHost() *Error {
	return NotAuthorized("only the host can do that")
}

func InvalidPayload(msg string) *Error {
	return &Error{Kind: ErrInvalidPayload, Message: msg}
}

func InvalidPayloadf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInvalidPayload, Message: fmt.Sprintf(format, args...)}
}

func WrongPhase(msg string) *Error {
	return &Error{Kind: ErrWrongPhase, Message: msg}
}

func WrongPhasef(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrWrongPhase, Message: fmt.Sprintf(format, args...)}
}

func RateLimited() *Error {
	return &Error{Kind: ErrRateLimited, Message: "too many events, slow down"}
}

func Internal(err error) *Error {
	return &Error{Kind: ErrInternal, Message: "internal error", Err: err}
}

func Internalf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}
