package errors

import (
	"errors"
	"fmt"
	"testing"
)

// =============================================================================
// Test Error Types and Constructors
// =============================================================================

func TestRoomNotFound(t *testing.T) {
	err := RoomNotFound()

	if err.Kind != ErrRoomNotFound {
		t.Errorf("expected Kind to be ErrRoomNotFound (%d), got %d", ErrRoomNotFound, err.Kind)
	}
	if err.Message != "room not found" {
		t.Errorf("expected Message to be 'room not found', got '%s'", err.Message)
	}
	if err.Err != nil {
		t.Errorf("expected Err to be nil, got %v", err.Err)
	}
}

func TestNotAuthorized(t *testing.T) {
	err := NotAuthorized("not a player in this room")

	if err.Kind != ErrNotAuthorized {
		t.Errorf("expected Kind to be ErrNotAuthorized (%d), got %d", ErrNotAuthorized, err.Kind)
	}
	if err.Message != "not a player in this room" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestNotHost(t *testing.T) {
	err := NotHost()

	if err.Kind != ErrNotAuthorized {
		t.Errorf("expected Kind to be ErrNotAuthorized, got %v", err.Kind)
	}
}

func TestInvalidPayloadf(t *testing.T) {
	err := InvalidPayloadf("field %s is required", "code")

	if err.Kind != ErrInvalidPayload {
		t.Errorf("expected Kind to be ErrInvalidPayload (%d), got %d", ErrInvalidPayload, err.Kind)
	}
	if err.Message != "field code is required" {
		t.Errorf("expected Message to be 'field code is required', got '%s'", err.Message)
	}
}

func TestWrongPhasef(t *testing.T) {
	err := WrongPhasef("cannot submit during %s", "lobby")

	if err.Kind != ErrWrongPhase {
		t.Errorf("expected Kind to be ErrWrongPhase, got %v", err.Kind)
	}
	if err.Message != "cannot submit during lobby" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestInternal(t *testing.T) {
	underlying := fmt.Errorf("entropy source failed")
	err := Internal(underlying)

	if err.Kind != ErrInternal {
		t.Errorf("expected Kind to be ErrInternal, got %v", err.Kind)
	}
	if err.Message != "internal error" {
		t.Errorf("expected Message 'internal error', got %q", err.Message)
	}
	if !errors.Is(err, underlying) {
		t.Error("expected errors.Is to find the underlying error")
	}
}

func TestError_ErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{"message only", InvalidPayload("bad json"), "bad json"},
		{"wrapped", Wrap(fmt.Errorf("short read"), ErrInternal, "reading code"), "reading code: short read"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestKind_Code(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{ErrInternal, "INTERNAL"},
		{ErrRoomNotFound, "ROOM_NOT_FOUND"},
		{ErrNotAuthorized, "NOT_AUTHORIZED"},
		{ErrInvalidPayload, "INVALID_PAYLOAD"},
		{ErrWrongPhase, "WRONG_PHASE"},
		{ErrRateLimited, "RATE_LIMITED"},
		{Kind(99), "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.Code(); got != tt.expected {
				t.Errorf("Code() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(RoomNotFound()) != ErrRoomNotFound {
		t.Error("expected ErrRoomNotFound")
	}
	wrapped := fmt.Errorf("join: %w", NotHost())
	if KindOf(wrapped) != ErrNotAuthorized {
		t.Error("expected KindOf to see through fmt wrapping")
	}
	if KindOf(fmt.Errorf("plain")) != ErrInternal {
		t.Error("expected plain errors to be internal")
	}
	if KindOf(nil) != ErrInternal {
		t.Error("expected nil to report internal")
	}
}

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("ctx: %w", InvalidPayload("name too long"))

	if !errors.Is(err, InvalidPayload("")) {
		t.Error("expected errors.Is to match on kind")
	}
	if errors.Is(err, RoomNotFound()) {
		t.Error("expected different kinds not to match")
	}
}
