package browser

import (
	"fmt"
	"strings"
	"testing"
)

// mockCommander records command executions for testing
type mockCommander struct {
	calls      int
	lastName   string
	lastArgs   []string
	startError error
}

func (m *mockCommander) Start(name string, args ...string) error {
	m.calls++
	m.lastName = name
	m.lastArgs = args
	return m.startError
}

func TestOpenWithCommander_Platforms(t *testing.T) {
	const target = "http://192.168.1.20:8081/healthz"

	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"linux", "xdg-open", []string{target}},
		{"freebsd", "xdg-open", []string{target}},
		{"darwin", "open", []string{target}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", target}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			mock := &mockCommander{}
			if err := OpenWithCommander(target, mock, tt.goos); err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if mock.lastName != tt.wantName {
				t.Errorf("expected command %q, got %q", tt.wantName, mock.lastName)
			}
			if strings.Join(mock.lastArgs, " ") != strings.Join(tt.wantArgs, " ") {
				t.Errorf("expected args %v, got %v", tt.wantArgs, mock.lastArgs)
			}
		})
	}
}

func TestOpenWithCommander_UnsupportedPlatform(t *testing.T) {
	mock := &mockCommander{}

	err := OpenWithCommander("http://localhost:8081", mock, "plan9")
	if err == nil || !strings.Contains(err.Error(), "unsupported platform") {
		t.Fatalf("expected unsupported platform error, got %v", err)
	}
	if mock.calls != 0 {
		t.Error("commander should not be called")
	}
}

func TestOpenWithCommander_RejectsNonHTTP(t *testing.T) {
	for _, target := range []string{"file:///etc/passwd", "javascript:alert(1)", "/relative", "http://", "::bad"} {
		mock := &mockCommander{}
		if err := OpenWithCommander(target, mock, "linux"); err == nil {
			t.Errorf("expected %q to be refused", target)
		}
		if mock.calls != 0 {
			t.Errorf("commander called for %q", target)
		}
	}
}

func TestOpenWithCommander_StartError(t *testing.T) {
	mock := &mockCommander{startError: fmt.Errorf("no browser")}

	err := OpenWithCommander("https://party.example", mock, "darwin")
	if err == nil || err.Error() != "no browser" {
		t.Errorf("expected start error to propagate, got %v", err)
	}
}
