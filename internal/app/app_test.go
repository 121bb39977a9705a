package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/snapchaos/internal/config"
	"github.com/abrezinsky/snapchaos/internal/logger"
	"github.com/abrezinsky/snapchaos/internal/models"
)

// mockInterface implements networkInterface for testing
type mockInterface struct {
	flags net.Flags
	addrs []net.Addr
	err   error
}

func (m mockInterface) Flags() net.Flags {
	return m.flags
}

func (m mockInterface) Addrs() ([]net.Addr, error) {
	return m.addrs, m.err
}

// mockNetworkProvider implements networkProvider for testing
type mockNetworkProvider struct {
	interfaces []networkInterface
	err        error
}

func (m mockNetworkProvider) Interfaces() ([]networkInterface, error) {
	return m.interfaces, m.err
}

func ipNet(s string) *net.IPNet {
	return &net.IPNet{IP: net.ParseIP(s), Mask: net.CIDRMask(24, 32)}
}

var lanProvider = mockNetworkProvider{interfaces: []networkInterface{
	mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("192.168.1.20")}},
}}

func createTestApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	if mutate != nil {
		mutate(cfg)
	}
	app, err := newApp(logger.Discard(), cfg, lanProvider)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func TestNew_InitializesApp(t *testing.T) {
	app := createTestApp(t, nil)

	if app.registry == nil || app.hub == nil || app.handlers == nil {
		t.Fatal("expected dependencies to be wired")
	}
	if app.Router() == nil {
		t.Error("expected router")
	}
	if got := app.Stats(); got != (Stats{}) {
		t.Errorf("Stats() = %+v, want zero", got)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Game.CodeLength = 0

	if _, err := New(logger.Discard(), cfg); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestNew_BaseURL(t *testing.T) {
	detected := createTestApp(t, func(c *config.Config) { c.Server.Addr = ":8081" })
	if detected.BaseURL() != "http://192.168.1.20:8081" {
		t.Errorf("detected BaseURL() = %q", detected.BaseURL())
	}

	configured := createTestApp(t, func(c *config.Config) { c.Server.BaseURL = "https://party.example" })
	if configured.BaseURL() != "https://party.example" {
		t.Errorf("configured BaseURL() = %q", configured.BaseURL())
	}
}

func TestGameSettings(t *testing.T) {
	cfg := config.Default()
	cfg.Game.CodeLength = 6
	cfg.Game.EmptyRoomGrace = time.Minute

	s := GameSettings(cfg.Game)
	if s.CodeLength != 6 || s.EmptyRoomGrace != time.Minute || s.CodeAlphabet != cfg.Game.CodeAlphabet {
		t.Errorf("unexpected settings %+v", s)
	}
	if s.Majority == nil || s.Majority(4) != 3 {
		t.Error("expected default majority")
	}
}

func TestApp_Router_ServesRequests(t *testing.T) {
	app := createTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestApp_Run_ServesWebSocketAndShutsDown(t *testing.T) {
	app := createTestApp(t, func(c *config.Config) { c.Game.CountdownInterval = 0 })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.serve(ctx, ln)
	}()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	if err != nil {
		cancel()
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var welcome struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&welcome); err != nil || welcome.Type != models.TypeWelcome {
		t.Fatalf("welcome = %+v, err %v", welcome, err)
	}

	raw, _ := json.Marshal(map[string]string{"name": "Host"})
	conn.WriteJSON(models.Inbound{Event: models.EventCreateRoom, ID: 1, Data: raw})
	for {
		var msg struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type == models.TypeAck {
			break
		}
	}
	if stats := app.Stats(); stats.Rooms != 1 || stats.Players != 1 || stats.Connections != 1 {
		t.Errorf("Stats() = %+v", stats)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestApp_Run_BadAddress(t *testing.T) {
	app := createTestApp(t, func(c *config.Config) { c.Server.Addr = "256.0.0.1:99999" })

	err := app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "listening") {
		t.Errorf("expected listen error, got %v", err)
	}
}

func TestLanIP(t *testing.T) {
	tests := []struct {
		name     string
		provider mockNetworkProvider
		want     string
	}{
		{"provider error", mockNetworkProvider{err: net.ErrClosed}, "localhost"},
		{"addrs error", mockNetworkProvider{interfaces: []networkInterface{
			mockInterface{flags: net.FlagUp, err: net.ErrClosed},
		}}, "localhost"},
		{"down interface skipped", mockNetworkProvider{interfaces: []networkInterface{
			mockInterface{flags: 0, addrs: []net.Addr{ipNet("192.168.1.9")}},
		}}, "localhost"},
		{"loopback interface skipped", mockNetworkProvider{interfaces: []networkInterface{
			mockInterface{flags: net.FlagUp | net.FlagLoopback, addrs: []net.Addr{ipNet("10.0.0.9")}},
		}}, "localhost"},
		{"IPAddr", mockNetworkProvider{interfaces: []networkInterface{
			mockInterface{flags: net.FlagUp, addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("10.1.2.3")}}},
		}}, "10.1.2.3"},
		{"private preferred over public", mockNetworkProvider{interfaces: []networkInterface{
			mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8")}},
			mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("172.20.0.5")}},
		}}, "172.20.0.5"},
		{"public fallback", mockNetworkProvider{interfaces: []networkInterface{
			mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8")}},
		}}, "8.8.8.8"},
		{"loopback and IPv6 ignored", mockNetworkProvider{interfaces: []networkInterface{
			mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("127.0.0.1"), ipNet("fe80::1"), ipNet("192.168.1.50")}},
		}}, "192.168.1.50"},
		{"172 outside private range", mockNetworkProvider{interfaces: []networkInterface{
			mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("172.32.0.1"), ipNet("10.0.0.2")}},
		}}, "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lanIP(tt.provider); got != tt.want {
				t.Errorf("lanIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultBaseURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8081", "http://192.168.1.20:8081"},
		{"0.0.0.0:9000", "http://192.168.1.20:9000"},
		{"game.local:8081", "http://game.local:8081"},
		{"garbage", "http://garbage"},
	}
	for _, tt := range tests {
		if got := defaultBaseURL(tt.addr, lanProvider); got != tt.want {
			t.Errorf("defaultBaseURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestRealNetworkProvider_Interfaces(t *testing.T) {
	ifaces, err := realNetworkProvider{}.Interfaces()
	if err != nil {
		t.Logf("net.Interfaces() failed (this is system-dependent): %v", err)
		return
	}
	for _, iface := range ifaces {
		_ = iface.Flags()
		if _, err := iface.Addrs(); err != nil {
			t.Logf("Addrs() failed: %v", err)
		}
	}

	if ip := lanIP(realNetworkProvider{}); ip == "" {
		t.Error("IP should never be empty")
	}
}
