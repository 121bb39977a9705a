package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/snapchaos/internal/config"
	"github.com/abrezinsky/snapchaos/internal/game"
	"github.com/abrezinsky/snapchaos/internal/handlers"
	"github.com/abrezinsky/snapchaos/internal/logger"
	"github.com/abrezinsky/snapchaos/internal/scoring"
	"github.com/abrezinsky/snapchaos/internal/websocket"
)

const shutdownTimeout = 5 * time.Second

// App holds all application dependencies
type App struct {
	log      logger.Logger
	cfg      *config.Config
	registry *game.Registry
	hub      *websocket.Hub
	handlers *handlers.Handlers
	baseURL  string

	cancelLoops context.CancelFunc
}

// Stats is a point-in-time view of server load
type Stats struct {
	Rooms       int
	Players     int
	Connections int
}

// GameSettings converts file configuration into room settings
func GameSettings(c config.GameConfig) game.Settings {
	return game.Settings{
		CodeLength:          c.CodeLength,
		CodeAlphabet:        c.CodeAlphabet,
		CodeAttempts:        c.CodeAttempts,
		DefaultRoundSeconds: c.DefaultRoundSeconds,
		MaxRoundSeconds:     c.MaxRoundSeconds,
		MaxPhotoBytes:       c.MaxPhotoBytes,
		MinPlayers:          c.MinPlayers,
		EmptyRoomGrace:      c.EmptyRoomGrace,
		Majority:            scoring.DefaultMajority,
	}
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg *config.Config) (*App, error) {
	return newApp(log, cfg, realNetworkProvider{})
}

func newApp(log logger.Logger, cfg *config.Config, network networkProvider) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	registry := game.NewRegistry(log, GameSettings(cfg.Game))

	hub := websocket.New(log, registry, websocket.Options{
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		MaxPhotoBytes:   cfg.Game.MaxPhotoBytes,
		EventsPerSecond: cfg.Limits.EventsPerSecond,
		EventBurst:      cfg.Limits.EventBurst,
	})
	registry.SetBroadcaster(hub)

	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL(cfg.Server.Addr, network)
	}

	// Background loops stop on Close
	ctx, cancel := context.WithCancel(context.Background())
	go registry.RunReaper(ctx, cfg.Game.ReaperInterval)
	if cfg.Game.CountdownInterval > 0 {
		go hub.StartCountdown(ctx, cfg.Game.CountdownInterval)
	}

	return &App{
		log:         log,
		cfg:         cfg,
		registry:    registry,
		hub:         hub,
		handlers:    handlers.New(registry, hub, log, baseURL),
		baseURL:     baseURL,
		cancelLoops: cancel,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// BaseURL returns the base of join links
func (a *App) BaseURL() string {
	return a.baseURL
}

// Stats reports live rooms, players and connections
func (a *App) Stats() Stats {
	return Stats{
		Rooms:       a.registry.Len(),
		Players:     a.registry.Players(),
		Connections: a.hub.ClientCount(),
	}
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancelLoops != nil {
		a.cancelLoops()
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Server.Addr, err)
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	a.log.Info("Server starting", "addr", ln.Addr().String(), "join_url", a.baseURL)

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
