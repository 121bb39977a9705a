package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/abrezinsky/snapchaos/internal/app"
	"github.com/abrezinsky/snapchaos/internal/browser"
	"github.com/abrezinsky/snapchaos/internal/config"
	"github.com/abrezinsky/snapchaos/internal/logger"
)

var (
	version = "dev"
)

var (
	cyan   = color.New(color.FgCyan)
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	bold   = color.New(color.Bold, color.FgGreen)
)

// showBanner prints the SnapChaos logo
func showBanner() {
	logo := []string{
		`   ____                    ____ _                      `,
		`  / ___| _ __   __ _ _ __ / ___| |__   __ _  ___  ___  `,
		`  \___ \| '_ \ / _' | '_ \ |   | '_ \ / _' |/ _ \/ __| `,
		`   ___) | | | | (_| | |_) | |___| | | | (_| | (_) \__ \ `,
		`  |____/|_| |_|\__,_| .__/ \____|_| |_|\__,_|\___/|___/ `,
		`                    |_|                                `,
	}
	width := 58
	border := strings.Repeat("═", width)

	fmt.Println()
	cyan.Printf("  ╔%s╗\n", border)
	for _, line := range logo {
		line += strings.Repeat(" ", max(0, width-len(line)))
		cyan.Print("  ║")
		yellow.Print(line)
		cyan.Println("║")
	}
	cyan.Printf("  ╚%s╝\n\n", border)
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func cycleLogLevel(appLog logger.Logger) {
	var next string
	switch appLog.GetLevel().String() {
	case "DEBUG":
		next = "info"
	case "INFO":
		next = "warn"
	case "WARN":
		next = "error"
	default:
		next = "debug"
	}

	appLog.SetLevel(logger.ParseLevel(next))
	green.Print("Log level: ")
	yellow.Println(next)
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp() {
	bold.Println("\n  Keyboard Shortcuts:")
	for _, s := range [][2]string{
		{"o", "Open server health page in browser"},
		{"h", "Toggle HTTP request logging"},
		{"l", "Cycle log level (debug → info → warn → error)"},
		{"s", "Show room, player and connection counts"},
		{"q", "Quit server"},
		{"?", "Show this help"},
	} {
		fmt.Print("    ")
		cyan.Print(s[0])
		fmt.Printf("      - %s\n", s[1])
	}
	fmt.Println()
}

// keyActions is what the keyboard listener needs from the running server
type keyActions struct {
	log     logger.Logger
	openURL string
	stats   func() app.Stats
	quit    func()
}

// handleKey runs the shortcut for input and reports whether the listener should stop
func (k keyActions) handleKey(input string) bool {
	switch strings.ToLower(input) {
	case "o":
		cyan.Println("Opening health page in browser...")
		if err := browser.Open(k.openURL); err != nil {
			red.Printf("Error opening browser: %v\n", err)
		}
	case "h":
		if k.log.IsHTTPLoggingEnabled() {
			k.log.DisableHTTPLogging()
			yellow.Println("HTTP logging disabled")
		} else {
			k.log.EnableHTTPLogging()
			green.Println("HTTP logging enabled")
		}
	case "l":
		cycleLogLevel(k.log)
	case "s":
		st := k.stats()
		green.Printf("Rooms: %d  Players: %d  Connections: %d\n", st.Rooms, st.Players, st.Connections)
	case "q", "\x03":
		yellow.Println("Shutting down server...")
		k.quit()
		return true
	case "?":
		printKeyboardHelp()
	}
	return false
}

func main() {
	configPath := flag.String("config", "", "YAML config file path")
	envFile := flag.String("env", ".env", "dotenv file loaded before the config")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	logFormat := flag.String("log-format", "", "Log format: text or json (overrides config)")
	noKeyboard := flag.Bool("nokeyboard", false, "Disable keyboard shortcuts")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `SnapChaos - party photo game server

Usage:
  snapchaos [options]

Options:
  -config string      YAML config file path
  -env string         dotenv file loaded before the config (default ".env")
  -addr string        HTTP listen address, e.g. :8081
  -log-level string   Log level: debug, info, warn, error
  -log-format string  Log format: text or json
  -nokeyboard         Disable keyboard shortcuts
  -version            Show version and exit
  -help               Show this help message

Environment variables prefixed with SNAPCHAOS_ override the config file.

Examples:
  snapchaos                              # Run on :8081 with defaults
  snapchaos -addr :9000                  # Run on port 9000
  snapchaos -config snapchaos.yaml       # Load settings from a file
  snapchaos -log-format json -nokeyboard # Run headless with JSON logs

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("snapchaos %s\n", version)
		os.Exit(0)
	}

	if err := run(*configPath, *envFile, *addr, *logLevel, *logFormat, !*noKeyboard); err != nil {
		red.Fprintf(os.Stderr, "snapchaos: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, envFile, addr, logLevel, logFormat string, keyboard bool) error {
	if err := config.LoadEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	showBanner()

	appLog := logger.NewWithOptions(logger.Options{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Format: cfg.Logging.Format,
	})

	a, err := app.New(appLog, cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(ctx)
	}()

	// Wait a moment for the listener before printing shortcuts
	time.Sleep(100 * time.Millisecond)

	green.Print("  Join URL: ")
	yellow.Println(a.BaseURL())

	if keyboard {
		printKeyboardHelp()
		go listenForKeyboard(keyActions{
			log:     appLog,
			openURL: a.BaseURL() + "/healthz",
			stats:   a.Stats,
			quit:    stop,
		})
	} else {
		yellow.Println("\nKeyboard shortcuts disabled")
	}

	return <-serverErr
}
