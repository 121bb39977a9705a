// Package config loads server configuration from defaults, an optional YAML
// file, .env files, SNAPCHAOS_* environment variables and finally flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "SNAPCHAOS_"

// Config represents the complete server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Game    GameConfig    `yaml:"game"`
	Limits  LimitsConfig  `yaml:"limits"`
}

// ServerConfig holds listener and transport configuration
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// BaseURL is the external URL players use to join (QR codes).
	// Empty means detect the LAN address at startup.
	BaseURL        string   `yaml:"base_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GameConfig holds room and round tuning
type GameConfig struct {
	CodeLength          int    `yaml:"code_length"`
	CodeAlphabet        string `yaml:"code_alphabet"`
	CodeAttempts        int    `yaml:"code_attempts"`
	DefaultRoundSeconds int    `yaml:"default_round_seconds"`
	MaxRoundSeconds     int    `yaml:"max_round_seconds"`
	MaxPhotoBytes       int    `yaml:"max_photo_bytes"`
	MinPlayers          int    `yaml:"min_players"`

	EmptyRoomGrace    time.Duration `yaml:"-"`
	ReaperInterval    time.Duration `yaml:"-"`
	CountdownInterval time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	EmptyRoomGraceRaw    string `yaml:"empty_room_grace"`
	ReaperIntervalRaw    string `yaml:"reaper_interval"`
	CountdownIntervalRaw string `yaml:"countdown_interval"`
}

// LimitsConfig holds per-connection flood control
type LimitsConfig struct {
	EventsPerSecond float64 `yaml:"events_per_second"`
	EventBurst      int     `yaml:"event_burst"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8081",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Game: GameConfig{
			CodeLength:          4,
			CodeAlphabet:        "23456789ABCDEFGHJKMNPQRSTUVWXYZ",
			CodeAttempts:        64,
			DefaultRoundSeconds: 30,
			MaxRoundSeconds:     600,
			MaxPhotoBytes:       2 << 20,
			MinPlayers:          1,
			EmptyRoomGrace:      2 * time.Minute,
			ReaperInterval:      30 * time.Second,
			CountdownInterval:   time.Second,
		},
		Limits: LimitsConfig{
			EventsPerSecond: 20,
			EventBurst:      40,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (if non-empty)
// and the process environment. Environment variables in the form ${VAR_NAME}
// inside the file are expanded.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if err := parseDurations(cfg); err != nil {
			return nil, fmt.Errorf("parsing durations: %w", err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// LoadEnv loads .env style files into the process environment.
// Missing files are ignored; existing variables are never overwritten.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	g := c.Game
	if len(g.CodeAlphabet) < 2 {
		return fmt.Errorf("game.code_alphabet needs at least 2 characters")
	}
	if strings.ToUpper(g.CodeAlphabet) != g.CodeAlphabet {
		return fmt.Errorf("game.code_alphabet must be upper case")
	}
	if g.CodeLength < 3 || g.CodeLength > 16 {
		return fmt.Errorf("game.code_length must be between 3 and 16")
	}
	if g.CodeAttempts < 1 {
		return fmt.Errorf("game.code_attempts must be positive")
	}
	if g.DefaultRoundSeconds <= 0 || g.MaxRoundSeconds <= 0 {
		return fmt.Errorf("round durations must be positive")
	}
	if g.DefaultRoundSeconds > g.MaxRoundSeconds {
		return fmt.Errorf("game.default_round_seconds (%d) exceeds game.max_round_seconds (%d)", g.DefaultRoundSeconds, g.MaxRoundSeconds)
	}
	if g.MaxPhotoBytes <= 0 {
		return fmt.Errorf("game.max_photo_bytes must be positive")
	}
	if g.MinPlayers < 1 {
		return fmt.Errorf("game.min_players must be at least 1")
	}
	if g.EmptyRoomGrace < 0 || g.CountdownInterval < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if g.ReaperInterval <= 0 {
		return fmt.Errorf("game.reaper_interval must be positive")
	}
	if c.Limits.EventsPerSecond <= 0 || c.Limits.EventBurst < 1 {
		return fmt.Errorf("limits must be positive")
	}
	return nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"empty_room_grace", cfg.Game.EmptyRoomGraceRaw, &cfg.Game.EmptyRoomGrace},
		{"reaper_interval", cfg.Game.ReaperIntervalRaw, &cfg.Game.ReaperInterval},
		{"countdown_interval", cfg.Game.CountdownIntervalRaw, &cfg.Game.CountdownInterval},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}
	return nil
}

// applyEnv overlays SNAPCHAOS_* variables found through lookup
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}
	atoi := func(key string, dst *int) error {
		v, ok := get(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}
	duration := func(key string, dst *time.Duration) error {
		v, ok := get(key)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = d
		return nil
	}

	if v, ok := get("ADDR"); ok {
		cfg.Server.Addr = v
	}
	if v, ok := get("BASE_URL"); ok {
		cfg.Server.BaseURL = v
	}
	if v, ok := get("ALLOWED_ORIGINS"); ok {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		cfg.Logging.Format = v
	}
	if v, ok := get("CODE_ALPHABET"); ok {
		cfg.Game.CodeAlphabet = v
	}

	for _, step := range []error{
		atoi("CODE_LENGTH", &cfg.Game.CodeLength),
		atoi("CODE_ATTEMPTS", &cfg.Game.CodeAttempts),
		atoi("DEFAULT_ROUND_SECONDS", &cfg.Game.DefaultRoundSeconds),
		atoi("MAX_ROUND_SECONDS", &cfg.Game.MaxRoundSeconds),
		atoi("MAX_PHOTO_BYTES", &cfg.Game.MaxPhotoBytes),
		atoi("MIN_PLAYERS", &cfg.Game.MinPlayers),
		duration("EMPTY_ROOM_GRACE", &cfg.Game.EmptyRoomGrace),
		duration("REAPER_INTERVAL", &cfg.Game.ReaperInterval),
		duration("COUNTDOWN_INTERVAL", &cfg.Game.CountdownInterval),
	} {
		if step != nil {
			return step
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
