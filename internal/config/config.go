package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App        AppConfig
	Bot        BotConfig
	Store      StoreConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	Gateway    GatewayConfig
	Extensions ExtensionsConfig
	Session    SessionConfig
}

// AppConfig controls the HTTP surface.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// BotConfig controls the chat commands and ticket channels.
type BotConfig struct {
	Prefix               string
	BotCommandsChannel   int64
	ManagerRole          string
	OwnerID              int64
	TicketCategory       int64
	AllowedRoles         []int64
	Permissions          []string
	TitleMaxLength       int
	DeleteMessages       bool
	DeleteErrorMessages  bool
	DeleteErrorDelaySecs int
	MessagesFile         string
}

// StoreConfig selects where the ticket document lives.
type StoreConfig struct {
	Backend    string
	FilePath   string
	SQLitePath string
	RedisKey   string
	DocumentID string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines API token parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// GatewayConfig points at the chat platform bridge. An empty BaseURL runs
// the bot against the in-memory transport.
type GatewayConfig struct {
	BaseURL        string
	Token          string
	TimeoutSeconds int
}

// ExtensionsConfig locates step-type extensions.
type ExtensionsConfig struct {
	Dir      string
	Disabled []string
}

// SessionConfig controls the optional idle timeout. Zero disables it.
type SessionConfig struct {
	IdleTimeoutSeconds   int
	SweepIntervalSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	allowedRoles, err := getEnvAsInt64List("BOT_ALLOWED_ROLES")
	if err != nil {
		return nil, fmt.Errorf("invalid BOT_ALLOWED_ROLES: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-bot"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Bot: BotConfig{
			Prefix:               getEnv("BOT_PREFIX", "!"),
			BotCommandsChannel:   int64(getEnvAsInt("BOT_COMMANDS_CHANNEL", 0)),
			ManagerRole:          getEnv("BOT_MANAGER_ROLE", "Ticket Bot Manager"),
			OwnerID:              int64(getEnvAsInt("BOT_OWNER_ID", 0)),
			TicketCategory:       int64(getEnvAsInt("BOT_TICKET_CATEGORY", 0)),
			AllowedRoles:         allowedRoles,
			Permissions:          getEnvAsList("BOT_PERMISSIONS", []string{"VIEW_CHANNEL", "SEND_MESSAGES", "ADD_REACTIONS", "READ_MESSAGE_HISTORY"}),
			TitleMaxLength:       getEnvAsInt("BOT_TITLE_MAX_LENGTH", 100),
			DeleteMessages:       getEnvAsBool("BOT_DELETE_MESSAGES", true),
			DeleteErrorMessages:  getEnvAsBool("BOT_DELETE_ERROR_MESSAGES", true),
			DeleteErrorDelaySecs: getEnvAsInt("BOT_DELETE_ERROR_DELAY_SECONDS", 10),
			MessagesFile:         getEnv("BOT_MESSAGES_FILE", "messages.jsonc"),
		},
		Store: StoreConfig{
			Backend:    strings.ToLower(getEnv("STORE_BACKEND", "file")),
			FilePath:   getEnv("STORE_FILE_PATH", "data.json"),
			SQLitePath: getEnv("STORE_SQLITE_PATH", "ticketbot.db"),
			RedisKey:   getEnv("STORE_REDIS_KEY", "ticketbot:document"),
			DocumentID: getEnv("STORE_DOCUMENT_ID", "default"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Gateway: GatewayConfig{
			BaseURL:        os.Getenv("GATEWAY_BASE_URL"),
			Token:          os.Getenv("GATEWAY_TOKEN"),
			TimeoutSeconds: getEnvAsInt("GATEWAY_TIMEOUT_SECONDS", 10),
		},
		Extensions: ExtensionsConfig{
			Dir:      getEnv("EXTENSIONS_DIR", "extensions"),
			Disabled: getEnvAsList("EXTENSIONS_DISABLED", nil),
		},
		Session: SessionConfig{
			IdleTimeoutSeconds:   getEnvAsInt("SESSION_IDLE_TIMEOUT_SECONDS", 0),
			SweepIntervalSeconds: getEnvAsInt("SESSION_SWEEP_INTERVAL_SECONDS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no safe fallback.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "file", "sqlite", "redis":
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Bot.Prefix == "" {
		return fmt.Errorf("BOT_PREFIX must not be empty")
	}
	if c.Bot.TitleMaxLength <= 0 {
		return fmt.Errorf("BOT_TITLE_MAX_LENGTH must be positive")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ErrorDeleteDelay returns how long error notices stay visible, zero for forever.
func (b BotConfig) ErrorDeleteDelay() time.Duration {
	if !b.DeleteErrorMessages || b.DeleteErrorDelaySecs <= 0 {
		return 0
	}
	return time.Duration(b.DeleteErrorDelaySecs) * time.Second
}

// Timeout returns the gateway call timeout.
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// IdleTimeout returns the session idle timeout, zero when disabled.
func (s SessionConfig) IdleTimeout() time.Duration {
	if s.IdleTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.IdleTimeoutSeconds) * time.Second
}

// SweepInterval returns how often idle sessions are checked.
func (s SessionConfig) SweepInterval() time.Duration {
	if s.SweepIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.SweepIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsInt64List(key string) ([]int64, error) {
	var out []int64
	for _, part := range getEnvAsList(key, nil) {
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
