package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	EnvLibraryName  = "LIBRARY_NAME"
	EnvLibraryFile  = "LIBRARY_FILE"
	EnvJournalDSN   = "JOURNAL_DSN"
	EnvJournalTable = "JOURNAL_TABLE"
	EnvDBAdapter    = "DB_ADAPTER"
	EnvLogLevel     = "LOG_LEVEL"

	defaultLibraryName  = "Library"
	defaultLibraryFile  = "library.txt"
	defaultJournalTable = "events"
	defaultLogLevel     = slog.LevelInfo
)

// AdapterType names the database driver a PostgresJournal runs on.
type AdapterType string

const (
	PGXAdapter  AdapterType = "pgx"
	SQLAdapter  AdapterType = "sql"
	SQLXAdapter AdapterType = "sqlx"
)

var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrNoJournalDSN    = errors.New("no journal DSN configured")
)

var configValidator = validator.New()

// Config is the runtime configuration of the librarian CLI.
// An empty JournalDSN means events are journaled in memory only.
type Config struct {
	LibraryName  string      `validate:"required"`
	LibraryFile  string      `validate:"required"`
	JournalTable string      `validate:"required"`
	DBAdapter    AdapterType `validate:"oneof=pgx sql sqlx"`
	JournalDSN   string
	LogLevel     slog.Level
}

// LoadEnvFiles loads .env and then .env.local from the working directory, if present.
// Variables already set in the environment win.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// FromEnv reads the configuration from the environment, filling in defaults for unset variables.
func FromEnv() (Config, error) {
	logLevel, err := ParseLogLevel(os.Getenv(EnvLogLevel))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		LibraryName:  envOrDefault(EnvLibraryName, defaultLibraryName),
		LibraryFile:  envOrDefault(EnvLibraryFile, defaultLibraryFile),
		JournalTable: envOrDefault(EnvJournalTable, defaultJournalTable),
		DBAdapter:    AdapterType(strings.ToLower(envOrDefault(EnvDBAdapter, string(PGXAdapter)))),
		JournalDSN:   os.Getenv(EnvJournalDSN),
		LogLevel:     logLevel,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration, for example after flags have overridden values.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	return nil
}

// ParseLogLevel accepts the slog level names (debug, info, warn, error), case-insensitive.
// An empty string yields the default level info.
func ParseLogLevel(level string) (slog.Level, error) {
	if level == "" {
		return defaultLogLevel, nil
	}

	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return defaultLogLevel, errors.Join(ErrInvalidLogLevel, err)
	}

	return parsed, nil
}

func envOrDefault(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
