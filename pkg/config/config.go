// Package config reads service settings from the environment, after loading
// an optional .env file.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPort          = "8000"
	DefaultDataPath      = "shifts.db"
	DefaultOwnerUsername = "owner"
	DefaultOwnerPassword = "owner123"
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultLocation      = "Studio"
	DefaultLogLevel      = "info"
)

// Store drivers selectable with STORE_DRIVER
const (
	DriverGorm   = "gorm"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Config is the process-wide configuration, built once in main
type Config struct {
	Port            string
	DatabaseURL     string
	DataPath        string
	StoreDriver     string
	JWTSecret       string
	APIMasterSecret string
	OwnerUsername   string
	OwnerPassword   string
	GeminiAPIKey    string
	GeminiModel     string
	DefaultLocation string
	SeedDemo        bool
	LogLevel        string
	Development     bool
}

// LoadDotEnv loads the first .env found in the working directory or its
// parents, ignoring a missing file.
func LoadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads the environment and fills in defaults
func Load() Config {
	cfg := Config{
		Port:            getenv("PORT", DefaultPort),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DataPath:        getenv("DATA_PATH", DefaultDataPath),
		StoreDriver:     strings.ToLower(getenv("STORE_DRIVER", DriverGorm)),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		APIMasterSecret: os.Getenv("API_MASTER_SECRET"),
		OwnerUsername:   getenv("OWNER_USERNAME", DefaultOwnerUsername),
		OwnerPassword:   getenv("OWNER_PASSWORD", DefaultOwnerPassword),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getenv("GEMINI_MODEL", DefaultGeminiModel),
		DefaultLocation: getenv("DEFAULT_LOCATION", DefaultLocation),
		SeedDemo:        getbool("SEED_DEMO"),
		LogLevel:        getenv("LOG_LEVEL", DefaultLogLevel),
		Development:     os.Getenv("GIN_MODE") == "debug",
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getbool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
