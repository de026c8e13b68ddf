package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Database DatabaseConfig
	TMDB     TMDBConfig
	Storage  StorageConfig
	Sync     SyncConfig
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

type TMDBConfig struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Language     string
	HTTPTimeout  time.Duration
	PageDelay    time.Duration
}

type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	UseSSL          bool
	PublicURL       string
	PosterBucket    string
	BackdropBucket  string
	ProfileBucket   string
}

type SyncConfig struct {
	SeedConcurrency    int
	MigrateConcurrency int
	CastLimit          int
}

func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:            getEnvOrDefault("DB_HOST", "localhost"),
			Port:            getEnvOrDefault("DB_PORT", "5432"),
			User:            getEnvOrDefault("DB_USER", "postgres"),
			Password:        os.Getenv("DB_PASSWORD"),
			DBName:          getEnvOrDefault("DB_NAME", "faniverz"),
			SSLMode:         getEnvOrDefault("DB_SSLMODE", "disable"),
			MaxOpenConns:    getIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationOrDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			QueryTimeout:    getDurationOrDefault("DB_QUERY_TIMEOUT", 10*time.Second),
		},
		TMDB: TMDBConfig{
			APIKey:       os.Getenv("TMDB_API_KEY"),
			BaseURL:      getEnvOrDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			ImageBaseURL: getEnvOrDefault("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p"),
			Language:     getEnvOrDefault("TMDB_LANGUAGE", "te"),
			HTTPTimeout:  getDurationOrDefault("TMDB_HTTP_TIMEOUT", 30*time.Second),
			PageDelay:    getDurationOrDefault("TMDB_PAGE_DELAY", 200*time.Millisecond),
		},
		Storage: StorageConfig{
			Endpoint:        os.Getenv("STORAGE_ENDPOINT"),
			AccessKeyID:     os.Getenv("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
			Region:          getEnvOrDefault("STORAGE_REGION", "us-east-1"),
			UseSSL:          getBoolOrDefault("STORAGE_USE_SSL", true),
			PublicURL:       os.Getenv("STORAGE_PUBLIC_URL"),
			PosterBucket:    getEnvOrDefault("STORAGE_POSTER_BUCKET", "movie-posters"),
			BackdropBucket:  getEnvOrDefault("STORAGE_BACKDROP_BUCKET", "movie-backdrops"),
			ProfileBucket:   getEnvOrDefault("STORAGE_PROFILE_BUCKET", "actor-profiles"),
		},
		Sync: SyncConfig{
			SeedConcurrency:    getIntOrDefault("SYNC_SEED_CONCURRENCY", 3),
			MigrateConcurrency: getIntOrDefault("SYNC_MIGRATE_CONCURRENCY", 5),
			CastLimit:          getIntOrDefault("SYNC_CAST_LIMIT", 15),
		},
	}
}

// StorageConfigured reports whether object-store credentials are present.
// When they are not, the image relay passes source URLs through unchanged.
func (c *Config) StorageConfigured() bool {
	return c.Storage.Endpoint != "" && c.Storage.AccessKeyID != "" && c.Storage.SecretAccessKey != ""
}

// Validate checks every required variable up front and reports all missing
// keys in a single error. Storage credentials are only required when
// requireStorage is set; the seed pipeline runs without them in
// pass-through mode, the image migration refuses to.
func (c *Config) Validate(requireStorage bool) error {
	var missing []string

	if c.TMDB.APIKey == "" {
		missing = append(missing, "TMDB_API_KEY")
	}
	if c.Database.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.Database.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}

	if requireStorage {
		if c.Storage.Endpoint == "" {
			missing = append(missing, "STORAGE_ENDPOINT")
		}
		if c.Storage.AccessKeyID == "" {
			missing = append(missing, "STORAGE_ACCESS_KEY_ID")
		}
		if c.Storage.SecretAccessKey == "" {
			missing = append(missing, "STORAGE_SECRET_ACCESS_KEY")
		}
		if c.Storage.PublicURL == "" {
			missing = append(missing, "STORAGE_PUBLIC_URL")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
