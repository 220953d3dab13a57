package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Regeneration policies for schedule templates.
const (
	GenerationReject  = "reject"
	GenerationReplace = "replace"
)

// Settings holds every runtime knob, read from the environment.
type Settings struct {
	Port string `validate:"required,numeric"`

	DBHost     string `validate:"required"`
	DBPort     string `validate:"required,numeric"`
	DBUser     string `validate:"required"`
	DBPassword string
	DBName     string `validate:"required"`
	DBSSLMode  string `validate:"oneof=disable allow prefer require verify-ca verify-full"`
	DBTimezone string `validate:"required"`

	JWTSecret string `validate:"required,min=8"`

	// GenerationPolicy decides what happens when templates already exist.
	GenerationPolicy string `validate:"oneof=reject replace"`

	// RedisAddr enables the distributed generation lock when set.
	RedisAddr     string `validate:"omitempty,hostname_port"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	LogFile  string `validate:"required"`
	LogLevel string `validate:"oneof=trace debug info warn error"`

	RateLimitRPS   float64 `validate:"gt=0"`
	RateLimitBurst int     `validate:"gt=0"`

	// CORSOrigins restricts browser origins; empty allows any.
	CORSOrigins []string `validate:"dive,url"`
}

// LoadSettings reads .env (if present) and the process environment.
func LoadSettings() (*Settings, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found – relying on env vars")
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}

	s := &Settings{
		Port:             getEnv("PORT", "8080"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", "password"),
		DBName:           getEnv("DB_NAME", "shuttle"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		DBTimezone:       getEnv("DB_TIMEZONE", "UTC"),
		JWTSecret:        getEnv("JWT_SECRET", "supersecret"),
		GenerationPolicy: getEnv("GENERATION_POLICY", GenerationReject),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          redisDB,
		LogFile:          getEnv("LOG_FILE", "./logs/app.log"),
		LogLevel:         getEnv("LOG_LEVEL", "debug"),
		RateLimitRPS:     rps,
		RateLimitBurst:   burst,
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "")),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the struct tags.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// DSN builds the PostgreSQL data source name.
func (s *Settings) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		s.DBHost, s.DBUser, s.DBPassword, s.DBName, s.DBPort, s.DBSSLMode, s.DBTimezone,
	)
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
