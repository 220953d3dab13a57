package config

import (
	"strings"
	"testing"
)

func validSettings() Settings {
	return Settings{
		Port:             "8080",
		DBHost:           "localhost",
		DBPort:           "5432",
		DBUser:           "postgres",
		DBName:           "shuttle",
		DBSSLMode:        "disable",
		DBTimezone:       "UTC",
		JWTSecret:        "supersecret",
		GenerationPolicy: GenerationReject,
		LogFile:          "./logs/app.log",
		LogLevel:         "info",
		RateLimitRPS:     10,
		RateLimitBurst:   20,
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(*Settings) {}, false},
		{"replace policy", func(s *Settings) { s.GenerationPolicy = GenerationReplace }, false},
		{"redis addr", func(s *Settings) { s.RedisAddr = "localhost:6379" }, false},
		{"unknown policy", func(s *Settings) { s.GenerationPolicy = "merge" }, true},
		{"short secret", func(s *Settings) { s.JWTSecret = "abc" }, true},
		{"bad redis addr", func(s *Settings) { s.RedisAddr = "redis" }, true},
		{"zero burst", func(s *Settings) { s.RateLimitBurst = 0 }, true},
		{"bad port", func(s *Settings) { s.Port = "http" }, true},
		{"bad log level", func(s *Settings) { s.LogLevel = "verbose" }, true},
		{"cors origins", func(s *Settings) { s.CORSOrigins = []string{"https://admin.shuttle.test"} }, false},
		{"bad cors origin", func(s *Settings) { s.CORSOrigins = []string{"not a url"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSettingsFromEnv(t *testing.T) {
	t.Setenv("GENERATION_POLICY", GenerationReplace)
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("DB_NAME", "shuttle_test")
	t.Setenv("CORS_ORIGINS", "https://a.test, ,https://b.test")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.GenerationPolicy != GenerationReplace || s.RateLimitRPS != 2.5 {
		t.Errorf("unexpected settings %+v", s)
	}
	if len(s.CORSOrigins) != 2 || s.CORSOrigins[1] != "https://b.test" {
		t.Errorf("CORSOrigins = %v", s.CORSOrigins)
	}
	if !strings.Contains(s.DSN(), "dbname=shuttle_test") {
		t.Errorf("DSN %q does not name the database", s.DSN())
	}

	t.Setenv("RATE_LIMIT_BURST", "lots")
	if _, err := LoadSettings(); err == nil {
		t.Error("expected error for non-numeric RATE_LIMIT_BURST")
	}
}
