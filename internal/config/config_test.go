package config

import (
	"os"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsFloatOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal float64
		expected   float64
	}{
		{"parses float", "TEST_FLOAT_1", "0.31", 0.23, 0.31},
		{"uses default for empty", "TEST_FLOAT_2", "", 0.23, 0.23},
		{"uses default for non-numeric", "TEST_FLOAT_3", "abc", 0.23, 0.23},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsFloatOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, result)
			}
		})
	}
}

func TestLoadConnectionTuning(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/test")
	os.Setenv("REDIS_URL", "redis://localhost:6379")
	os.Setenv("JWT_SECRET", "test-secret")
	defer func() {
		for _, key := range []string{"DATABASE_URL", "REDIS_URL", "JWT_SECRET", "DB_MAX_CONNS", "REDIS_POOL_SIZE", "AUTH_RATE_LIMIT"} {
			os.Unsetenv(key)
		}
	}()

	cfg := Load()
	if cfg.DBMaxConns != 25 {
		t.Errorf("default DBMaxConns = %d, want 25", cfg.DBMaxConns)
	}
	if cfg.RedisPoolSize != 10 {
		t.Errorf("default RedisPoolSize = %d, want 10", cfg.RedisPoolSize)
	}
	if cfg.AuthRateLimit != 10 {
		t.Errorf("default AuthRateLimit = %d, want 10", cfg.AuthRateLimit)
	}

	os.Setenv("DB_MAX_CONNS", "50")
	os.Setenv("REDIS_POOL_SIZE", "20")
	os.Setenv("AUTH_RATE_LIMIT", "30")

	cfg = Load()
	if cfg.DBMaxConns != 50 || cfg.RedisPoolSize != 20 || cfg.AuthRateLimit != 30 {
		t.Errorf("overrides not applied: %d/%d/%d", cfg.DBMaxConns, cfg.RedisPoolSize, cfg.AuthRateLimit)
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	os.Setenv("TEST_REQUIRED", "value123")
	defer os.Unsetenv("TEST_REQUIRED")

	result := mustGetEnv("TEST_REQUIRED")
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}
