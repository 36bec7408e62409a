package config

import (
	"os"
	"testing"
)

func baseConfig() Config {
	cfg := Config{}
	cfg.HTTP.Port = 8080
	cfg.Database.Addrs = []string{"localhost:6379"}
	cfg.Embedding.Model = "text-embedding-3-small"
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := baseConfig()

	if cfg.Search.CandidatePool != 100 {
		t.Errorf("CandidatePool = %d, want 100", cfg.Search.CandidatePool)
	}
	if cfg.Search.MaxResults != 10 {
		t.Errorf("MaxResults = %d, want 10", cfg.Search.MaxResults)
	}
	if cfg.Embedding.Retry.MaxAttempts != 4 {
		t.Errorf("Retry.MaxAttempts = %d, want 4", cfg.Embedding.Retry.MaxAttempts)
	}
	if cfg.Ingest.Workers != 4 {
		t.Errorf("Ingest.Workers = %d, want 4", cfg.Ingest.Workers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, true},
		{"no addrs", func(c *Config) { c.Database.Addrs = nil }, true},
		{"no model", func(c *Config) { c.Embedding.Model = "" }, true},
		{"pool below limit", func(c *Config) { c.Search.CandidatePool = 5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("NOTEDEX_TEST_KEY", "sk-secret")

	in := []byte("api_key: ${NOTEDEX_TEST_KEY}\nbase_url: ${NOTEDEX_UNSET:-https://api.openai.com/v1}\n")
	out := string(expandEnvVars(in))

	want := "api_key: sk-secret\nbase_url: https://api.openai.com/v1\n"
	if out != want {
		t.Errorf("expandEnvVars = %q, want %q", out, want)
	}
}

func TestGetEnv(t *testing.T) {
	old, had := os.LookupEnv("ENV")
	defer func() {
		if had {
			os.Setenv("ENV", old)
		} else {
			os.Unsetenv("ENV")
		}
	}()

	os.Unsetenv("ENV")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv = %q, want local", got)
	}

	os.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv = %q, want prod", got)
	}
}
