package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Exchange.Address = "0x1111111111111111111111111111111111111111"
	return cfg
}

func TestValidate_RequiresAddress(t *testing.T) {
	cfg := Defaults()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing address")
	}
	if !strings.Contains(err.Error(), "address is required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_AcceptsDefaultsWithAddress(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsBadDecimals(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "min size not decimal",
			mutate: func(c *Config) { c.Order.MinSize = "abc" },
			want:   "min_size",
		},
		{
			name: "min greater than max",
			mutate: func(c *Config) {
				c.Order.MinSize = "50"
				c.Order.MaxSize = "10"
			},
			want: "min_size must not exceed max_size",
		},
		{
			name:   "slippage out of range",
			mutate: func(c *Config) { c.Order.DefaultSlippage = "1.5" },
			want:   "default_slippage",
		},
		{
			name: "arb margin negative",
			mutate: func(c *Config) {
				c.Arbitrage.Enabled = true
				c.Arbitrage.MinProfitMargin = "-0.01"
			},
			want: "min_profit_margin",
		},
		{
			name: "copy bad follow address",
			mutate: func(c *Config) {
				c.Copy.Enabled = true
				c.Copy.Addresses = []string{"nothex"}
			},
			want: "not a valid hex address",
		},
		{
			name: "s3 without postgres",
			mutate: func(c *Config) {
				c.S3.Enabled = true
			},
			want: "requires postgres",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
mode = "arb"
log_level = "debug"

[exchange]
address = "0x2222222222222222222222222222222222222222"

[arbitrage]
enabled = true
min_profit_margin = "0.05"
poll_interval = "15s"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PREDICTBOT_ARB_MIN_PROFIT_MARGIN", "0.03")
	t.Setenv("PREDICTBOT_COPY_ADDRESSES", "0x3333333333333333333333333333333333333333, 0x4444444444444444444444444444444444444444")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Mode != "arb" {
		t.Errorf("mode = %q, want arb", cfg.Mode)
	}
	if !cfg.Arbitrage.Enabled {
		t.Error("arbitrage should be enabled")
	}
	// Env wins over the file.
	if got := cfg.Arbitrage.MinProfitMargin; got != "0.03" {
		t.Errorf("min_profit_margin = %q, want 0.03", got)
	}
	if cfg.Arbitrage.PollInterval.Duration != 15*time.Second {
		t.Errorf("poll_interval = %v, want 15s", cfg.Arbitrage.PollInterval.Duration)
	}
	if len(cfg.Copy.Addresses) != 2 {
		t.Errorf("copy addresses = %v, want 2 entries", cfg.Copy.Addresses)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Order.MinSize != "1" {
		t.Errorf("min_size = %q, want default", cfg.Order.MinSize)
	}
}
