package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("expected default base url, got %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 45 {
		t.Errorf("expected 45s timeout, got %d", cfg.API.TimeoutSeconds)
	}
	if cfg.API.StepMinutes != 15 {
		t.Errorf("expected 15 minute step, got %d", cfg.API.StepMinutes)
	}
	if cfg.API.HorizonHours != 48 {
		t.Errorf("expected 48h horizon, got %d", cfg.API.HorizonHours)
	}
	if cfg.API.LowTariffCode != 1 {
		t.Errorf("expected low tariff code 1, got %v", cfg.API.LowTariffCode)
	}
	if cfg.Schedule.PollIntervalMinutes != 15 {
		t.Errorf("expected 15 minute poll, got %d", cfg.Schedule.PollIntervalMinutes)
	}
	if cfg.Schedule.PreciseMarginSeconds != 10 {
		t.Errorf("expected 10s margin, got %d", cfg.Schedule.PreciseMarginSeconds)
	}
	if cfg.Database.SQLitePath != "data/tariffsentinel.db" {
		t.Errorf("unexpected sqlite path %q", cfg.Database.SQLitePath)
	}
	if cfg.MQTT.ClientID != "tariffsentinel" || cfg.MQTT.TopicPrefix != "tariffsentinel" {
		t.Errorf("unexpected mqtt identity %q / %q", cfg.MQTT.ClientID, cfg.MQTT.TopicPrefix)
	}
	if cfg.MQTT.DiscoveryPrefix != "homeassistant" {
		t.Errorf("unexpected discovery prefix %q", cfg.MQTT.DiscoveryPrefix)
	}
	if cfg.Web.ListenAddr != ":8480" {
		t.Errorf("unexpected listen addr %q", cfg.Web.ListenAddr)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("unexpected log level %q", cfg.Log.Level)
	}

	if cfg.Timeout() != 45*time.Second {
		t.Errorf("unexpected timeout %v", cfg.Timeout())
	}
	if cfg.PollInterval() != 15*time.Minute {
		t.Errorf("unexpected poll interval %v", cfg.PollInterval())
	}
	if cfg.PreciseMargin() != 10*time.Second {
		t.Errorf("unexpected margin %v", cfg.PreciseMargin())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
api:
  api_key: file-key
  account_id: AT0010000123
  low_tariff_code: -1
schedule:
  poll_interval_minutes: 30
mqtt:
  broker: tcp://broker:1883
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.APIKey != "file-key" {
		t.Errorf("expected file-key, got %q", cfg.API.APIKey)
	}
	if cfg.API.AccountID != "AT0010000123" {
		t.Errorf("expected account id, got %q", cfg.API.AccountID)
	}
	if cfg.API.LowTariffCode != -1 {
		t.Errorf("negative low code must survive defaulting, got %v", cfg.API.LowTariffCode)
	}
	if cfg.Schedule.PollIntervalMinutes != 30 {
		t.Errorf("expected 30 minute poll, got %d", cfg.Schedule.PollIntervalMinutes)
	}
	if cfg.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("unexpected broker %q", cfg.MQTT.Broker)
	}
	// Untouched sections still get defaults
	if cfg.API.HorizonHours != 48 {
		t.Errorf("expected default horizon, got %d", cfg.API.HorizonHours)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api:\n  api_key: file-key\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("INNONET_API_KEY", "env-key")
	t.Setenv("INNONET_LOW_TARIFF_CODE", "-1")
	t.Setenv("INNONET_MOCK", "true")
	t.Setenv("POLL_INTERVAL_MINUTES", "45")
	t.Setenv("MQTT_BROKER", "tcp://env-broker:1883")
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.APIKey != "env-key" {
		t.Errorf("expected env override, got %q", cfg.API.APIKey)
	}
	if cfg.API.LowTariffCode != -1 {
		t.Errorf("expected -1 from env, got %v", cfg.API.LowTariffCode)
	}
	if !cfg.API.Mock {
		t.Error("expected mock mode from env")
	}
	if cfg.Schedule.PollIntervalMinutes != 45 {
		t.Errorf("expected 45 from env, got %d", cfg.Schedule.PollIntervalMinutes)
	}
	if cfg.MQTT.Broker != "tcp://env-broker:1883" {
		t.Errorf("unexpected broker %q", cfg.MQTT.Broker)
	}
	if cfg.Web.ListenAddr != ":9000" {
		t.Errorf("unexpected listen addr %q", cfg.Web.ListenAddr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("unexpected log level %q", cfg.Log.Level)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api: [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Config {
		t.Helper()
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		cfg.API.APIKey = "key"
		return cfg
	}

	if err := base(t).Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	cfg := base(t)
	cfg.API.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected missing api key rejected")
	}
	cfg.API.Mock = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("mock mode must not need an api key, got %v", err)
	}

	cfg = base(t)
	cfg.Schedule.PollIntervalMinutes = MinPollIntervalMinutes - 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected poll interval below floor rejected")
	}
	cfg.Schedule.PollIntervalMinutes = MinPollIntervalMinutes
	if err := cfg.Validate(); err != nil {
		t.Errorf("floor interval must pass, got %v", err)
	}

	cfg = base(t)
	cfg.API.TimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected zero timeout rejected")
	}
}
