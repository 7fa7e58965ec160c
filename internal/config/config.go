package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the production INNOnet TSM endpoint. The documentation
// scopes all requests under the repository's apikey segment.
const DefaultBaseURL = "https://app-innonnetwebtsm-dev.azurewebsites.net/api/extensions/timeseriesauthorization/repositories/INNOnet-prod/apikey"

// MinPollIntervalMinutes is the polling floor the API documentation requires.
const MinPollIntervalMinutes = 5

// Config holds all application configuration.
type Config struct {
	API struct {
		BaseURL        string  `yaml:"base_url"`
		APIKey         string  `yaml:"api_key"`
		AccountID      string  `yaml:"account_id"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		StepMinutes    int     `yaml:"step_minutes"`
		HorizonHours   int     `yaml:"horizon_hours"`
		LowTariffCode  float64 `yaml:"low_tariff_code"`
		Mock           bool    `yaml:"mock"`
	} `yaml:"api"`
	Schedule struct {
		PollIntervalMinutes  int `yaml:"poll_interval_minutes"`
		PreciseMarginSeconds int `yaml:"precise_margin_seconds"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	MQTT struct {
		Broker          string `yaml:"broker"`
		ClientID        string `yaml:"client_id"`
		Username        string `yaml:"username"`
		Password        string `yaml:"password"`
		TopicPrefix     string `yaml:"topic_prefix"`
		DiscoveryPrefix string `yaml:"discovery_prefix"`
	} `yaml:"mqtt"`
	Web struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"web"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("INNONET_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("INNONET_API_KEY"); v != "" {
		cfg.API.APIKey = v
	}
	if v := os.Getenv("INNONET_ACCOUNT_ID"); v != "" {
		cfg.API.AccountID = v
	}
	if v := os.Getenv("INNONET_LOW_TARIFF_CODE"); v != "" {
		if code, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.API.LowTariffCode = code
		}
	}
	if v := os.Getenv("INNONET_MOCK"); v == "true" {
		cfg.API.Mock = true
	}
	if v := os.Getenv("POLL_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Schedule.PollIntervalMinutes = n
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Web.ListenAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = 45
	}
	if cfg.API.StepMinutes == 0 {
		cfg.API.StepMinutes = 15
	}
	if cfg.API.HorizonHours == 0 {
		cfg.API.HorizonHours = 48
	}
	if cfg.API.LowTariffCode == 0 {
		cfg.API.LowTariffCode = 1
	}
	if cfg.Schedule.PollIntervalMinutes == 0 {
		cfg.Schedule.PollIntervalMinutes = 15
	}
	if cfg.Schedule.PreciseMarginSeconds == 0 {
		cfg.Schedule.PreciseMarginSeconds = 10
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/tariffsentinel.db"
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "tariffsentinel"
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "tariffsentinel"
	}
	if cfg.MQTT.DiscoveryPrefix == "" {
		cfg.MQTT.DiscoveryPrefix = "homeassistant"
	}
	if cfg.Web.ListenAddr == "" {
		cfg.Web.ListenAddr = ":8480"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and within bounds.
func (c *Config) Validate() error {
	if c.API.APIKey == "" && !c.API.Mock {
		return fmt.Errorf("api.api_key is required")
	}
	if c.Schedule.PollIntervalMinutes < MinPollIntervalMinutes {
		return fmt.Errorf("schedule.poll_interval_minutes must be at least %d", MinPollIntervalMinutes)
	}
	if c.Schedule.PreciseMarginSeconds <= 0 {
		return fmt.Errorf("schedule.precise_margin_seconds must be positive")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive")
	}
	if c.API.StepMinutes <= 0 {
		return fmt.Errorf("api.step_minutes must be positive")
	}
	if c.API.HorizonHours <= 0 {
		return fmt.Errorf("api.horizon_hours must be positive")
	}
	return nil
}

// Timeout returns the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// PollInterval returns the fixed refresh interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Schedule.PollIntervalMinutes) * time.Minute
}

// PreciseMargin returns the safety margin added to window-transition wakeups.
func (c *Config) PreciseMargin() time.Duration {
	return time.Duration(c.Schedule.PreciseMarginSeconds) * time.Second
}
