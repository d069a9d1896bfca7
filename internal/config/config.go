// Package config provides configuration types and loading for clawdeck.
package config

import (
	"path/filepath"
	"time"
)

// Config is the root configuration struct.
// Top-level groups: Paths, Gateway, Report, Worker, Notify, Mirror, Cockpit.
type Config struct {
	Paths   PathsConfig   `json:"paths"`
	Gateway GatewayConfig `json:"gateway"`
	Report  ReportConfig  `json:"report"`
	Worker  WorkerConfig  `json:"worker"`
	Notify  NotifyConfig  `json:"notify"`
	Mirror  MirrorConfig  `json:"mirror"`
	Cockpit CockpitConfig `json:"cockpit"`
}

// ---------------------------------------------------------------------------
// Paths – filesystem locations
// ---------------------------------------------------------------------------

// PathsConfig groups all filesystem path settings.
type PathsConfig struct {
	DataFile string `json:"dataFile" envconfig:"DATA_FILE"`
	LocalDB  string `json:"localDb" envconfig:"LOCAL_DB"`
}

// ---------------------------------------------------------------------------
// Gateway – HTTP server networking
// ---------------------------------------------------------------------------

// GatewayConfig contains cockpit API server settings.
type GatewayConfig struct {
	Host string `json:"host" envconfig:"HOST"`
	Port int    `json:"port" envconfig:"PORT"`
}

// ---------------------------------------------------------------------------
// Report – periodic socio report
// ---------------------------------------------------------------------------

// ReportConfig contains settings for the periodic socio report.
type ReportConfig struct {
	Enabled         bool `json:"enabled" envconfig:"ENABLED"`
	IntervalMinutes int  `json:"intervalMinutes" envconfig:"INTERVAL_MINUTES"`
}

// ---------------------------------------------------------------------------
// Worker – remote automation worker
// ---------------------------------------------------------------------------

// WorkerConfig configures the remote desktop-automation worker connection.
type WorkerConfig struct {
	URL     string        `json:"url" envconfig:"URL"`
	Timeout time.Duration `json:"timeout" envconfig:"TIMEOUT"`
}

// ---------------------------------------------------------------------------
// Notify – outbound notification sinks
// ---------------------------------------------------------------------------

// NotifyConfig contains notification sink settings.
type NotifyConfig struct {
	Slack SlackConfig `json:"slack"`
}

// SlackConfig configures the Slack report notifier.
type SlackConfig struct {
	Enabled  bool   `json:"enabled" envconfig:"SLACK_ENABLED"`
	BotToken string `json:"botToken" envconfig:"SLACK_BOT_TOKEN"`
	Channel  string `json:"channel" envconfig:"SLACK_CHANNEL"`
}

// ---------------------------------------------------------------------------
// Mirror – Kafka feed mirroring
// ---------------------------------------------------------------------------

// MirrorConfig configures the optional Kafka feed mirror.
type MirrorConfig struct {
	Enabled bool   `json:"enabled" envconfig:"ENABLED"`
	Brokers string `json:"brokers" envconfig:"KAFKA_BROKERS"`
	Topic   string `json:"topic" envconfig:"KAFKA_TOPIC"`
}

// ---------------------------------------------------------------------------
// Cockpit – dashboard client behaviour
// ---------------------------------------------------------------------------

// CockpitConfig contains dashboard client settings.
type CockpitConfig struct {
	APIBase      string        `json:"apiBase" envconfig:"API_BASE"`
	PollInterval time.Duration `json:"pollInterval" envconfig:"POLL_INTERVAL"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			DataFile: filepath.Join("~", ".clawdeck", "cockpit.json"),
			LocalDB:  filepath.Join("~", ".clawdeck", "local.db"),
		},
		Gateway: GatewayConfig{
			Host: "127.0.0.1", // Secure default
			Port: 18890,
		},
		Report: ReportConfig{
			Enabled:         true,
			IntervalMinutes: 40,
		},
		Worker: WorkerConfig{
			URL:     "http://localhost:3001",
			Timeout: 30 * time.Second,
		},
		Mirror: MirrorConfig{
			Enabled: false,
			Topic:   "clawdeck.feed",
		},
		Cockpit: CockpitConfig{
			APIBase:      "http://127.0.0.1:18890",
			PollInterval: 5 * time.Second,
		},
	}
}
