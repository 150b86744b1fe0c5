package config

import (
	"log"
	"os"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "SALESREPORT_CONFIG"
	logLevelEnv       = "SALESREPORT_LOG_LEVEL"
	databaseDSNEnv    = "SALESREPORT_DATABASE_DSN"
	smtpUserEnv       = "SMTP_USER"
	smtpPassEnv       = "SMTP_PASS"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	otlpEndpointEnv   = "SALESREPORT_OTLP_ENDPOINT"
)

// Config holds every setting a report run needs. It is built once at startup
// and handed to the components that need it.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Report        ReportConfig       `yaml:"report"`
	HTTP          HTTPConfig         `yaml:"http"`
	SMTP          SMTPConfig         `yaml:"smtp"`
	Email         EmailConfig        `yaml:"email"`
	Counties      []CountyConfig     `yaml:"counties"`
	Schedule      ScheduleConfig     `yaml:"schedule"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Telemetry     TelemetryConfig    `yaml:"telemetry"`
}

// LoggingConfig sets the slog level (debug, info, warn, error).
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ReportConfig controls where artifacts go and the default date window.
type ReportConfig struct {
	OutputDir    string `yaml:"outputDir"`
	LookbackDays int    `yaml:"lookbackDays"`
}

// HTTPConfig applies to every portal request.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
}

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"`
}

// EmailConfig lists who receives the report. With Enabled false the run
// only logs the message it would have sent.
type EmailConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Recipients []string `yaml:"recipients"`
}

// CountyConfig enables one registered adapter; BaseURL points it at a mirror.
type CountyConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"baseUrl"`
}

// ScheduleConfig sets the repeat interval of the schedule command.
type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval"`
	Timezone string        `yaml:"timezone"`
}

// Location resolves the schedule timezone, falling back to UTC.
func (s ScheduleConfig) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", s.Timezone)
		return time.UTC
	}
	return loc
}

// DatabaseConfig enables the Postgres report archive when DSN is set.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates chat channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// TelemetryConfig points trace and metric export at an OTLP collector.
type TelemetryConfig struct {
	Traces  OTLPEndpoint `yaml:"traces"`
	Metrics OTLPEndpoint `yaml:"metrics"`
}

// OTLPEndpoint prefers gRPC when both endpoints are set.
type OTLPEndpoint struct {
	GRPCEndpoint string            `yaml:"grpcEndpoint"`
	HTTPEndpoint string            `yaml:"httpEndpoint"`
	Headers      map[string]string `yaml:"headers"`
}

// Enabled reports whether an endpoint is configured.
func (e OTLPEndpoint) Enabled() bool {
	return e.GRPCEndpoint != "" || e.HTTPEndpoint != ""
}

// Load reads the YAML file at path (or $SALESREPORT_CONFIG when path is
// empty), merges it over the defaults and applies environment overrides.
// Unreadable files are logged and ignored.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else if err := mergo.Merge(&cfg, fileCfg, mergo.WithOverride); err != nil {
				log.Printf("config: cannot merge %s: %v (falling back to defaults)", path, err)
				cfg = defaultConfig()
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(smtpUserEnv); v != "" {
		c.SMTP.User = v
	}
	if v := os.Getenv(smtpPassEnv); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv(otlpEndpointEnv); v != "" {
		c.Telemetry.Traces.HTTPEndpoint = v
		c.Telemetry.Metrics.HTTPEndpoint = v
	}
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Report:  ReportConfig{OutputDir: "output", LookbackDays: 120},
		HTTP:    HTTPConfig{Timeout: 30 * time.Second},
		SMTP:    SMTPConfig{Port: 587},
		Counties: []CountyConfig{
			{Name: "butler"},
			{Name: "hamilton"},
		},
		Schedule: ScheduleConfig{Interval: 24 * time.Hour, Timezone: "UTC"},
	}
}
