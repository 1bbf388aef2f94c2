package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs at startup. Values come from an
// optional YAML file (CONFIG_FILE), with environment variables taking
// precedence over file values. A .env file is loaded first if present.
type Config struct {
	Addr      string
	DBFile    string
	RedisAddr string
	JWTSecret string

	// Sync cadence for the relay: MessageInterval drives the active
	// conversation refresh, ListInterval the conversation-list sweep.
	MessageInterval time.Duration
	ListInterval    time.Duration

	// History pagination: page size per request and the hard page cap.
	HistoryPageSize int
	HistoryMaxPages int

	// Attendance ingestion poll cadence and the bot token used to read
	// the watched channels.
	IngestInterval time.Duration
	BotToken       string
}

// fileConfig is the YAML shape; durations are strings ("3s", "1m") and get
// parsed explicitly.
type fileConfig struct {
	Addr            string `yaml:"addr"`
	DBFile          string `yaml:"db_file"`
	RedisAddr       string `yaml:"redis_addr"`
	JWTSecret       string `yaml:"jwt_secret"`
	MessageInterval string `yaml:"message_interval"`
	ListInterval    string `yaml:"list_interval"`
	HistoryPageSize int    `yaml:"history_page_size"`
	HistoryMaxPages int    `yaml:"history_max_pages"`
	IngestInterval  string `yaml:"ingest_interval"`
	BotToken        string `yaml:"bot_token"`
}

func defaults() Config {
	return Config{
		Addr:            ":8080",
		DBFile:          "dev.db",
		RedisAddr:       "localhost:6379",
		JWTSecret:       "dev-secret-change-me",
		MessageInterval: 3 * time.Second,
		ListInterval:    20 * time.Second,
		HistoryPageSize: 100,
		HistoryMaxPages: 3,
		IngestInterval:  30 * time.Second,
	}
}

// Load builds the config from .env, an optional YAML file and the
// environment, in that order of increasing precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
		applyFile(&cfg, fc)
	}

	overrideString(&cfg.Addr, "ADDR")
	overrideString(&cfg.DBFile, "DB_FILE")
	overrideString(&cfg.RedisAddr, "REDIS_ADDR")
	overrideString(&cfg.JWTSecret, "JWT_SECRET")
	overrideString(&cfg.BotToken, "SLACK_BOT_TOKEN")
	overrideDuration(&cfg.MessageInterval, "MESSAGE_INTERVAL")
	overrideDuration(&cfg.ListInterval, "LIST_INTERVAL")
	overrideDuration(&cfg.IngestInterval, "INGEST_INTERVAL")
	overrideInt(&cfg.HistoryPageSize, "HISTORY_PAGE_SIZE")
	overrideInt(&cfg.HistoryMaxPages, "HISTORY_MAX_PAGES")

	if cfg.HistoryPageSize <= 0 || cfg.HistoryPageSize > 200 {
		cfg.HistoryPageSize = 100
	}
	if cfg.HistoryMaxPages <= 0 {
		cfg.HistoryMaxPages = 3
	}
	return cfg, nil
}

func applyFile(cfg *Config, fc fileConfig) {
	if fc.Addr != "" {
		cfg.Addr = fc.Addr
	}
	if fc.DBFile != "" {
		cfg.DBFile = fc.DBFile
	}
	if fc.RedisAddr != "" {
		cfg.RedisAddr = fc.RedisAddr
	}
	if fc.JWTSecret != "" {
		cfg.JWTSecret = fc.JWTSecret
	}
	if fc.BotToken != "" {
		cfg.BotToken = fc.BotToken
	}
	if fc.HistoryPageSize > 0 {
		cfg.HistoryPageSize = fc.HistoryPageSize
	}
	if fc.HistoryMaxPages > 0 {
		cfg.HistoryMaxPages = fc.HistoryMaxPages
	}
	setDuration(&cfg.MessageInterval, fc.MessageInterval)
	setDuration(&cfg.ListInterval, fc.ListInterval)
	setDuration(&cfg.IngestInterval, fc.IngestInterval)
}

func setDuration(dst *time.Duration, v string) {
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		*dst = d
	}
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideDuration(dst *time.Duration, key string) {
	setDuration(dst, os.Getenv(key))
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
