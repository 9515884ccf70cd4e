package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "UTC"
	configPathEnv    = "CONTENT_PLANNER_CONFIG"
	databasePathEnv  = "DATABASE_PATH"
	catalogPathEnv   = "MESSAGES_FILE"
	telegramTokenEnv = "BOT_TOKEN"
	telegramChatsEnv = "CHANNEL_IDS"
	timezoneEnv      = "TIMEZONE"
	plannerWeeksEnv  = "PLANNER_WEEKS"
	randomSeedEnv    = "PLANNER_SEED"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Catalog       CatalogConfig      `yaml:"catalog"`
	Planner       PlannerConfig      `yaml:"planner"`
	Posting       PostingConfig      `yaml:"posting"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// DatabaseConfig describes the SQLite history ledger file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CatalogConfig locates the content-item catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// PlannerConfig carries the placement-engine invocation defaults.
type PlannerConfig struct {
	Weeks       int    `yaml:"weeks"`
	PostsPerDay int    `yaml:"postsPerDay"` // 0 means len(posting.times)
	ExportDir   string `yaml:"exportDir"`
	Seed        int64  `yaml:"seed"` // 0 means time-based
}

// PostingConfig defines when posts go out and in which timezone.
type PostingConfig struct {
	Times    []string       `yaml:"times"` // "15:04" clock times, one per slot
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the posting timezone string to a time.Location.
func (p PostingConfig) Location() *time.Location {
	if p.location != nil {
		return p.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken   string  `yaml:"botToken"`
	ChannelIDs []int64 `yaml:"channelIds"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads .env, then YAML configuration (if present), then applies
// environment overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if cfg.Planner.PostsPerDay <= 0 {
		cfg.Planner.PostsPerDay = len(cfg.Posting.Times)
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(catalogPathEnv); v != "" {
		c.Catalog.Path = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatsEnv); v != "" {
		if ids := parseChannelIDs(v); len(ids) > 0 {
			c.Notifications.Telegram.ChannelIDs = ids
		}
	}

	if v := os.Getenv(timezoneEnv); v != "" {
		c.Posting.Timezone = v
	}

	if v := os.Getenv(plannerWeeksEnv); v != "" {
		if weeks, err := strconv.Atoi(v); err == nil && weeks > 0 {
			c.Planner.Weeks = weeks
		}
	}

	if v := os.Getenv(randomSeedEnv); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Planner.Seed = seed
		}
	}
}

func parseChannelIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("config: skipping malformed channel id %q: %v", part, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (c *Config) bindTimezone() {
	tz := c.Posting.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Posting.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Catalog.Path != "" {
		base.Catalog = override.Catalog
	}

	if override.Planner.Weeks > 0 {
		base.Planner.Weeks = override.Planner.Weeks
	}
	if override.Planner.PostsPerDay > 0 {
		base.Planner.PostsPerDay = override.Planner.PostsPerDay
	}
	if override.Planner.ExportDir != "" {
		base.Planner.ExportDir = override.Planner.ExportDir
	}
	if override.Planner.Seed != 0 {
		base.Planner.Seed = override.Planner.Seed
	}

	if len(override.Posting.Times) > 0 {
		base.Posting.Times = override.Posting.Times
	}
	if override.Posting.Timezone != "" {
		base.Posting.Timezone = override.Posting.Timezone
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if len(override.Notifications.Telegram.ChannelIDs) > 0 {
		base.Notifications.Telegram.ChannelIDs = override.Notifications.Telegram.ChannelIDs
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database: DatabaseConfig{Path: "bot_data.db"},
		Catalog:  CatalogConfig{Path: "messages.json"},
		Planner: PlannerConfig{
			Weeks:     4,
			ExportDir: "schedules",
		},
		Posting: PostingConfig{
			Times:    []string{"11:00", "13:00", "16:00"},
			Timezone: defaultTimezone,
			location: tz,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
