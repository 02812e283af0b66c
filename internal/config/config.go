package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "Asia/Kolkata"
	configPathEnv    = "MARKETPULSE_CONFIG"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
	dailyQuotaEnv    = "NEWS_DAILY_LIMIT"
	statePathEnv     = "STATE_PATH"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Telegram    TelegramConfig    `yaml:"telegram"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Publication PublicationConfig `yaml:"publication"`
	State       StateConfig       `yaml:"state"`
	Health      HealthConfig      `yaml:"health"`
	Feeds       []FeedConfig      `yaml:"feeds"`
	Markets     MarketsConfig     `yaml:"markets"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Duration decodes YAML values like "5m" or "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// SchedulerConfig defines cadences and the operating timezone.
type SchedulerConfig struct {
	Timezone     string            `yaml:"timezone"`
	PollPeriod   Duration          `yaml:"pollPeriod"`
	NewsInterval Duration          `yaml:"newsInterval"`
	FetchTimeout Duration          `yaml:"fetchTimeout"`
	Calendar     map[string]string `yaml:"calendar"` // job name -> "HH:MM"

	location *time.Location `yaml:"-"`
}

// Location resolves the configured timezone; valid after Load.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// CalendarTime parses a "HH:MM" value from the calendar map.
func CalendarTime(v string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(v), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("calendar time %q is not HH:MM", v)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("calendar time %q has invalid hour", v)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("calendar time %q has invalid minute", v)
	}
	return hour, minute, nil
}

// PublicationConfig bounds daily output.
type PublicationConfig struct {
	DailyQuota     int  `yaml:"dailyQuota"`
	StrictLocality bool `yaml:"strictLocality"`
	IdentityCap    int  `yaml:"identityCap"`
}

// StateConfig describes where the day record is persisted.
type StateConfig struct {
	Path string `yaml:"path"`
}

// HealthConfig describes the liveness endpoint.
type HealthConfig struct {
	Addr string `yaml:"addr"`
}

// FeedConfig is one ordered news source endpoint.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// MarketsConfig holds the non-news source endpoints.
type MarketsConfig struct {
	QuoteURL    string            `yaml:"quoteUrl"`
	Indices     []IndexConfig     `yaml:"indices"`
	IPOURL      string            `yaml:"ipoUrl"`
	PremiumURL  string            `yaml:"premiumUrl"`
	FlowsURL    string            `yaml:"flowsUrl"`
	TableLimits map[string]int    `yaml:"tableLimits"`
	Headers     map[string]string `yaml:"headers"`
}

// IndexConfig maps a display name to a quote symbol.
type IndexConfig struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

// Load reads YAML configuration (if present), applies environment overrides,
// and validates everything the process cannot run without. Any validation
// failure is fatal to startup.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}

	if err := cfg.bindTimezone(); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv(statePathEnv); v != "" {
		c.State.Path = v
	}
	if v := os.Getenv(dailyQuotaEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("config: %s %q must be a positive integer", dailyQuotaEnv, v)
		}
		c.Publication.DailyQuota = n
	}
	return nil
}

func (c *Config) bindTimezone() error {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("config: unknown timezone %q: %w", tz, err)
	}
	c.Scheduler.Timezone = tz
	c.Scheduler.location = loc
	return nil
}

func (c *Config) validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("config: telegram bot token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("config: telegram chat id is required")
	}
	if c.Publication.DailyQuota <= 0 {
		return fmt.Errorf("config: daily quota must be positive")
	}
	if len(c.Feeds) == 0 {
		return fmt.Errorf("config: at least one news feed is required")
	}
	for name, v := range c.Scheduler.Calendar {
		if _, _, err := CalendarTime(v); err != nil {
			return fmt.Errorf("config: job %s: %w", name, err)
		}
	}
	return nil
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChatID != "" {
		base.Telegram.ChatID = override.Telegram.ChatID
	}

	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Scheduler.PollPeriod > 0 {
		base.Scheduler.PollPeriod = override.Scheduler.PollPeriod
	}
	if override.Scheduler.NewsInterval > 0 {
		base.Scheduler.NewsInterval = override.Scheduler.NewsInterval
	}
	if override.Scheduler.FetchTimeout > 0 {
		base.Scheduler.FetchTimeout = override.Scheduler.FetchTimeout
	}
	if len(override.Scheduler.Calendar) > 0 {
		base.Scheduler.Calendar = override.Scheduler.Calendar
	}

	if override.Publication.DailyQuota > 0 {
		base.Publication.DailyQuota = override.Publication.DailyQuota
	}
	if override.Publication.IdentityCap > 0 {
		base.Publication.IdentityCap = override.Publication.IdentityCap
	}
	base.Publication.StrictLocality = base.Publication.StrictLocality || override.Publication.StrictLocality

	if override.State.Path != "" {
		base.State = override.State
	}
	if override.Health.Addr != "" {
		base.Health = override.Health
	}
	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	if override.Markets.QuoteURL != "" {
		base.Markets.QuoteURL = override.Markets.QuoteURL
	}
	if len(override.Markets.Indices) > 0 {
		base.Markets.Indices = override.Markets.Indices
	}
	if override.Markets.IPOURL != "" {
		base.Markets.IPOURL = override.Markets.IPOURL
	}
	if override.Markets.PremiumURL != "" {
		base.Markets.PremiumURL = override.Markets.PremiumURL
	}
	if override.Markets.FlowsURL != "" {
		base.Markets.FlowsURL = override.Markets.FlowsURL
	}
	if len(override.Markets.TableLimits) > 0 {
		base.Markets.TableLimits = override.Markets.TableLimits
	}
	if len(override.Markets.Headers) > 0 {
		base.Markets.Headers = override.Markets.Headers
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Telegram: TelegramConfig{},
		Scheduler: SchedulerConfig{
			Timezone:     defaultTimezone,
			PollPeriod:   Duration(5 * time.Second),
			NewsInterval: Duration(5 * time.Minute),
			FetchTimeout: Duration(30 * time.Second),
			Calendar: map[string]string{
				"premarket":   "09:05",
				"ipo-morning": "09:10",
				"midday":      "12:30",
				"close":       "15:40",
				"ipo-evening": "18:00",
				"reset":       "00:05",
			},
		},
		Publication: PublicationConfig{
			DailyQuota:  12,
			IdentityCap: 500,
		},
		State:  StateConfig{Path: "state.db"},
		Health: HealthConfig{Addr: ":8000"},
		Feeds: []FeedConfig{
			{Name: "et-markets", URL: "https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms"},
			{Name: "mc-latest", URL: "https://www.moneycontrol.com/rss/latestnews.xml"},
			{Name: "mc-reports", URL: "https://www.moneycontrol.com/rss/marketreports.xml"},
		},
		Markets: MarketsConfig{
			QuoteURL: "https://query1.finance.yahoo.com/v7/finance/quote",
			Indices: []IndexConfig{
				{Name: "Sensex", Symbol: "^BSESN"},
				{Name: "Nifty 50", Symbol: "^NSEI"},
				{Name: "Bank Nifty", Symbol: "^NSEBANK"},
			},
			IPOURL:     "https://www.chittorgarh.com/report/ipo-list-by-time-table-and-lot-size/118/all/",
			PremiumURL: "https://www.investorgain.com/report/live-ipo-gmp/331/",
			FlowsURL:   "https://www.5paisa.com/share-market-today/fii-dii",
			TableLimits: map[string]int{
				"ipo":     5,
				"premium": 5,
			},
			Headers: map[string]string{
				"User-Agent": "Mozilla/5.0",
			},
		},
	}
}
