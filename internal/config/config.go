// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zuenet070/livebets/internal/monitor"
)

// Config represents the complete application configuration.
type Config struct {
	Feed     FeedConfig     `mapstructure:"feed"`
	Engine   monitor.Config `mapstructure:"engine"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// FeedConfig holds the api-football client configuration.
type FeedConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryDelayBase    time.Duration `mapstructure:"retry_delay_base"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	StatsCacheTTL     time.Duration `mapstructure:"stats_cache_ttl"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds the analytics database configuration.
type StorageConfig struct {
	DBPath    string `mapstructure:"db_path"`
	MaxAlerts int    `mapstructure:"max_alerts"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables. Environment
// variables use the LIVEBETS_ prefix with underscores, e.g.
// LIVEBETS_FEED_API_KEY and LIVEBETS_TELEGRAM_BOT_TOKEN.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	setDefaults(v)

	v.SetEnvPrefix("LIVEBETS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("feed.base_url", "https://v3.football.api-sports.io")
	v.SetDefault("feed.poll_interval", "60s")
	v.SetDefault("feed.timeout", "10s")
	v.SetDefault("feed.max_retries", 3)
	v.SetDefault("feed.retry_delay_base", "1s")
	v.SetDefault("feed.requests_per_minute", 100)
	v.SetDefault("feed.stats_cache_ttl", "45s")

	eng := monitor.DefaultConfig()
	v.SetDefault("engine.weights.sot", eng.Weights.SOT)
	v.SetDefault("engine.weights.shots", eng.Weights.Shots)
	v.SetDefault("engine.weights.corners", eng.Weights.Corners)
	v.SetDefault("engine.weights.possession", eng.Weights.Possession)
	v.SetDefault("engine.weights.red_bonus", eng.Weights.RedBonus)

	v.SetDefault("engine.confidence.margin.weight", eng.Confidence.Margin.Weight)
	v.SetDefault("engine.confidence.margin.cap", eng.Confidence.Margin.Cap)
	v.SetDefault("engine.confidence.gap.weight", eng.Confidence.Gap.Weight)
	v.SetDefault("engine.confidence.gap.cap", eng.Confidence.Gap.Cap)
	v.SetDefault("engine.confidence.sot_diff.weight", eng.Confidence.SOTDiff.Weight)
	v.SetDefault("engine.confidence.sot_diff.cap", eng.Confidence.SOTDiff.Cap)
	v.SetDefault("engine.confidence.red_cards.weight", eng.Confidence.RedCards.Weight)
	v.SetDefault("engine.confidence.red_cards.cap", eng.Confidence.RedCards.Cap)
	v.SetDefault("engine.confidence.pace.weight", eng.Confidence.Pace.Weight)
	v.SetDefault("engine.confidence.pace.cap", eng.Confidence.Pace.Cap)

	v.SetDefault("engine.pace.window_minutes", eng.Pace.WindowMinutes)
	v.SetDefault("engine.pace.min_shots", eng.Pace.MinShots)
	v.SetDefault("engine.pace.min_sot", eng.Pace.MinSOT)
	v.SetDefault("engine.pace.require_rising_trend", eng.Pace.RequireRisingTrend)
	v.SetDefault("engine.pace.trend_window_minutes", eng.Pace.TrendWindowMinutes)
	v.SetDefault("engine.pace.late_minute", eng.Pace.LateMinute)
	v.SetDefault("engine.pace.late_min_shots", eng.Pace.LateMinShots)
	v.SetDefault("engine.pace.late_min_sot", eng.Pace.LateMinSOT)
	v.SetDefault("engine.pace.scoreless_minute", eng.Pace.ScorelessMinute)
	v.SetDefault("engine.pace.scoreless_min_shots", eng.Pace.ScorelessMinShots)

	v.SetDefault("engine.cooldown.normal", eng.Cooldown.Normal)
	v.SetDefault("engine.cooldown.post_goal", eng.Cooldown.PostGoal)

	for tier, th := range map[string]monitor.TierThresholds{
		"normal":  eng.Tiers.Normal,
		"premium": eng.Tiers.Premium,
		"extreme": eng.Tiers.Extreme,
	} {
		v.SetDefault("engine.tiers."+tier+".score_floor", th.ScoreFloor)
		v.SetDefault("engine.tiers."+tier+".gap_floor", th.GapFloor)
		v.SetDefault("engine.tiers."+tier+".opp_sot_max", th.OppSOTMax)
		v.SetDefault("engine.tiers."+tier+".opp_shots_max", th.OppShotsMax)
		v.SetDefault("engine.tiers."+tier+".min_sot_diff", th.MinSOTDiff)
		v.SetDefault("engine.tiers."+tier+".min_confidence", th.MinConfidence)
		v.SetDefault("engine.tiers."+tier+".min_pace_shots", th.MinPaceShots)
		v.SetDefault("engine.tiers."+tier+".min_pace_sot", th.MinPaceSOT)
		v.SetDefault("engine.tiers."+tier+".first_half_max_minute", th.FirstHalfMaxMinute)
	}
	v.SetDefault("engine.tiers.max_deficit", eng.Tiers.MaxDeficit)

	v.SetDefault("engine.history_retain_minutes", eng.HistoryRetainMinutes)
	v.SetDefault("engine.max_signals_per_tick", eng.MaxSignalsPerTick)
	v.SetDefault("engine.max_stat_lookups_per_tick", eng.MaxStatLookupsPerTick)
	v.SetDefault("engine.allow_tier_upgrades", eng.AllowTierUpgrades)
	v.SetDefault("engine.vanish_after", eng.VanishAfter)
	v.SetDefault("engine.recheck_interval", eng.RecheckInterval)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	v.SetDefault("storage.db_path", "./data/livebets.db")
	v.SetDefault("storage.max_alerts", 5000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	if c.Feed.BaseURL == "" {
		return fmt.Errorf("feed.base_url is required")
	}
	if c.Feed.APIKey == "" {
		return fmt.Errorf("feed.api_key is required (or LIVEBETS_FEED_API_KEY)")
	}
	if c.Feed.PollInterval < 10*time.Second {
		return fmt.Errorf("feed.poll_interval must be at least 10 seconds")
	}
	if c.Feed.RequestsPerMinute < 1 {
		return fmt.Errorf("feed.requests_per_minute must be at least 1")
	}

	eng := &c.Engine
	if eng.Pace.WindowMinutes < 1 {
		return fmt.Errorf("engine.pace.window_minutes must be at least 1")
	}
	if eng.Pace.TrendWindowMinutes < 1 || eng.Pace.TrendWindowMinutes > eng.Pace.WindowMinutes {
		return fmt.Errorf("engine.pace.trend_window_minutes must be between 1 and the pace window")
	}
	if eng.Cooldown.Normal <= 0 || eng.Cooldown.PostGoal <= 0 {
		return fmt.Errorf("engine.cooldown durations must be positive")
	}
	if eng.Cooldown.PostGoal < eng.Cooldown.Normal {
		return fmt.Errorf("engine.cooldown.post_goal must not be shorter than engine.cooldown.normal")
	}
	if eng.HistoryRetainMinutes < eng.Pace.WindowMinutes {
		return fmt.Errorf("engine.history_retain_minutes must cover the pace window")
	}
	if eng.MaxSignalsPerTick < 1 {
		return fmt.Errorf("engine.max_signals_per_tick must be at least 1")
	}
	if eng.MaxStatLookupsPerTick < 1 {
		return fmt.Errorf("engine.max_stat_lookups_per_tick must be at least 1")
	}
	if eng.Tiers.MaxDeficit < 0 {
		return fmt.Errorf("engine.tiers.max_deficit must not be negative")
	}
	for name, th := range map[string]monitor.TierThresholds{
		"normal":  eng.Tiers.Normal,
		"premium": eng.Tiers.Premium,
		"extreme": eng.Tiers.Extreme,
	} {
		if th.ScoreFloor < 0 || th.GapFloor < 0 {
			return fmt.Errorf("engine.tiers.%s floors must not be negative", name)
		}
		if th.OppSOTMax < 0 || th.OppShotsMax < 0 {
			return fmt.Errorf("engine.tiers.%s opponent ceilings must not be negative", name)
		}
		if th.MinConfidence < 0 || th.MinConfidence > 100 {
			return fmt.Errorf("engine.tiers.%s.min_confidence must be between 0 and 100", name)
		}
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Storage.MaxAlerts < 1 {
		return fmt.Errorf("storage.max_alerts must be at least 1")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
