package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Bot      BotConfig
	Review   ReviewConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Lychee   LycheeConfig
	Log      LogConfig

	MetricsAddr string
}

type BotConfig struct {
	Token  string
	APIURL string
	Debug  bool
	// Command is an extra alias of /upload.
	Command string
}

// ReviewConfig holds the community wiring of the approval pipeline.
type ReviewConfig struct {
	CommunityID      string
	SubmitterGroupID string
	ReviewChatID     string
	ReviewerGroupID  string
	MaxFiles         int
	FooterLimit      int
	DenyReasonMin    int
	DenyReasonMax    int
	DenyDialogTTL    time.Duration
	SubmitCooldown   time.Duration
	ResolvedTTL      time.Duration
	MembershipTTL    time.Duration
}

type DatabaseConfig struct {
	URL      string
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LycheeConfig struct {
	Enabled         bool
	APIURL          string
	APIKey          string
	AlbumID         string
	ImportTimeout   time.Duration
	DownloadTimeout time.Duration
	UploadTimeout   time.Duration
}

// Complete reports whether every gallery setting is present.
func (l LycheeConfig) Complete() bool {
	return l.APIURL != "" && l.APIKey != "" && l.AlbumID != ""
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{}

	cfg.Bot = BotConfig{
		Token:   v.GetString("VK_BOT_TOKEN"),
		APIURL:  v.GetString("VK_API_URL"),
		Debug:   v.GetBool("BOT_DEBUG"),
		Command: v.GetString("SUBMIT_COMMAND"),
	}

	cfg.Review = ReviewConfig{
		CommunityID:      v.GetString("COMMUNITY_ID"),
		SubmitterGroupID: v.GetString("SUBMITTER_GROUP_ID"),
		ReviewChatID:     v.GetString("REVIEW_CHAT_ID"),
		ReviewerGroupID:  v.GetString("REVIEWER_GROUP_ID"),
		MaxFiles:         v.GetInt("MAX_FILES_PER_MESSAGE"),
		FooterLimit:      v.GetInt("FOOTER_LIMIT"),
		DenyReasonMin:    v.GetInt("DENY_REASON_MIN"),
		DenyReasonMax:    v.GetInt("DENY_REASON_MAX"),
		DenyDialogTTL:    parseDuration(v.GetString("DENY_DIALOG_TTL"), 5*time.Minute),
		SubmitCooldown:   parseDuration(v.GetString("SUBMIT_COOLDOWN"), 10*time.Second),
		ResolvedTTL:      parseDuration(v.GetString("RESOLVED_TTL"), 30*24*time.Hour),
		MembershipTTL:    parseDuration(v.GetString("MEMBERSHIP_TTL"), time.Minute),
	}
	if cfg.Review.MaxFiles <= 0 {
		cfg.Review.MaxFiles = 10
	}
	if cfg.Review.FooterLimit <= 0 {
		cfg.Review.FooterLimit = 2048
	}

	cfg.Database = DatabaseConfig{
		URL:      v.GetString("DATABASE_URL"),
		Driver:   v.GetString("DB_DRIVER"),
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetInt("DB_PORT"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		Name:     v.GetString("DB_NAME"),
		SSLMode:  v.GetString("SSL_MODE"),
	}
	if cfg.Database.URL == "" {
		if cfg.Database.Driver == "postgres" {
			cfg.Database.URL = cfg.Database.PostgresDSN()
		} else {
			cfg.Database.URL = "sqlite://" + v.GetString("DATABASE_FILE")
		}
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Lychee = LycheeConfig{
		Enabled:         v.GetBool("LYCHEE_ENABLED"),
		APIURL:          strings.TrimRight(v.GetString("LYCHEE_API_URL"), "/"),
		APIKey:          v.GetString("LYCHEE_API_KEY"),
		AlbumID:         v.GetString("LYCHEE_ALBUM_ID"),
		ImportTimeout:   parseDuration(v.GetString("LYCHEE_IMPORT_TIMEOUT"), 60*time.Second),
		DownloadTimeout: parseDuration(v.GetString("LYCHEE_DOWNLOAD_TIMEOUT"), 60*time.Second),
		UploadTimeout:   parseDuration(v.GetString("LYCHEE_UPLOAD_TIMEOUT"), 120*time.Second),
	}

	cfg.Log = LogConfig{Level: v.GetString("LOG_LEVEL")}
	cfg.MetricsAddr = v.GetString("METRICS_ADDR")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails when a required setting is missing.
func (c *Config) Validate() error {
	var missing []string
	required := map[string]string{
		"VK_BOT_TOKEN":       c.Bot.Token,
		"COMMUNITY_ID":       c.Review.CommunityID,
		"SUBMITTER_GROUP_ID": c.Review.SubmitterGroupID,
		"REVIEW_CHAT_ID":     c.Review.ReviewChatID,
		"REVIEWER_GROUP_ID":  c.Review.ReviewerGroupID,
	}
	for _, key := range []string{"VK_BOT_TOKEN", "COMMUNITY_ID", "SUBMITTER_GROUP_ID", "REVIEW_CHAT_ID", "REVIEWER_GROUP_ID"} {
		if strings.TrimSpace(required[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.Review.DenyReasonMin > c.Review.DenyReasonMax {
		return errors.New("DENY_REASON_MIN is greater than DENY_REASON_MAX")
	}
	return nil
}

// Warnings lists settings that are accepted but look wrong.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Lychee.Enabled && !c.Lychee.Complete() {
		warnings = append(warnings, "LYCHEE_ENABLED is set but LYCHEE_API_URL, LYCHEE_API_KEY or LYCHEE_ALBUM_ID is empty")
	}
	return warnings
}

// MirroringEnabled reports the operator switch. An incomplete config still fails per upload.
func (c *Config) MirroringEnabled() bool {
	return c.Lychee.Enabled
}

func (d DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s search_path=public",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("VK_API_URL", "https://myteam.mail.ru/bot/v1")
	v.SetDefault("BOT_DEBUG", false)
	v.SetDefault("SUBMIT_COMMAND", "/upload")

	v.SetDefault("MAX_FILES_PER_MESSAGE", 10)
	v.SetDefault("FOOTER_LIMIT", 2048)
	v.SetDefault("DENY_REASON_MIN", 5)
	v.SetDefault("DENY_REASON_MAX", 1000)
	v.SetDefault("DENY_DIALOG_TTL", "5m")
	v.SetDefault("SUBMIT_COOLDOWN", "10s")
	v.SetDefault("RESOLVED_TTL", "720h")
	v.SetDefault("MEMBERSHIP_TTL", "1m")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_FILE", "approvals.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "media_approve")
	v.SetDefault("SSL_MODE", "disable")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LYCHEE_ENABLED", false)
	v.SetDefault("LYCHEE_API_URL", "")
	v.SetDefault("LYCHEE_API_KEY", "")
	v.SetDefault("LYCHEE_ALBUM_ID", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("METRICS_ADDR", "")
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
