package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"socialcast/internal/core"
)

// Config holds all application configuration
type Config struct {
	RSSFeeds        []core.FeedSource `mapstructure:"rss_feeds"`
	ArticleKeywords []string          `mapstructure:"article_keywords"`
	ArticleSettings ArticleSettings   `mapstructure:"article_settings"`
	PostSettings    PostSettings      `mapstructure:"post_settings"`
	CommentSettings CommentSettings   `mapstructure:"comment_settings"`
	ReplySettings   ReplySettings     `mapstructure:"reply_settings"`
	OpenRouter      OpenRouter        `mapstructure:"openrouter"`
	Notion          Notion            `mapstructure:"notion"`
	Mastodon        Mastodon          `mapstructure:"mastodon"`
	Logging         Logging           `mapstructure:"logging"`
}

// ArticleSettings holds feed fetching and filtering configuration
type ArticleSettings struct {
	MaxArticlesPerFeed int `mapstructure:"max_articles_per_feed"`
	MinAgeHours        int `mapstructure:"min_age_hours"`
	MaxAgeDays         int `mapstructure:"max_age_days"`
	MinKeywords        int `mapstructure:"min_keywords"`
}

// PostSettings holds post generation configuration
type PostSettings struct {
	MaxLength int `mapstructure:"max_length"`
}

// CommentSettings holds comment generation configuration
type CommentSettings struct {
	MaxLength int `mapstructure:"max_length"`
}

// ReplySettings holds search-and-reply configuration
type ReplySettings struct {
	MaxLength      int      `mapstructure:"max_length"`
	SearchKeywords []string `mapstructure:"search_keywords"`
}

// OpenRouter holds LLM API configuration. The API key comes from the
// environment only.
type OpenRouter struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Notion holds knowledge base configuration
type Notion struct {
	APIKey string `mapstructure:"api_key"`
	PageID string `mapstructure:"page_id"`
}

// Mastodon holds Mastodon API configuration
type Mastodon struct {
	AccessToken string `mapstructure:"access_token"`
	APIBaseURL  string `mapstructure:"api_base_url"`
}

// Logging holds logging configuration
type Logging struct {
	Level string `mapstructure:"level"`
}

var globalConfig *Config

// Load loads configuration from the YAML config file and the environment.
// A missing config file is a hard error; missing secrets are reported by
// Validate so commands can decide what they need.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("article_settings.max_articles_per_feed", 20)
	viper.SetDefault("article_settings.min_age_hours", 2)
	viper.SetDefault("article_settings.max_age_days", 7)
	viper.SetDefault("article_settings.min_keywords", 1)

	viper.SetDefault("post_settings.max_length", 500)
	viper.SetDefault("comment_settings.max_length", 300)
	viper.SetDefault("reply_settings.max_length", 500)

	viper.SetDefault("openrouter.model", "anthropic/claude-3.5-sonnet")
	viper.SetDefault("mastodon.api_base_url", "https://mastodon.social")

	viper.SetDefault("logging.level", "info")
}

// bindEnvironmentVariables maps secrets from the environment into viper keys
func bindEnvironmentVariables() {
	bindEnvKeys("openrouter.api_key", []string{"OPENROUTER_API_KEY"})
	bindEnvKeys("openrouter.model", []string{"OPENROUTER_MODEL"})
	bindEnvKeys("notion.api_key", []string{"NOTION_API_KEY"})
	bindEnvKeys("notion.page_id", []string{"NOTION_PAGE_ID"})
	bindEnvKeys("mastodon.access_token", []string{"MASTODON_ACCESS_TOKEN"})
	bindEnvKeys("mastodon.api_base_url", []string{"MASTODON_API_BASE_URL"})
	bindEnvKeys("logging.level", []string{"LOG_LEVEL"})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// Validate reports required values that are missing. Callers print the
// list and exit rather than receiving a single joined error, so partial
// setups produce a complete report.
func (c *Config) Validate() []string {
	var errors []string

	if c.OpenRouter.APIKey == "" {
		errors = append(errors, "OPENROUTER_API_KEY not set")
	}
	if c.Notion.APIKey == "" {
		errors = append(errors, "NOTION_API_KEY not set")
	}
	if c.Notion.PageID == "" {
		errors = append(errors, "NOTION_PAGE_ID not set")
	}
	if c.Mastodon.AccessToken == "" {
		errors = append(errors, "MASTODON_ACCESS_TOKEN not set")
	}

	return errors
}

// Convenience getters for commonly used configuration values
func GetRSSFeeds() []core.FeedSource      { return Get().RSSFeeds }
func GetArticleKeywords() []string        { return Get().ArticleKeywords }
func GetArticleSettings() ArticleSettings { return Get().ArticleSettings }
func GetPostSettings() PostSettings       { return Get().PostSettings }
func GetCommentSettings() CommentSettings { return Get().CommentSettings }
func GetReplySettings() ReplySettings     { return Get().ReplySettings }
func GetOpenRouter() OpenRouter           { return Get().OpenRouter }
func GetNotion() Notion                   { return Get().Notion }
func GetMastodon() Mastodon               { return Get().Mastodon }
func GetLogLevel() string                 { return Get().Logging.Level }
