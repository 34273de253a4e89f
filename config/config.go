package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the chat backend
type Config struct {
	General GeneralConfig `mapstructure:"general"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Search  SearchConfig  `mapstructure:"search"`
	History HistoryConfig `mapstructure:"history"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Listen   string `mapstructure:"listen"`
}

// LLMConfig contains the completion provider settings
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai, anthropic, gemini
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SearchConfig contains the web search and page fetch settings
type SearchConfig struct {
	Provider     string        `mapstructure:"provider"` // brave, serper
	APIKey       string        `mapstructure:"api_key"`
	MaxResults   int           `mapstructure:"max_results"`
	FetchPages   bool          `mapstructure:"fetch_pages"`
	Fetcher      string        `mapstructure:"fetcher"` // http, chromedp
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxPageChars int           `mapstructure:"max_page_chars"`
}

// HistoryConfig bounds the conversation context sent to the model
type HistoryConfig struct {
	MaxTokens     int    `mapstructure:"max_tokens"`
	ReserveTokens int    `mapstructure:"reserve_tokens"`
	Policy        string `mapstructure:"policy"` // summarize, truncate
}

// Budget is the token budget for the outgoing per-call history copy.
func (h HistoryConfig) Budget() int {
	b := h.MaxTokens - h.ReserveTokens
	if b <= 0 {
		b = h.MaxTokens
	}
	return b
}

func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		return fmt.Errorf("llm.provider is required")
	}
	if c.History.MaxTokens <= 0 {
		return fmt.Errorf("history.max_tokens must be > 0")
	}
	switch c.History.Policy {
	case "summarize", "truncate":
	default:
		return fmt.Errorf("history.policy must be summarize or truncate, got %q", c.History.Policy)
	}
	return nil
}

// LoadConfig reads configuration from file and environment. Environment
// variables use the CHATD_ prefix with dots replaced by underscores
// (e.g. CHATD_LLM_API_KEY).
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.listen", ":8000")
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.6)
	viper.SetDefault("llm.max_tokens", 1024)
	viper.SetDefault("llm.timeout", 30*time.Second)
	viper.SetDefault("search.provider", "brave")
	viper.SetDefault("search.max_results", 5)
	viper.SetDefault("search.fetch_pages", true)
	viper.SetDefault("search.fetcher", "http")
	viper.SetDefault("search.timeout", 10*time.Second)
	viper.SetDefault("search.max_page_chars", 2000)
	viper.SetDefault("history.max_tokens", 4000)
	viper.SetDefault("history.reserve_tokens", 500)
	viper.SetDefault("history.policy", "summarize")

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("CHATD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Running on defaults plus env is fine; a broken file is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	if config.LLM.APIKey == "" {
		config.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if config.Search.APIKey == "" {
		config.Search.APIKey = os.Getenv("BRAVE_API_KEY")
	}
	if err := config.Validate(); err != nil {
		panic(err)
	}
	return &config
}
