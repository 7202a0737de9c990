package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level project configuration.
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Research    ResearchConfig    `yaml:"research"`
	Trends      TrendsConfig      `yaml:"trends"`
	DB          DBConfig          `yaml:"db"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
}

// LLMConfig holds the chat model endpoint settings.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// SearchConfig selects and configures the search provider.
type SearchConfig struct {
	Provider  string          `yaml:"provider"` // googlecse, tavily or searxng
	GoogleCSE GoogleCSEConfig `yaml:"googlecse"`
	Tavily    TavilyConfig    `yaml:"tavily"`
	SearXNG   SearXNGConfig   `yaml:"searxng"`
}

// GoogleCSEConfig holds Google Custom Search credentials.
type GoogleCSEConfig struct {
	APIKey   string `yaml:"api_key"`
	EngineID string `yaml:"engine_id"`
}

// TavilyConfig holds the Tavily API key.
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig holds the SearXNG instance settings.
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// ResearchConfig tunes the research loop. Zero values fall back to the
// defaults applied by research.NewOrchestrator.
type ResearchConfig struct {
	TargetSources     int      `yaml:"target_sources"`
	MaxAttempts       int      `yaml:"max_attempts"`
	ResultsPerAttempt int      `yaml:"results_per_attempt"`
	AcceptThreshold   int      `yaml:"accept_threshold"`
	SynthesisBudget   int      `yaml:"synthesis_budget"`
	ExcludedHosts     []string `yaml:"excluded_hosts"`
}

// TrendsConfig tunes the trending-keyword pipeline.
type TrendsConfig struct {
	WindowDays    int `yaml:"window_days"`
	MinInterest   int `yaml:"min_interest"`
	RawTextBudget int `yaml:"raw_text_budget"`
}

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig bounds the LLM call rate.
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// LoadConfig reads and parses the yaml config at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
