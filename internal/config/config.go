package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultQuery is the Webz.io query for negative-sentiment business news of the last week.
const DefaultQuery = `category:"Economy, Business and Finance" num_chars:>1000 sentiment:negative language:english published:>now-7d  social.facebook.likes:>0`

// DefaultImagePrompt describes the cover image requested for every digest.
const DefaultImagePrompt = "Create a realistic featured image for a weekly blog post about financial risk reports. The image should depict a modern office environment with a large, clear display screen in the background showing graphs, random companies logos and financial data. In the foreground, arrange a series of  different, but related, documents or tablets, each representing a different financial risk report. These documents should be partially overlapped to convey a sense of abundance and detail. Include elements like pens, glasses, and other office accessories to add to the realism. The overall tone should be professional and sophisticated, with a color scheme that suggests seriousness and reliability, such as shades of blue, grey, and white."

// Config holds all application configuration
type Config struct {
	App      App      `mapstructure:"app"`
	Search   Search   `mapstructure:"search"`
	AI       AI       `mapstructure:"ai"`
	Image    Image    `mapstructure:"image"`
	Pipeline Pipeline `mapstructure:"pipeline"`
	Output   Output   `mapstructure:"output"`
	Logging  Logging  `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	ConfigFile string `mapstructure:"config_file"`
}

// Search holds news search configuration
type Search struct {
	Query       string     `mapstructure:"query"`
	TargetCount int        `mapstructure:"target_count"`
	PageSize    int        `mapstructure:"page_size"`
	Timestamp   int64      `mapstructure:"timestamp"`
	Timeout     string     `mapstructure:"timeout"`
	Webz        WebzConfig `mapstructure:"webz"`
}

// WebzConfig holds Webz.io API configuration
type WebzConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// AI holds language model configuration
type AI struct {
	Provider          string          `mapstructure:"provider"`
	MaxTokens         int             `mapstructure:"max_tokens"`
	Timeout           string          `mapstructure:"timeout"`
	RequestsPerMinute int             `mapstructure:"requests_per_minute"`
	OpenAI            OpenAIConfig    `mapstructure:"openai"`
	Anthropic         AnthropicConfig `mapstructure:"anthropic"`
	Gemini            GeminiConfig    `mapstructure:"gemini"`
}

// OpenAIConfig holds OpenAI configuration, shared by completions and image generation
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic configuration
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Image holds cover image generation configuration
type Image struct {
	Enabled bool   `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
	Width   int    `mapstructure:"width"`
	Height  int    `mapstructure:"height"`
	Prompt  string `mapstructure:"prompt"`
	Timeout string `mapstructure:"timeout"`
}

// Pipeline holds the tunables of the digest pipeline
type Pipeline struct {
	ReportCap           int     `mapstructure:"report_cap"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	MaxTextLength       int     `mapstructure:"max_text_length"`
	Concurrency         int     `mapstructure:"concurrency"`
}

// Output holds document output configuration
type Output struct {
	Path       string  `mapstructure:"path"`
	Font       string  `mapstructure:"font"`
	TitleSize  int     `mapstructure:"title_size"`
	ImageWidth float64 `mapstructure:"image_width"`
	Manifest   string  `mapstructure:"manifest"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load builds the configuration from defaults, an optional config file, .env and
// the process environment, and validates it for a full digest run. The returned
// value is owned by the caller and is passed explicitly to every component.
func Load(configFile string) (*Config, error) {
	config, err := read(configFile)
	if err != nil {
		return nil, err
	}
	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadForSearch is Load for commands that only query the search API; model
// and output settings are not validated.
func LoadForSearch(configFile string) (*Config, error) {
	config, err := read(configFile)
	if err != nil {
		return nil, err
	}
	if err := ValidateSearch(config); err != nil {
		return nil, err
	}
	return config, nil
}

func read(configFile string) (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(".riskdigest")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment aliases win over the config file
	bindEnvironmentVariables(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = v.ConfigFileUsed()

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.debug", false)

	// Search defaults
	v.SetDefault("search.query", DefaultQuery)
	v.SetDefault("search.target_count", 100)
	v.SetDefault("search.page_size", 100)
	v.SetDefault("search.timestamp", 0)
	v.SetDefault("search.timeout", "30s")
	v.SetDefault("search.webz.base_url", "https://api.webz.io")

	// AI defaults
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.max_tokens", 4096)
	v.SetDefault("ai.timeout", "120s")
	v.SetDefault("ai.requests_per_minute", 0)
	v.SetDefault("ai.openai.model", "gpt-4-1106-preview")
	v.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.anthropic.model", "claude-3-5-sonnet-latest")
	v.SetDefault("ai.gemini.model", "gemini-1.5-flash")

	// Image defaults
	v.SetDefault("image.enabled", true)
	v.SetDefault("image.model", "dall-e-3")
	v.SetDefault("image.width", 1024)
	v.SetDefault("image.height", 1024)
	v.SetDefault("image.prompt", DefaultImagePrompt)
	v.SetDefault("image.timeout", "120s")

	// Pipeline defaults
	v.SetDefault("pipeline.report_cap", 5)
	v.SetDefault("pipeline.similarity_threshold", 0.7)
	v.SetDefault("pipeline.max_text_length", 10000)
	v.SetDefault("pipeline.concurrency", 1)

	// Output defaults
	v.SetDefault("output.path", "financial risk digest.docx")
	v.SetDefault("output.font", "NeueHaasUnica-Light")
	v.SetDefault("output.title_size", 24)
	v.SetDefault("output.image_width", 6.0)
	v.SetDefault("output.manifest", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables(v *viper.Viper) {
	bindEnvKeys(v, "search.webz.api_key", []string{
		"WEBZ_API_KEY",
		"WEBZIO_API_KEY",
	})

	bindEnvKeys(v, "search.query", []string{
		"RISKDIGEST_QUERY",
	})

	bindEnvKeys(v, "ai.provider", []string{
		"LLM_PROVIDER",
	})

	bindEnvKeys(v, "ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	bindEnvKeys(v, "ai.anthropic.api_key", []string{
		"ANTHROPIC_API_KEY",
	})

	// Gemini API key - support multiple formats
	bindEnvKeys(v, "ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys(v, "app.debug", []string{
		"DEBUG",
		"RISKDIGEST_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(v *viper.Viper, viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			v.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.Output.Path != "" {
		config.Output.Path = expandPath(config.Output.Path)
	}
	if config.Output.Manifest != "" {
		config.Output.Manifest = expandPath(config.Output.Manifest)
	}
	if config.App.Debug {
		config.Logging.Level = "debug"
	}
	config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))

	durations := map[string]string{
		"search.timeout": config.Search.Timeout,
		"ai.timeout":     config.AI.Timeout,
		"image.timeout":  config.Image.Timeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// Validate ensures required configuration is present and values are in range.
func Validate(config *Config) error {
	errors := searchErrors(config)

	switch config.AI.Provider {
	case "openai":
		if !isValidAPIKey(config.AI.OpenAI.APIKey) {
			errors = append(errors, "OpenAI API key is required. Set OPENAI_API_KEY environment variable or ai.openai.api_key in config file")
		}
	case "anthropic":
		if !isValidAPIKey(config.AI.Anthropic.APIKey) {
			errors = append(errors, "Anthropic API key is required. Set ANTHROPIC_API_KEY environment variable or ai.anthropic.api_key in config file")
		}
	case "gemini":
		if !isValidAPIKey(config.AI.Gemini.APIKey) {
			errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown LLM provider: %s. Supported: openai, anthropic, gemini", config.AI.Provider))
	}

	if config.Pipeline.ReportCap < 1 {
		errors = append(errors, fmt.Sprintf("pipeline.report_cap must be at least 1, got %d", config.Pipeline.ReportCap))
	}
	if config.Output.Path == "" {
		errors = append(errors, "output.path must not be empty")
	}

	return collectErrors(errors)
}

// ValidateSearch checks only the settings used to query and deduplicate
// articles.
func ValidateSearch(config *Config) error {
	return collectErrors(searchErrors(config))
}

func searchErrors(config *Config) []string {
	var errors []string

	if !isValidAPIKey(config.Search.Webz.APIKey) {
		errors = append(errors, "Webz.io API key is required. Set WEBZ_API_KEY environment variable or search.webz.api_key in config file")
	}
	if config.Search.TargetCount < 1 {
		errors = append(errors, "search.target_count must be positive")
	}
	if strings.TrimSpace(config.Search.Query) == "" {
		errors = append(errors, "search.query must not be empty")
	}
	if config.Pipeline.SimilarityThreshold < 0 || config.Pipeline.SimilarityThreshold > 1 {
		errors = append(errors, fmt.Sprintf("pipeline.similarity_threshold must be within [0, 1], got %g", config.Pipeline.SimilarityThreshold))
	}
	if config.Pipeline.MaxTextLength < 1 {
		errors = append(errors, "pipeline.max_text_length must be positive")
	}

	return errors
}

func collectErrors(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// HasImageCredentials returns true if cover image generation can be attempted
func (c *Config) HasImageCredentials() bool {
	return isValidAPIKey(c.AI.OpenAI.APIKey)
}

// ModelName returns the completion model of the selected provider
func (c *Config) ModelName() string {
	switch c.AI.Provider {
	case "anthropic":
		return c.AI.Anthropic.Model
	case "gemini":
		return c.AI.Gemini.Model
	default:
		return c.AI.OpenAI.Model
	}
}

// SearchTimeout returns the parsed search timeout
func (c *Config) SearchTimeout() time.Duration {
	return parseDuration(c.Search.Timeout, 30*time.Second)
}

// AITimeout returns the parsed model call timeout
func (c *Config) AITimeout() time.Duration {
	return parseDuration(c.AI.Timeout, 120*time.Second)
}

// ImageTimeout returns the parsed image call timeout
func (c *Config) ImageTimeout() time.Duration {
	return parseDuration(c.Image.Timeout, 120*time.Second)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	// Check for common placeholder values
	placeholders := []string{
		"your-api-key", "your-webz-key", "your-openai-key", "your-anthropic-key",
		"your-gemini-key", "YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}
