package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Env      string         `mapstructure:"env"`
	Server   ServerConfig   `mapstructure:"server"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Store    StoreConfig    `mapstructure:"store"`
	Session  SessionConfig  `mapstructure:"session"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type TelegramConfig struct {
	BotToken    string `mapstructure:"bot_token" validate:"required"`
	BotUsername string `mapstructure:"bot_username"`
	APIEndpoint string `mapstructure:"api_endpoint" validate:"required"`
	WebhookURL  string `mapstructure:"webhook_url" validate:"omitempty,url"`
	// AllowedChatIDs is filled from the raw allowed_chat_ids value by Load
	AllowedChatIDs []int64       `mapstructure:"-"`
	TypingInterval time.Duration `mapstructure:"typing_interval" validate:"gt=0"`
	MessageLimit   int           `mapstructure:"message_limit" validate:"min=100,max=4096"`
}

type LLMConfig struct {
	DefaultProvider   string       `mapstructure:"default_provider" validate:"oneof=gemini ark"`
	SystemInstruction string       `mapstructure:"system_instruction"`
	Gemini            GeminiConfig `mapstructure:"gemini"`
	Ark               ArkConfig    `mapstructure:"ark"`
}

type GeminiConfig struct {
	APIKey           string `mapstructure:"api_key"`
	Model            string `mapstructure:"model"`
	BaseURL          string `mapstructure:"base_url"`
	EnableSearch     bool   `mapstructure:"enable_search"`
	EnableURLContext bool   `mapstructure:"enable_url_context"`
}

type ArkConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	Region  string `mapstructure:"region"`
}

type StoreConfig struct {
	Driver string      `mapstructure:"driver" validate:"oneof=redis bolt"`
	Redis  RedisConfig `mapstructure:"redis"`
	Bolt   BoltConfig  `mapstructure:"bolt"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type BoltConfig struct {
	Path          string        `mapstructure:"path"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// SessionConfig holds retention windows. The index outliving the transcript
// (or the reverse) is left for the deployer to reconcile.
type SessionConfig struct {
	IndexTTL      time.Duration `mapstructure:"index_ttl" validate:"gt=0"`
	TranscriptTTL time.Duration `mapstructure:"transcript_ttl" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

var validate = validator.New()

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file path
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	chatIDs, err := ParseChatIDs(v.Get("telegram.allowed_chat_ids"))
	if err != nil {
		return nil, err
	}
	cfg.Telegram.AllowedChatIDs = chatIDs

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct constraints and cross-field requirements
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(validationErrors))
			for _, e := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s (%s)", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.LLM.DefaultProvider {
	case "gemini":
		if c.LLM.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when llm provider is gemini")
		}
	case "ark":
		if c.LLM.Ark.APIKey == "" || c.LLM.Ark.Model == "" {
			return fmt.Errorf("ARK_API_KEY and ARK_MODEL are required when llm provider is ark")
		}
	}

	if c.Store.Driver == "bolt" && c.Store.Bolt.Path == "" {
		return fmt.Errorf("BOLT_PATH is required when store driver is bolt")
	}

	return nil
}

// IsProduction reports whether the service runs with production defaults
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ParseChatIDs accepts a comma separated string or a list and returns chat ids
func ParseChatIDs(raw any) ([]int64, error) {
	var parts []string
	switch val := raw.(type) {
	case nil:
		return []int64{}, nil
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []any:
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
	case int, int64:
		parts = []string{fmt.Sprint(val)}
	default:
		return nil, fmt.Errorf("unsupported allowed_chat_ids value of type %T", raw)
	}

	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q in allowed_chat_ids: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	// unbounded: the webhook response waits on the model call
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Telegram
	v.SetDefault("telegram.api_endpoint", "https://api.telegram.org/bot%s/%s")
	v.SetDefault("telegram.typing_interval", "5s")
	v.SetDefault("telegram.message_limit", 4000)

	// LLM
	v.SetDefault("llm.default_provider", "gemini")
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.gemini.enable_search", true)
	v.SetDefault("llm.gemini.enable_url_context", true)
	v.SetDefault("llm.ark.base_url", "https://ark.cn-beijing.volces.com/api/v3")
	v.SetDefault("llm.ark.region", "cn-beijing")

	// Store
	v.SetDefault("store.driver", "redis")
	v.SetDefault("store.redis.host", "localhost")
	v.SetDefault("store.redis.port", 6379)
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.bolt.path", "./data/sessions.bolt")
	v.SetDefault("store.bolt.sweep_interval", "10m")

	// Session retention
	v.SetDefault("session.index_ttl", "24h")
	v.SetDefault("session.transcript_ttl", "48h")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("env", "ENV")

	// Server
	v.BindEnv("server.port", "SERVER_PORT", "PORT")

	// Telegram
	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN", "BOT_TOKEN")
	v.BindEnv("telegram.bot_username", "TELEGRAM_BOT_USERNAME")
	v.BindEnv("telegram.allowed_chat_ids", "ALLOWED_CHAT_IDS")
	v.BindEnv("telegram.typing_interval", "TYPING_INTERVAL")
	v.BindEnv("telegram.webhook_url", "WEBHOOK_URL")

	// LLM
	v.BindEnv("llm.default_provider", "LLM_PROVIDER")
	v.BindEnv("llm.system_instruction", "SYSTEM_INSTRUCTION")
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("llm.gemini.model", "GEMINI_MODEL")
	v.BindEnv("llm.ark.api_key", "ARK_API_KEY")
	v.BindEnv("llm.ark.model", "ARK_MODEL")

	// Store
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("store.redis.host", "REDIS_HOST")
	v.BindEnv("store.redis.port", "REDIS_PORT")
	v.BindEnv("store.redis.password", "REDIS_PASSWORD")
	v.BindEnv("store.bolt.path", "BOLT_PATH")

	// Session retention
	v.BindEnv("session.index_ttl", "SESSION_INDEX_TTL")
	v.BindEnv("session.transcript_ttl", "SESSION_TRANSCRIPT_TTL")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}
