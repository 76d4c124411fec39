package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Supported transports and conversation stores.
const (
	TransportTelegram = "telegram"
	TransportConsole  = "console"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

var (
	ErrUnknownTransport = errors.New("unknown transport")
	ErrUnknownStore     = errors.New("unknown conversation store")
)

// Config holds the application configuration parameters.
// Each field corresponds to an expected environment variable.
type Config struct {
	EnvLogsLevel              string `env:"LOG_LEVEL" envDefault:"info"`                // Log level for the application (e.g., debug, info)
	EnvLogFileName            string `env:"LOG_FILE_NAME" envDefault:"routeBot.log"`    // File's name for log
	EnvTransport              string `env:"TRANSPORT" envDefault:"telegram"`            // Messaging transport: telegram or console
	EnvBotToken               string `env:"TOKEN_BOT"`                                  // Telegram Bot Token, required for the telegram transport
	EnvBotDebug               bool   `env:"BOT_DEBUG"`                                  // Verbose Telegram API logging
	EnvDirectoryFile          string `env:"DIRECTORY_FILE"`                             // YAML department directory, built-in departments when empty
	EnvGreetingToken          string `env:"GREETING_TOKEN" envDefault:"hola"`           // Word that starts a dialogue
	EnvDeepLinkBase           string `env:"DEEP_LINK_BASE" envDefault:"https://wa.me/"` // Base URL of the generated deep links
	EnvStatusServerAddr       string `env:"STATUS_SERVER_ADDR" envDefault:":3000"`      // Address of the status page, empty disables it
	EnvStore                  string `env:"STORE" envDefault:"memory"`                  // Conversation store: memory or redis
	EnvRedisAddr              string `env:"REDIS_ADDR" envDefault:"localhost:6379"`     // Redis address for the redis store
	EnvConversationTTLMinutes int    `env:"CONVERSATION_TTL_MINUTES"`                   // Idle conversations are dropped after this many minutes, 0 keeps them
	EnvMaxConversations       int    `env:"MAX_CONVERSATIONS"`                          // Capacity of the memory store, 0 is unbounded
	EnvJanitorIntervalSeconds int    `env:"JANITOR_INTERVAL_SECONDS" envDefault:"60"`   // How often the memory store evicts idle conversations
}

// NewConfig loads environment variables from envFile (a missing file is not an error)
// and fills a Config from the environment.
// It returns a pointer to the Config struct and an error if any of the variables are invalid.
func NewConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load %s: %w", envFile, err)
			}
			logrus.Infof("Env file %s not found, using process environment", envFile)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.EnvTransport {
	case TransportTelegram:
		if c.EnvBotToken == "" {
			return errors.New("TOKEN_BOT is required for the telegram transport")
		}
	case TransportConsole:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, c.EnvTransport)
	}

	switch c.EnvStore {
	case StoreMemory:
	case StoreRedis:
		if c.EnvRedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis store")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.EnvStore)
	}

	if c.EnvConversationTTLMinutes < 0 || c.EnvMaxConversations < 0 || c.EnvJanitorIntervalSeconds < 0 {
		return errors.New("CONVERSATION_TTL_MINUTES, MAX_CONVERSATIONS and JANITOR_INTERVAL_SECONDS must not be negative")
	}
	return nil
}

// ConversationTTL returns the idle lifetime of a conversation, 0 if conversations never expire.
func (c *Config) ConversationTTL() time.Duration {
	return time.Duration(c.EnvConversationTTLMinutes) * time.Minute
}

// JanitorInterval returns the eviction period of the memory store.
func (c *Config) JanitorInterval() time.Duration {
	if c.EnvJanitorIntervalSeconds == 0 {
		return time.Minute
	}
	return time.Duration(c.EnvJanitorIntervalSeconds) * time.Second
}
