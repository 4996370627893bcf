package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/exchangelabs/trading-core/pkg/redis"
	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	App          AppConfig          `envPrefix:"APP_"`
	Market       MarketConfig       `envPrefix:"MARKET_"`
	CommandKafka CommandKafkaConfig `envPrefix:"COMMAND_KAFKA_"`
	EventKafka   EventKafkaConfig   `envPrefix:"EVENT_KAFKA_"`
	Redis        redis.Config       `envPrefix:"REDIS_"`
	Engine       EngineConfig       `envPrefix:"ENGINE_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name        string `env:"NAME" envDefault:"trading-engine"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// MarketConfig describes the traded pair and its assets.
type MarketConfig struct {
	Pair       string `env:"PAIR" envDefault:"BTC-USD"`
	BaseAsset  string `env:"BASE_ASSET" envDefault:"BTC"`
	QuoteAsset string `env:"QUOTE_ASSET" envDefault:"USD"`
	// MaxScale is the maximum number of fractional digits accepted on
	// prices and quantities. Products of inputs at this scale stay exact.
	MaxScale int32 `env:"MAX_SCALE" envDefault:"8"`
}

// CommandKafkaConfig represents the Kafka configuration for the sequenced command stream.
type CommandKafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"commands"`
}

// EventKafkaConfig represents the Kafka configuration for published match events.
type EventKafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"matches"`
}

// EngineConfig holds engine loop tuning knobs.
type EngineConfig struct {
	SnapshotInterval    time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"30s"`
	SnapshotSequenceGap int64         `env:"SNAPSHOT_SEQUENCE_GAP" envDefault:"1000"`
	EventBufferSize     int           `env:"EVENT_BUFFER_SIZE" envDefault:"1024"`
}

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
