package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values
type Config struct {
	AppEnv          string
	AppPort         string
	ShutdownTimeout time.Duration

	// MongoDB
	MongoURI string
	MongoDB  string

	// Redis
	RedisAddr string
	RedisPwd  string
	RedisDB   int

	// Kafka
	KafkaBrokers   []string
	KafkaPingTopic string
	KafkaGroupID   string

	// JWT
	JWTSecret string

	// Push delivery
	PushEndpoint string

	// Rate limiting
	RateLimitPerMin int
}

// Load reads configuration from config.yaml or environment variables
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config.yaml: %w", err)
		}
	}

	cfg := &Config{
		AppEnv:          viper.GetString("APP_ENV"),
		AppPort:         viper.GetString("APP_PORT"),
		ShutdownTimeout: viper.GetDuration("SHUTDOWN_TIMEOUT") * time.Second,
		MongoURI:        viper.GetString("MONGO_URI"),
		MongoDB:         viper.GetString("MONGO_DB"),
		RedisAddr:       viper.GetString("REDIS_ADDR"),
		RedisPwd:        viper.GetString("REDIS_PASSWORD"),
		RedisDB:         viper.GetInt("REDIS_DB"),
		KafkaBrokers:    viper.GetStringSlice("KAFKA_BROKERS"),
		KafkaPingTopic:  viper.GetString("KAFKA_PING_TOPIC"),
		KafkaGroupID:    viper.GetString("KAFKA_GROUP_ID"),
		JWTSecret:       viper.GetString("JWT_SECRET"),
		PushEndpoint:    viper.GetString("PUSH_ENDPOINT"),
		RateLimitPerMin: viper.GetInt("RATE_LIMIT_PER_MIN"),
	}

	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = "pingboard"
	}
	if cfg.KafkaPingTopic == "" {
		cfg.KafkaPingTopic = "ping-events"
	}
	if cfg.KafkaGroupID == "" {
		cfg.KafkaGroupID = "notifier"
	}
	if cfg.PushEndpoint == "" {
		cfg.PushEndpoint = "https://exp.host/--/api/v2/push/send"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return cfg, nil
}
