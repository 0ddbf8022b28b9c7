package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env         string `mapstructure:"ENV"`
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`
	AdminKey    string `mapstructure:"ADMIN_KEY"`
	CORSAllowed string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	MaxUploadSizeMB int64 `mapstructure:"MAX_UPLOAD_MB"`

	OllamaURL       string        `mapstructure:"OLLAMA_URL"`
	OllamaModel     string        `mapstructure:"OLLAMA_MODEL"`
	ClassifyTimeout time.Duration `mapstructure:"CLASSIFY_TIMEOUT"`

	DGISURL       string        `mapstructure:"DGIS_URL"`
	DGISKey       string        `mapstructure:"DGIS_KEY"`
	GeoTimeout    time.Duration `mapstructure:"GEO_TIMEOUT"`
	MaxDistanceKm float64       `mapstructure:"MAX_DISTANCE_KM"`

	QueueName         string `mapstructure:"QUEUE_NAME"`
	WorkerConcurrency int    `mapstructure:"WORKER_CONCURRENCY"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("OLLAMA_URL", "http://localhost:11434/api/generate")
	v.SetDefault("OLLAMA_MODEL", "llama3.2")
	v.SetDefault("CLASSIFY_TIMEOUT", "30s")
	v.SetDefault("DGIS_URL", "https://catalog.api.2gis.com/3.0/items/geocode")
	v.SetDefault("GEO_TIMEOUT", "10s")
	v.SetDefault("MAX_DISTANCE_KM", 500)
	v.SetDefault("QUEUE_NAME", "tickets")
	v.SetDefault("WORKER_CONCURRENCY", 1)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
