// backend-go/internal/config/config.go
package config

import (
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Engine   EngineConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	AlertsTTL     int // seconds
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// EngineConfig carries the replenishment parameters. The z-score is not
// configured directly; it is derived once from the service level when the
// engine params are built.
type EngineConfig struct {
	ServiceLevel     float64
	LeadTimeDays     int
	HorizonDays      int
	VolatilityWindow int
	MinObservations  int
	AveragingWindow  int
	FallbackFactor   float64
	Models           []string
	Workers          int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "demandiq")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_ALERTS_TTL_SECONDS", 60)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "demandiq-artifacts")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("ENGINE_SERVICE_LEVEL", 0.95)
		viper.SetDefault("ENGINE_LEAD_TIME_DAYS", 7)
		viper.SetDefault("ENGINE_HORIZON_DAYS", 7)
		viper.SetDefault("ENGINE_VOLATILITY_WINDOW", 30)
		viper.SetDefault("ENGINE_MIN_OBSERVATIONS", 7)
		viper.SetDefault("ENGINE_AVERAGING_WINDOW", 30)
		viper.SetDefault("ENGINE_FALLBACK_FACTOR", 0.2)
		viper.SetDefault("ENGINE_MODELS", "prophet,xgboost")
		viper.SetDefault("ENGINE_WORKERS", 8)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:       viper.GetBool("CACHE_ENABLED"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
				AlertsTTL:     viper.GetInt("CACHE_ALERTS_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Engine: EngineConfig{
				ServiceLevel:     viper.GetFloat64("ENGINE_SERVICE_LEVEL"),
				LeadTimeDays:     viper.GetInt("ENGINE_LEAD_TIME_DAYS"),
				HorizonDays:      viper.GetInt("ENGINE_HORIZON_DAYS"),
				VolatilityWindow: viper.GetInt("ENGINE_VOLATILITY_WINDOW"),
				MinObservations:  viper.GetInt("ENGINE_MIN_OBSERVATIONS"),
				AveragingWindow:  viper.GetInt("ENGINE_AVERAGING_WINDOW"),
				FallbackFactor:   viper.GetFloat64("ENGINE_FALLBACK_FACTOR"),
				Models:           splitModels(viper.GetString("ENGINE_MODELS")),
				Workers:          viper.GetInt("ENGINE_WORKERS"),
			},
		}
	})

	return instance
}

func splitModels(raw string) []string {
	parts := strings.Split(raw, ",")
	models := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			models = append(models, p)
		}
	}
	return models
}
