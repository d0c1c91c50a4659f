// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	App        AppConfig
	Cache      CacheConfig
	Storage    StorageConfig
	Simulation SimulationConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// HistoryURL points the pgx history source at a database holding the
	// forecast, forecast_errors and lead_times tables.
	HistoryURL string
	HistorySKU string
}

type AppConfig struct {
	DataDir      string
	OutputDir    string
	ForecastFile string
	ErrorsFile   string
	LeadTimeFile string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RunTTLSeconds int
	LocalSize     int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

type SimulationConfig struct {
	TotalPeriods   int
	ReviewPeriod   int
	ServiceLevel   float64
	Seed           uint64
	QuantilePolicy string
}

// Params converts the configured defaults into validated simulation parameters.
func (c SimulationConfig) Params() (domain.SimulationParams, error) {
	p := domain.SimulationParams{
		TotalPeriods:   c.TotalPeriods,
		ReviewPeriod:   c.ReviewPeriod,
		ServiceLevel:   c.ServiceLevel,
		Seed:           c.Seed,
		QuantilePolicy: domain.QuantilePolicy(c.QuantilePolicy),
	}
	if err := p.Validate(); err != nil {
		return domain.SimulationParams{}, err
	}
	return p, nil
}

var (
	once     sync.Once
	instance *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "skusim")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("HISTORY_DATABASE_URL", "")
	v.SetDefault("HISTORY_SKU", "")

	v.SetDefault("APP_DATA_DIR", "./data")
	v.SetDefault("APP_OUTPUT_DIR", "./data/output")
	v.SetDefault("APP_FORECAST_FILE", "forecast_data.csv")
	v.SetDefault("APP_ERRORS_FILE", "errors_data.csv")
	v.SetDefault("APP_LEAD_TIME_FILE", "lead_time_data.csv")

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_RUN_TTL_SECONDS", 600)
	v.SetDefault("CACHE_LOCAL_SIZE", 256)

	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "skusim")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("STORAGE_PREFIX", "")

	v.SetDefault("SIM_TOTAL_PERIODS", 10)
	v.SetDefault("SIM_REVIEW_PERIOD", 2)
	v.SetDefault("SIM_SERVICE_LEVEL", 0.95)
	v.SetDefault("SIM_SEED", 0)
	v.SetDefault("SIM_QUANTILE_POLICY", string(domain.QuantileComplement))
}

// Load reads configuration once from the environment (and an optional .env file).
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.New()
		setDefaults(v)

		// Read from environment variables
		v.AutomaticEnv()

		instance = fromViper(v)
		ensureDir(instance.App.OutputDir)
	})

	return instance
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Enabled:    v.GetBool("DB_ENABLED"),
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetString("DB_PORT"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			DBName:     v.GetString("DB_NAME"),
			SSLMode:    v.GetString("DB_SSLMODE"),
			HistoryURL: v.GetString("HISTORY_DATABASE_URL"),
			HistorySKU: v.GetString("HISTORY_SKU"),
		},
		App: AppConfig{
			DataDir:      v.GetString("APP_DATA_DIR"),
			OutputDir:    v.GetString("APP_OUTPUT_DIR"),
			ForecastFile: v.GetString("APP_FORECAST_FILE"),
			ErrorsFile:   v.GetString("APP_ERRORS_FILE"),
			LeadTimeFile: v.GetString("APP_LEAD_TIME_FILE"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			RunTTLSeconds: v.GetInt("CACHE_RUN_TTL_SECONDS"),
			LocalSize:     v.GetInt("CACHE_LOCAL_SIZE"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
			Prefix:    v.GetString("STORAGE_PREFIX"),
		},
		Simulation: SimulationConfig{
			TotalPeriods:   v.GetInt("SIM_TOTAL_PERIODS"),
			ReviewPeriod:   v.GetInt("SIM_REVIEW_PERIOD"),
			ServiceLevel:   v.GetFloat64("SIM_SERVICE_LEVEL"),
			Seed:           v.GetUint64("SIM_SEED"),
			QuantilePolicy: v.GetString("SIM_QUANTILE_POLICY"),
		},
	}
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
