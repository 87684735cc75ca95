// backend-go/internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Report   ReportConfig
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

type AppConfig struct {
	DownloadDir string
	ReportsDir  string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	AnalyticsTTLSeconds int
}

// StorageConfig selects and configures the snapshot object storage backend.
// Backend is "minio" or "sevalla".
type StorageConfig struct {
	Backend        string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Bucket         string
	Region         string
	UseSSL         bool
	SnapshotPrefix string
	ReportPrefix   string
}

type DriveConfig struct {
	Enabled             bool
	CredentialsFile     string
	FolderID            string
	PollIntervalSeconds int
}

// ReportConfig carries the analytics report knobs: the Free-For-Sale
// threshold and top-N cutoff for priority ranking, plus the specs the
// weekly report always includes.
type ReportConfig struct {
	PriorityThresholdMT float64
	PriorityTopN        int
	ReportSpecs         []string
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
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "pipestock")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("APP_DOWNLOAD_DIR", "./data/downloads")
		viper.SetDefault("APP_REPORTS_DIR", "./data/reports")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_ANALYTICS_TTL_SECONDS", 300)
		viper.SetDefault("STORAGE_BACKEND", "minio")
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_BUCKET", "")
		viper.SetDefault("STORAGE_REGION", "")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("STORAGE_SNAPSHOT_PREFIX", "snapshots/")
		viper.SetDefault("STORAGE_REPORT_PREFIX", "reports/")
		viper.SetDefault("DRIVE_ENABLED", false)
		viper.SetDefault("DRIVE_CREDENTIALS_FILE", "")
		viper.SetDefault("DRIVE_FOLDER_ID", "")
		viper.SetDefault("DRIVE_POLL_INTERVAL_SECONDS", 300)
		viper.SetDefault("REPORT_PRIORITY_THRESHOLD_MT", 30.0)
		viper.SetDefault("REPORT_PRIORITY_TOP_N", 15)
		viper.SetDefault("REPORT_SPECS", []string{
			"CSSMP106B", "ASSMPP11", "ASSMPP22", "ASSMPP9", "ASSMPP5", "ASSMPP91",
		})

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure working directories exist
		ensureDir(viper.GetString("APP_DOWNLOAD_DIR"))
		ensureDir(viper.GetString("APP_REPORTS_DIR"))

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
			App: AppConfig{
				DownloadDir: viper.GetString("APP_DOWNLOAD_DIR"),
				ReportsDir:  viper.GetString("APP_REPORTS_DIR"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				AnalyticsTTLSeconds: viper.GetInt("CACHE_ANALYTICS_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Backend:        viper.GetString("STORAGE_BACKEND"),
				Endpoint:       viper.GetString("STORAGE_ENDPOINT"),
				AccessKey:      viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey:      viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:         viper.GetString("STORAGE_BUCKET"),
				Region:         viper.GetString("STORAGE_REGION"),
				UseSSL:         viper.GetBool("STORAGE_USE_SSL"),
				SnapshotPrefix: viper.GetString("STORAGE_SNAPSHOT_PREFIX"),
				ReportPrefix:   viper.GetString("STORAGE_REPORT_PREFIX"),
			},
			Drive: DriveConfig{
				Enabled:             viper.GetBool("DRIVE_ENABLED"),
				CredentialsFile:     viper.GetString("DRIVE_CREDENTIALS_FILE"),
				FolderID:            viper.GetString("DRIVE_FOLDER_ID"),
				PollIntervalSeconds: viper.GetInt("DRIVE_POLL_INTERVAL_SECONDS"),
			},
			Report: ReportConfig{
				PriorityThresholdMT: viper.GetFloat64("REPORT_PRIORITY_THRESHOLD_MT"),
				PriorityTopN:        viper.GetInt("REPORT_PRIORITY_TOP_N"),
				ReportSpecs:         viper.GetStringSlice("REPORT_SPECS"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
