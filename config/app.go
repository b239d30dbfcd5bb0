package config

import (
	"os"
	"sync"
	"time"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName         string
	Port            string
	Env             string
	Debug           bool
	SummaryCacheTTL time.Duration
	// Location used for "Time:" rows in notification mails.
	TimeZone string
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		AppConfig = &Config{
			AppName:         GetEnv("APP_NAME", "VitaStore Inventory"),
			Port:            GetEnv("PORT", "8080"),
			Env:             os.Getenv("APP_ENV"),
			Debug:           os.Getenv("DEBUG") == "true",
			SummaryCacheTTL: time.Duration(GetEnvInt("SUMMARY_CACHE_TTL", 30)) * time.Second,
			TimeZone:        GetEnv("APP_TIMEZONE", "Africa/Nairobi"),
		}
	})
}

// App returns AppConfig, loading it on first use.
func App() *Config {
	LoadAppConfig()
	return AppConfig
}
