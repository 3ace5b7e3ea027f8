package config

import (
	"os"
	"strconv"
	"time"

	"kiosk-data/internal/database"
)

// Config kiosk-data（采集服务）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  database.Config
	Redis     struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Drive     DriveConfig
	Converter ConverterConfig
	Scanner   ScannerConfig
	MQTT      MQTTConfig
}

// DriveConfig Google Drive 文件源配置
type DriveConfig struct {
	Enabled      bool   // start the background scanner against Drive
	FolderID     string // folder the kiosk devices upload into
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// ConverterConfig 试算表转换服务配置（PulseOximeter 专用）
type ConverterConfig struct {
	BaseURL string // e.g. "http://localhost:10000"
	Timeout time.Duration
}

// ScannerConfig 后台轮询配置
type ScannerConfig struct {
	Interval time.Duration // sleep between scan cycles
	// Staleness drops files older than this at scan time; a file that old
	// was either handled by a crashed prior cycle or is no longer
	// actionable. Observed revisions disagreed on the value (1.2 vs ~3
	// minutes); 90s is the pinned default, overridable via env.
	Staleness time.Duration
}

// MQTTConfig 扫描触发配置（可选，默认禁用）
type MQTTConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "kiosk")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Drive.Enabled = getEnv("DRIVE_ENABLED", "false") == "true"
	cfg.Drive.FolderID = getEnv("DRIVE_FOLDER_ID", "")
	cfg.Drive.ClientID = getEnv("DRIVE_CLIENT_ID", "")
	cfg.Drive.ClientSecret = getEnv("DRIVE_CLIENT_SECRET", "")
	cfg.Drive.RefreshToken = getEnv("DRIVE_REFRESH_TOKEN", "")

	cfg.Converter.BaseURL = getEnv("CONVERTER_BASE_URL", "http://localhost:10000")
	cfg.Converter.Timeout = parseDuration(getEnv("CONVERTER_TIMEOUT", "30s"), 30*time.Second)

	cfg.Scanner.Interval = parseDuration(getEnv("SCAN_INTERVAL", "60s"), 60*time.Second)
	cfg.Scanner.Staleness = parseDuration(getEnv("SCAN_STALENESS_WINDOW", "90s"), 90*time.Second)

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "kiosk-data-scanner")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "kiosk/scan")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
