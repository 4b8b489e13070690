package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	API      APIConfig
	Gateway  GatewayConfig
	SMTP     SMTPConfig
	Weather  WeatherConfig
	Storage  StorageConfig
	Rollup   RollupConfig
	Reminder ReminderConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers       []string
	TopicReadings string
	TopicAlerts   string
	NumPartitions int
}

type APIConfig struct {
	Addr string
}

type GatewayConfig struct {
	Port              int
	MaxConnections    int
	IdentifyTimeout   time.Duration
	InactivityTimeout time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// WeatherConfig controls the per-site weather polling job.
type WeatherConfig struct {
	Provider       string // "open-meteo" or "openweathermap"
	OpenMeteoURL   string
	OpenWeatherURL string
	APIKey         string // required for openweathermap only
	PollInterval   time.Duration
	SitePacing     time.Duration // delay between per-site fetches
	RequestTimeout time.Duration
}

type StorageConfig struct {
	Region    string
	Bucket    string
	URLExpiry time.Duration
}

type RollupConfig struct {
	DailyTime string // HH:MM for the nightly rollup run
}

type ReminderConfig struct {
	CronSpec    string // cron schedule for the calibration reminder sweep
	DueSoonDays int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "plantwatch"),
			Password: getEnv("DB_PASSWORD", "plantwatch"),
			DBName:   getEnv("DB_NAME", "plantwatch_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicReadings: getEnv("KAFKA_TOPIC_READINGS", "plantwatch.readings"),
			TopicAlerts:   getEnv("KAFKA_TOPIC_ALERTS", "plantwatch.alerts"),
			NumPartitions: getEnvAsInt("KAFKA_NUM_PARTITIONS", 10),
		},
		API: APIConfig{
			Addr: getEnv("API_ADDR", ":8080"),
		},
		Gateway: GatewayConfig{
			Port:              getEnvAsInt("GATEWAY_PORT", 9090),
			MaxConnections:    getEnvAsInt("GATEWAY_MAX_CONNECTIONS", 1000),
			IdentifyTimeout:   getEnvAsDuration("GATEWAY_IDENTIFY_TIMEOUT", 10*time.Second),
			InactivityTimeout: getEnvAsDuration("GATEWAY_INACTIVITY_TIMEOUT", 5*time.Minute),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "plantwatch@example.com"),
		},
		Weather: WeatherConfig{
			Provider:       getEnv("WEATHER_PROVIDER", "open-meteo"),
			OpenMeteoURL:   getEnv("OPEN_METEO_URL", "https://api.open-meteo.com"),
			OpenWeatherURL: getEnv("OPENWEATHER_URL", "https://api.openweathermap.org"),
			APIKey:         getEnv("OPENWEATHER_API_KEY", ""),
			PollInterval:   getEnvAsDuration("WEATHER_POLL_INTERVAL", 30*time.Minute),
			SitePacing:     getEnvAsDuration("WEATHER_SITE_PACING", 2*time.Second),
			RequestTimeout: getEnvAsDuration("WEATHER_REQUEST_TIMEOUT", 15*time.Second),
		},
		Storage: StorageConfig{
			Region:    getEnv("S3_REGION", "us-east-1"),
			Bucket:    getEnv("S3_BUCKET", "plantwatch-site-maps"),
			URLExpiry: getEnvAsDuration("S3_URL_EXPIRY", 1*time.Hour),
		},
		Rollup: RollupConfig{
			DailyTime: getEnv("ROLLUP_DAILY_TIME", "00:15"),
		},
		Reminder: ReminderConfig{
			CronSpec:    getEnv("REMINDER_CRON", "0 7 * * *"),
			DueSoonDays: getEnvAsInt("REMINDER_DUE_SOON_DAYS", 2),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
