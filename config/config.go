package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`

	// Storage configuration.
	StorageBackend string `mapstructure:"STORAGE_BACKEND"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DatabaseName   string `mapstructure:"DATABASE_NAME"`
	// SingleInstance allows Mongo without Redis; the slot check is then only
	// safe within one process.
	SingleInstance bool `mapstructure:"SINGLE_INSTANCE"`

	// Redis configuration. An empty address disables the slot lock and reminders.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking rules.
	AppointmentLengthMinutes int  `mapstructure:"APPOINTMENT_LENGTH_MINUTES"`
	MinLeadTimeHours         int  `mapstructure:"MIN_LEAD_TIME_HOURS"`
	HoldExpiryMinutes        int  `mapstructure:"HOLD_EXPIRY_MINUTES"`
	ClampFinalSlot           bool `mapstructure:"CLAMP_FINAL_SLOT"`
	HoldReminderMinutes      int  `mapstructure:"HOLD_REMINDER_MINUTES"`
}

var AppConfig Config

// LoadConfig reads config.yaml (if any), the environment and defaults into AppConfig.
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// Load builds a Config without touching the package level AppConfig.
func Load() (Config, error) {
	v := viper.New()
	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	// Automatically use environment variables where available.
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("STORAGE_BACKEND", StorageMemory)
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "slotbook")
	v.SetDefault("SINGLE_INSTANCE", false)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_LOCK_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("APPOINTMENT_LENGTH_MINUTES", 15)
	v.SetDefault("MIN_LEAD_TIME_HOURS", 24)
	v.SetDefault("HOLD_EXPIRY_MINUTES", 30)
	v.SetDefault("CLAMP_FINAL_SLOT", false)
	v.SetDefault("HOLD_REMINDER_MINUTES", 5)
}

// Validate rejects settings the booking rules cannot work with.
func (c Config) Validate() error {
	if c.AppointmentLengthMinutes <= 0 {
		return fmt.Errorf("APPOINTMENT_LENGTH_MINUTES must be positive, got %d", c.AppointmentLengthMinutes)
	}
	if c.MinLeadTimeHours < 0 {
		return fmt.Errorf("MIN_LEAD_TIME_HOURS must not be negative, got %d", c.MinLeadTimeHours)
	}
	if c.HoldExpiryMinutes <= 0 {
		return fmt.Errorf("HOLD_EXPIRY_MINUTES must be positive, got %d", c.HoldExpiryMinutes)
	}
	if c.HoldReminderMinutes < 0 {
		return fmt.Errorf("HOLD_REMINDER_MINUTES must not be negative, got %d", c.HoldReminderMinutes)
	}
	switch c.StorageBackend {
	case StorageMemory, StorageMongo:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.StorageBackend == StorageMongo && !c.RedisEnabled() && !c.SingleInstance {
		return fmt.Errorf("STORAGE_BACKEND=mongo needs REDIS_ADDR for the cross-process slot lock (set SINGLE_INSTANCE=true to run one instance without it)")
	}
	return nil
}

func (c Config) AppointmentLength() time.Duration {
	return time.Duration(c.AppointmentLengthMinutes) * time.Minute
}

func (c Config) MinLeadTime() time.Duration {
	return time.Duration(c.MinLeadTimeHours) * time.Hour
}

func (c Config) HoldExpiry() time.Duration {
	return time.Duration(c.HoldExpiryMinutes) * time.Minute
}

func (c Config) HoldReminder() time.Duration {
	return time.Duration(c.HoldReminderMinutes) * time.Minute
}

// RedisEnabled reports whether a Redis address was configured.
func (c Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
