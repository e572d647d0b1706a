package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
	Cart     CartConfig     `yaml:"cart"`
	Backend  BackendConfig  `yaml:"backend"`
	Checkout CheckoutConfig `yaml:"checkout"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	// StartupTimeout bounds how long boot waits for MySQL or Redis.
	StartupTimeout time.Duration `yaml:"startupTimeout"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

type RedisConfig struct {
	URL     string        `yaml:"url"`
	CartTTL time.Duration `yaml:"cartTTL"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	CartStoreMemory = "memory"
	CartStoreMySQL  = "mysql"
	CartStoreRedis  = "redis"
)

type CartConfig struct {
	Store string `yaml:"store"`
	// SessionTTL is how long an idle shopper session stays in memory.
	SessionTTL time.Duration `yaml:"sessionTTL"`
}

type BackendConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

type CheckoutConfig struct {
	DeliveryFee           float64 `yaml:"deliveryFee"`
	TaxRate               float64 `yaml:"taxRate"`
	FreeDeliveryThreshold float64 `yaml:"freeDeliveryThreshold"`
	LoginURL              string  `yaml:"loginURL"`
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	viper.SetDefault("SERVER_IDLE_TIMEOUT", "60s")
	viper.SetDefault("SERVER_STARTUP_TIMEOUT", "30s")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "storefront")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "storefront")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("REDIS_CART_TTL", "720h")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CART_STORE", CartStoreMemory)
	viper.SetDefault("CART_SESSION_TTL", "30m")
	viper.SetDefault("BACKEND_BASE_URL", "http://localhost:5000")
	viper.SetDefault("BACKEND_TIMEOUT", "10s")
	viper.SetDefault("CHECKOUT_DELIVERY_FEE", 2.00)
	viper.SetDefault("CHECKOUT_TAX_RATE", 0.08)
	viper.SetDefault("CHECKOUT_FREE_DELIVERY_THRESHOLD", 0)
	viper.SetDefault("CHECKOUT_LOGIN_URL", "/login")

	readTimeout, err := time.ParseDuration(viper.GetString("SERVER_READ_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	writeTimeout, err := time.ParseDuration(viper.GetString("SERVER_WRITE_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	idleTimeout, err := time.ParseDuration(viper.GetString("SERVER_IDLE_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	startupTimeout, err := time.ParseDuration(viper.GetString("SERVER_STARTUP_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	sessionTTL, err := time.ParseDuration(viper.GetString("CART_SESSION_TTL"))
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}

	cartTTL, err := time.ParseDuration(viper.GetString("REDIS_CART_TTL"))
	if err != nil {
		return nil, err
	}

	backendTimeout, err := time.ParseDuration(viper.GetString("BACKEND_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           viper.GetInt("SERVER_PORT"),
			ReadTimeout:    readTimeout,
			WriteTimeout:   writeTimeout,
			IdleTimeout:    idleTimeout,
			StartupTimeout: startupTimeout,
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Redis: RedisConfig{
			URL:     viper.GetString("REDIS_URL"),
			CartTTL: cartTTL,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Cart: CartConfig{
			Store:      viper.GetString("CART_STORE"),
			SessionTTL: sessionTTL,
		},
		Backend: BackendConfig{
			BaseURL: viper.GetString("BACKEND_BASE_URL"),
			Timeout: backendTimeout,
		},
		Checkout: CheckoutConfig{
			DeliveryFee:           viper.GetFloat64("CHECKOUT_DELIVERY_FEE"),
			TaxRate:               viper.GetFloat64("CHECKOUT_TAX_RATE"),
			FreeDeliveryThreshold: viper.GetFloat64("CHECKOUT_FREE_DELIVERY_THRESHOLD"),
			LoginURL:              viper.GetString("CHECKOUT_LOGIN_URL"),
		},
	}

	return cfg, nil
}
