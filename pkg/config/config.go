package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Wallet  WalletConfig  `mapstructure:"wallet"`
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	DB      DBConfig      `mapstructure:"db"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Journal JournalConfig `mapstructure:"journal"`
}

type AppConfig struct {
	Env      string `mapstructure:"env" validate:"oneof=development production test"`
	LogLevel string `mapstructure:"log_level"`
	HttpPort string `mapstructure:"http_port" validate:"required,numeric"`
}

type WalletConfig struct {
	// RpcUrl 钱包能力的 JSON-RPC 入口 (http(s):// 或 ws(s)://)，为空表示未检测到钱包
	RpcUrl         string        `mapstructure:"rpc_url" validate:"omitempty,url"`
	PollInterval   time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout" validate:"gt=0"`
	ReceiptPoll    time.Duration `mapstructure:"receipt_poll" validate:"gt=0"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=leveldb redis postgres memory"`
	Path   string `mapstructure:"path" validate:"required_if=Driver leveldb"`
	Key    string `mapstructure:"key" validate:"required"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

// DSN returns the gorm/pgx connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.User, c.Password, c.Name, c.Port)
}

// URL returns the postgres:// form used by golang-migrate.
func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver" validate:"oneof=redis kafka"`
	Topic   string `mapstructure:"topic" validate:"required"`
}

var Global Config

// Init loads the configuration into Global and exits on failure.
func Init(file string) {
	cfg, err := Load(file)
	if err != nil {
		log.Fatalf("Unable to load configuration: %v", err)
	}
	Global = *cfg
	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

// Load reads config.yaml (or the given file), applies environment overrides and
// validates the result.
func Load(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// 环境变量覆盖: wallet.rpc_url -> WALLET_RPC_URL
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Printf("Warning: Config file not found, using defaults and environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags on the loaded configuration.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "")
	v.SetDefault("app.http_port", "8080")

	v.SetDefault("wallet.rpc_url", "http://127.0.0.1:1248")
	v.SetDefault("wallet.poll_interval", 2*time.Second)
	v.SetDefault("wallet.request_timeout", 2*time.Minute)
	v.SetDefault("wallet.confirm_timeout", 10*time.Minute)
	v.SetDefault("wallet.receipt_poll", 2*time.Second)

	v.SetDefault("store.driver", "leveldb")
	v.SetDefault("store.path", "operator-console.db")
	v.SetDefault("store.key", "lastTxHash")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "console_user")
	v.SetDefault("db.password", "console_password")
	v.SetDefault("db.name", "console_db")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.driver", "redis")
	v.SetDefault("journal.topic", "console_events_tx")
}
