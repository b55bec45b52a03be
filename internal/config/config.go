package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type PaymentConfig struct {
	Env        string `yaml:"env"`
	HTTPServer `yaml:"http_server"`
	OrderDB    `yaml:"order_db"`
	LogConfig  `yaml:"log_config"`
	Kafka      `yaml:"kafka"`
	Gateways   `yaml:"gateways"`
	Reconciler `yaml:"reconciler"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type OrderDB struct {
	Dsn            string `yaml:"dsn" env:"ORDER_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type Kafka struct {
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	OrderTopic string `yaml:"order_topic"`
}

type Gateways struct {
	Default  string        `yaml:"default"`
	Cashfree GatewayConfig `yaml:"cashfree" env-prefix:"CASHFREE_"`
	Razorpay GatewayConfig `yaml:"razorpay" env-prefix:"RAZORPAY_"`
}

type GatewayConfig struct {
	BaseURL       string `yaml:"base_url" env:"BASE_URL"`
	ClientID      string `yaml:"client_id" env:"CLIENT_ID"`
	ClientSecret  string `yaml:"client_secret" env:"CLIENT_SECRET"`
	WebhookSecret string `yaml:"webhook_secret" env:"WEBHOOK_SECRET"`
}

type Reconciler struct {
	Enabled    bool          `yaml:"enabled"`
	Interval   time.Duration `yaml:"interval"`
	PendingAge time.Duration `yaml:"pending_age"`
	BatchSize  int           `yaml:"batch_size"`
}

func MustLoad() *PaymentConfig {

	// Processing env config variable and file
	configPath := os.Getenv("PAYMENT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("PAYMENT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg PaymentConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
