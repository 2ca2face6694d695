// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек сервиса
type Config struct {
	Env                     string        `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string        `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	RabbitConnection        string        `yaml:"rabbit_connection" env:"RABBIT_CONNECTION"`
	RabbitMaxRetries        int           `yaml:"rabbit_max_retries" env-default:"5"`
	RabbitRetryDelay        time.Duration `yaml:"rabbit_retry_delay" env-default:"3s"`
	AdminEmails             []string      `yaml:"admin_emails" env:"ADMIN_EMAILS" env-default:"warrenokumu98@gmail.com"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	PriceFeed               `yaml:"price_feed"`
	SMTP                    `yaml:"smtp"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"0.0.0.0:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env-default:"localhost:6379"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// PriceFeed структура для настройки клиента публичного индекса цен.
// ProfileFetchTimeout живет здесь же: оба значения ограничивают фоновые
// запросы, которые не должны блокировать пользователя.
type PriceFeed struct {
	BaseURL             string        `yaml:"base_url" env-default:"https://api.coingecko.com/api/v3"`
	PollInterval        time.Duration `yaml:"poll_interval" env-default:"5m"`
	RequestTimeout      time.Duration `yaml:"request_timeout" env-default:"10s"`
	ProfileFetchTimeout time.Duration `yaml:"profile_fetch_timeout" env-default:"3s"`
}

// SMTP структура для настройки почтового транспорта уведомлений
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port" env-default:"587"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass"`
}

// MustLoad функция для загрузки конфига, путь берется из переменной окружения CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
