// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string `yaml:"env"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	RabbitConnectionString  string `yaml:"rabbit_connection_string"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Bkash                   `yaml:"bkash"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// Bkash хранит реквизиты платёжного шлюза bKash.
//
// Реквизиты приходят только из переменных окружения: без них запросы к шлюзу
// сформировать нельзя, поэтому их отсутствие останавливает запуск.
type Bkash struct {
	BaseURL     string        `yaml:"base_url" env:"BKASH_BASE_URL" env-required:"true"`
	AppKey      string        `yaml:"app_key" env:"BKASH_APP_KEY" env-required:"true"`
	AppSecret   string        `yaml:"app_secret" env:"BKASH_APP_SECRET" env-required:"true"`
	Username    string        `yaml:"username" env:"BKASH_USERNAME" env-required:"true"`
	Password    string        `yaml:"password" env:"BKASH_PASSWORD" env-required:"true"`
	CallbackURL string        `yaml:"callback_url" env:"BKASH_CALLBACK_URL" env-default:"http://localhost:8080/payment/callback"`
	Currency    string        `yaml:"currency" env:"BKASH_CURRENCY" env-default:"BDT"`
	Timeout     time.Duration `yaml:"timeout" env:"BKASH_TIMEOUT" env-default:"10s"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH, при ошибке завершает процесс.
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

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"RabbitConnectionString: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"Bkash:\n"+
			"  BaseURL: %s\n"+
			"  Currency: %s\n"+
			"  CallbackURL: %s\n"+
			"  Timeout: %s\n",
		c.Env,
		c.StorageConnectionString,
		c.RabbitConnectionString,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TokenTTL,
		c.Bkash.BaseURL,
		c.Bkash.Currency,
		c.Bkash.CallbackURL,
		c.Bkash.Timeout,
	)
}
