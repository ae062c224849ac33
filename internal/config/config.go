package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"development"` // environment
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Cache      CacheConfig      `yaml:"cache"`
	Migrations MigrationsConfig `yaml:"migrations"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	// статус ответа, когда операцию для администратора вызывает обычный пользователь
	ForbiddenStatus  int             `yaml:"forbidden_status" env-default:"403"`
	CompressionLevel int             `yaml:"compression_level" env-default:"5"`
	RateLimit        RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig лимит запросов на клиента; rps = 0 выключает ограничение
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" env-default:"20"`
	Burst int     `yaml:"burst" env-default:"40"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name     string `yaml:"name" env-required:"true"`
}

// JWTConfig настройка jwt
type JWTConfig struct {
	Secret   string `yaml:"-" env:"JWT_SECRET" env-required:"true"`
	TokenTTL int    `yaml:"token_ttl" env-default:"60"` // минуты
}

// CacheConfig кэш каталога товаров
type CacheConfig struct {
	Driver          string        `yaml:"driver" env:"CACHE_DRIVER" env-default:"memory"` // memory | redis | none
	RedisAddr       string        `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisDB         int           `yaml:"redis_db" env-default:"0"`
	RedisPassword   string        `yaml:"-" env:"REDIS_PASSWORD"`
	Key             string        `yaml:"key" env-default:"storefront:items"`
	TTL             time.Duration `yaml:"ttl" env-default:"10m"`
	RefreshSchedule string        `yaml:"refresh_schedule" env-default:"@every 5m"` // пустая строка выключает обновление
}

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// TTL время жизни токена сессии
func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.TokenTTL) * time.Minute
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	// .env необязателен, переменные окружения могут прийти и снаружи
	_ = godotenv.Load()

	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

func fetchConfigPath() string {
	var path string

	if f := flag.Lookup("config"); f != nil {
		path = f.Value.String()
	} else {
		flag.StringVar(&path, "config", "", "path to config file")
		flag.Parse()
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("can't read config file " + configPath + ": " + err.Error())
	}

	return &cfg
}
