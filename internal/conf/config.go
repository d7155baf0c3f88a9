package conf

import (
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Database struct {
	// PrimaryDSN is the write target. ReplicaDSNs is an optional
	// comma-separated list of read targets; when empty all reads go to the
	// primary.
	PrimaryDSN  string   `env:"DATABASE_URL_PRIMARY"`
	ReplicaDSNs []string `env:"DATABASE_URL_REPLICA" envSeparator:","`
}

type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type Queue struct {
	URL string `env:"RABBITMQ_URL" envDefault:"amqp://localhost"`
}

type LLM struct {
	URL     string        `env:"LLM_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
}

type Log struct {
	Level    string `env:"LOG_LEVEL" envDefault:"info"`
	File     string `env:"LOG_FILE"`
	MaxSize  int    `env:"LOG_MAX_SIZE" envDefault:"50"`
	MaxAge   int    `env:"LOG_MAX_AGE" envDefault:"28"`
	Backups  int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	Compress bool   `env:"LOG_COMPRESS" envDefault:"false"`
}

type Config struct {
	Port        int    `env:"PORT" envDefault:"3001"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"fragrance-palette-secret"`
	Database    Database
	Redis       Redis
	Queue       Queue
	LLM         LLM
	Log         Log
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment")
	}
	return cfg, nil
}
