package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the service configuration, read from the environment with an
// optional .env file loaded first.
type Config struct {
	Addr            string        `env:"LOGLAB_ADDR" env-default:":8000"`
	ServiceName     string        `env:"LOGLAB_SERVICE_NAME" env-default:"loglab"`
	JSONOutput      bool          `env:"LOGLAB_JSON_OUTPUT" env-default:"false"`
	LogLevel        string        `env:"LOGLAB_LOG_LEVEL" env-default:"INFO"`
	ExternalAPIURL  string        `env:"LOGLAB_EXTERNAL_API_URL" env-default:"https://httpbin.org/get"`
	ShutdownTimeout time.Duration `env:"LOGLAB_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Load reads configuration from the environment. A missing .env file is
// not an error; a malformed variable is.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &cfg, nil
}
