package config

import (
	"fmt"
	"time"

	env "github.com/Netflix/go-env"
)

// Config holds all server settings, loaded from environment variables.
type Config struct {
	Addr         string        `env:"ADDR,default=:8000"`
	DatabasePath string        `env:"DATABASE_PATH,default=chatify.db"`
	UploadDir    string        `env:"UPLOAD_DIR,default=uploads"`
	JWTSecret    string        `env:"JWT_SECRET,required=true"`
	TokenTTL     time.Duration `env:"TOKEN_TTL,default=1h"`
	LogLevel     string        `env:"LOG_LEVEL,default=info"`
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}
