package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	// LogFile enables a rotating file sink next to stdout when set.
	LogFile string `envconfig:"LOG_FILE"`

	PreviewSize     int     `envconfig:"PREVIEW_SIZE" default:"512"`
	VertexPickRange float64 `envconfig:"VERTEX_PICK_RANGE" default:"0.02"`
	// MaxRooms bounds the scenes held in memory at once.
	MaxRooms int `envconfig:"MAX_ROOMS" default:"1000"`
	// SeedSample fills new rooms with the sample scene instead of an empty one.
	SeedSample bool `envconfig:"SEED_SAMPLE" default:"true"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
