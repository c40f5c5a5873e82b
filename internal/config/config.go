package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	Game       Game   `yaml:"game"`
}

type Game struct {
	BoardSize       int           `yaml:"board-size" env-default:"15"`
	PingInterval    time.Duration `yaml:"ping-interval" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle-timeout" env-default:"1h"`
	CleanupInterval time.Duration `yaml:"cleanup-interval" env-default:"30m"`
	EmptyRoomGrace  time.Duration `yaml:"empty-room-grace" env-default:"5s"`
	DisconnectGrace time.Duration `yaml:"disconnect-grace" env-default:"30s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}
