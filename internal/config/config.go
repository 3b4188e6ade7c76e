package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Game       Game   `yaml:"game"`
}

// Game fixes the board geometry and the run length required to win.
// The client renders whatever board it is sent, so these are the single
// source of truth for the game shape.
type Game struct {
	BoardRows int `yaml:"board-rows" env:"BOARD_ROWS" env-default:"20"`
	BoardCols int `yaml:"board-cols" env:"BOARD_COLS" env-default:"20"`
	WinLength int `yaml:"win-length" env:"WIN_LENGTH" env-default:"5"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}
