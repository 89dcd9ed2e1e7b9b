package config

import "votcletta/internal/letta"

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:        letta.DefaultBaseURL,
			TimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
