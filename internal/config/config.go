package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Server holds the inference service configuration, loaded from environment
// variables.
type Server struct {
	Addr            string
	ModelDir        string
	AllowedOrigin   string
	LogLevel        string
	HistoryLimit    int
	ShutdownSeconds int
}

// LoadServer reads the server configuration from the environment.
// MODEL_DIR may be empty: the server then serves the keyword heuristic
// classifier instead of a trained checkpoint.
func LoadServer() (Server, error) {
	addr, err := loadAddr()
	if err != nil {
		return Server{}, err
	}

	historyLimit := 64
	if override, err := parseOptionalIntEnv("HISTORY_LIMIT"); err != nil {
		return Server{}, err
	} else if override != nil {
		if *override < 1 {
			historyLimit = 1
		} else {
			historyLimit = *override
		}
	}

	shutdown := 10
	if override, err := parseOptionalIntEnv("SHUTDOWN_TIMEOUT"); err != nil {
		return Server{}, err
	} else if override != nil && *override > 0 {
		shutdown = *override
	}

	return Server{
		Addr:            addr,
		ModelDir:        strings.TrimSpace(os.Getenv("MODEL_DIR")),
		AllowedOrigin:   getEnvOrDefault("ALLOWED_ORIGIN", "*"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		HistoryLimit:    historyLimit,
		ShutdownSeconds: shutdown,
	}, nil
}

func loadAddr() (string, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow ":8080" or "127.0.0.1:8080" directly.
		return port, nil
	}
	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}
	return ":" + port, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
