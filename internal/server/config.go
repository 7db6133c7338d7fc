package server

import (
	"fmt"
	"os"
	"strconv"

	"github.com/logtide/logtide/internal/commons"
)

type Config struct {
	ServerPort    uint16
	DataDir       string
	RetentionDays int
	RedisAddr     string
	RedisPass     string
}

const (
	decimalBase = 10
	portBitSize = 16
)

func LoadConfig() (Config, error) {
	var config Config
	var errors []string

	config.DataDir = os.Getenv("DATA_DIR")
	if config.DataDir == "" {
		errors = append(errors, "DATA_DIR is not set")
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		errors = append(errors, "SERVER_PORT is not set")
	} else {
		parsedServerPort, err := strconv.ParseUint(serverPort, decimalBase, portBitSize)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid SERVER_PORT: %s", err))
		} else {
			config.ServerPort = uint16(parsedServerPort)
		}
	}

	retention := os.Getenv("RETENTION_DAYS")
	if retention == "" {
		config.RetentionDays = commons.DefaultRetentionDays
	} else {
		parsedRetention, err := strconv.Atoi(retention)
		if err != nil || parsedRetention <= 0 {
			errors = append(errors, fmt.Sprintf("invalid RETENTION_DAYS: %q", retention))
		} else {
			config.RetentionDays = parsedRetention
		}
	}

	// The query cache is optional; no Redis address simply disables it.
	config.RedisAddr = os.Getenv("REDIS_ADDR")
	config.RedisPass = os.Getenv("REDIS_PASSWORD")

	if len(errors) > 0 {
		for _, err := range errors {
			fmt.Println("Configuration Error:", err)
		}
		return Config{}, fmt.Errorf("configuration errors occurred")
	}

	return config, nil
}
