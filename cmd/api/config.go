package main

import (
	"log"
	"os"

	"property-catalog/pkg/config"
	"property-catalog/pkg/logger"

	"github.com/joho/godotenv"
)

// LoadConfiguration reads .env, then the YAML config, and initialises the global logger.
func LoadConfiguration() *config.Config {
	loadEnvironment()
	cfg := loadConfigFile()
	logger.InitLogger(os.Stdout, cfg.Log.Level)
	return cfg
}

func loadEnvironment() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, relying on system environment variables: %v", err)
	}
}

func loadConfigFile() *config.Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.GlobalLogger.Errorf("failed to load config %s: %v", configPath, err)
		os.Exit(1)
	}
	return cfg
}
