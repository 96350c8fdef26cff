package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/tom5610/sagemaker-101-workshop/db"
	serving "github.com/tom5610/sagemaker-101-workshop/http"
	"github.com/tom5610/sagemaker-101-workshop/logging"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Http struct {
		Port           int      `yaml:"port"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		CacheSize      int      `yaml:"cache_size"`
	} `yaml:"http"`
	Model struct {
		Dir string `yaml:"dir"`
	} `yaml:"model"`
	Log struct {
		Level string             `yaml:"level"`
		File  logging.FileConfig `yaml:"file"`
	} `yaml:"log"`
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(config.Log.Level, config.Log.File)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Initialize database
	if err := db.InitDB(config.Database.Path); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	log.Printf("Database initialized at %s", config.Database.Path)

	// 3. Load model artifacts and watch for retrains
	watcher, err := serving.NewModelWatcher(config.Model.Dir, logger)
	if err != nil {
		log.Fatalf("Failed to watch model dir: %v", err)
	}
	defer watcher.Stop()

	// 4. Start HTTP server
	serverConfig := serving.DefaultServerConfig()
	if config.Http.Port != 0 {
		serverConfig.Port = config.Http.Port
	}
	if config.Http.TimeoutSeconds != 0 {
		serverConfig.Timeout = time.Duration(config.Http.TimeoutSeconds) * time.Second
	}
	if len(config.Http.AllowedOrigins) > 0 {
		serverConfig.AllowedOrigins = config.Http.AllowedOrigins
	}
	if config.Http.CacheSize != 0 {
		serverConfig.CacheSize = config.Http.CacheSize
	}

	server, err := serving.NewServer(serverConfig, logger)
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// 5. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	if err := server.Stop(); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
