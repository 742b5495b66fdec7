package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DatabasePath     string
	OpenFoodFactsURL string
	FrontendDir      string
	UploadsDir       string
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port:             getEnv("PORT", "3000"),
		DatabasePath:     getEnv("DATABASE_PATH", "data/inventory.db"),
		OpenFoodFactsURL: getEnv("OPENFOODFACTS_URL", "https://world.openfoodfacts.org"),
		FrontendDir:      getEnv("FRONTEND_DIR", "./frontend"),
		UploadsDir:       getEnv("UPLOADS_DIR", "./uploads"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
