package main

import (
	"log"
	"os"

	"almntshn/config"
	"almntshn/db"
	"almntshn/routes"
	"almntshn/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg := config.Load()

	// Initialize database
	database := db.Init(cfg.DatabasePath)

	// Create uploads directory if it doesn't exist
	if _, err := os.Stat(cfg.UploadsDir); os.IsNotExist(err) {
		os.Mkdir(cfg.UploadsDir, 0755)
	}

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Serve uploaded images and the frontend
	app.Static("/uploads", cfg.UploadsDir)
	app.Static("/", cfg.FrontendDir)

	// Setup routes
	routes.SetupRoutes(app, database, services.NewOFFClient(cfg.OpenFoodFactsURL), cfg.UploadsDir)

	// Start server
	log.Fatal(app.Listen(":" + cfg.Port))
}
