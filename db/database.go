package db

import (
	"log"
	"os"
	"path/filepath"

	"almntshn/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Init opens the SQLite database at dbPath, creating the directory if
// needed, and migrates the schema.
func Init(dbPath string) *gorm.DB {
	// Ensure the directory exists (create if it doesn't)
	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal("Failed to create database directory:", err)
		}
	}

	database, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	log.Println("Database connected successfully at", dbPath)

	// Auto migrate the schema
	if err := database.AutoMigrate(
		&models.Item{}, &models.Inventory{}, &models.ScanHistory{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	return database
}
