// Backfill the mid-level Open Food Facts category for existing items.
//
// By default only items missing a category are fetched; -force re-fetches
// every item with a barcode.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"almntshn/config"
	"almntshn/db"
	"almntshn/models"
	"almntshn/services"
)

func main() {
	force := flag.Bool("force", false, "re-fetch the category for all items, not just those missing one")
	flag.Parse()

	cfg := config.Load()
	database := db.Init(cfg.DatabasePath)
	off := services.NewOFFClient(cfg.OpenFoodFactsURL)

	query := database.Where("barcode != ''")
	if !*force {
		query = query.Where("category IS NULL OR category = ''")
	}

	var items []models.Item
	if err := query.Find(&items).Error; err != nil {
		log.Fatal("Failed to load items:", err)
	}
	if len(items) == 0 {
		fmt.Println("Nothing to backfill.")
		return
	}

	fmt.Printf("Fetching category for %d items from Open Food Facts...\n\n", len(items))

	updated, skipped := 0, 0
	for _, item := range items {
		fmt.Printf("  [%d] %s (%s)... ", item.ID, item.Name, item.Barcode)

		product := off.Lookup(context.Background(), item.Barcode)
		if product == nil || product.Category == "" {
			fmt.Println("not found in OFF")
			skipped++
			continue
		}

		if err := database.Model(&models.Item{}).Where("id = ?", item.ID).
			Update("category", product.Category).Error; err != nil {
			log.Fatal("Failed to update item:", err)
		}
		fmt.Println(product.Category)
		updated++
	}

	fmt.Printf("\nDone. Updated: %d, Not found: %d\n", updated, skipped)
}
