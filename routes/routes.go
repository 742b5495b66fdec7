package routes

import (
	"fmt"
	"math"
	"path/filepath"

	"almntshn/models"
	"almntshn/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validate = validator.New()

type ItemCreateRequest struct {
	Barcode  string `json:"barcode" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
	ImageURL string `json:"image_url"`
	Unit     string `json:"unit" validate:"omitempty,oneof=pcs g kg ml L"`
}

type ItemUpdateRequest struct {
	Name     *string `json:"name"`
	Brand    *string `json:"brand"`
	Category *string `json:"category"`
	ImageURL *string `json:"image_url"`
	Unit     *string `json:"unit" validate:"omitempty,oneof=pcs g kg ml L"`
}

type InventoryUpdateRequest struct {
	Quantity *float64 `json:"quantity" validate:"omitempty,gte=0"`
	Location *string  `json:"location"`
}

type ScanRequest struct {
	Barcode string `json:"barcode" validate:"required"`
}

type AdjustQuantityRequest struct {
	Barcode string  `json:"barcode" validate:"required"`
	Delta   float64 `json:"delta"` // positive to add, negative to remove
}

type QuickAddRequest struct {
	Barcode string `json:"barcode" validate:"required"`
	Name    string `json:"name"` // If not provided, will look up
}

type SimilarItem struct {
	Item     models.Item `json:"item"`
	Quantity float64     `json:"quantity"`
}

// ScanResult is the combined response for a barcode scan.
type ScanResult struct {
	FoundInInventory bool                  `json:"found_in_inventory"`
	Item             *models.Item          `json:"item"`
	Quantity         float64               `json:"quantity"`
	SimilarItems     []SimilarItem         `json:"similar_items"`
	ProductInfo      *services.ProductInfo `json:"product_info"`
}

// Handler carries the per-request collaborators: the persistence handle and
// the external product lookup client.
type Handler struct {
	db         *gorm.DB
	off        *services.OFFClient
	uploadsDir string
}

func SetupRoutes(app *fiber.App, database *gorm.DB, off *services.OFFClient, uploadsDir string) {
	h := &Handler{db: database, off: off, uploadsDir: uploadsDir}

	app.Get("/health", h.health)

	// Image upload route
	app.Post("/upload", h.uploadImage)

	api := app.Group("/api")

	// Item routes
	items := api.Group("/items")
	items.Get("/", h.listItems)
	items.Get("/barcode/:barcode", h.getItemByBarcode)
	items.Get("/:id", h.getItem)
	items.Post("/", h.createItem)
	items.Put("/:id", h.updateItem)
	items.Delete("/:id", h.deleteItem)

	// Inventory routes
	inventory := api.Group("/inventory")
	inventory.Get("/", h.listInventory)
	inventory.Post("/scan", h.scanBarcode)
	inventory.Post("/quick-add", h.quickAdd)
	inventory.Post("/adjust", h.adjustQuantity)
	inventory.Put("/:item_id", h.updateInventory)
	inventory.Delete("/barcode/:barcode", h.removeFromInventory)
}

func (h *Handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Image upload handler
func (h *Handler) uploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to get uploaded file",
		})
	}

	// Generate unique filename
	ext := filepath.Ext(file.Filename)
	filename := uuid.New().String() + ext

	if err := c.SaveFile(file, filepath.Join(h.uploadsDir, filename)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save file",
		})
	}

	// Return the file path that can be stored as an item's image_url
	return c.JSON(fiber.Map{
		"filename": filename,
		"path":     "/uploads/" + filename,
	})
}

// pagination reads the skip/limit query parameters with the API defaults.
func pagination(c *fiber.Ctx) (skip, limit int, err error) {
	skip = c.QueryInt("skip", 0)
	limit = c.QueryInt("limit", 100)
	if skip < 0 || limit < 0 {
		return 0, 0, fmt.Errorf("invalid pagination parameters")
	}
	return skip, limit, nil
}

// ListItems - GET /api/items
func (h *Handler) listItems(c *fiber.Ctx) error {
	skip, limit, err := pagination(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skip or limit parameter",
		})
	}

	query := h.db.Model(&models.Item{})
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	items := []models.Item{}
	if err := query.Offset(skip).Limit(limit).Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get items",
		})
	}

	return c.JSON(items)
}

// GetItemByBarcode - GET /api/items/barcode/:barcode
func (h *Handler) getItemByBarcode(c *fiber.Ctx) error {
	var item models.Item
	if err := h.db.Where("barcode = ?", c.Params("barcode")).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get item",
		})
	}
	return c.JSON(item)
}

// GetItem - GET /api/items/:id
func (h *Handler) getItem(c *fiber.Ctx) error {
	var item models.Item
	if err := h.db.First(&item, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get item",
		})
	}
	return c.JSON(item)
}

// CreateItem - POST /api/items
func (h *Handler) createItem(c *fiber.Ctx) error {
	req := new(ItemCreateRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Barcode and name are required",
		})
	}

	var existing models.Item
	if err := h.db.Where("barcode = ?", req.Barcode).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Item with this barcode already exists",
		})
	} else if err != gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check barcode",
		})
	}

	item := models.Item{
		Barcode:  req.Barcode,
		Name:     req.Name,
		Brand:    req.Brand,
		Category: req.Category,
		ImageURL: req.ImageURL,
		Unit:     req.Unit,
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}

	if err := h.db.Create(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create item",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateItem - PUT /api/items/:id
func (h *Handler) updateItem(c *fiber.Ctx) error {
	req := new(ItemUpdateRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid unit",
		})
	}

	var item models.Item
	if err := h.db.First(&item, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find item",
		})
	}

	// Apply only the provided fields
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}

	if len(updates) > 0 {
		if err := h.db.Model(&item).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update item",
			})
		}
		if err := h.db.First(&item, item.ID).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to reload item",
			})
		}
	}

	return c.JSON(item)
}

// DeleteItem - DELETE /api/items/:id
// Deletes the item's inventory record first, then the item.
func (h *Handler) deleteItem(c *fiber.Ctx) error {
	var item models.Item
	if err := h.db.First(&item, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find item",
		})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", item.ID).Delete(&models.Inventory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete item",
		})
	}

	return c.JSON(fiber.Map{"ok": true})
}

// ListInventory - GET /api/inventory
func (h *Handler) listInventory(c *fiber.Ctx) error {
	skip, limit, err := pagination(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skip or limit parameter",
		})
	}

	query := h.db.Preload("Item")
	if search := c.Query("search"); search != "" {
		query = query.Select("inventory.*").
			Joins("JOIN items ON items.id = inventory.item_id").
			Where("LOWER(items.name) LIKE LOWER(?)", "%"+search+"%")
	}
	if c.QueryBool("in_stock_only", false) {
		query = query.Where("inventory.quantity > 0")
	}

	records := []models.Inventory{}
	if err := query.Offset(skip).Limit(limit).Find(&records).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get inventory",
		})
	}

	return c.JSON(records)
}

// findSimilarItems returns inventory records whose item shares the given
// category, optionally excluding one item. An empty category matches nothing.
func (h *Handler) findSimilarItems(category string, excludeItemID uint) ([]SimilarItem, error) {
	similar := []SimilarItem{}
	if category == "" {
		return similar, nil
	}

	query := h.db.Preload("Item").Select("inventory.*").
		Joins("JOIN items ON items.id = inventory.item_id").
		Where("items.category = ?", category)
	if excludeItemID != 0 {
		query = query.Where("items.id != ?", excludeItemID)
	}

	var records []models.Inventory
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	for _, inv := range records {
		similar = append(similar, SimilarItem{Item: inv.Item, Quantity: inv.Quantity})
	}
	return similar, nil
}

// ScanBarcode - POST /api/inventory/scan
// Checks whether we already track the barcode. Unknown barcodes are looked up
// in Open Food Facts. Either way, similar already-tracked items are included.
func (h *Handler) scanBarcode(c *fiber.Ctx) error {
	req := new(ScanRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Barcode is required",
		})
	}

	// Log the scan before anything else can fail
	if err := h.db.Create(&models.ScanHistory{Barcode: req.Barcode, Action: "check"}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log scan",
		})
	}

	var item models.Item
	err := h.db.Where("barcode = ?", req.Barcode).First(&item).Error
	if err == nil {
		quantity := 0.0
		var inventory models.Inventory
		if err := h.db.Where("item_id = ?", item.ID).First(&inventory).Error; err == nil {
			quantity = inventory.Quantity
		} else if err != gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to get inventory",
			})
		}

		similar, err := h.findSimilarItems(item.Category, item.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to find similar items",
			})
		}

		return c.JSON(ScanResult{
			FoundInInventory: true,
			Item:             &item,
			Quantity:         quantity,
			SimilarItems:     similar,
		})
	}
	if err != gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to look up item",
		})
	}

	// Not in our database - look up in Open Food Facts
	productInfo := h.off.Lookup(c.UserContext(), req.Barcode)

	// Even for unknown items, check if we have something similar
	similar := []SimilarItem{}
	if productInfo != nil && productInfo.Category != "" {
		similar, err = h.findSimilarItems(productInfo.Category, 0)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to find similar items",
			})
		}
	}

	return c.JSON(ScanResult{
		FoundInInventory: false,
		ProductInfo:      productInfo,
		SimilarItems:     similar,
	})
}

// applyDelta lazily creates the inventory record for an item, clamps the new
// quantity at zero and appends the matching scan-history row, all in one
// transaction. The returned record has its item preloaded.
func (h *Handler) applyDelta(barcode string, itemID uint, delta float64) (*models.Inventory, error) {
	var inventory models.Inventory
	err := h.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("item_id = ?", itemID).First(&inventory).Error
		if err == gorm.ErrRecordNotFound {
			inventory = models.Inventory{ItemID: itemID, Quantity: 0}
			if err := tx.Omit("Item").Create(&inventory).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		newQuantity := inventory.Quantity + delta
		if newQuantity < 0 {
			newQuantity = 0
		}
		if err := tx.Model(&inventory).Update("quantity", newQuantity).Error; err != nil {
			return err
		}
		inventory.Quantity = newQuantity

		action := "remove"
		if delta > 0 {
			action = "add"
		}
		return tx.Create(&models.ScanHistory{
			Barcode:  barcode,
			Action:   action,
			Quantity: math.Abs(delta),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if err := h.db.Preload("Item").First(&inventory, inventory.ID).Error; err != nil {
		return nil, err
	}
	return &inventory, nil
}

// QuickAdd - POST /api/inventory/quick-add
// Adds 1 of a barcode, creating the item on the fly if needed (from the
// provided name, an Open Food Facts lookup, or a placeholder).
func (h *Handler) quickAdd(c *fiber.Ctx) error {
	req := new(QuickAddRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Barcode is required",
		})
	}

	var item models.Item
	err := h.db.Where("barcode = ?", req.Barcode).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		info := &services.ProductInfo{Name: req.Name}
		if info.Name == "" {
			if found := h.off.Lookup(c.UserContext(), req.Barcode); found != nil {
				info = found
			} else {
				info.Name = fmt.Sprintf("Unknown (%s)", req.Barcode)
			}
		}

		item = models.Item{
			Barcode:  req.Barcode,
			Name:     info.Name,
			Brand:    info.Brand,
			Category: info.Category,
			ImageURL: info.ImageURL,
		}
		if err := h.db.Create(&item).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create item",
			})
		}
	} else if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to look up item",
		})
	}

	inventory, err := h.applyDelta(req.Barcode, item.ID, 1)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update inventory",
		})
	}

	return c.JSON(inventory)
}

// AdjustQuantity - POST /api/inventory/adjust
func (h *Handler) adjustQuantity(c *fiber.Ctx) error {
	req := new(AdjustQuantityRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Barcode is required",
		})
	}

	var item models.Item
	if err := h.db.Where("barcode = ?", req.Barcode).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Item not found. Scan it first to add.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to look up item",
		})
	}

	inventory, err := h.applyDelta(req.Barcode, item.ID, req.Delta)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update inventory",
		})
	}

	return c.JSON(inventory)
}

// UpdateInventory - PUT /api/inventory/:item_id
func (h *Handler) updateInventory(c *fiber.Ctx) error {
	req := new(InventoryUpdateRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Quantity must not be negative",
		})
	}

	var inventory models.Inventory
	if err := h.db.Where("item_id = ?", c.Params("item_id")).First(&inventory).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Inventory record not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find inventory record",
		})
	}

	updates := map[string]interface{}{}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}

	if len(updates) > 0 {
		if err := h.db.Model(&inventory).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update inventory",
			})
		}
	}

	if err := h.db.Preload("Item").First(&inventory, inventory.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reload inventory",
		})
	}

	return c.JSON(inventory)
}

// RemoveFromInventory - DELETE /api/inventory/barcode/:barcode
// Stops tracking an item by zeroing its quantity; the record stays around.
func (h *Handler) removeFromInventory(c *fiber.Ctx) error {
	var item models.Item
	if err := h.db.Where("barcode = ?", c.Params("barcode")).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to look up item",
		})
	}

	var inventory models.Inventory
	err := h.db.Where("item_id = ?", item.ID).First(&inventory).Error
	if err == nil {
		if err := h.db.Model(&inventory).Update("quantity", 0).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update inventory",
			})
		}
	} else if err != gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find inventory record",
		})
	}

	return c.JSON(fiber.Map{"ok": true})
}
