package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// ProductInfo holds the normalized attributes of a product returned by the
// Open Food Facts database.
type ProductInfo struct {
	Name         string `json:"name"`
	Brand        string `json:"brand,omitempty"`
	Category     string `json:"category,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	QuantityInfo string `json:"quantity_info,omitempty"` // e.g. "500g"
}

type offResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductName        string   `json:"product_name"`
		ProductNameEn      string   `json:"product_name_en"`
		Brands             string   `json:"brands"`
		CategoriesTags     []string `json:"categories_tags"`
		ImageFrontSmallURL string   `json:"image_front_small_url"`
		ImageURL           string   `json:"image_url"`
		Quantity           string   `json:"quantity"`
	} `json:"product"`
}

// OFFClient queries the Open Food Facts product database.
type OFFClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewOFFClient(baseURL string) *OFFClient {
	return &OFFClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Lookup fetches product info for a barcode. It returns nil when the product
// is not found or the service cannot be reached; failures are logged, never
// propagated.
func (c *OFFClient) Lookup(ctx context.Context, barcode string) *ProductInfo {
	url := fmt.Sprintf("%s/api/v0/product/%s.json", c.BaseURL, barcode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("Error looking up barcode %s: %v", barcode, err)
		return nil
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Printf("Error looking up barcode %s: %v", barcode, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Error looking up barcode %s: unexpected status %d", barcode, resp.StatusCode)
		return nil
	}

	var data offResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		log.Printf("Error looking up barcode %s: %v", barcode, err)
		return nil
	}

	if data.Status != 1 { // Product not found
		return nil
	}

	name := data.Product.ProductName
	if name == "" {
		name = data.Product.ProductNameEn
	}
	if name == "" {
		name = "Unknown"
	}

	imageURL := data.Product.ImageFrontSmallURL
	if imageURL == "" {
		imageURL = data.Product.ImageURL
	}

	return &ProductInfo{
		Name:         name,
		Brand:        data.Product.Brands,
		Category:     PickCategory(data.Product.CategoriesTags),
		ImageURL:     imageURL,
		QuantityInfo: data.Product.Quantity,
	}
}

// PickCategory reduces a broadest-to-most-specific list of category tags to a
// single mid-level tag. English ("en:") tags are preferred; the middle of the
// list groups products better than the generic head or the overly narrow
// tail. Returns "" for an empty list.
func PickCategory(tags []string) string {
	if len(tags) == 0 {
		return ""
	}

	var english []string
	for _, tag := range tags {
		if strings.HasPrefix(tag, "en:") {
			english = append(english, tag)
		}
	}
	if len(english) > 0 {
		return english[len(english)/2]
	}
	return tags[len(tags)/2]
}
