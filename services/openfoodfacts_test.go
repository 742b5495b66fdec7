package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickCategory(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want string
	}{
		{"empty list", nil, ""},
		{"single english tag", []string{"en:pasta"}, "en:pasta"},
		{
			"middle of english tags, odd count",
			[]string{"en:plant-based-foods", "en:cereals-and-potatoes", "en:pastas"},
			"en:cereals-and-potatoes",
		},
		{
			"even count rounds toward the later element",
			[]string{"en:plant-based-foods", "en:cereals-and-potatoes", "en:cereals", "en:pastas"},
			"en:cereals",
		},
		{
			"non-english tags are filtered out first",
			[]string{"fr:aliments", "en:cereals-and-potatoes", "fr:pates", "en:pastas"},
			"en:pastas",
		},
		{
			"falls back to the middle of all tags",
			[]string{"fr:aliments", "fr:cereales", "fr:pates"},
			"fr:cereales",
		},
		{
			"fallback also rounds toward the later element",
			[]string{"fr:aliments", "fr:pates"},
			"fr:pates",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PickCategory(tt.tags)
			assert.Equal(t, tt.want, got)
			if len(tt.tags) > 0 {
				assert.Contains(t, tt.tags, got, "picked tag must come from the input")
			}
		})
	}
}

func TestLookupFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/product/5901234123457.json", r.URL.Path)
		fmt.Fprint(w, `{
			"status": 1,
			"product": {
				"product_name": "Spaghetti",
				"brands": "Barilla",
				"categories_tags": ["en:plant-based-foods", "en:cereals-and-potatoes", "en:pastas"],
				"image_front_small_url": "https://img.example/small.jpg",
				"image_url": "https://img.example/full.jpg",
				"quantity": "500g"
			}
		}`)
	}))
	defer srv.Close()

	client := NewOFFClient(srv.URL)
	info := client.Lookup(context.Background(), "5901234123457")

	require.NotNil(t, info)
	assert.Equal(t, "Spaghetti", info.Name)
	assert.Equal(t, "Barilla", info.Brand)
	assert.Equal(t, "en:cereals-and-potatoes", info.Category)
	assert.Equal(t, "https://img.example/small.jpg", info.ImageURL)
	assert.Equal(t, "500g", info.QuantityInfo)
}

func TestLookupNameFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		product string
		want    string
	}{
		{"english name when localized is missing", `{"product_name_en": "Rice"}`, "Rice"},
		{"unknown marker when no name at all", `{"brands": "NoName"}`, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"status": 1, "product": %s}`, tt.product)
			}))
			defer srv.Close()

			info := NewOFFClient(srv.URL).Lookup(context.Background(), "123")
			require.NotNil(t, info)
			assert.Equal(t, tt.want, info.Name)
		})
	}
}

func TestLookupImageFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": 1, "product": {"product_name": "Rice", "image_url": "https://img.example/full.jpg"}}`)
	}))
	defer srv.Close()

	info := NewOFFClient(srv.URL).Lookup(context.Background(), "123")
	require.NotNil(t, info)
	assert.Equal(t, "https://img.example/full.jpg", info.ImageURL)
}

func TestLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": 0, "status_verbose": "product not found"}`)
	}))
	defer srv.Close()

	assert.Nil(t, NewOFFClient(srv.URL).Lookup(context.Background(), "0000000000000"))
}

func TestLookupSwallowsFailures(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		assert.Nil(t, NewOFFClient(srv.URL).Lookup(context.Background(), "123"))
	})

	t.Run("bad json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":`)
		}))
		defer srv.Close()

		assert.Nil(t, NewOFFClient(srv.URL).Lookup(context.Background(), "123"))
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		assert.Nil(t, NewOFFClient(srv.URL).Lookup(context.Background(), "123"))
	})
}
