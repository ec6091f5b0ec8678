package controllers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clubshop-app/ClubShop/app/models"
	"github.com/clubshop-app/ClubShop/app/repository"
)

type stubItemRepository struct {
	items map[uint]*models.Item
}

func (s *stubItemRepository) Create(item *models.Item) error { return nil }

func (s *stubItemRepository) GetByID(id uint) (*models.Item, error) {
	if it, ok := s.items[id]; ok {
		return it, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubItemRepository) GetActive(offset, limit int) ([]models.Item, error) {
	var out []models.Item
	for _, it := range s.items {
		if it.ParentID == nil {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (s *stubItemRepository) GetFamily(parentID uint) ([]models.Item, error) { return nil, nil }
func (s *stubItemRepository) Update(item *models.Item) error                 { return nil }
func (s *stubItemRepository) Count() (int64, error)                          { return int64(len(s.items)), nil }

func TestHandleStoreItemIncludesVariants(t *testing.T) {
	parentID := uint(1)
	repository.SetGlobalRepositories(&repository.Repositories{
		Item: &stubItemRepository{items: map[uint]*models.Item{
			1: {
				ID: 1, Name: "Team Jersey", Price: 120, Currency: "BRL", Stock: 3, IsActive: true,
				Variants: []models.Item{
					{ID: 2, Name: "Team Jersey M", Price: 120, Currency: "BRL", Stock: 2, ParentID: &parentID, IsActive: true},
					{ID: 3, Name: "Team Jersey L", Price: 120, Currency: "BRL", Stock: 1, ParentID: &parentID, IsActive: true},
				},
			},
		}},
	})

	app := fiber.New()
	app.Get("/api/v1/store/items/:id", HandleStoreItem)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/store/items/1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got storeItemResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, uint(1), got.ID)
	require.Len(t, got.Variants, 2)
	assert.Equal(t, uint(2), got.Variants[0].ID)
	assert.Equal(t, uint(3), got.Variants[1].ID)
}

func TestHandleStoreItemNotFound(t *testing.T) {
	repository.SetGlobalRepositories(&repository.Repositories{
		Item: &stubItemRepository{items: map[uint]*models.Item{}},
	})

	app := fiber.New()
	app.Get("/api/v1/store/items/:id", HandleStoreItem)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/store/items/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
