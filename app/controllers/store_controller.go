package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/clubshop-app/ClubShop/app/models"
	"github.com/clubshop-app/ClubShop/app/repository"
	"github.com/clubshop-app/ClubShop/internal/pkg/pricing"
	"github.com/clubshop-app/ClubShop/internal/pkg/usercontext"
)

// storeItemResponse is a catalog item with the price already resolved for
// the requesting buyer's tier. The tier columns themselves stay private.
type storeItemResponse struct {
	ID          uint                `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       float64             `json:"price"`
	Currency    string              `json:"currency"`
	Stock       int                 `json:"stock"`
	ImageURL    string              `json:"image_url,omitempty"`
	Variants    []storeItemResponse `json:"variants,omitempty"`
}

func toStoreItem(item *models.Item, buyer pricing.BuyerContext) storeItemResponse {
	resp := storeItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       pricing.EffectivePrice(item, buyer),
		Currency:    item.Currency,
		Stock:       item.Stock,
		ImageURL:    item.ImageURL,
	}
	for i := range item.Variants {
		resp.Variants = append(resp.Variants, toStoreItem(&item.Variants[i], buyer))
	}
	return resp
}

// HandleStoreItems lists purchasable items with tier pricing applied.
func HandleStoreItems(c *fiber.Ctx) error {
	buyer := usercontext.GetUserContext(c).Buyer()

	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	repos := repository.GetGlobalRepositories()
	items, err := repos.Item.GetActive(offset, limit)
	if err != nil {
		return respondError(c, err)
	}

	resp := make([]storeItemResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toStoreItem(&items[i], buyer))
	}

	return c.JSON(fiber.Map{"items": resp, "offset": offset, "limit": limit})
}

// HandleStoreItem returns a single item, variants included.
func HandleStoreItem(c *fiber.Ctx) error {
	itemID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	buyer := usercontext.GetUserContext(c).Buyer()

	repos := repository.GetGlobalRepositories()
	item, err := repos.Item.GetByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "item not found"})
		}
		return respondError(c, err)
	}

	return c.JSON(toStoreItem(item, buyer))
}
