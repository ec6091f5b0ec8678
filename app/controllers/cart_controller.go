package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clubshop-app/ClubShop/internal/pkg/apperrors"
	"github.com/clubshop-app/ClubShop/internal/pkg/commerce"
	"github.com/clubshop-app/ClubShop/internal/pkg/database"
	"github.com/clubshop-app/ClubShop/internal/pkg/usercontext"
)

type addCartItemRequest struct {
	ItemID   uint `json:"item_id" validate:"required,gt=0"`
	Quantity int  `json:"quantity" validate:"required,gt=0"`
}

type removeCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

type checkoutRequest struct {
	OrderID uint   `json:"order_id"`
	Method  string `json:"method" validate:"required"`
}

func cartService() *commerce.Service {
	return commerce.NewServiceFromDB(database.GetDB())
}

// HandleGetCart returns the caller's open cart with its lines and total.
func HandleGetCart(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	order, err := cartService().GetCart(user.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"order": order, "total": order.Total()})
}

// HandleAddCartItem adds quantity of an item to the open cart, creating the
// cart when none exists.
func HandleAddCartItem(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	var req addCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": err.Error()})
	}

	line, err := cartService().AddToCart(user.Buyer(), req.ItemID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(line)
}

// HandleRemoveCartItem removes quantity units from a cart line. The line is
// deleted once its quantity reaches zero.
func HandleRemoveCartItem(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	lineID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	req := removeCartItemRequest{Quantity: 1}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "invalid request body"})
		}
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": err.Error()})
	}

	if err := cartService().RemoveFromCart(user.Buyer(), lineID, req.Quantity); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "item removed"})
}

// HandleCheckout seals the open cart into an order and opens a payment for
// it. When no order id is given the caller's current open cart is used.
func HandleCheckout(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": err.Error()})
	}

	svc := cartService()

	orderID := req.OrderID
	if orderID == 0 {
		order, err := svc.GetCart(user.UserID)
		if err != nil {
			return respondError(c, err)
		}
		if order.ID == 0 {
			return respondError(c, apperrors.ErrEmptyOrder)
		}
		orderID = order.ID
	}

	payment, err := svc.Checkout(user.UserID, orderID, req.Method)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"payment": payment, "status": payment.Status()})
}
