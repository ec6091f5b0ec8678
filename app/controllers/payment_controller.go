package controllers

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/clubshop-app/ClubShop/internal/pkg/database"
	"github.com/clubshop-app/ClubShop/internal/pkg/payments"
	"github.com/clubshop-app/ClubShop/internal/pkg/proofstore"
	"github.com/clubshop-app/ClubShop/internal/pkg/usercontext"
)

type switchMethodRequest struct {
	Method string `json:"method" validate:"required"`
}

// allowed upload types for payment proofs
var proofExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

func paymentService() *payments.Service {
	return payments.NewServiceFromDB(database.GetDB())
}

// HandleGetPayment returns a payment with its derived status. Owners see
// their own payments, staff see any.
func HandleGetPayment(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	payment, err := paymentService().Get(user.Buyer(), paymentID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment, "status": payment.Status()})
}

// HandleSwitchPaymentMethod changes the method of a pending payment. Any
// provider reference and uploaded proof are discarded with the old method.
func HandleSwitchPaymentMethod(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req switchMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": err.Error()})
	}

	payment, err := paymentService().SwitchMethod(user.Buyer(), paymentID, req.Method)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment, "status": payment.Status()})
}

// HandleUploadProof accepts a multipart transfer receipt for a pending PIX
// payment, stores it in object storage and attaches the key to the payment.
func HandleUploadProof(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	fileHeader, err := c.FormFile("proof")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "proof file is required"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !proofExtensions[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "unsupported proof file type"})
	}

	cfg, err := proofstore.LoadConfig()
	if err != nil || !cfg.IsEnabled() {
		log.Errorf("[Payments] proof store unavailable: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "storage_unavailable", "message": "proof storage is not available"})
	}

	client, err := proofstore.NewClient(cfg)
	if err != nil {
		log.Errorf("[Payments] proof store client: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "storage_unavailable", "message": "proof storage is not available"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer file.Close()

	objectKey, err := client.Upload(c.Context(), file, fileHeader.Filename)
	if err != nil {
		log.Errorf("[Payments] proof upload failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "storage_unavailable", "message": "could not store proof"})
	}

	payment, err := paymentService().AttachProof(user.Buyer(), paymentID, objectKey)
	if err != nil {
		// The payment rejected the proof, drop the orphaned object.
		if delErr := client.Delete(c.Context(), objectKey); delErr != nil {
			log.Warnf("[Payments] could not remove orphaned proof %s: %v", objectKey, delErr)
		}
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"payment": payment, "status": payment.Status()})
}

// HandleRemoveProof detaches the uploaded receipt from a pending payment.
func HandleRemoveProof(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	payment, err := paymentService().Get(user.Buyer(), paymentID)
	if err != nil {
		return respondError(c, err)
	}
	objectKey := payment.Attachment

	payment, err = paymentService().RemoveProof(user.Buyer(), paymentID)
	if err != nil {
		return respondError(c, err)
	}

	if objectKey != "" {
		if cfg, cfgErr := proofstore.LoadConfig(); cfgErr == nil && cfg.IsEnabled() {
			if client, clientErr := proofstore.NewClient(cfg); clientErr == nil {
				if delErr := client.Delete(c.Context(), objectKey); delErr != nil {
					log.Warnf("[Payments] could not delete proof object %s: %v", objectKey, delErr)
				}
			}
		}
	}

	return c.JSON(fiber.Map{"payment": payment, "status": payment.Status()})
}

// HandleConfirmPayment marks a pending payment as paid. Staff only.
func HandleConfirmPayment(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	payment, err := paymentService().Confirm(user.Buyer(), paymentID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment, "status": payment.Status()})
}

// HandleCancelPayment cancels a pending payment.
func HandleCancelPayment(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	payment, err := paymentService().Cancel(user.Buyer(), paymentID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment, "status": payment.Status()})
}

// HandleHostedSession creates or resumes the hosted checkout session for a
// card payment and returns the redirect URL.
func HandleHostedSession(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	checkoutURL, err := paymentService().CheckoutHosted(c.Context(), user.Buyer(), paymentID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"checkout_url": checkoutURL})
}
