package payments

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/clubshop-app/ClubShop/app/models"
	"github.com/clubshop-app/ClubShop/internal/pkg/apperrors"
	"github.com/clubshop-app/ClubShop/internal/pkg/pricing"
	"github.com/clubshop-app/ClubShop/internal/pkg/tiercache"
)

// nowFunc and invalidateTier are swapped in tests.
var (
	nowFunc        = time.Now
	invalidateTier = tiercache.Invalidate
)

const webhookProviderPagSeguro = "pagseguro"

// HostedCheckoutProvider creates and retrieves provider-hosted checkout
// sessions (the STRIPE method).
type HostedCheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, amount float64, currency, reference string) (*CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

// NotificationProvider resolves webhook notification codes to gateway
// transactions (the PAGSEGURO method).
type NotificationProvider interface {
	FetchNotification(ctx context.Context, notificationCode string) (*PagSeguroTransaction, error)
}

// Service owns the payment state machine: PENDING into exactly one of the
// terminal flags, with the proof-attachment slot usable only while pending.
type Service struct {
	repo     Repository
	hosted   HostedCheckoutProvider
	notifier NotificationProvider
}

// NewService creates a payment service from injected collaborators.
func NewService(repo Repository, hosted HostedCheckoutProvider, notifier NotificationProvider) *Service {
	return &Service{repo: repo, hosted: hosted, notifier: notifier}
}

// NewServiceFromDB creates a payment service with the env-configured
// provider clients.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), NewStripeClientFromEnv(), NewPagSeguroClientFromEnv())
}

// Get returns a payment. Staff may read any payment; everyone else only
// their own.
func (s *Service) Get(requester pricing.BuyerContext, paymentID uint) (*models.Payment, error) {
	payment, err := s.repo.GetPayment(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	if !requester.IsStaff && payment.UserID != requester.UserID {
		return nil, apperrors.ErrUnauthorized
	}
	return payment, nil
}

// SwitchMethod changes the payment method while the payment is pending.
// Provider sessions are method-specific, so the ref id and any uploaded
// proof are cleared with the switch.
func (s *Service) SwitchMethod(requester pricing.BuyerContext, paymentID uint, newMethod string) (*models.Payment, error) {
	if !models.IsValidPaymentMethod(newMethod) {
		return nil, apperrors.NewValidation("unknown payment method %q", newMethod)
	}

	payment, err := s.Get(requester, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.IsTerminal() {
		return nil, apperrors.NewValidation("payment is no longer pending")
	}

	updates := map[string]interface{}{
		"method": newMethod,
		"ref_id": "",
	}
	if newMethod != models.PaymentMethodPix {
		updates["attachment"] = ""
	}
	ok, err := s.repo.UpdatePendingPayment(paymentID, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race against a terminal transition.
		return nil, apperrors.NewValidation("payment is no longer pending")
	}
	return s.repo.GetPayment(paymentID)
}

// AttachProof stores the proof-of-payment blob reference on a pending PIX
// payment. The payment then reads as awaiting confirmation until staff
// confirm it.
func (s *Service) AttachProof(requester pricing.BuyerContext, paymentID uint, blobRef string) (*models.Payment, error) {
	if blobRef == "" {
		return nil, apperrors.NewValidation("proof reference must not be empty")
	}

	payment, err := s.Get(requester, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Method != models.PaymentMethodPix {
		return nil, apperrors.ErrUnsupportedMethod
	}
	if payment.IsTerminal() {
		return nil, apperrors.NewValidation("payment is no longer pending")
	}

	ok, err := s.repo.UpdatePendingPayment(paymentID, map[string]interface{}{"attachment": blobRef})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewValidation("payment is no longer pending")
	}
	return s.repo.GetPayment(paymentID)
}

// RemoveProof clears the proof attachment of a pending payment.
func (s *Service) RemoveProof(requester pricing.BuyerContext, paymentID uint) (*models.Payment, error) {
	payment, err := s.Get(requester, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.IsTerminal() {
		return nil, apperrors.NewValidation("payment is no longer pending")
	}

	ok, err := s.repo.UpdatePendingPayment(paymentID, map[string]interface{}{"attachment": ""})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewValidation("payment is no longer pending")
	}
	return s.repo.GetPayment(paymentID)
}

// Confirm settles a payment manually. Staff only; used for PIX where no
// automatic provider signal exists. The transition is a compare-and-set on
// the terminal flags, so only one confirmation ever wins.
func (s *Service) Confirm(requester pricing.BuyerContext, paymentID uint) (*models.Payment, error) {
	if !requester.IsStaff {
		return nil, apperrors.ErrForbidden
	}

	payment, err := s.repo.GetPayment(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	if payment.Paid {
		return nil, apperrors.ErrAlreadyConfirmed
	}
	if payment.IsTerminal() {
		return nil, apperrors.NewValidation("payment is no longer pending")
	}

	ok, err := s.repo.MarkPaid(paymentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		refreshed, err := s.repo.GetPayment(paymentID)
		if err != nil {
			return nil, err
		}
		if refreshed.Paid {
			return nil, apperrors.ErrAlreadyConfirmed
		}
		return nil, apperrors.NewValidation("payment is no longer pending")
	}
	if payment.MembershipID != nil {
		invalidateTier(payment.UserID)
	}
	return s.repo.GetPayment(paymentID)
}

// Cancel moves a pending payment to canceled. Any terminal flag already set
// rejects the transition.
func (s *Service) Cancel(requester pricing.BuyerContext, paymentID uint) (*models.Payment, error) {
	payment, err := s.Get(requester, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.IsTerminal() {
		return nil, apperrors.ErrNotCancelable
	}

	ok, err := s.repo.MarkCanceled(paymentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrNotCancelable
	}
	if payment.MembershipID != nil {
		invalidateTier(payment.UserID)
	}
	return s.repo.GetPayment(paymentID)
}

// CheckoutHosted returns the redirect URL of the payment's hosted checkout
// session, creating the session on first call and retrieving the stored one
// on re-entry. Only methods with hosted sessions support this.
func (s *Service) CheckoutHosted(ctx context.Context, requester pricing.BuyerContext, paymentID uint) (string, error) {
	payment, err := s.Get(requester, paymentID)
	if err != nil {
		return "", err
	}
	if !models.SupportsHostedCheckout(payment.Method) {
		return "", apperrors.ErrUnsupportedMethod
	}
	if payment.IsTerminal() {
		return "", apperrors.NewValidation("payment is no longer pending")
	}

	if payment.RefID != "" {
		session, err := s.hosted.RetrieveCheckoutSession(ctx, payment.RefID)
		if err != nil {
			return "", apperrors.NewProvider("stripe", err)
		}
		return session.URL, nil
	}

	session, err := s.hosted.CreateCheckoutSession(ctx, payment.Amount, payment.Currency, paymentRef(payment.ID))
	if err != nil {
		return "", apperrors.NewProvider("stripe", err)
	}

	claimed, err := s.repo.ClaimRefID(paymentID, session.ID)
	if err != nil {
		return "", err
	}
	if !claimed {
		// A concurrent call stored its session first; use that one.
		refreshed, err := s.repo.GetPayment(paymentID)
		if err != nil {
			return "", err
		}
		if refreshed.RefID != "" && refreshed.RefID != session.ID {
			winner, err := s.hosted.RetrieveCheckoutSession(ctx, refreshed.RefID)
			if err != nil {
				return "", apperrors.NewProvider("stripe", err)
			}
			return winner.URL, nil
		}
	}
	return session.URL, nil
}

// WebhookConfirm resolves a gateway notification and settles the referenced
// payment when the provider reports it paid. The handler is idempotent both
// ways: duplicate notifications are deduplicated on the notification code,
// and a paid notification for an already-paid payment is a no-op, not an
// error. Dedup keys off the processed mark, not event existence: a
// redelivery for an event whose settlement failed mid-flight runs the
// settlement again. A non-final provider status acknowledges without
// mutating, because the provider redelivers regardless of outcome.
func (s *Service) WebhookConfirm(ctx context.Context, notificationCode string) error {
	if notificationCode == "" {
		return apperrors.NewValidation("notification code is required")
	}

	tx, err := s.notifier.FetchNotification(ctx, notificationCode)
	if err != nil {
		return apperrors.NewProvider(webhookProviderPagSeguro, err)
	}

	event := &models.WebhookEvent{
		Provider:         webhookProviderPagSeguro,
		NotificationCode: notificationCode,
		ProviderStatus:   statusLabel(tx.Status),
	}
	created, stored, err := s.repo.CreateWebhookEventIfNotExists(event)
	if err != nil {
		return err
	}
	if !created && stored.ProcessedAt != nil {
		// Redelivery of a notification we already handled.
		return nil
	}

	if !tx.IsPaid() {
		// Deliberate no-op acknowledgment for non-final statuses.
		return s.repo.MarkWebhookProcessed(stored.ID, "")
	}

	paymentID, err := tx.PaymentID()
	if err != nil {
		return s.repo.MarkWebhookProcessed(stored.ID, err.Error())
	}

	payment, err := s.repo.GetPayment(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.repo.MarkWebhookProcessed(stored.ID, "payment not found")
		}
		return err
	}

	if !payment.Paid {
		// CAS: an already-settled payment leaves this a no-op.
		if _, err := s.repo.MarkPaid(payment.ID); err != nil {
			return err
		}
		if payment.MembershipID != nil {
			invalidateTier(payment.UserID)
		}
	}
	return s.repo.MarkWebhookProcessed(stored.ID, "")
}

// ListPending returns payments still awaiting settlement for staff review.
func (s *Service) ListPending(requester pricing.BuyerContext, offset, limit int) ([]models.Payment, error) {
	if !requester.IsStaff {
		return nil, apperrors.ErrForbidden
	}
	return s.repo.ListPending(offset, limit)
}

// paymentRef is the provider-side reference format for local payments.
func paymentRef(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func statusLabel(status int) string {
	return strconv.Itoa(status)
}
