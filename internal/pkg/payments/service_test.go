package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clubshop-app/ClubShop/app/models"
	"github.com/clubshop-app/ClubShop/internal/pkg/apperrors"
	"github.com/clubshop-app/ClubShop/internal/pkg/pricing"
)

type fakeRepository struct {
	payments map[uint]*models.Payment
	events   map[string]*models.WebhookEvent

	nextEventID  uint
	failMarkPaid int
}

func newFakeRepository(payments ...*models.Payment) *fakeRepository {
	r := &fakeRepository{
		payments: make(map[uint]*models.Payment),
		events:   make(map[string]*models.WebhookEvent),
	}
	for _, p := range payments {
		r.payments[p.ID] = p
	}
	return r
}

func (r *fakeRepository) GetPayment(id uint) (*models.Payment, error) {
	if p, ok := r.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) UpdatePendingPayment(id uint, updates map[string]interface{}) (bool, error) {
	p, ok := r.payments[id]
	if !ok || p.IsTerminal() {
		return false, nil
	}
	if v, ok := updates["method"]; ok {
		p.Method = v.(string)
	}
	if v, ok := updates["ref_id"]; ok {
		p.RefID = v.(string)
	}
	if v, ok := updates["attachment"]; ok {
		p.Attachment = v.(string)
	}
	return true, nil
}

func (r *fakeRepository) ClaimRefID(id uint, refID string) (bool, error) {
	p, ok := r.payments[id]
	if !ok || p.IsTerminal() || p.RefID != "" {
		return false, nil
	}
	p.RefID = refID
	return true, nil
}

func (r *fakeRepository) MarkPaid(id uint) (bool, error) {
	if r.failMarkPaid > 0 {
		r.failMarkPaid--
		return false, errors.New("db timeout")
	}
	p, ok := r.payments[id]
	if !ok || p.IsTerminal() {
		return false, nil
	}
	p.Paid = true
	return true, nil
}

func (r *fakeRepository) MarkCanceled(id uint) (bool, error) {
	p, ok := r.payments[id]
	if !ok || p.IsTerminal() {
		return false, nil
	}
	p.Canceled = true
	return true, nil
}

func (r *fakeRepository) ListPending(offset, limit int) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range r.payments {
		if !p.IsTerminal() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	key := event.Provider + "/" + event.NotificationCode
	if stored, ok := r.events[key]; ok {
		return false, stored, nil
	}
	r.nextEventID++
	event.ID = r.nextEventID
	r.events[key] = event
	return true, event, nil
}

func (r *fakeRepository) MarkWebhookProcessed(id uint, processingError string) error {
	for _, e := range r.events {
		if e.ID == id {
			now := nowFunc()
			e.ProcessedAt = &now
			e.ProcessingError = processingError
			return nil
		}
	}
	return errors.New("event not found")
}

type fakeHosted struct {
	createCalls   int
	retrieveCalls int
	failCreate    bool
}

func (f *fakeHosted) CreateCheckoutSession(_ context.Context, amount float64, currency, reference string) (*CheckoutSession, error) {
	f.createCalls++
	if f.failCreate {
		return nil, errors.New("provider down")
	}
	id := fmt.Sprintf("cs_test_%d", f.createCalls)
	return &CheckoutSession{ID: id, URL: "https://checkout.example/" + id}, nil
}

func (f *fakeHosted) RetrieveCheckoutSession(_ context.Context, sessionID string) (*CheckoutSession, error) {
	f.retrieveCalls++
	return &CheckoutSession{ID: sessionID, URL: "https://checkout.example/" + sessionID}, nil
}

type fakeNotifier struct {
	transactions map[string]*PagSeguroTransaction
}

func (f *fakeNotifier) FetchNotification(_ context.Context, code string) (*PagSeguroTransaction, error) {
	if tx, ok := f.transactions[code]; ok {
		return tx, nil
	}
	return nil, errors.New("unknown notification code")
}

func owner() pricing.BuyerContext { return pricing.BuyerContext{UserID: 1} }
func staff() pricing.BuyerContext { return pricing.BuyerContext{UserID: 9, IsStaff: true} }

func pendingPix(id uint) *models.Payment {
	return &models.Payment{ID: id, UserID: 1, Method: models.PaymentMethodPix, Amount: 100, Currency: "BRL"}
}

func pendingStripe(id uint) *models.Payment {
	return &models.Payment{ID: id, UserID: 1, Method: models.PaymentMethodStripe, Amount: 300, Currency: "BRL"}
}

func newTestService(repo Repository, hosted HostedCheckoutProvider, notifier NotificationProvider) *Service {
	return NewService(repo, hosted, notifier)
}

func TestGetOwnerAndStaffAccess(t *testing.T) {
	repo := newFakeRepository(pendingPix(1))
	svc := newTestService(repo, &fakeHosted{}, &fakeNotifier{})

	_, err := svc.Get(owner(), 1)
	assert.NoError(t, err)

	_, err = svc.Get(staff(), 1)
	assert.NoError(t, err)

	stranger := pricing.BuyerContext{UserID: 2}
	_, err = svc.Get(stranger, 1)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Get(owner(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSwitchMethodClearsRefAndProof(t *testing.T) {
	p := pendingPix(1)
	p.Attachment = "proofs/abc.jpg"
	repo := newFakeRepository(p)
	svc := newTestService(repo, &fakeHosted{}, &fakeNotifier{})

	updated, err := svc.SwitchMethod(owner(), 1, models.PaymentMethodStripe)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodStripe, updated.Method)
	assert.Empty(t, updated.RefID)
	assert.Empty(t, updated.Attachment)
}

func TestSwitchMethodRejectedWhenTerminal(t *testing.T) {
	p := pendingPix(1)
	p.Paid = true
	repo := newFakeRepository(p)
	svc := newTestService(repo, &fakeHosted{}, &fakeNotifier{})

	_, err := svc.SwitchMethod(owner(), 1, models.PaymentMethodStripe)
	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestAttachProofOnlyForPix(t *testing.T) {
	repo := newFakeRepository(pendingPix(1), pendingStripe(2))
	svc := newTestService(repo, &fakeHosted{}, &fakeNotifier{})

	updated, err := svc.AttachProof(owner(), 1, "proofs/receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, "proofs/receipt.jpg", updated.Attachment)
	assert.Equal(t, models.PaymentStatusAwaitingConfirmation, updated.Status())

	_, err = svc.AttachProof(owner(), 2, "proofs/receipt.jpg")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedMethod)
}

func TestRemoveProof(t *testing.T) {
	p := pendingPix(1)
	p.Attachment = "proofs/receipt.jpg"
	repo := newFakeRepository(p)
	svc := newTestService(repo, &fakeHosted{}, &fakeNotifier{})

	updated, err := svc.RemoveProof(owner(), 1)
	require.NoError(t, err)
	assert.Empty(t, updated.Attachment)
	assert.Equal(t, models.PaymentStatusAwaitingPayment, updated.Status())
}

func TestConfirmStaffOnly(t *testing.T) {
	repo := newFakeRepository(pendingPix(1))
	svc := newTestService(repo, &fakeHosted{}, &fakeNotifier{})

	_, err := svc.Confirm(owner(), 1)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := svc.Confirm(staff(), 1)
	require.NoError(t, err)
	assert.True(t, updated.Paid)

	_, err = svc.Confirm(staff(), 1)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyConfirmed)
}

func TestCancelGuards(t *testing.T) {
	repo := newFakeRepository(pendingPix(1))
	svc := newTestService(repo, &fakeHosted{}, &fakeNotifier{})

	updated, err := svc.Cancel(owner(), 1)
	require.NoError(t, err)
	assert.True(t, updated.Canceled)

	_, err = svc.Cancel(owner(), 1)
	assert.ErrorIs(t, err, apperrors.ErrNotCancelable)

	_, err = svc.Confirm(staff(), 1)
	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestCheckoutHostedIsIdempotent(t *testing.T) {
	repo := newFakeRepository(pendingStripe(1))
	hosted := &fakeHosted{}
	svc := newTestService(repo, hosted, &fakeNotifier{})

	url1, err := svc.CheckoutHosted(context.Background(), owner(), 1)
	require.NoError(t, err)

	url2, err := svc.CheckoutHosted(context.Background(), owner(), 1)
	require.NoError(t, err)

	assert.Equal(t, url1, url2)
	assert.Equal(t, 1, hosted.createCalls)
	assert.Equal(t, 1, hosted.retrieveCalls)

	p, err := repo.GetPayment(1)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", p.RefID)
}

func TestCheckoutHostedUnsupportedForPix(t *testing.T) {
	repo := newFakeRepository(pendingPix(1))
	svc := newTestService(repo, &fakeHosted{}, &fakeNotifier{})

	_, err := svc.CheckoutHosted(context.Background(), owner(), 1)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedMethod)
}

func TestCheckoutHostedProviderFailure(t *testing.T) {
	repo := newFakeRepository(pendingStripe(1))
	svc := newTestService(repo, &fakeHosted{failCreate: true}, &fakeNotifier{})

	_, err := svc.CheckoutHosted(context.Background(), owner(), 1)
	var pErr *apperrors.ProviderError
	require.ErrorAs(t, err, &pErr)

	// No session reference persisted on failure.
	p, err := repo.GetPayment(1)
	require.NoError(t, err)
	assert.Empty(t, p.RefID)
}

func TestWebhookConfirmSettlesPayment(t *testing.T) {
	repo := newFakeRepository(pendingStripe(1))
	notifier := &fakeNotifier{transactions: map[string]*PagSeguroTransaction{
		"CODE-1": {Reference: "1", Status: 3},
	}}
	svc := newTestService(repo, &fakeHosted{}, notifier)

	require.NoError(t, svc.WebhookConfirm(context.Background(), "CODE-1"))

	p, err := repo.GetPayment(1)
	require.NoError(t, err)
	assert.True(t, p.Paid)

	// Redelivery of the identical notification is a no-op, not an error.
	require.NoError(t, svc.WebhookConfirm(context.Background(), "CODE-1"))
	p, err = repo.GetPayment(1)
	require.NoError(t, err)
	assert.True(t, p.Paid)
	assert.False(t, p.Canceled)
}

func TestConfirmMembershipPaymentInvalidatesCachedTier(t *testing.T) {
	var invalidated []uint
	orig := invalidateTier
	invalidateTier = func(userID uint) { invalidated = append(invalidated, userID) }
	defer func() { invalidateTier = orig }()

	membershipID := uint(5)
	p := pendingPix(1)
	p.MembershipID = &membershipID
	repo := newFakeRepository(p, pendingPix(2))
	svc := newTestService(repo, &fakeHosted{}, &fakeNotifier{})

	_, err := svc.Confirm(staff(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, invalidated)

	// A plain order payment leaves the cached tier alone.
	_, err = svc.Confirm(staff(), 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, invalidated)
}

func TestCancelMembershipPaymentInvalidatesCachedTier(t *testing.T) {
	var invalidated []uint
	orig := invalidateTier
	invalidateTier = func(userID uint) { invalidated = append(invalidated, userID) }
	defer func() { invalidateTier = orig }()

	membershipID := uint(5)
	p := pendingPix(1)
	p.MembershipID = &membershipID
	repo := newFakeRepository(p)
	svc := newTestService(repo, &fakeHosted{}, &fakeNotifier{})

	_, err := svc.Cancel(owner(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, invalidated)
}

func TestWebhookConfirmRedeliveryRetriesFailedSettlement(t *testing.T) {
	repo := newFakeRepository(pendingStripe(1))
	repo.failMarkPaid = 1
	notifier := &fakeNotifier{transactions: map[string]*PagSeguroTransaction{
		"CODE-1": {Reference: "1", Status: 3},
	}}
	svc := newTestService(repo, &fakeHosted{}, notifier)

	// First delivery records the event but fails to settle; the error must
	// surface so the provider redelivers.
	err := svc.WebhookConfirm(context.Background(), "CODE-1")
	require.Error(t, err)
	p, err := repo.GetPayment(1)
	require.NoError(t, err)
	assert.False(t, p.Paid)

	// The redelivery hits the existing event row but it is unprocessed, so
	// settlement runs again instead of being swallowed as a duplicate.
	require.NoError(t, svc.WebhookConfirm(context.Background(), "CODE-1"))
	p, err = repo.GetPayment(1)
	require.NoError(t, err)
	assert.True(t, p.Paid)
	assert.Len(t, repo.events, 1)
}

func TestWebhookConfirmNonFinalStatusIsNoOp(t *testing.T) {
	repo := newFakeRepository(pendingStripe(1))
	notifier := &fakeNotifier{transactions: map[string]*PagSeguroTransaction{
		"CODE-2": {Reference: "1", Status: 1},
	}}
	svc := newTestService(repo, &fakeHosted{}, notifier)

	require.NoError(t, svc.WebhookConfirm(context.Background(), "CODE-2"))

	p, err := repo.GetPayment(1)
	require.NoError(t, err)
	assert.False(t, p.Paid)
}

func TestWebhookConfirmUnknownPaymentAcknowledges(t *testing.T) {
	repo := newFakeRepository()
	notifier := &fakeNotifier{transactions: map[string]*PagSeguroTransaction{
		"CODE-3": {Reference: "77", Status: 3},
	}}
	svc := newTestService(repo, &fakeHosted{}, notifier)

	require.NoError(t, svc.WebhookConfirm(context.Background(), "CODE-3"))
}

func TestWebhookConfirmProviderFailure(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, &fakeHosted{}, &fakeNotifier{})

	err := svc.WebhookConfirm(context.Background(), "UNKNOWN")
	var pErr *apperrors.ProviderError
	assert.ErrorAs(t, err, &pErr)
}

func TestListPendingStaffOnly(t *testing.T) {
	paid := pendingPix(2)
	paid.Paid = true
	repo := newFakeRepository(pendingPix(1), paid)
	svc := newTestService(repo, &fakeHosted{}, &fakeNotifier{})

	_, err := svc.ListPending(owner(), 0, 50)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	pending, err := svc.ListPending(staff(), 0, 50)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint(1), pending[0].ID)
}
