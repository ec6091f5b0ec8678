package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clubshop-app/ClubShop/app/models"
	"github.com/clubshop-app/ClubShop/internal/pkg/apperrors"
)

type fakeRepository struct {
	plans       map[uint]*models.Plan
	memberships map[uint]*models.Membership
	payments    map[uint]*models.Payment

	nextMembershipID uint
	nextPaymentID    uint
	failLink         bool
}

func newFakeRepository(plans ...*models.Plan) *fakeRepository {
	r := &fakeRepository{
		plans:       make(map[uint]*models.Plan),
		memberships: make(map[uint]*models.Membership),
		payments:    make(map[uint]*models.Payment),
	}
	for _, p := range plans {
		r.plans[p.ID] = p
	}
	return r
}

func (r *fakeRepository) Transaction(fn func(Repository) error) error {
	memberships := make(map[uint]*models.Membership, len(r.memberships))
	for k, v := range r.memberships {
		cp := *v
		memberships[k] = &cp
	}
	payments := make(map[uint]*models.Payment, len(r.payments))
	for k, v := range r.payments {
		cp := *v
		payments[k] = &cp
	}
	if err := fn(r); err != nil {
		r.memberships = memberships
		r.payments = payments
		return err
	}
	return nil
}

func (r *fakeRepository) GetActivePlan(id uint) (*models.Plan, error) {
	if p, ok := r.plans[id]; ok && p.IsActive {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) CreateMembership(m *models.Membership) error {
	r.nextMembershipID++
	m.ID = r.nextMembershipID
	r.memberships[m.ID] = m
	return nil
}

func (r *fakeRepository) CreatePayment(p *models.Payment) error {
	r.nextPaymentID++
	p.ID = r.nextPaymentID
	r.payments[p.ID] = p
	return nil
}

func (r *fakeRepository) LinkPayment(membershipID, paymentID uint) error {
	if r.failLink {
		return assert.AnError
	}
	m, ok := r.memberships[membershipID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.PaymentID = &paymentID
	return nil
}

func monthlyPlan() *models.Plan {
	return &models.Plan{ID: 1, Name: "Monthly", Price: 60, Currency: "BRL", PeriodInDays: 30, IsActive: true}
}

func TestCheckoutPlanCreatesMembershipAndPayment(t *testing.T) {
	fixed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return fixed }
	defer func() { nowFunc = time.Now }()

	repo := newFakeRepository(monthlyPlan())
	svc := NewService(repo)

	m, err := svc.CheckoutPlan(7, 1, models.PaymentMethodPix)
	require.NoError(t, err)

	assert.Equal(t, uint(7), m.UserID)
	assert.Equal(t, fixed, m.StartDate)
	assert.Equal(t, fixed.AddDate(0, 0, 30), m.EndDate)
	require.NotNil(t, m.Payment)
	assert.Equal(t, 60.0, m.Payment.Amount)
	assert.Equal(t, models.PaymentMethodPix, m.Payment.Method)
	assert.False(t, m.Payment.Paid)
	require.NotNil(t, m.PaymentID)
	assert.Equal(t, m.Payment.ID, *m.PaymentID)

	// Unpaid membership does not entitle member pricing yet.
	assert.False(t, m.IsActive(fixed))
	m.Payment.Paid = true
	assert.True(t, m.IsActive(fixed))
	assert.False(t, m.IsActive(fixed.AddDate(0, 0, 31)))
}

func TestCheckoutPlanUnknownPlan(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	_, err := svc.CheckoutPlan(7, 99, models.PaymentMethodPix)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCheckoutPlanInactivePlan(t *testing.T) {
	plan := monthlyPlan()
	plan.IsActive = false
	repo := newFakeRepository(plan)
	svc := NewService(repo)

	_, err := svc.CheckoutPlan(7, 1, models.PaymentMethodPix)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCheckoutPlanInvalidMethod(t *testing.T) {
	repo := newFakeRepository(monthlyPlan())
	svc := NewService(repo)

	_, err := svc.CheckoutPlan(7, 1, "BOLETO")
	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestCheckoutPlanRollsBackOnFailure(t *testing.T) {
	repo := newFakeRepository(monthlyPlan())
	repo.failLink = true
	svc := NewService(repo)

	_, err := svc.CheckoutPlan(7, 1, models.PaymentMethodPix)
	require.Error(t, err)
	assert.Empty(t, repo.memberships)
	assert.Empty(t, repo.payments)
}
