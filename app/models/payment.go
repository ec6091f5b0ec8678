package models

import "time"

// Payment method constants. PIX is the manual bank-transfer flow with a
// proof-of-payment upload, STRIPE the hosted checkout session flow and
// PAGSEGURO the webhook-notified gateway flow.
const (
	PaymentMethodPix       = "PIX"
	PaymentMethodStripe    = "STRIPE"
	PaymentMethodPagSeguro = "PAGSEGURO"
)

// User-facing payment status text.
const (
	PaymentStatusAwaitingPayment      = "awaiting_payment"
	PaymentStatusAwaitingConfirmation = "awaiting_confirmation"
	PaymentStatusPaid                 = "paid"
	PaymentStatusCanceled             = "canceled"
	PaymentStatusExpired              = "expired"
)

// Payment tracks the lifecycle of a single order or membership charge.
// Exactly one of OrderID/MembershipID is set. RefID holds the provider-side
// session or transaction identifier and is method-specific, so switching
// method clears it. The paid/canceled/expired flags are mutually exclusive
// in the reachable lifecycle and each is terminal.
type Payment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	OrderID      *uint     `gorm:"index;default:null" json:"order_id,omitempty"`
	MembershipID *uint     `gorm:"index;default:null" json:"membership_id,omitempty"`
	Method       string    `gorm:"type:varchar(20);not null" json:"method" validate:"oneof=PIX STRIPE PAGSEGURO"`
	Amount       float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency     string    `gorm:"type:varchar(3);not null;default:'BRL'" json:"currency"`
	RefID        string    `gorm:"type:varchar(191);default:'';index" json:"ref_id"`
	Paid         bool      `gorm:"not null;default:false;index" json:"paid"`
	Canceled     bool      `gorm:"not null;default:false" json:"canceled"`
	Expired      bool      `gorm:"not null;default:false" json:"expired"`
	Attachment   string    `gorm:"type:varchar(255);default:''" json:"attachment"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the payment accepts no further transitions.
func (p *Payment) IsTerminal() bool {
	return p.Paid || p.Canceled || p.Expired
}

// Status derives the user-facing status text. "Awaiting confirmation" is a
// computed sub-state of pending, not a stored flag: a pending PIX payment
// with an uploaded proof is waiting on staff review.
func (p *Payment) Status() string {
	switch {
	case p.Paid:
		return PaymentStatusPaid
	case p.Canceled:
		return PaymentStatusCanceled
	case p.Expired:
		return PaymentStatusExpired
	case p.Attachment != "":
		return PaymentStatusAwaitingConfirmation
	default:
		return PaymentStatusAwaitingPayment
	}
}

// IsValidPaymentMethod reports whether m is one of the supported methods.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodPix, PaymentMethodStripe, PaymentMethodPagSeguro:
		return true
	default:
		return false
	}
}

// SupportsHostedCheckout reports whether the method uses a provider-hosted
// checkout session.
func SupportsHostedCheckout(m string) bool {
	return m == PaymentMethodStripe
}
