package models

import "time"

// Membership links a user to a plan for a paid period. A membership entitles
// its user to member pricing only while the period is current and the linked
// payment is settled.
type Membership struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	PlanID    uint      `gorm:"not null;index" json:"plan_id"`
	PaymentID *uint     `gorm:"index;default:null" json:"payment_id,omitempty"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null;index" json:"end_date"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Plan    *Plan    `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Payment *Payment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
}

// IsCurrent reports whether the membership period covers now.
func (m *Membership) IsCurrent(now time.Time) bool {
	return m.EndDate.After(now)
}

// IsActive reports whether the membership entitles member pricing: the
// period must be current and the linked payment paid and not canceled or
// expired. Requires Payment to be preloaded.
func (m *Membership) IsActive(now time.Time) bool {
	if !m.IsCurrent(now) {
		return false
	}
	if m.Payment == nil {
		return false
	}
	return m.Payment.Paid && !m.Payment.Canceled && !m.Payment.Expired
}
