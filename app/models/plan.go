package models

import "time"

// Plan is a membership subscription offer. Plans are not tiered: every
// buyer pays the listed price.
type Plan struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Description  string    `gorm:"type:text" json:"description"`
	Price        float64   `gorm:"type:decimal(10,2);not null" json:"price" validate:"gte=0"`
	Currency     string    `gorm:"type:varchar(3);not null;default:'BRL'" json:"currency"`
	PeriodInDays int       `gorm:"not null" json:"period_in_days" validate:"gt=0"`
	IsActive     bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
