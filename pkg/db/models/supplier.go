package models

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is the supplier-side role profile. Its presence is what the
// ownership gate checks; a principal without a row lacks the role.
type Supplier struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	CompanyName  string    `gorm:"column:company_name;not null"`
	ContactEmail *string   `gorm:"column:contact_email"`
	Phone        *string   `gorm:"column:phone"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
