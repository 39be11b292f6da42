package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/promolink/promolink-backend/pkg/enums"
)

// User mirrors the principal directory maintained by the identity
// provider. The access token subject is the row id.
type User struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email       string          `gorm:"type:text;not null;uniqueIndex"`
	DisplayName string          `gorm:"column:display_name;not null"`
	Role        enums.ActorRole `gorm:"column:role;type:actor_role;not null"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
