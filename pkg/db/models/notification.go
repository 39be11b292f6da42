package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/promolink/promolink-backend/pkg/enums"
)

// Notification stores in-app alerts for suppliers and stores. Title and
// body are always derived server-side; RelatedID points at the request
// for deep-linking.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null"`
	UserType  enums.RecipientType    `gorm:"column:user_type;type:recipient_type;not null"`
	Type      enums.NotificationType `gorm:"column:type;type:notification_type;not null"`
	Title     string                 `gorm:"type:text;not null"`
	Body      string                 `gorm:"type:text;not null"`
	RelatedID *uuid.UUID             `gorm:"column:related_id;type:uuid"`
	Read      bool                   `gorm:"column:read;not null;default:false"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
