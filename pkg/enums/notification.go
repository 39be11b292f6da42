package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeNewRequest     NotificationType = "NEW_REQUEST"
	NotificationTypeRequestTreated NotificationType = "REQUEST_TREATED"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeNewRequest,
	NotificationTypeRequestTreated,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// RecipientType maps to the user_type enum on notifications.
type RecipientType string

const (
	RecipientTypeSupplier RecipientType = "SUPPLIER"
	RecipientTypeStore    RecipientType = "STORE"
)

var validRecipientTypes = []RecipientType{
	RecipientTypeSupplier,
	RecipientTypeStore,
}

// IsValid checks whether the recipient type matches the canonical enum.
func (r RecipientType) IsValid() bool {
	for _, candidate := range validRecipientTypes {
		if candidate == r {
			return true
		}
	}
	return false
}
