package enums

import "fmt"

// NotificationType categorizes the append-only notification feed.
type NotificationType string

const (
	NotificationTypeNewProduct  NotificationType = "new_product"
	NotificationTypeNewOrder    NotificationType = "new_order"
	NotificationTypeOrderUpdate NotificationType = "order_update"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeNewProduct,
	NotificationTypeNewOrder,
	NotificationTypeOrderUpdate,
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
