package enums

import "fmt"

// NotificationKind names the customer emails sent for order events.
type NotificationKind string

const (
	NotificationKindOrderPlaced  NotificationKind = "order_placed"
	NotificationKindOrderShipped NotificationKind = "order_shipped"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindOrderPlaced,
	NotificationKindOrderShipped,
}

func (k NotificationKind) String() string {
	return string(k)
}

// IsValid checks whether the given kind matches a known notification.
func (k NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw strings into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
