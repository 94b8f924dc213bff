package enums

import (
	"fmt"
	"strings"
)

// NotificationType classifies in-app notifications.
type NotificationType string

const (
	NotificationTypeSystem   NotificationType = "system"
	NotificationTypeGeneral  NotificationType = "general"
	NotificationTypeProduct  NotificationType = "product"
	NotificationTypeArchived NotificationType = "archived"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeSystem,
	NotificationTypeGeneral,
	NotificationTypeProduct,
	NotificationTypeArchived,
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

// ParseNotificationType converts raw strings into NotificationType, ignoring case.
func ParseNotificationType(value string) (NotificationType, error) {
	normalized := NotificationType(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
