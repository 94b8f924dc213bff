package enums

import (
	"fmt"
	"strings"
)

// DiscountStatus is derived from expiry and redemptions. It is never stored.
type DiscountStatus string

const (
	DiscountStatusActive   DiscountStatus = "active"
	DiscountStatusInactive DiscountStatus = "inactive"
)

func (s DiscountStatus) IsValid() bool {
	return s == DiscountStatusActive || s == DiscountStatusInactive
}

func ParseDiscountStatus(value string) (DiscountStatus, error) {
	normalized := DiscountStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid discount status %q", value)
}
