package enums

import (
	"fmt"
	"strings"
)

// CartDuplicatePolicy decides what adding an item already in the cart does.
type CartDuplicatePolicy string

const (
	CartDuplicateIncrement CartDuplicatePolicy = "increment"
	CartDuplicateSeparate  CartDuplicatePolicy = "duplicate"
)

func (p CartDuplicatePolicy) IsValid() bool {
	return p == CartDuplicateIncrement || p == CartDuplicateSeparate
}

func ParseCartDuplicatePolicy(value string) (CartDuplicatePolicy, error) {
	normalized := CartDuplicatePolicy(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return CartDuplicateIncrement, nil
	}
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid cart duplicate policy %q", value)
}
