package enums

import (
	"fmt"
	"strings"
)

// BidStatus is bidding until the listing owner accepts the bid. Completed is terminal.
type BidStatus string

const (
	BidStatusBidding   BidStatus = "bidding"
	BidStatusCompleted BidStatus = "completed"
)

func (s BidStatus) String() string {
	return string(s)
}

func (s BidStatus) IsValid() bool {
	return s == BidStatusBidding || s == BidStatusCompleted
}

// CanTransitionTo only admits bidding -> completed.
func (s BidStatus) CanTransitionTo(next BidStatus) bool {
	return s == BidStatusBidding && next == BidStatusCompleted
}

func ParseBidStatus(value string) (BidStatus, error) {
	normalized := BidStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid bid status %q", value)
}
