package enums

import "fmt"

// OutboxAggregateType names the entity an outbox event is about.
type OutboxAggregateType string

const (
	AggregateOrder       OutboxAggregateType = "order"
	AggregateTransaction OutboxAggregateType = "transaction"
	AggregateBid         OutboxAggregateType = "bid"
	AggregateDiscount    OutboxAggregateType = "discount"
	AggregateUser        OutboxAggregateType = "user"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateTransaction,
	AggregateBid,
	AggregateDiscount,
	AggregateUser,
}

// IsValid reports whether the value matches the canonical aggregate types.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType names a domain event published through the outbox.
type OutboxEventType string

const (
	EventUserRegistered     OutboxEventType = "user_registered"
	EventOrderPlaced        OutboxEventType = "order_placed"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
	EventTransactionSettled OutboxEventType = "transaction_settled"
	EventTransactionFailed  OutboxEventType = "transaction_failed"
	EventBidPlaced          OutboxEventType = "bid_placed"
	EventBidCompleted       OutboxEventType = "bid_completed"
	EventDiscountRedeemed   OutboxEventType = "discount_redeemed"
	EventDiscountExpired    OutboxEventType = "discount_expired"
)

var validOutboxEventTypes = []OutboxEventType{
	EventUserRegistered,
	EventOrderPlaced,
	EventOrderStatusChanged,
	EventTransactionSettled,
	EventTransactionFailed,
	EventBidPlaced,
	EventBidCompleted,
	EventDiscountRedeemed,
	EventDiscountExpired,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
