package outbox

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// NonRetryableError signals the publisher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// IsNonRetryable reports whether err wraps a NonRetryableError.
func IsNonRetryable(err error) bool {
	var target NonRetryableError
	return errors.As(err, &target)
}

// EventDescriptor links an event type to its aggregate and payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	PayloadFactory func() any
}

// ResolvedEvent is a decoded outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   PayloadEnvelope
	Payload    any
}

// Registry maps each supported event type to its descriptor.
type Registry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NewRegistry returns a registry holding every marketplace event.
func NewRegistry() *Registry {
	reg := &Registry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	for _, desc := range []EventDescriptor{
		{enums.EventUserRegistered, enums.AggregateUser, func() any { return &UserRegisteredEvent{} }},
		{enums.EventOrderPlaced, enums.AggregateOrder, func() any { return &OrderPlacedEvent{} }},
		{enums.EventOrderStatusChanged, enums.AggregateOrder, func() any { return &OrderStatusChangedEvent{} }},
		{enums.EventTransactionSettled, enums.AggregateTransaction, func() any { return &TransactionSettledEvent{} }},
		{enums.EventTransactionFailed, enums.AggregateTransaction, func() any { return &TransactionFailedEvent{} }},
		{enums.EventBidPlaced, enums.AggregateBid, func() any { return &BidPlacedEvent{} }},
		{enums.EventBidCompleted, enums.AggregateBid, func() any { return &BidCompletedEvent{} }},
		{enums.EventDiscountRedeemed, enums.AggregateDiscount, func() any { return &DiscountRedeemedEvent{} }},
		{enums.EventDiscountExpired, enums.AggregateDiscount, func() any { return &DiscountExpiredEvent{} }},
	} {
		reg.entries[desc.EventType] = desc
	}
	return reg
}

// Descriptor returns the descriptor registered for eventType.
func (r *Registry) Descriptor(eventType enums.OutboxEventType) (EventDescriptor, bool) {
	desc, ok := r.entries[eventType]
	return desc, ok
}

// Resolve decodes an outbox row. Every failure is non-retryable since the row
// will never decode differently on a later attempt.
func (r *Registry) Resolve(row models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[row.EventType]
	if !ok {
		return nil, NonRetryableError{Err: fmt.Errorf("unknown event type %q", row.EventType)}
	}
	if desc.AggregateType != row.AggregateType {
		return nil, NonRetryableError{Err: fmt.Errorf("event %s expects aggregate %s, got %s", row.EventType, desc.AggregateType, row.AggregateType)}
	}
	env, err := DecodeEnvelope(row.Payload)
	if err != nil {
		return nil, NonRetryableError{Err: fmt.Errorf("decode envelope: %w", err)}
	}
	payload := desc.PayloadFactory()
	if err := json.Unmarshal(env.Data, payload); err != nil {
		return nil, NonRetryableError{Err: fmt.Errorf("decode %s payload: %w", row.EventType, err)}
	}
	return &ResolvedEvent{Descriptor: desc, Envelope: env, Payload: payload}, nil
}
