package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

func TestEmitStoresEnvelopeThatResolves(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), nil)
	orderID := uuid.New()

	err := svc.Emit(context.Background(), conn, DomainEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Actor:         &ActorRef{UserID: uuid.New(), Role: enums.RoleCustomer},
		Data:          OrderPlacedEvent{OrderID: orderID, Total: decimal.RequireFromString("64.9700")},
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)

	resolved, err := NewRegistry().Resolve(rows[0])
	require.NoError(t, err)
	require.Equal(t, 1, resolved.Envelope.Version)
	require.NotEmpty(t, resolved.Envelope.EventID)
	payload, ok := resolved.Payload.(*OrderPlacedEvent)
	require.True(t, ok)
	require.Equal(t, orderID, payload.OrderID)
	require.True(t, payload.Total.Equal(decimal.RequireFromString("64.97")))
}

func TestEmitIfNotExistsWritesOnce(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), nil)
	event := DomainEvent{
		EventType:     enums.EventDiscountExpired,
		AggregateType: enums.AggregateDiscount,
		AggregateID:   uuid.New(),
		Data:          DiscountExpiredEvent{Code: "SPRING"},
	}

	wrote, err := svc.EmitIfNotExists(context.Background(), conn, event)
	require.NoError(t, err)
	require.True(t, wrote)

	wrote, err = svc.EmitIfNotExists(context.Background(), conn, event)
	require.NoError(t, err)
	require.False(t, wrote)

	var count int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestEmitRequiresTransaction(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	require.Error(t, svc.Emit(context.Background(), nil, DomainEvent{}))
}

func TestRegistryRejectsMismatchedRows(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Resolve(models.OutboxEvent{EventType: "mystery", AggregateType: enums.AggregateOrder})
	require.True(t, IsNonRetryable(err))

	_, err = reg.Resolve(models.OutboxEvent{EventType: enums.EventBidCompleted, AggregateType: enums.AggregateOrder})
	require.True(t, IsNonRetryable(err))

	_, err = reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventBidCompleted,
		AggregateType: enums.AggregateBid,
		Payload:       []byte("{not json"),
	})
	require.True(t, IsNonRetryable(err))
	require.False(t, IsNonRetryable(errors.New("timeout")))
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Emit(context.Background(), conn, DomainEvent{
			EventType:     enums.EventBidPlaced,
			AggregateType: enums.AggregateBid,
			AggregateID:   uuid.New(),
			Data:          BidPlacedEvent{},
		}))
	}

	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.NoError(t, repo.MarkPublishedTx(conn, rows[0].ID))
	require.NoError(t, repo.MarkFailedTx(conn, rows[1].ID, errors.New("boom")))
	require.NoError(t, repo.MarkTerminalTx(conn, rows[2].ID, errors.New("bad payload"), 3))

	pending, err := repo.FetchUnpublishedForPublish(conn, 10, 3)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, rows[1].ID, pending[0].ID)
	require.Equal(t, 1, pending[0].AttemptCount)
	require.NotNil(t, pending[0].LastError)
	require.Equal(t, "boom", *pending[0].LastError)
}

func TestDeletePublishedBeforeKeepsDedupeMarkers(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	old := time.Now().UTC().AddDate(0, 0, -30)

	rows := []models.OutboxEvent{
		{EventType: enums.EventBidPlaced, AggregateType: enums.AggregateBid, AggregateID: uuid.New(), Payload: []byte(`{}`), PublishedAt: &old},
		{EventType: enums.EventDiscountExpired, AggregateType: enums.AggregateDiscount, AggregateID: uuid.New(), Payload: []byte(`{}`), PublishedAt: &old},
		{EventType: enums.EventOrderPlaced, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: []byte(`{}`)},
	}
	for i := range rows {
		require.NoError(t, conn.Create(&rows[i]).Error)
	}

	deleted, err := repo.DeletePublishedBefore(context.Background(), conn, time.Now().UTC().AddDate(0, 0, -14))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	var left []models.OutboxEvent
	require.NoError(t, conn.Order("event_type").Find(&left).Error)
	require.Len(t, left, 2)
	require.Equal(t, enums.EventDiscountExpired, left[0].EventType)
	require.Equal(t, enums.EventOrderPlaced, left[1].EventType)
}

func TestDLQRepositoryKeepsNewestFirst(t *testing.T) {
	conn := dbtest.Open(t)
	dlq := NewDLQRepository(conn)
	base := time.Now().UTC()

	for i, reason := range []enums.OutboxDLQErrorReason{enums.OutboxDLQReasonNonRetryable, enums.OutboxDLQReasonMaxAttempts} {
		require.NoError(t, dlq.InsertTx(conn, models.OutboxDLQ{
			EventID:       uuid.New(),
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Payload:       []byte(`{}`),
			ErrorReason:   reason,
			AttemptCount:  i,
			FailedAt:      base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.ErrorIs(t, dlq.InsertTx(nil, models.OutboxDLQ{}), errTxRequired)

	rows, err := dlq.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, enums.OutboxDLQReasonMaxAttempts, rows[0].ErrorReason)
}
