package outbox

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

type UserRegisteredEvent struct {
	UserID   uuid.UUID  `json:"userId"`
	Username string     `json:"username"`
	Role     enums.Role `json:"role"`
}

type OrderPlacedLine struct {
	ItemID          uuid.UUID       `json:"itemId"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase"`
	DiscountID      *uuid.UUID      `json:"discountId,omitempty"`
}

type OrderPlacedEvent struct {
	OrderID uuid.UUID         `json:"orderId"`
	UserID  uuid.UUID         `json:"userId"`
	Total   decimal.Decimal   `json:"total"`
	Lines   []OrderPlacedLine `json:"lines"`
}

type OrderStatusChangedEvent struct {
	OrderID uuid.UUID         `json:"orderId"`
	From    enums.OrderStatus `json:"from"`
	To      enums.OrderStatus `json:"to"`
}

type TransactionSettledEvent struct {
	TransactionID uuid.UUID       `json:"transactionId"`
	OrderID       uuid.UUID       `json:"orderId"`
	UserID        uuid.UUID       `json:"userId"`
	WalletID      uuid.UUID       `json:"walletId"`
	Amount        decimal.Decimal `json:"amount"`
	SettledAt     time.Time       `json:"settledAt"`
}

type TransactionFailedEvent struct {
	TransactionID uuid.UUID `json:"transactionId"`
	OrderID       uuid.UUID `json:"orderId"`
	UserID        uuid.UUID `json:"userId"`
}

type BidPlacedEvent struct {
	BidID      uuid.UUID       `json:"bidId"`
	UsedItemID uuid.UUID       `json:"usedItemId"`
	BidderID   uuid.UUID       `json:"bidderId"`
	Amount     decimal.Decimal `json:"amount"`
}

type BidCompletedEvent struct {
	BidID       uuid.UUID       `json:"bidId"`
	UsedItemID  uuid.UUID       `json:"usedItemId"`
	BidderID    uuid.UUID       `json:"bidderId"`
	SellerID    uuid.UUID       `json:"sellerId"`
	Amount      decimal.Decimal `json:"amount"`
	CompletedAt time.Time       `json:"completedAt"`
}

type DiscountRedeemedEvent struct {
	DiscountID uuid.UUID `json:"discountId"`
	OrderID    uuid.UUID `json:"orderId"`
	Code       string    `json:"code"`
}

type DiscountExpiredEvent struct {
	DiscountID uuid.UUID `json:"discountId"`
	VendorID   uuid.UUID `json:"vendorId"`
	Code       string    `json:"code"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
