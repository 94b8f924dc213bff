package inventory

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

// Decrement takes qty units off an item's stock. The quantity and the in_stock
// flag change in the same conditional UPDATE; SET expressions see the old row.
func Decrement(tx *gorm.DB, itemID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.Field("quantity", "quantity must be greater than zero")
	}
	res := tx.Model(&models.Inventory{}).
		Where("item_id = ? AND item_quantity >= ?", itemID, qty).
		Updates(map[string]any{
			"item_quantity": gorm.Expr("item_quantity - ?", qty),
			"in_stock":      gorm.Expr("(item_quantity - ?) > 0", qty),
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "decrement inventory")
	}
	if res.RowsAffected == 1 {
		return nil
	}
	return missingOr(tx, itemID, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock for item").
		WithDetails(map[string]any{"item_id": itemID.String(), "requested": qty}))
}

// Restock adds qty units and stamps last_restocked.
func Restock(tx *gorm.DB, itemID uuid.UUID, qty int, now time.Time) error {
	if qty <= 0 {
		return pkgerrors.Field("quantity", "quantity must be greater than zero")
	}
	res := tx.Model(&models.Inventory{}).
		Where("item_id = ?", itemID).
		Updates(map[string]any{
			"item_quantity":  gorm.Expr("item_quantity + ?", qty),
			"in_stock":       gorm.Expr("(item_quantity + ?) > 0", qty),
			"last_restocked": now.UTC(),
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "restock inventory")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found")
	}
	return nil
}

// SetQuantity overwrites the stock level. It is a blind write, not a read-modify-write.
func SetQuantity(tx *gorm.DB, itemID uuid.UUID, qty int) error {
	if qty < 0 {
		return pkgerrors.Field("item_quantity", "item_quantity cannot be negative")
	}
	res := tx.Model(&models.Inventory{}).
		Where("item_id = ?", itemID).
		Updates(map[string]any{"item_quantity": qty, "in_stock": qty > 0})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "set inventory quantity")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found")
	}
	return nil
}

func missingOr(tx *gorm.DB, itemID uuid.UUID, err error) error {
	var count int64
	if cErr := tx.Model(&models.Inventory{}).Where("item_id = ?", itemID).Count(&count).Error; cErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, cErr, "load inventory")
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found")
	}
	return err
}
