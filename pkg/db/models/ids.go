package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID gives rows a client-side UUID so inserts work on stores without gen_random_uuid().
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error             { assignID(&u.ID); return nil }
func (a *Address) BeforeCreate(*gorm.DB) error          { assignID(&a.ID); return nil }
func (w *Wallet) BeforeCreate(*gorm.DB) error           { assignID(&w.ID); return nil }
func (i *Item) BeforeCreate(*gorm.DB) error             { assignID(&i.ID); return nil }
func (i *Inventory) BeforeCreate(*gorm.DB) error        { assignID(&i.ID); return nil }
func (u *UsedItem) BeforeCreate(*gorm.DB) error         { assignID(&u.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error            { assignID(&o.ID); return nil }
func (o *OrderItem) BeforeCreate(*gorm.DB) error        { assignID(&o.ID); return nil }
func (t *Transaction) BeforeCreate(*gorm.DB) error      { assignID(&t.ID); return nil }
func (s *WalletSettlement) BeforeCreate(*gorm.DB) error { assignID(&s.ID); return nil }
func (d *Discount) BeforeCreate(*gorm.DB) error         { assignID(&d.ID); return nil }
func (c *Cart) BeforeCreate(*gorm.DB) error             { assignID(&c.ID); return nil }
func (b *Bid) BeforeCreate(*gorm.DB) error              { assignID(&b.ID); return nil }
func (n *Notification) BeforeCreate(*gorm.DB) error     { assignID(&n.ID); return nil }
func (r *Rating) BeforeCreate(*gorm.DB) error           { assignID(&r.ID); return nil }
func (e *OutboxEvent) BeforeCreate(*gorm.DB) error      { assignID(&e.ID); return nil }
func (d *OutboxDLQ) BeforeCreate(*gorm.DB) error        { assignID(&d.ID); return nil }
