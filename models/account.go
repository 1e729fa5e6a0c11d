package models

import "time"

// Account holds a balance in a single currency. Accounts are removed with their owner.
type Account struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"index;not null" json:"user_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	AccountType string    `gorm:"size:255;not null" json:"account_type"` // cash, bank, credit
	Balance     Decimal   `gorm:"type:decimal(16,8);not null" json:"balance"`
	Currency    string    `gorm:"size:255;not null" json:"currency"`
	CreatedAt   time.Time `gorm:"->" json:"created_at"`
}
