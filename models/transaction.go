package models

import "time"

// Transaction is a single movement on an account. Amount is conventionally
// positive; TransactionType carries the direction (income, expense).
type Transaction struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	AccountID       int64     `gorm:"index;not null" json:"account_id"`
	TransactionType string    `gorm:"size:255;not null" json:"transaction_type"`
	Amount          Decimal   `gorm:"type:decimal(16,8);not null" json:"amount"`
	Description     string    `gorm:"size:255;not null" json:"description"`
	Category        *string   `gorm:"size:255" json:"category"`
	CreatedAt       time.Time `gorm:"->;index" json:"created_at"`
}
