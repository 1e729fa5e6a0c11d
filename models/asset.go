package models

import "time"

// Asset is a holding of a user. (UserID, Symbol) is unique.
type Asset struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:u_assets_user_symbol" json:"user_id"`
	Symbol    string    `gorm:"size:255;not null;uniqueIndex:u_assets_user_symbol" json:"symbol"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Quantity  Decimal   `gorm:"type:decimal(16,8);not null" json:"quantity"`
	AvgPrice  Decimal   `gorm:"type:decimal(16,8);not null" json:"avg_price"`
	AssetType string    `gorm:"size:255;not null" json:"asset_type"` // stock, fund, crypto, bond
	CreatedAt time.Time `gorm:"->" json:"created_at"`
	UpdatedAt time.Time `gorm:"->" json:"updated_at"`
}

// AssetPrice is the latest known price of a symbol.
type AssetPrice struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"size:255;not null;uniqueIndex" json:"symbol"`
	Price     Decimal   `gorm:"type:decimal(16,8);not null" json:"price"`
	Currency  string    `gorm:"size:255;not null" json:"currency"`
	UpdatedAt time.Time `gorm:"->" json:"updated_at"`
}
