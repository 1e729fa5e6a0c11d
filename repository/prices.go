package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wallet-server/database"
	"wallet-server/models"
)

// upsertOnSymbol overwrites price and currency of an existing symbol row.
var upsertOnSymbol = clause.OnConflict{
	Columns: []clause.Column{{Name: "symbol"}},
	DoUpdates: append(
		clause.AssignmentColumns([]string{"price", "currency"}),
		clause.Assignment{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("CURRENT_TIMESTAMP")},
	),
}

func (s *Store) GetAssetPrice(ctx context.Context, symbol string) (*models.AssetPrice, error) {
	return first[models.AssetPrice](s.conn(ctx), "symbol = ?", symbol)
}

func (s *Store) UpsertAssetPrice(ctx context.Context, symbol string, price decimal.Decimal, currency string) (*models.AssetPrice, error) {
	p := models.AssetPrice{Symbol: symbol, Price: models.NewDecimal(price), Currency: currency}
	if err := s.conn(ctx).Clauses(upsertOnSymbol).Create(&p).Error; err != nil {
		return nil, err
	}
	return s.GetAssetPrice(ctx, symbol)
}

// UpsertAssetPrices writes prices in chunks of batchSize inside one
// transaction. Symbols must be unique within prices.
func (s *Store) UpsertAssetPrices(ctx context.Context, prices []models.AssetPrice, batchSize int) (int, error) {
	err := database.InBatches(s.conn(ctx), prices, batchSize, func(tx *gorm.DB, chunk []models.AssetPrice) error {
		return tx.Clauses(upsertOnSymbol).Create(&chunk).Error
	})
	if err != nil {
		return 0, err
	}
	return len(prices), nil
}

// ListAssetPrices returns the known prices for symbols keyed by symbol.
func (s *Store) ListAssetPrices(ctx context.Context, symbols []string) (map[string]models.AssetPrice, error) {
	out := make(map[string]models.AssetPrice, len(symbols))
	if len(symbols) == 0 {
		return out, nil
	}
	var rows []models.AssetPrice
	if err := s.conn(ctx).Where("symbol IN ?", symbols).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.Symbol] = p
	}
	return out, nil
}
