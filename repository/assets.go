package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"wallet-server/models"
)

type AssetPatch struct {
	Symbol    *string
	Name      *string
	Quantity  *decimal.Decimal
	AvgPrice  *decimal.Decimal
	AssetType *string
}

func (s *Store) CreateAsset(ctx context.Context, userID int64, symbol, name string, quantity, avgPrice decimal.Decimal, assetType string) (*models.Asset, error) {
	a := models.Asset{
		UserID:    userID,
		Symbol:    symbol,
		Name:      name,
		Quantity:  models.NewDecimal(quantity),
		AvgPrice:  models.NewDecimal(avgPrice),
		AssetType: assetType,
	}
	if err := s.conn(ctx).Create(&a).Error; err != nil {
		return nil, err
	}
	return s.GetAssetByID(ctx, a.ID)
}

func (s *Store) GetAssetByID(ctx context.Context, id int64) (*models.Asset, error) {
	return first[models.Asset](s.conn(ctx), "id = ?", id)
}

func (s *Store) FindAssetsByUser(ctx context.Context, userID int64) ([]models.Asset, error) {
	assets := []models.Asset{}
	err := s.conn(ctx).Where("user_id = ?", userID).Order("id").Find(&assets).Error
	return assets, err
}

func (s *Store) UpdateAsset(ctx context.Context, id int64, patch AssetPatch) (*models.Asset, error) {
	values := map[string]any{}
	if patch.Symbol != nil {
		values["symbol"] = *patch.Symbol
	}
	if patch.Name != nil {
		values["name"] = *patch.Name
	}
	if patch.Quantity != nil {
		values["quantity"] = models.NewDecimal(*patch.Quantity)
	}
	if patch.AvgPrice != nil {
		values["avg_price"] = models.NewDecimal(*patch.AvgPrice)
	}
	if patch.AssetType != nil {
		values["asset_type"] = *patch.AssetType
	}
	if len(values) > 0 {
		values["updated_at"] = gorm.Expr("CURRENT_TIMESTAMP")
	}
	found, err := update(s.conn(ctx), "assets", id, values)
	if err != nil || !found {
		return nil, err
	}
	return s.GetAssetByID(ctx, id)
}

func (s *Store) DeleteAsset(ctx context.Context, id int64) (int64, error) {
	res := s.conn(ctx).Delete(&models.Asset{}, id)
	return res.RowsAffected, res.Error
}
