package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"wallet-server/models"
)

// TransactionPatch leaves nil fields untouched. A nil Category keeps the
// stored value; ClearCategory sets it to NULL.
type TransactionPatch struct {
	TransactionType *string
	Amount          *decimal.Decimal
	Description     *string
	Category        *string
	ClearCategory   bool
}

func (s *Store) CreateTransaction(ctx context.Context, accountID int64, transactionType string, amount decimal.Decimal, description string, category *string) (*models.Transaction, error) {
	t := models.Transaction{
		AccountID:       accountID,
		TransactionType: transactionType,
		Amount:          models.NewDecimal(amount),
		Description:     description,
		Category:        category,
	}
	if err := s.conn(ctx).Create(&t).Error; err != nil {
		return nil, err
	}
	return s.GetTransactionByID(ctx, t.ID)
}

func (s *Store) GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	return first[models.Transaction](s.conn(ctx), "id = ?", id)
}

func (s *Store) FindTransactionsByAccount(ctx context.Context, accountID int64) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	err := s.conn(ctx).Where("account_id = ?", accountID).Order("id").Find(&txs).Error
	return txs, err
}

func (s *Store) UpdateTransaction(ctx context.Context, id int64, patch TransactionPatch) (*models.Transaction, error) {
	values := map[string]any{}
	if patch.TransactionType != nil {
		values["transaction_type"] = *patch.TransactionType
	}
	if patch.Amount != nil {
		values["amount"] = models.NewDecimal(*patch.Amount)
	}
	if patch.Description != nil {
		values["description"] = *patch.Description
	}
	switch {
	case patch.Category != nil:
		values["category"] = *patch.Category
	case patch.ClearCategory:
		values["category"] = nil
	}
	found, err := update(s.conn(ctx), "transactions", id, values)
	if err != nil || !found {
		return nil, err
	}
	return s.GetTransactionByID(ctx, id)
}

func (s *Store) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res := s.conn(ctx).Delete(&models.Transaction{}, id)
	return res.RowsAffected, res.Error
}
