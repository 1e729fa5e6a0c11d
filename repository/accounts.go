package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"wallet-server/models"
)

type AccountPatch struct {
	Name        *string
	AccountType *string
	Balance     *decimal.Decimal
	Currency    *string
}

func (s *Store) CreateAccount(ctx context.Context, userID int64, name, accountType string, balance decimal.Decimal, currency string) (*models.Account, error) {
	a := models.Account{UserID: userID, Name: name, AccountType: accountType, Balance: models.NewDecimal(balance), Currency: currency}
	if err := s.conn(ctx).Create(&a).Error; err != nil {
		return nil, err
	}
	return s.GetAccountByID(ctx, a.ID)
}

func (s *Store) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	return first[models.Account](s.conn(ctx), "id = ?", id)
}

func (s *Store) FindAccountsByUser(ctx context.Context, userID int64) ([]models.Account, error) {
	accounts := []models.Account{}
	err := s.conn(ctx).Where("user_id = ?", userID).Order("id").Find(&accounts).Error
	return accounts, err
}

func (s *Store) UpdateAccount(ctx context.Context, id int64, patch AccountPatch) (*models.Account, error) {
	values := map[string]any{}
	if patch.Name != nil {
		values["name"] = *patch.Name
	}
	if patch.AccountType != nil {
		values["account_type"] = *patch.AccountType
	}
	if patch.Balance != nil {
		values["balance"] = models.NewDecimal(*patch.Balance)
	}
	if patch.Currency != nil {
		values["currency"] = *patch.Currency
	}
	found, err := update(s.conn(ctx), "accounts", id, values)
	if err != nil || !found {
		return nil, err
	}
	return s.GetAccountByID(ctx, id)
}

func (s *Store) DeleteAccount(ctx context.Context, id int64) (int64, error) {
	res := s.conn(ctx).Delete(&models.Account{}, id)
	return res.RowsAffected, res.Error
}
