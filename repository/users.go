package repository

import (
	"context"

	"gorm.io/gorm"

	"wallet-server/models"
)

type UserPatch struct {
	Username *string
	Email    *string
}

func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	u := models.User{Username: username, Email: email, PasswordHash: passwordHash}
	if err := s.conn(ctx).Create(&u).Error; err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, u.ID)
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return first[models.User](s.conn(ctx), "id = ?", id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return first[models.User](s.conn(ctx), "username = ?", username)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](s.conn(ctx), "email = ?", email)
}

func (s *Store) UpdateUser(ctx context.Context, id int64, patch UserPatch) (*models.User, error) {
	values := map[string]any{}
	if patch.Username != nil {
		values["username"] = *patch.Username
	}
	if patch.Email != nil {
		values["email"] = *patch.Email
	}
	if len(values) > 0 {
		values["updated_at"] = gorm.Expr("CURRENT_TIMESTAMP")
	}
	found, err := update(s.conn(ctx), "users", id, values)
	if err != nil || !found {
		return nil, err
	}
	return s.GetUserByID(ctx, id)
}

// UpdateUserPassword stores a new hash and reports whether the user exists.
func (s *Store) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) (bool, error) {
	return update(s.conn(ctx), "users", id, map[string]any{
		"password_hash": passwordHash,
		"updated_at":    gorm.Expr("CURRENT_TIMESTAMP"),
	})
}

// DeleteUser removes the user; accounts, their transactions and assets go with it.
func (s *Store) DeleteUser(ctx context.Context, id int64) (int64, error) {
	res := s.conn(ctx).Delete(&models.User{}, id)
	return res.RowsAffected, res.Error
}
