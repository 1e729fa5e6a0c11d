package models

import "time"

// User is an application login. PasswordHash never leaves the server.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:255;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `gorm:"->" json:"created_at"`
	UpdatedAt    time.Time `gorm:"->" json:"updated_at"`
}
