package models

import "time"

type User struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"column:name;type:text" json:"name"`
	Email        string    `gorm:"column:email;type:text;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;type:text" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz" json:"createdAt"`
}

func (User) TableName() string { return "users" }
