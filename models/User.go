package models

import "time"

type Role struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"unique;not null"`
}

type User struct {
	ID           uint      `json:"user_id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:128;not null"`
	RoleID       uint      `json:"role_id" gorm:"not null"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	FullName     string    `json:"full_name" gorm:"not null"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`

	Role Role `json:"role,omitempty" gorm:"foreignKey:RoleID"`
}
