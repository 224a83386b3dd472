package models

import (
	"time"

	"gorm.io/datatypes"
)

type Bath struct {
	ID              uint   `json:"bath_id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"size:100;not null"`
	Title           string `json:"title" gorm:"size:200;not null"`
	Cost            int    `json:"cost" gorm:"not null"` // per hour
	Description     string `json:"description" gorm:"type:text"`
	BaseGuests      int    `json:"base_guests" gorm:"not null"`
	ExtraGuestPrice int    `json:"extra_guest_price" gorm:"not null"`

	// Photos is a JSON array of image URLs
	Photos datatypes.JSON `json:"photos"`

	Features []BathFeature `json:"features" gorm:"foreignKey:BathID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BathFeature struct {
	ID     uint   `json:"feature_id" gorm:"primaryKey"`
	Key    string `json:"key" gorm:"size:50;not null"`
	Value  string `json:"value" gorm:"size:100;not null"`
	BathID uint   `json:"bath_id" gorm:"not null;index"`
}
