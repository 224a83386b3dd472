package models

import "time"

type ReservationStatus struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	StatusName string `json:"status_name" gorm:"size:50;unique;not null"`
}

type Reservation struct {
	ID            uint      `json:"reservation_id" gorm:"primaryKey"`
	BathID        uint      `json:"bath_id" gorm:"not null;index"`
	StartDatetime time.Time `json:"start_datetime" gorm:"not null"`
	EndDatetime   time.Time `json:"end_datetime" gorm:"not null"`
	ClientName    string    `json:"client_name" gorm:"size:100;not null"`
	ClientPhone   string    `json:"client_phone" gorm:"size:20;not null"`
	ClientEmail   string    `json:"client_email" gorm:"size:100"`
	Notes         string    `json:"notes" gorm:"type:text"`
	Guests        int       `json:"guests" gorm:"not null"`
	// TotalCost is always recomputed from the bath, the interval, the guest
	// count and the attached products. It is never accepted from a client.
	TotalCost int       `json:"total_cost" gorm:"not null;default:0"`
	StatusID  uint      `json:"status_id" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Bath     Bath                 `json:"bath,omitempty" gorm:"foreignKey:BathID"`
	Status   ReservationStatus    `json:"status,omitempty" gorm:"foreignKey:StatusID"`
	Products []ReservationProduct `json:"reservation_products,omitempty" gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE"`
}

// ReservationProduct is a line item: quantity of one product debited from
// stock for the lifetime of the reservation.
type ReservationProduct struct {
	ReservationID uint `json:"reservation_id" gorm:"primaryKey"`
	ProductID     uint `json:"product_id" gorm:"primaryKey"`
	Quantity      int  `json:"quantity" gorm:"not null;default:1"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
