package models

import "time"

// Booking is a request left through the public website form. It does not
// block the calendar; staff turn it into a Reservation by hand.
type Booking struct {
	ID            uint      `json:"booking_id" gorm:"primaryKey"`
	BathID        uint      `json:"bath_id" gorm:"not null;index"`
	Date          time.Time `json:"date" gorm:"not null"`
	DurationHours int       `json:"duration_hours" gorm:"not null"`
	Guests        int       `json:"guests" gorm:"not null"`
	Name          string    `json:"name" gorm:"size:100;not null"`
	Phone         string    `json:"phone" gorm:"size:20;not null"`
	Email         string    `json:"email" gorm:"size:100"`
	Notes         string    `json:"notes" gorm:"type:text"`
	IsRead        bool      `json:"is_read" gorm:"default:false"`
	CreatedAt     time.Time `json:"created_at"`

	Bath Bath `json:"bath,omitempty" gorm:"foreignKey:BathID"`
}
