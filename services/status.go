package services

import (
	"gorm.io/gorm"

	"github.com/mreglen/banya-backend/models"
)

func ListReservationStatuses(db *gorm.DB) ([]models.ReservationStatus, error) {
	var statuses []models.ReservationStatus
	if err := db.Order("id ASC").Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}
