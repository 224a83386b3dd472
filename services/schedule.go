package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/mreglen/banya-backend/models"
)

// CleanupBuffer is the time reserved for cleaning the bath after every
// visit. A new reservation may start no earlier than the previous one's end
// plus this buffer.
const CleanupBuffer = 30 * time.Minute

// overlapsWithBuffer reports whether two reservations on the same bath
// collide. The cleanup slot is attached to whichever booking ends first, so
// each end is extended by the buffer once, never doubled.
func overlapsWithBuffer(existingStart, existingEnd, start, end time.Time) bool {
	return existingStart.Before(end.Add(CleanupBuffer)) &&
		start.Before(existingEnd.Add(CleanupBuffer))
}

// HasConflict reports whether [start, end) collides with any reservation on
// the bath, counting the cleanup buffer. excludeID lets an update re-check
// its own slot without tripping on its previous row; pass 0 on create.
//
// The answer only stays true until commit while the caller holds the bath
// lock; the reservation manager takes it before calling here.
func HasConflict(tx *gorm.DB, bathID uint, start, end time.Time, excludeID uint) (bool, error) {
	query := tx.Where("bath_id = ?", bathID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var existing []models.Reservation
	if err := query.Find(&existing).Error; err != nil {
		return false, err
	}

	for _, r := range existing {
		if overlapsWithBuffer(r.StartDatetime, r.EndDatetime, start, end) {
			return true, nil
		}
	}
	return false, nil
}
