package services

import (
	"time"

	"github.com/mreglen/banya-backend/models"
)

// PricedItem pairs a requested quantity with the product it debits. The
// product carries the purchase price the goods are billed at.
type PricedItem struct {
	Product  models.Product
	Quantity int
}

// PriceReservation computes the total cost of a stay: the bath's hourly rate
// over the (possibly fractional) duration, a surcharge for every guest above
// the included count, and the attached goods at their current purchase
// price. The result is truncated to whole currency units.
//
// Callers guarantee end > start; the guest surcharge never goes negative.
func PriceReservation(bath models.Bath, start, end time.Time, guests int, items []PricedItem) int {
	durationHours := end.Sub(start).Seconds() / 3600
	total := float64(int(float64(bath.Cost) * durationHours))

	extraGuests := guests - bath.BaseGuests
	if extraGuests < 0 {
		extraGuests = 0
	}
	total += float64(extraGuests * bath.ExtraGuestPrice)

	for _, item := range items {
		total += item.Product.LastPurchasePrice * float64(item.Quantity)
	}

	return int(total)
}
