package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mreglen/banya-backend/models"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 14, hour, min, 0, 0, time.UTC)
}

func TestPriceReservationBathAndGuests(t *testing.T) {
	bath := models.Bath{Cost: 1000, BaseGuests: 4, ExtraGuestPrice: 200}

	// 2 hours, 6 guests, no goods: 1000*2 + 2*200
	total := PriceReservation(bath, at(10, 0), at(12, 0), 6, nil)
	assert.Equal(t, 2400, total)
}

func TestPriceReservationFractionalHoursTruncated(t *testing.T) {
	bath := models.Bath{Cost: 1000, BaseGuests: 4, ExtraGuestPrice: 200}

	total := PriceReservation(bath, at(10, 0), at(11, 30), 4, nil)
	assert.Equal(t, 1500, total)

	// 100/hour for 100 minutes = 166.66..., truncated
	cheap := models.Bath{Cost: 100, BaseGuests: 2, ExtraGuestPrice: 50}
	total = PriceReservation(cheap, at(10, 0), at(11, 40), 2, nil)
	assert.Equal(t, 166, total)
}

func TestPriceReservationGuestsBelowBaseAreFree(t *testing.T) {
	bath := models.Bath{Cost: 1000, BaseGuests: 6, ExtraGuestPrice: 500}

	total := PriceReservation(bath, at(10, 0), at(11, 0), 2, nil)
	assert.Equal(t, 1000, total)
}

func TestPriceReservationGoodsAtCurrentPurchasePrice(t *testing.T) {
	bath := models.Bath{Cost: 1000, BaseGuests: 4, ExtraGuestPrice: 200}
	items := []PricedItem{
		{Product: models.Product{LastPurchasePrice: 150}, Quantity: 2},
		{Product: models.Product{LastPurchasePrice: 99.5}, Quantity: 1},
	}

	// 1000 + 300 + 99.5, truncated to 1399
	total := PriceReservation(bath, at(10, 0), at(11, 0), 4, items)
	assert.Equal(t, 1399, total)
}
