package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mreglen/banya-backend/models"
)

const (
	// bathLockClass namespaces the advisory locks guarding per-bath
	// calendars against other advisory lock users in the same database.
	bathLockClass = 7201
	maxTxRetries  = 3
)

type LineItemInput struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"omitempty,min=1"`
}

type CreateReservationInput struct {
	BathID        uint            `json:"bath_id" validate:"required"`
	StartDatetime string          `json:"start_datetime" validate:"required"`
	EndDatetime   string          `json:"end_datetime" validate:"required"`
	ClientName    string          `json:"client_name" validate:"required,max=100"`
	ClientPhone   string          `json:"client_phone" validate:"required,max=20"`
	ClientEmail   string          `json:"client_email" validate:"omitempty,email"`
	Notes         string          `json:"notes"`
	Guests        int             `json:"guests" validate:"omitempty,min=1"`
	StatusID      uint            `json:"status_id"`
	Products      []LineItemInput `json:"products" validate:"dive"`
}

// UpdateReservationInput enumerates exactly the fields a PUT may change.
// Absent fields keep their stored value; the products list always replaces
// the previous one in full. TotalCost has no input path on purpose.
type UpdateReservationInput struct {
	BathID        *uint           `json:"bath_id"`
	StartDatetime *string         `json:"start_datetime"`
	EndDatetime   *string         `json:"end_datetime"`
	ClientName    *string         `json:"client_name" validate:"omitempty,max=100"`
	ClientPhone   *string         `json:"client_phone" validate:"omitempty,max=20"`
	ClientEmail   *string         `json:"client_email" validate:"omitempty,email"`
	Notes         *string         `json:"notes"`
	Guests        *int            `json:"guests"`
	StatusID      *uint           `json:"status_id"`
	Products      []LineItemInput `json:"products" validate:"dive"`
}

type ReservationProductView struct {
	ProductID     uint    `json:"product_id"`
	Name          string  `json:"name"`
	Quantity      int     `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
}

type ReservationView struct {
	ReservationID uint                     `json:"reservation_id"`
	BathID        uint                     `json:"bath_id"`
	StartDatetime time.Time                `json:"start_datetime"`
	EndDatetime   time.Time                `json:"end_datetime"`
	ClientName    string                   `json:"client_name"`
	ClientPhone   string                   `json:"client_phone"`
	ClientEmail   string                   `json:"client_email"`
	Notes         string                   `json:"notes"`
	Guests        int                      `json:"guests"`
	TotalCost     int                      `json:"total_cost"`
	Status        string                   `json:"status"`
	Products      []ReservationProductView `json:"products"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

type ListReservationsFilter struct {
	Date   string // YYYY-MM-DD, optional
	BathID uint   // optional
}

// CreateReservation books a bath for [start, end): it verifies the bath and
// status exist, checks the calendar under the bath lock, debits every
// requested product from stock and prices the stay, all in one transaction.
func CreateReservation(db *gorm.DB, input CreateReservationInput) (*ReservationView, error) {
	start, end, err := parseInterval(input.StartDatetime, input.EndDatetime)
	if err != nil {
		return nil, err
	}
	if err := validateLineItems(input.Products); err != nil {
		return nil, err
	}
	if input.Guests < 0 {
		return nil, fmt.Errorf("%w: guests must be at least 1", ErrValidation)
	}

	guests := input.Guests
	if guests == 0 {
		guests = 1
	}
	statusID := input.StatusID
	if statusID == 0 {
		statusID = 1
	}

	var view *ReservationView
	err = withBathTx(db, input.BathID, func(tx *gorm.DB) error {
		var bath models.Bath
		if err := tx.First(&bath, input.BathID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBathNotFound
			}
			return err
		}

		var status models.ReservationStatus
		if err := tx.First(&status, statusID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrStatusNotFound, statusID)
			}
			return err
		}

		conflict, err := HasConflict(tx, input.BathID, start, end, 0)
		if err != nil {
			return err
		}
		if conflict {
			return ErrScheduleConflict
		}

		items, err := reserveLineItems(tx, input.Products)
		if err != nil {
			return err
		}

		reservation := models.Reservation{
			BathID:        input.BathID,
			StartDatetime: start,
			EndDatetime:   end,
			ClientName:    input.ClientName,
			ClientPhone:   input.ClientPhone,
			ClientEmail:   input.ClientEmail,
			Notes:         input.Notes,
			Guests:        guests,
			StatusID:      statusID,
			TotalCost:     PriceReservation(bath, start, end, guests, items),
		}
		if err := tx.Omit(clause.Associations).Create(&reservation).Error; err != nil {
			return err
		}

		if err := linkLineItems(tx, reservation.ID, items); err != nil {
			return err
		}

		view = buildView(reservation, status.StatusName, items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// UpdateReservation re-runs the whole booking sequence against an existing
// row: previously owned goods go back to the shelf first, then the new
// interval is validated, the calendar re-checked excluding this reservation,
// the new products reserved all-or-nothing and the cost recomputed at the
// products' current purchase prices. Any failure rolls the whole thing back,
// including the release.
func UpdateReservation(db *gorm.DB, id uint, input UpdateReservationInput) (*ReservationView, error) {
	if err := validateLineItems(input.Products); err != nil {
		return nil, err
	}
	if input.Guests != nil && *input.Guests < 1 {
		return nil, fmt.Errorf("%w: guests must be at least 1", ErrValidation)
	}

	// Pre-read outside the transaction to learn which bath calendar to
	// lock. The row is re-read under the lock below.
	var current models.Reservation
	if err := db.First(&current, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	bathID := current.BathID
	if input.BathID != nil {
		bathID = *input.BathID
	}

	var view *ReservationView
	err := withBathTx(db, bathID, func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.Preload("Products").First(&reservation, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}

		// Return the goods owned by the previous version. Rolled back with
		// everything else if a later step fails.
		for _, link := range reservation.Products {
			if err := releaseStock(tx, link.ProductID, link.Quantity); err != nil {
				return err
			}
		}
		err := tx.Where("reservation_id = ?", id).
			Delete(&models.ReservationProduct{}).Error
		if err != nil {
			return err
		}

		applyUpdate(&reservation, input)

		// A concurrent update may have moved the row to another bath
		// between the pre-read and taking the lock. Hold that calendar's
		// lock too before checking it; a lock-order deadlock here surfaces
		// as 40P01 and goes through the retry loop.
		if reservation.BathID != bathID {
			if err := lockBath(tx, reservation.BathID); err != nil {
				return err
			}
		}

		start, end := reservation.StartDatetime, reservation.EndDatetime
		if input.StartDatetime != nil {
			if start, err = parseDatetime(*input.StartDatetime); err != nil {
				return fmt.Errorf("%w: invalid start_datetime, use ISO format YYYY-MM-DDTHH:MM:SS", ErrValidation)
			}
		}
		if input.EndDatetime != nil {
			if end, err = parseDatetime(*input.EndDatetime); err != nil {
				return fmt.Errorf("%w: invalid end_datetime, use ISO format YYYY-MM-DDTHH:MM:SS", ErrValidation)
			}
		}
		if !end.After(start) {
			return fmt.Errorf("%w: end_datetime must be after start_datetime", ErrValidation)
		}
		reservation.StartDatetime, reservation.EndDatetime = start, end

		var bath models.Bath
		if err := tx.First(&bath, reservation.BathID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBathNotFound
			}
			return err
		}

		var status models.ReservationStatus
		if err := tx.First(&status, reservation.StatusID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrStatusNotFound, reservation.StatusID)
			}
			return err
		}

		conflict, err := HasConflict(tx, reservation.BathID, start, end, reservation.ID)
		if err != nil {
			return err
		}
		if conflict {
			return ErrScheduleConflict
		}

		items, err := reserveLineItems(tx, input.Products)
		if err != nil {
			return err
		}

		reservation.TotalCost = PriceReservation(bath, start, end, reservation.Guests, items)

		if err := linkLineItems(tx, reservation.ID, items); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&reservation).Error; err != nil {
			return err
		}

		view = buildView(reservation, status.StatusName, items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// DeleteReservation returns all owned goods to the shelf and removes the
// reservation with its line items. No overlap or cost work needed.
func DeleteReservation(db *gorm.DB, id uint) error {
	var current models.Reservation
	if err := db.First(&current, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReservationNotFound
		}
		return err
	}

	return withBathTx(db, current.BathID, func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.Preload("Products").First(&reservation, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}

		for _, link := range reservation.Products {
			if err := releaseStock(tx, link.ProductID, link.Quantity); err != nil {
				return err
			}
		}
		err := tx.Where("reservation_id = ?", id).
			Delete(&models.ReservationProduct{}).Error
		if err != nil {
			return err
		}
		return tx.Delete(&models.Reservation{}, id).Error
	})
}

// GetReservation is a pure projection: status resolved to its label, line
// items expanded with product name and current purchase price.
func GetReservation(db *gorm.DB, id uint) (*ReservationView, error) {
	var reservation models.Reservation
	err := db.Preload("Status").Preload("Products.Product").
		First(&reservation, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return viewFromModel(reservation), nil
}

func ListReservations(db *gorm.DB, filter ListReservationsFilter) ([]ReservationView, error) {
	query := db.Preload("Status").Preload("Products.Product")

	if filter.Date != "" {
		raw := filter.Date
		// Accept full ISO timestamps by keeping only the date part.
		if i := strings.IndexByte(raw, 'T'); i >= 0 {
			raw = raw[:i]
		}
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date format, use YYYY-MM-DD", ErrValidation)
		}
		startOfDay := day
		endOfDay := day.Add(24*time.Hour - time.Second)
		query = query.Where("start_datetime >= ? AND end_datetime <= ?", startOfDay, endOfDay)
	}
	if filter.BathID != 0 {
		query = query.Where("bath_id = ?", filter.BathID)
	}

	var reservations []models.Reservation
	if err := query.Order("start_datetime ASC").Find(&reservations).Error; err != nil {
		return nil, err
	}

	views := make([]ReservationView, 0, len(reservations))
	for _, r := range reservations {
		views = append(views, *viewFromModel(r))
	}
	return views, nil
}

// withBathTx runs fn inside one transaction holding the advisory lock for
// the bath's calendar, so the overlap check, the reservation write and the
// stock debits commit or vanish together. Serialization failures are
// retried a bounded number of times before surfacing as transient.
func withBathTx(db *gorm.DB, bathID uint, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := lockBath(tx, bathID); err != nil {
				return err
			}
			return fn(tx)
		})
		if err == nil || !isSerializationFailure(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
}

// lockBath serializes all mutations touching one bath's calendar. The lock
// is released automatically at transaction end.
func lockBath(tx *gorm.DB, bathID uint) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", bathLockClass, int64(bathID)).Error
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure and deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func parseInterval(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := parseDatetime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid start_datetime, use ISO format YYYY-MM-DDTHH:MM:SS", ErrValidation)
	}
	end, err := parseDatetime(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid end_datetime, use ISO format YYYY-MM-DDTHH:MM:SS", ErrValidation)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_datetime must be after start_datetime", ErrValidation)
	}
	return start, end, nil
}

func parseDatetime(value string) (time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", value)
}

func validateLineItems(items []LineItemInput) error {
	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: product quantity must be at least 1", ErrValidation)
		}
		if seen[item.ProductID] {
			return fmt.Errorf("%w: duplicate product %d", ErrValidation, item.ProductID)
		}
		seen[item.ProductID] = true
	}
	return nil
}

// reserveLineItems debits stock for every requested line item. The first
// shortage aborts; the transaction rollback undoes earlier debits.
func reserveLineItems(tx *gorm.DB, inputs []LineItemInput) ([]PricedItem, error) {
	items := make([]PricedItem, 0, len(inputs))
	for _, in := range inputs {
		product, err := reserveStock(tx, in.ProductID, in.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, PricedItem{Product: *product, Quantity: in.Quantity})
	}
	return items, nil
}

func linkLineItems(tx *gorm.DB, reservationID uint, items []PricedItem) error {
	if len(items) == 0 {
		return nil
	}
	links := make([]models.ReservationProduct, 0, len(items))
	for _, item := range items {
		links = append(links, models.ReservationProduct{
			ReservationID: reservationID,
			ProductID:     item.Product.ID,
			Quantity:      item.Quantity,
		})
	}
	return tx.Create(&links).Error
}

// applyUpdate copies the present scalar fields onto the row. Dates and
// products are handled separately; TotalCost is deliberately absent.
func applyUpdate(r *models.Reservation, input UpdateReservationInput) {
	if input.BathID != nil {
		r.BathID = *input.BathID
	}
	if input.ClientName != nil {
		r.ClientName = *input.ClientName
	}
	if input.ClientPhone != nil {
		r.ClientPhone = *input.ClientPhone
	}
	if input.ClientEmail != nil {
		r.ClientEmail = *input.ClientEmail
	}
	if input.Notes != nil {
		r.Notes = *input.Notes
	}
	if input.Guests != nil {
		r.Guests = *input.Guests
	}
	if input.StatusID != nil {
		r.StatusID = *input.StatusID
	}
}

func buildView(r models.Reservation, statusName string, items []PricedItem) *ReservationView {
	products := make([]ReservationProductView, 0, len(items))
	for _, item := range items {
		products = append(products, ReservationProductView{
			ProductID:     item.Product.ID,
			Name:          item.Product.Name,
			Quantity:      item.Quantity,
			PurchasePrice: item.Product.LastPurchasePrice,
		})
	}
	return &ReservationView{
		ReservationID: r.ID,
		BathID:        r.BathID,
		StartDatetime: r.StartDatetime,
		EndDatetime:   r.EndDatetime,
		ClientName:    r.ClientName,
		ClientPhone:   r.ClientPhone,
		ClientEmail:   r.ClientEmail,
		Notes:         r.Notes,
		Guests:        r.Guests,
		TotalCost:     r.TotalCost,
		Status:        statusName,
		Products:      products,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func viewFromModel(r models.Reservation) *ReservationView {
	products := make([]ReservationProductView, 0, len(r.Products))
	for _, link := range r.Products {
		if link.Product == nil {
			continue
		}
		products = append(products, ReservationProductView{
			ProductID:     link.ProductID,
			Name:          link.Product.Name,
			Quantity:      link.Quantity,
			PurchasePrice: link.Product.LastPurchasePrice,
		})
	}

	statusName := r.Status.StatusName
	if statusName == "" {
		statusName = "Неизвестный"
	}

	return &ReservationView{
		ReservationID: r.ID,
		BathID:        r.BathID,
		StartDatetime: r.StartDatetime,
		EndDatetime:   r.EndDatetime,
		ClientName:    r.ClientName,
		ClientPhone:   r.ClientPhone,
		ClientEmail:   r.ClientEmail,
		Notes:         r.Notes,
		Guests:        r.Guests,
		TotalCost:     r.TotalCost,
		Status:        statusName,
		Products:      products,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
