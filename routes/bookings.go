package routes

import (
	"errors"
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/mreglen/banya-backend/models"
	"github.com/mreglen/banya-backend/storage"
	"github.com/mreglen/banya-backend/utils"
)

type CreateBookingInput struct {
	BathID        uint   `json:"bath_id" validate:"required"`
	Date          string `json:"date" validate:"required"`
	DurationHours int    `json:"duration_hours" validate:"required,min=1"`
	Guests        int    `json:"guests" validate:"required,min=1"`
	Name          string `json:"name" validate:"required,max=100"`
	Phone         string `json:"phone" validate:"required,max=20"`
	Email         string `json:"email" validate:"omitempty,email"`
	Notes         string `json:"notes"`
}

// CreateBooking records a request from the public website form. It does not
// touch the calendar or stock; staff convert it to a reservation later.
func CreateBooking(ctx iris.Context) {
	var input CreateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error",
			"Invalid date format, use YYYY-MM-DD", ctx)
		return
	}

	var bath models.Bath
	if err := storage.DB.First(&bath, input.BathID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Bath not found", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	booking := models.Booking{
		BathID:        input.BathID,
		Date:          date,
		DurationHours: input.DurationHours,
		Guests:        input.Guests,
		Name:          input.Name,
		Phone:         input.Phone,
		Email:         input.Email,
		Notes:         input.Notes,
		IsRead:        false,
	}
	if err := storage.DB.Create(&booking).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	booking.Bath = bath
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(booking)
}

func GetBookings(ctx iris.Context) {
	var bookings []models.Booking
	err := storage.DB.Preload("Bath").Preload("Bath.Features").
		Order("created_at DESC").Find(&bookings).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(bookings)
}

// MarkBookingRead flags a website request as seen on the staff dashboard.
func MarkBookingRead(ctx iris.Context) {
	id, ok := bookingID(ctx)
	if !ok {
		return
	}

	result := storage.DB.Model(&models.Booking{}).Where("id = ?", id).
		Update("is_read", true)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Booking not found", ctx)
		return
	}
	ctx.StatusCode(iris.StatusNoContent)
}

func DeleteBooking(ctx iris.Context) {
	id, ok := bookingID(ctx)
	if !ok {
		return
	}

	result := storage.DB.Delete(&models.Booking{}, id)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Booking not found", ctx)
		return
	}
	ctx.StatusCode(iris.StatusNoContent)
}

func bookingID(ctx iris.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Params().Get("id"), 10, 32)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid booking ID", ctx)
		return 0, false
	}
	return uint(id), true
}
