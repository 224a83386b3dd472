package routes

import (
	"errors"
	"strconv"

	"github.com/kataras/iris/v12"

	"github.com/mreglen/banya-backend/services"
	"github.com/mreglen/banya-backend/storage"
	"github.com/mreglen/banya-backend/utils"
)

func GetReservations(ctx iris.Context) {
	filter := services.ListReservationsFilter{Date: ctx.URLParam("date")}
	if bathID, err := ctx.URLParamInt("bath_id"); err == nil && bathID > 0 {
		filter.BathID = uint(bathID)
	}

	views, err := services.ListReservations(storage.DB, filter)
	if err != nil {
		handleReservationError(ctx, err, false)
		return
	}
	ctx.JSON(views)
}

func CreateReservation(ctx iris.Context) {
	var input services.CreateReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	view, err := services.CreateReservation(storage.DB, input)
	if err != nil {
		handleReservationError(ctx, err, false)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(view)
}

func GetReservation(ctx iris.Context) {
	id, ok := reservationID(ctx)
	if !ok {
		return
	}

	view, err := services.GetReservation(storage.DB, id)
	if err != nil {
		handleReservationError(ctx, err, false)
		return
	}
	ctx.JSON(view)
}

func UpdateReservation(ctx iris.Context) {
	id, ok := reservationID(ctx)
	if !ok {
		return
	}

	var input services.UpdateReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	view, err := services.UpdateReservation(storage.DB, id, input)
	if err != nil {
		handleReservationError(ctx, err, true)
		return
	}
	ctx.JSON(view)
}

func DeleteReservation(ctx iris.Context) {
	id, ok := reservationID(ctx)
	if !ok {
		return
	}

	if err := services.DeleteReservation(storage.DB, id); err != nil {
		handleReservationError(ctx, err, false)
		return
	}
	ctx.StatusCode(iris.StatusNoContent)
}

func GetReservationStatuses(ctx iris.Context) {
	statuses, err := services.ListReservationStatuses(storage.DB)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(statuses)
}

func reservationID(ctx iris.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Params().Get("id"), 10, 32)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid reservation ID", ctx)
		return 0, false
	}
	return uint(id), true
}

// handleReservationError maps service errors to HTTP codes. Unknown status
// or product ids answer 400 on create and 404 on update.
func handleReservationError(ctx iris.Context, err error, isUpdate bool) {
	switch {
	case errors.Is(err, services.ErrReservationNotFound),
		errors.Is(err, services.ErrBathNotFound):
		utils.CreateError(iris.StatusNotFound, "Not Found", err.Error(), ctx)
	case errors.Is(err, services.ErrStatusNotFound),
		errors.Is(err, services.ErrProductNotFound):
		statusCode := iris.StatusBadRequest
		if isUpdate {
			statusCode = iris.StatusNotFound
		}
		utils.CreateError(statusCode, "Not Found", err.Error(), ctx)
	case errors.Is(err, services.ErrValidation):
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
	case errors.Is(err, services.ErrScheduleConflict):
		utils.CreateError(iris.StatusBadRequest, "Scheduling Conflict",
			"Reservation overlaps an existing one, cleanup time included", ctx)
	case errors.Is(err, services.ErrInsufficientStock):
		utils.CreateError(iris.StatusBadRequest, "Insufficient Stock", err.Error(), ctx)
	case errors.Is(err, services.ErrConcurrencyConflict):
		utils.CreateError(iris.StatusServiceUnavailable, "Calendar Busy",
			"The bath calendar is being updated, please retry", ctx)
	default:
		utils.CreateInternalServerError(ctx)
	}
}
