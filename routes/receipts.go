package routes

import (
	"errors"
	"strconv"

	"github.com/kataras/iris/v12"

	"github.com/mreglen/banya-backend/services"
	"github.com/mreglen/banya-backend/storage"
	"github.com/mreglen/banya-backend/utils"
)

func GetEntranceDocuments(ctx iris.Context) {
	docs, err := services.ListReceipts(storage.DB)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(docs)
}

func GetEntranceDocument(ctx iris.Context) {
	id, ok := documentID(ctx)
	if !ok {
		return
	}

	doc, err := services.GetReceipt(storage.DB, id)
	if err != nil {
		handleReceiptError(ctx, err)
		return
	}
	ctx.JSON(doc)
}

func CreateEntranceDocument(ctx iris.Context) {
	var input services.CreateReceiptInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	doc, err := services.CreateReceipt(storage.DB, input)
	if err != nil {
		handleReceiptError(ctx, err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(doc)
}

func UpdateEntranceDocument(ctx iris.Context) {
	id, ok := documentID(ctx)
	if !ok {
		return
	}

	var input services.CreateReceiptInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	doc, err := services.UpdateReceipt(storage.DB, id, input)
	if err != nil {
		handleReceiptError(ctx, err)
		return
	}
	ctx.JSON(doc)
}

func DeleteEntranceDocument(ctx iris.Context) {
	id, ok := documentID(ctx)
	if !ok {
		return
	}

	if err := services.DeleteReceipt(storage.DB, id); err != nil {
		handleReceiptError(ctx, err)
		return
	}
	ctx.StatusCode(iris.StatusNoContent)
}

func documentID(ctx iris.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Params().Get("id"), 10, 32)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid document ID", ctx)
		return 0, false
	}
	return uint(id), true
}

func handleReceiptError(ctx iris.Context, err error) {
	switch {
	case errors.Is(err, services.ErrReceiptNotFound):
		utils.CreateError(iris.StatusNotFound, "Not Found", err.Error(), ctx)
	case errors.Is(err, services.ErrProductNotFound):
		utils.CreateError(iris.StatusBadRequest, "Unknown Product", err.Error(), ctx)
	case errors.Is(err, services.ErrValidation):
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
	default:
		utils.CreateInternalServerError(ctx)
	}
}
