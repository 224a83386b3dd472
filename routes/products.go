package routes

import (
	"errors"
	"strconv"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/mreglen/banya-backend/models"
	"github.com/mreglen/banya-backend/storage"
	"github.com/mreglen/banya-backend/utils"
)

type CreateProductInput struct {
	Name               string  `json:"name" validate:"required"`
	Description        string  `json:"description"`
	IsVisibleOnWebsite bool    `json:"is_visible_on_website"`
	CategoryID         *uint   `json:"category_id"`
	TotalQuantity      float64 `json:"total_quantity" validate:"min=0"`
	LastPurchasePrice  float64 `json:"last_purchase_price" validate:"min=0"`
	UnitID             *uint   `json:"unit_id"`
}

// UpdateProductInput deliberately has no quantity or price fields: the stock
// balance moves only through reservations and goods receipts.
type UpdateProductInput struct {
	Name               *string `json:"name"`
	Description        *string `json:"description"`
	IsVisibleOnWebsite *bool   `json:"is_visible_on_website"`
	CategoryID         *uint   `json:"category_id"`
	UnitID             *uint   `json:"unit_id"`
}

func GetProducts(ctx iris.Context) {
	var products []models.Product
	err := storage.DB.Preload("Category").Preload("Unit").Find(&products).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(products)
}

func GetProduct(ctx iris.Context) {
	id, ok := productID(ctx)
	if !ok {
		return
	}

	var product models.Product
	err := storage.DB.Preload("Category").Preload("Unit").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Product not found", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(product)
}

func CreateProduct(ctx iris.Context) {
	var input CreateProductInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	product := models.Product{
		Name:               input.Name,
		Description:        input.Description,
		IsVisibleOnWebsite: input.IsVisibleOnWebsite,
		CategoryID:         input.CategoryID,
		TotalQuantity:      input.TotalQuantity,
		LastPurchasePrice:  input.LastPurchasePrice,
		UnitID:             input.UnitID,
	}
	if err := storage.DB.Create(&product).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(product)
}

func UpdateProduct(ctx iris.Context) {
	id, ok := productID(ctx)
	if !ok {
		return
	}

	var input UpdateProductInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var product models.Product
	if err := storage.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Product not found", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.IsVisibleOnWebsite != nil {
		product.IsVisibleOnWebsite = *input.IsVisibleOnWebsite
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.UnitID != nil {
		product.UnitID = input.UnitID
	}

	if err := storage.DB.Save(&product).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(product)
}

// DeleteProduct refuses when the product is attached to a reservation: those
// line items still owe their quantities back to the shelf.
func DeleteProduct(ctx iris.Context) {
	id, ok := productID(ctx)
	if !ok {
		return
	}

	var product models.Product
	if err := storage.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Product not found", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	var linkCount int64
	storage.DB.Model(&models.ReservationProduct{}).Where("product_id = ?", id).Count(&linkCount)
	if linkCount > 0 {
		utils.CreateError(iris.StatusBadRequest, "Product In Use",
			"Product is attached to reservations and cannot be deleted", ctx)
		return
	}

	if err := storage.DB.Delete(&models.Product{}, id).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.StatusCode(iris.StatusNoContent)
}

// GetStockProducts lists current balances: what is on the shelf right now
// and the price each product was last bought at.
func GetStockProducts(ctx iris.Context) {
	var products []models.Product
	if err := storage.DB.Order("name ASC").Find(&products).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(products)
}

func GetUnitsOfMeasurement(ctx iris.Context) {
	var units []models.UnitOfMeasurement
	if err := storage.DB.Order("id ASC").Find(&units).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(units)
}

func GetCategories(ctx iris.Context) {
	var categories []models.Category
	if err := storage.DB.Order("id ASC").Find(&categories).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(categories)
}

func productID(ctx iris.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Params().Get("id"), 10, 32)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid product ID", ctx)
		return 0, false
	}
	return uint(id), true
}
