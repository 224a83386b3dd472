package routes

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/mreglen/banya-backend/models"
	"github.com/mreglen/banya-backend/storage"
	"github.com/mreglen/banya-backend/utils"
)

const bathListCacheKey = "baths:all"

type BathFeatureInput struct {
	Key   string `json:"key" validate:"required,max=50"`
	Value string `json:"value" validate:"required,max=100"`
}

type CreateBathInput struct {
	Name            string             `json:"name" validate:"required,max=100"`
	Title           string             `json:"title" validate:"required,max=200"`
	Cost            int                `json:"cost" validate:"required,min=0"`
	Description     string             `json:"description"`
	BaseGuests      int                `json:"base_guests" validate:"min=0"`
	ExtraGuestPrice int                `json:"extra_guest_price" validate:"min=0"`
	PhotoURLs       []string           `json:"photo_urls"`
	Features        []BathFeatureInput `json:"features" validate:"dive"`
}

type UpdateBathInput struct {
	Name            *string            `json:"name" validate:"omitempty,max=100"`
	Title           *string            `json:"title" validate:"omitempty,max=200"`
	Cost            *int               `json:"cost" validate:"omitempty,min=0"`
	Description     *string            `json:"description"`
	BaseGuests      *int               `json:"base_guests" validate:"omitempty,min=0"`
	ExtraGuestPrice *int               `json:"extra_guest_price" validate:"omitempty,min=0"`
	PhotoURLs       []string           `json:"photo_urls"`
	Features        []BathFeatureInput `json:"features" validate:"dive"`
}

// GetBaths serves the public catalog. The list changes rarely and is read on
// every website visit, so it is cached in Redis for a few minutes.
func GetBaths(ctx iris.Context) {
	if storage.Redis != nil {
		if cached, err := storage.Redis.Get(context.Background(), bathListCacheKey).Result(); err == nil {
			ctx.ContentType("application/json")
			ctx.WriteString(cached)
			return
		}
	}

	var baths []models.Bath
	if err := storage.DB.Preload("Features").Find(&baths).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if storage.Redis != nil {
		if payload, err := json.Marshal(baths); err == nil {
			storage.Redis.Set(context.Background(), bathListCacheKey, payload, 5*time.Minute)
		}
	}

	ctx.JSON(baths)
}

func GetBath(ctx iris.Context) {
	id, ok := bathID(ctx)
	if !ok {
		return
	}

	var bath models.Bath
	if err := storage.DB.Preload("Features").First(&bath, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Bath not found", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(bath)
}

func CreateBath(ctx iris.Context) {
	var input CreateBathInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	photos, err := json.Marshal(input.PhotoURLs)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	bath := models.Bath{
		Name:            input.Name,
		Title:           input.Title,
		Cost:            input.Cost,
		Description:     input.Description,
		BaseGuests:      input.BaseGuests,
		ExtraGuestPrice: input.ExtraGuestPrice,
		Photos:          photos,
	}
	for _, feature := range input.Features {
		bath.Features = append(bath.Features, models.BathFeature{
			Key:   feature.Key,
			Value: feature.Value,
		})
	}

	if err := storage.DB.Create(&bath).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	invalidateBathCache()
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(bath)
}

func UpdateBath(ctx iris.Context) {
	id, ok := bathID(ctx)
	if !ok {
		return
	}

	var input UpdateBathInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var bath models.Bath
	if err := storage.DB.First(&bath, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Bath not found", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	if input.Name != nil {
		bath.Name = *input.Name
	}
	if input.Title != nil {
		bath.Title = *input.Title
	}
	if input.Cost != nil {
		bath.Cost = *input.Cost
	}
	if input.Description != nil {
		bath.Description = *input.Description
	}
	if input.BaseGuests != nil {
		bath.BaseGuests = *input.BaseGuests
	}
	if input.ExtraGuestPrice != nil {
		bath.ExtraGuestPrice = *input.ExtraGuestPrice
	}
	if input.PhotoURLs != nil {
		photos, err := json.Marshal(input.PhotoURLs)
		if err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		bath.Photos = photos
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		// Features are replaced in full when provided.
		if input.Features != nil {
			if err := tx.Where("bath_id = ?", bath.ID).Delete(&models.BathFeature{}).Error; err != nil {
				return err
			}
			for _, feature := range input.Features {
				bath.Features = append(bath.Features, models.BathFeature{
					Key:    feature.Key,
					Value:  feature.Value,
					BathID: bath.ID,
				})
			}
		}
		return tx.Save(&bath).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	invalidateBathCache()
	storage.DB.Preload("Features").First(&bath, bath.ID)
	ctx.JSON(bath)
}

// DeleteBath refuses to remove a bath that still has reservations; the
// calendar history would dangle otherwise.
func DeleteBath(ctx iris.Context) {
	id, ok := bathID(ctx)
	if !ok {
		return
	}

	var bath models.Bath
	if err := storage.DB.First(&bath, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Bath not found", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	var reservationCount int64
	storage.DB.Model(&models.Reservation{}).Where("bath_id = ?", id).Count(&reservationCount)
	if reservationCount > 0 {
		utils.CreateError(iris.StatusBadRequest, "Bath In Use",
			"Bath has reservations and cannot be deleted", ctx)
		return
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bath_id = ?", id).Delete(&models.BathFeature{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bath_id = ?", id).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Bath{}, id).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	invalidateBathCache()
	ctx.StatusCode(iris.StatusNoContent)
}

func bathID(ctx iris.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Params().Get("id"), 10, 32)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid bath ID", ctx)
		return 0, false
	}
	return uint(id), true
}

func invalidateBathCache() {
	if storage.Redis != nil {
		storage.Redis.Del(context.Background(), bathListCacheKey)
	}
}
