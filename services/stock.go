package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mreglen/banya-backend/models"
)

// lockForUpdate row-locks product reads so two transactions cannot both see
// enough stock and both decrement past zero. Row locks are a Postgres
// feature; other dialects run single-writer.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// reserveStock debits qty units of a product inside the caller's
// transaction. Fails with ErrInsufficientStock when the shelf holds less
// than requested, leaving the quantity untouched. Returns the product as it
// was read so the caller can price the line item.
func reserveStock(tx *gorm.DB, productID uint, qty int) (*models.Product, error) {
	var product models.Product
	if err := lockForUpdate(tx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, productID)
		}
		return nil, err
	}

	if float64(qty) > product.TotalQuantity {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
	}

	product.TotalQuantity -= float64(qty)
	err := tx.Model(&models.Product{}).Where("id = ?", productID).
		Update("total_quantity", product.TotalQuantity).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// releaseStock returns qty units to the shelf. Unconditional: releases are
// only issued for quantities a reservation actually owns.
func releaseStock(tx *gorm.DB, productID uint, qty int) error {
	return tx.Model(&models.Product{}).Where("id = ?", productID).
		Update("total_quantity", gorm.Expr("total_quantity + ?", qty)).Error
}

// RestockProduct receives purchased quantity and records the price it was
// bought at. Used by goods receipts; the new purchase price is what future
// reservation pricing picks up.
func RestockProduct(tx *gorm.DB, productID uint, qty, purchasePrice float64) error {
	result := tx.Model(&models.Product{}).Where("id = ?", productID).
		Updates(map[string]interface{}{
			"total_quantity":      gorm.Expr("total_quantity + ?", qty),
			"last_purchase_price": purchasePrice,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrProductNotFound, productID)
	}
	return nil
}
