package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mreglen/banya-backend/models"
)

type ReceiptItemInput struct {
	ProductID     uint    `json:"product_id" validate:"required"`
	Quantity      float64 `json:"quantity" validate:"required,gt=0"`
	PurchasePrice float64 `json:"purchase_price" validate:"min=0"`
}

type CreateReceiptInput struct {
	Date            string             `json:"date" validate:"required"`
	SupplierName    string             `json:"supplier_name" validate:"required,max=100"`
	ResponsibleName string             `json:"responsible_name" validate:"required,max=100"`
	SupplierNumber  string             `json:"supplier_number"`
	Items           []ReceiptItemInput `json:"items" validate:"required,min=1,dive"`
}

// CreateReceipt books incoming goods: every item restocks its product and
// records the new purchase price, together with the document, in one
// transaction. An unknown product aborts the whole receipt.
func CreateReceipt(db *gorm.DB, input CreateReceiptInput) (*models.EntranceDocument, error) {
	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date format, use YYYY-MM-DD", ErrValidation)
	}

	var doc models.EntranceDocument
	err = db.Transaction(func(tx *gorm.DB) error {
		total := 0.0
		items := make([]models.EntranceDocumentItem, 0, len(input.Items))
		for _, item := range input.Items {
			if err := RestockProduct(tx, item.ProductID, item.Quantity, item.PurchasePrice); err != nil {
				return err
			}
			total += item.Quantity * item.PurchasePrice
			items = append(items, models.EntranceDocumentItem{
				ProductID:     item.ProductID,
				Quantity:      item.Quantity,
				PurchasePrice: item.PurchasePrice,
			})
		}

		doc = models.EntranceDocument{
			Date:            date,
			SupplierName:    input.SupplierName,
			ResponsibleName: input.ResponsibleName,
			SupplierNumber:  input.SupplierNumber,
			TotalAmount:     total,
			Items:           items,
		}
		return tx.Create(&doc).Error
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateReceipt replaces the document header and its item rows in full.
// Stock is deliberately not touched: the goods already entered the shelf
// when the receipt was booked, and corrections go through a new receipt.
func UpdateReceipt(db *gorm.DB, id uint, input CreateReceiptInput) (*models.EntranceDocument, error) {
	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date format, use YYYY-MM-DD", ErrValidation)
	}

	var doc models.EntranceDocument
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&doc, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReceiptNotFound
			}
			return err
		}

		if err := tx.Where("document_id = ?", id).Delete(&models.EntranceDocumentItem{}).Error; err != nil {
			return err
		}

		total := 0.0
		items := make([]models.EntranceDocumentItem, 0, len(input.Items))
		for _, item := range input.Items {
			var count int64
			if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: id %d", ErrProductNotFound, item.ProductID)
			}
			total += item.Quantity * item.PurchasePrice
			items = append(items, models.EntranceDocumentItem{
				DocumentID:    id,
				ProductID:     item.ProductID,
				Quantity:      item.Quantity,
				PurchasePrice: item.PurchasePrice,
			})
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		doc.Date = date
		doc.SupplierName = input.SupplierName
		doc.ResponsibleName = input.ResponsibleName
		doc.SupplierNumber = input.SupplierNumber
		doc.TotalAmount = total
		doc.Items = items
		return tx.Omit(clause.Associations).Save(&doc).Error
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func GetReceipt(db *gorm.DB, id uint) (*models.EntranceDocument, error) {
	var doc models.EntranceDocument
	err := db.Preload("Items.Product").First(&doc, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func ListReceipts(db *gorm.DB) ([]models.EntranceDocument, error) {
	var docs []models.EntranceDocument
	err := db.Preload("Items").Order("date DESC, id DESC").Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteReceipt removes the paperwork only; the received goods stay on the
// shelf, matching how the stock ledger treats historical receipts.
func DeleteReceipt(db *gorm.DB, id uint) error {
	var doc models.EntranceDocument
	if err := db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReceiptNotFound
		}
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&models.EntranceDocumentItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.EntranceDocument{}, id).Error
	})
}
