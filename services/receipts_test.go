package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mreglen/banya-backend/models"
)

func TestCreateReceiptRestocksAndReprices(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Веник берёзовый", 5, 100)

	doc, err := CreateReceipt(db, CreateReceiptInput{
		Date:            "2026-06-01",
		SupplierName:    "ООО Лес",
		ResponsibleName: "Сидоров",
		Items: []ReceiptItemInput{
			{ProductID: product.ID, Quantity: 10, PurchasePrice: 150},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, doc.TotalAmount)
	require.Len(t, doc.Items, 1)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 15.0, reloaded.TotalQuantity)
	assert.Equal(t, 150.0, reloaded.LastPurchasePrice)
}

func TestCreateReceiptUnknownProductAbortsEverything(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Веник берёзовый", 5, 100)

	_, err := CreateReceipt(db, CreateReceiptInput{
		Date:            "2026-06-01",
		SupplierName:    "ООО Лес",
		ResponsibleName: "Сидоров",
		Items: []ReceiptItemInput{
			{ProductID: product.ID, Quantity: 10, PurchasePrice: 150},
			{ProductID: 999, Quantity: 1, PurchasePrice: 10},
		},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)

	// The first item's restock must be rolled back with the document.
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 5.0, reloaded.TotalQuantity)
	assert.Equal(t, 100.0, reloaded.LastPurchasePrice)

	var count int64
	db.Model(&models.EntranceDocument{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateReceiptRejectsBadDate(t *testing.T) {
	db := newTestDB(t)

	_, err := CreateReceipt(db, CreateReceiptInput{
		Date:            "01.06.2026",
		SupplierName:    "ООО Лес",
		ResponsibleName: "Сидоров",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateReceiptReplacesItemsWithoutTouchingStock(t *testing.T) {
	db := newTestDB(t)
	brooms := seedProduct(t, db, "Веник берёзовый", 5, 100)
	towels := seedProduct(t, db, "Полотенце", 10, 50)

	doc, err := CreateReceipt(db, CreateReceiptInput{
		Date:            "2026-06-01",
		SupplierName:    "ООО Лес",
		ResponsibleName: "Сидоров",
		Items: []ReceiptItemInput{
			{ProductID: brooms.ID, Quantity: 10, PurchasePrice: 150},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 15.0, productQuantity(t, db, brooms.ID))

	updated, err := UpdateReceipt(db, doc.ID, CreateReceiptInput{
		Date:            "2026-06-02",
		SupplierName:    "ООО Хлопок",
		ResponsibleName: "Сидоров",
		Items: []ReceiptItemInput{
			{ProductID: towels.ID, Quantity: 4, PurchasePrice: 60},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 240.0, updated.TotalAmount)
	assert.Equal(t, "ООО Хлопок", updated.SupplierName)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, towels.ID, updated.Items[0].ProductID)

	// Corrections to the paperwork move no goods in either direction.
	assert.Equal(t, 15.0, productQuantity(t, db, brooms.ID))
	assert.Equal(t, 10.0, productQuantity(t, db, towels.ID))

	reloaded, err := GetReceipt(db, doc.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, towels.ID, reloaded.Items[0].ProductID)
}

func TestUpdateReceiptUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	brooms := seedProduct(t, db, "Веник берёзовый", 5, 100)

	doc, err := CreateReceipt(db, CreateReceiptInput{
		Date:            "2026-06-01",
		SupplierName:    "ООО Лес",
		ResponsibleName: "Сидоров",
		Items: []ReceiptItemInput{
			{ProductID: brooms.ID, Quantity: 10, PurchasePrice: 150},
		},
	})
	require.NoError(t, err)

	_, err = UpdateReceipt(db, doc.ID, CreateReceiptInput{
		Date:            "2026-06-02",
		SupplierName:    "ООО Лес",
		ResponsibleName: "Сидоров",
		Items: []ReceiptItemInput{
			{ProductID: 999, Quantity: 1, PurchasePrice: 10},
		},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)

	// The old item rows survive the aborted replacement.
	reloaded, err := GetReceipt(db, doc.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, brooms.ID, reloaded.Items[0].ProductID)
}

func TestUpdateReceiptUnknownDocument(t *testing.T) {
	db := newTestDB(t)

	_, err := UpdateReceipt(db, 999, CreateReceiptInput{
		Date:            "2026-06-01",
		SupplierName:    "ООО Лес",
		ResponsibleName: "Сидоров",
	})
	assert.ErrorIs(t, err, ErrReceiptNotFound)
}

func TestDeleteReceiptKeepsGoodsOnShelf(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Веник берёзовый", 5, 100)

	doc, err := CreateReceipt(db, CreateReceiptInput{
		Date:            "2026-06-01",
		SupplierName:    "ООО Лес",
		ResponsibleName: "Сидоров",
		Items: []ReceiptItemInput{
			{ProductID: product.ID, Quantity: 10, PurchasePrice: 150},
		},
	})
	require.NoError(t, err)

	require.NoError(t, DeleteReceipt(db, doc.ID))

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 15.0, reloaded.TotalQuantity)

	_, err = GetReceipt(db, doc.ID)
	assert.ErrorIs(t, err, ErrReceiptNotFound)
}
