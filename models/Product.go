package models

import "time"

type Category struct {
	ID       uint       `json:"id" gorm:"primaryKey"`
	Name     string     `json:"name" gorm:"not null"`
	ParentID *uint      `json:"parent_id"`
	Children []Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

type UnitOfMeasurement struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:50;unique;not null"`
	Description string `json:"description" gorm:"size:100"`
}

type Product struct {
	ID                 uint    `json:"id" gorm:"primaryKey"`
	Name               string  `json:"name" gorm:"not null"`
	Description        string  `json:"description"`
	IsVisibleOnWebsite bool    `json:"is_visible_on_website" gorm:"default:false"`
	CategoryID         *uint   `json:"category_id"`
	TotalQuantity      float64 `json:"total_quantity" gorm:"not null;default:0"`
	LastPurchasePrice  float64 `json:"last_purchase_price" gorm:"not null;default:0"`
	UnitID             *uint   `json:"unit_id"`

	Category *Category          `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Unit     *UnitOfMeasurement `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
}

// EntranceDocument is a goods receipt: it puts purchased quantities back on
// the shelf and records the purchase price the products were last bought at.
type EntranceDocument struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Date            time.Time `json:"date" gorm:"not null"`
	SupplierName    string    `json:"supplier_name" gorm:"size:100;not null"`
	ResponsibleName string    `json:"responsible_name" gorm:"size:100;not null"`
	SupplierNumber  string    `json:"supplier_number"`
	TotalAmount     float64   `json:"total_amount" gorm:"not null;default:0"`

	Items []EntranceDocumentItem `json:"items" gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

type EntranceDocumentItem struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	DocumentID    uint    `json:"document_id" gorm:"not null;index"`
	ProductID     uint    `json:"product_id" gorm:"not null"`
	Quantity      float64 `json:"quantity" gorm:"not null"`
	PurchasePrice float64 `json:"purchase_price" gorm:"not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
