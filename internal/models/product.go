package models

import "gorm.io/gorm"

// Product represents a product in the store. Price is in minor currency
// units (cents). Stock never goes below zero; the repository enforces
// that with a conditional update.
type Product struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	SKU         string           `json:"sku" gorm:"uniqueIndex;type:varchar(64)" validate:"required,max=64"`
	Name        string           `json:"name" validate:"required,min=3,max=100"`
	Description string           `json:"description" validate:"omitempty,max=500"`
	Price       int64            `json:"price" validate:"required,gt=0"`
	Stock       int              `json:"stock" validate:"gte=0"`
	Active      bool             `json:"active" gorm:"default:true"`
	Variants    []ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID"`
	gorm.Model                   // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// ProductVariant is a purchasable variation of a product (size, color,
// ...) with its own price and stock level. A variant is active whenever
// its parent product is.
type ProductVariant struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ProductID  string `json:"product_id" gorm:"index;type:varchar(36)" validate:"required"`
	SKU        string `json:"sku" gorm:"uniqueIndex;type:varchar(64)" validate:"required,max=64"`
	Name       string `json:"name" validate:"required,min=1,max=100"`
	Price      int64  `json:"price" validate:"required,gt=0"`
	Stock      int    `json:"stock" validate:"gte=0"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
