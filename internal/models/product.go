// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Category struct {
	BaseModel
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:120;not null"`
	Description string `json:"description" gorm:"type:text"`
	Active      bool   `json:"active" gorm:"default:true"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

type Product struct {
	BaseModel
	SellerID        uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index"`
	CategoryID      uuid.UUID      `json:"category_id" gorm:"type:uuid;not null;index"`
	Name            string         `json:"name" gorm:"size:255;not null"`
	Description     string         `json:"description" gorm:"type:text"`
	Price           float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock           int            `json:"stock" gorm:"default:0"`
	Sold            int            `json:"sold" gorm:"default:0"`
	Images          pq.StringArray `json:"images" gorm:"type:text[]"`
	Active          bool           `json:"active" gorm:"default:true;index"`
	DiscountPercent float64        `json:"discount_percent" gorm:"type:decimal(5,2);default:0"`
	Rating          float64        `json:"rating" gorm:"type:decimal(3,2);default:0"`
	RatingCount     int64          `json:"rating_count" gorm:"default:0"`

	// Relationships
	Seller   User     `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Category Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// EffectivePrice is the unit price after the product discount.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPercent <= 0 {
		return p.Price
	}
	return p.Price * (1 - p.DiscountPercent/100)
}

// FirstImage returns the lead image URL, or "" when none is set.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
