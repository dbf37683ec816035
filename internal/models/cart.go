// internal/models/cart.go
package models

import (
	"github.com/google/uuid"
)

// Cart is the single live cart for a user. Line items reference distinct
// products; adding an already-present product merges into its line.
type Cart struct {
	BaseModel
	UserID     uuid.UUID  `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	TotalItems int        `json:"total_items" gorm:"default:0"`
	TotalPrice float64    `json:"total_price" gorm:"type:decimal(10,2);default:0"`
}

type CartItem struct {
	BaseModel
	CartID    uuid.UUID `json:"cart_id" gorm:"type:uuid;not null;index:idx_cart_product,unique"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index:idx_cart_product,unique"`
	Name      string    `json:"name" gorm:"size:255"`
	Image     string    `json:"image" gorm:"size:512"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2);not null"`
}

// RecomputeTotals rebuilds the derived totals from the line items. Totals
// are never adjusted incrementally so they cannot drift.
func (c *Cart) RecomputeTotals() {
	items := 0
	price := 0.0
	for _, li := range c.Items {
		items += li.Quantity
		price += float64(li.Quantity) * li.Price
	}
	c.TotalItems = items
	c.TotalPrice = price
}

// FindItem returns the line item for productID, or nil.
func (c *Cart) FindItem(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// MergeItem adds qty of the product to the cart. An existing line has its
// quantity increased and its captured price refreshed to the product's
// current unit price; otherwise a new line is appended. Returns the
// resulting line quantity so callers can re-validate stock against it.
func (c *Cart) MergeItem(product *Product, qty int) int {
	if li := c.FindItem(product.ID); li != nil {
		li.Quantity += qty
		li.Price = product.EffectivePrice()
		li.Name = product.Name
		li.Image = product.FirstImage()
		return li.Quantity
	}
	c.Items = append(c.Items, CartItem{
		CartID:    c.ID,
		ProductID: product.ID,
		Name:      product.Name,
		Image:     product.FirstImage(),
		Quantity:  qty,
		Price:     product.EffectivePrice(),
	})
	return qty
}

// SetItem sets the line quantity for the product, refreshing the captured
// price. qty <= 0 removes the line. Reports whether a line remains.
func (c *Cart) SetItem(product *Product, qty int) bool {
	if qty <= 0 {
		c.RemoveItem(product.ID)
		return false
	}
	if li := c.FindItem(product.ID); li != nil {
		li.Quantity = qty
		li.Price = product.EffectivePrice()
		return true
	}
	c.Items = append(c.Items, CartItem{
		CartID:    c.ID,
		ProductID: product.ID,
		Name:      product.Name,
		Image:     product.FirstImage(),
		Quantity:  qty,
		Price:     product.EffectivePrice(),
	})
	return true
}

func (c *Cart) RemoveItem(productID uuid.UUID) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

type Wishlist struct {
	BaseModel
	UserID uuid.UUID      `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Items  []WishlistItem `json:"items" gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE"`
}

type WishlistItem struct {
	BaseModel
	WishlistID uuid.UUID `json:"wishlist_id" gorm:"type:uuid;not null;index:idx_wishlist_product,unique"`
	ProductID  uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index:idx_wishlist_product,unique"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
