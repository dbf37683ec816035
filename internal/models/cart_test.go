// internal/models/cart_test.go
package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func testProduct(price float64, discount float64) *Product {
	return &Product{
		BaseModel:       BaseModel{ID: uuid.New()},
		Name:            "Walnut Desk Organizer",
		Price:           price,
		DiscountPercent: discount,
		Stock:           20,
		Images:          pq.StringArray{"https://cdn.example.com/desk-1.jpg"},
	}
}

func TestMergeItemAppendsNewLine(t *testing.T) {
	cart := &Cart{BaseModel: BaseModel{ID: uuid.New()}}
	product := testProduct(24.90, 0)

	qty := cart.MergeItem(product, 2)

	assert.Equal(t, 2, qty)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, product.ID, cart.Items[0].ProductID)
	assert.Equal(t, "Walnut Desk Organizer", cart.Items[0].Name)
	assert.Equal(t, "https://cdn.example.com/desk-1.jpg", cart.Items[0].Image)
	assert.Equal(t, 24.90, cart.Items[0].Price)
}

func TestMergeItemCombinesQuantities(t *testing.T) {
	cart := &Cart{BaseModel: BaseModel{ID: uuid.New()}}
	product := testProduct(24.90, 0)

	cart.MergeItem(product, 2)
	qty := cart.MergeItem(product, 3)

	assert.Equal(t, 5, qty)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestMergeItemRefreshesCapturedPrice(t *testing.T) {
	cart := &Cart{BaseModel: BaseModel{ID: uuid.New()}}
	product := testProduct(24.90, 0)
	cart.MergeItem(product, 1)

	// price drops before the second add; the line follows the catalog
	product.Price = 19.90
	cart.MergeItem(product, 1)

	assert.Equal(t, 19.90, cart.Items[0].Price)
}

func TestMergeItemUsesDiscountedPrice(t *testing.T) {
	cart := &Cart{BaseModel: BaseModel{ID: uuid.New()}}
	product := testProduct(100.00, 25)

	cart.MergeItem(product, 1)

	assert.InDelta(t, 75.00, cart.Items[0].Price, 0.001)
}

func TestSetItemZeroRemovesLine(t *testing.T) {
	cart := &Cart{BaseModel: BaseModel{ID: uuid.New()}}
	product := testProduct(24.90, 0)
	cart.MergeItem(product, 2)

	remains := cart.SetItem(product, 0)

	assert.False(t, remains)
	assert.Empty(t, cart.Items)
}

func TestSetItemReplacesQuantity(t *testing.T) {
	cart := &Cart{BaseModel: BaseModel{ID: uuid.New()}}
	product := testProduct(24.90, 0)
	cart.MergeItem(product, 5)

	remains := cart.SetItem(product, 1)

	assert.True(t, remains)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestRecomputeTotals(t *testing.T) {
	cart := &Cart{BaseModel: BaseModel{ID: uuid.New()}}
	cart.MergeItem(testProduct(10.00, 0), 2)
	cart.MergeItem(testProduct(5.50, 0), 3)

	cart.RecomputeTotals()

	assert.Equal(t, 5, cart.TotalItems)
	assert.InDelta(t, 36.50, cart.TotalPrice, 0.001)
}

func TestRecomputeTotalsEmptyCart(t *testing.T) {
	cart := &Cart{
		BaseModel:  BaseModel{ID: uuid.New()},
		TotalItems: 9,
		TotalPrice: 99.99,
	}

	cart.RecomputeTotals()

	assert.Zero(t, cart.TotalItems)
	assert.Zero(t, cart.TotalPrice)
}

func TestRemoveItemLeavesOtherLines(t *testing.T) {
	cart := &Cart{BaseModel: BaseModel{ID: uuid.New()}}
	first := testProduct(10.00, 0)
	second := testProduct(5.50, 0)
	cart.MergeItem(first, 1)
	cart.MergeItem(second, 1)

	cart.RemoveItem(first.ID)

	assert.Len(t, cart.Items, 1)
	assert.Equal(t, second.ID, cart.Items[0].ProductID)
}
