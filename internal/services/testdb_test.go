// internal/services/testdb_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/marketbay/storefront-backend/internal/config"
	"github.com/marketbay/storefront-backend/internal/models"
)

// The production schema is managed against Postgres, so the tables are
// declared by hand here instead of through AutoMigrate.
var testSchema = []string{
	`CREATE TABLE users (
		id text PRIMARY KEY,
		created_at datetime, updated_at datetime, deleted_at datetime,
		name text, email text, password_hash text, role text,
		balance numeric DEFAULT 0,
		reset_token_hash text, reset_token_expires datetime,
		otp_hash text, otp_expires datetime, last_login_at datetime
	)`,
	`CREATE TABLE categories (
		id text PRIMARY KEY,
		created_at datetime, updated_at datetime, deleted_at datetime,
		name text, slug text, description text, active integer DEFAULT 1
	)`,
	`CREATE TABLE products (
		id text PRIMARY KEY,
		created_at datetime, updated_at datetime, deleted_at datetime,
		seller_id text, category_id text, name text, description text,
		price numeric, stock integer DEFAULT 0, sold integer DEFAULT 0,
		images text, active integer DEFAULT 1,
		discount_percent numeric DEFAULT 0,
		rating numeric DEFAULT 0, rating_count integer DEFAULT 0
	)`,
	`CREATE TABLE orders (
		id text PRIMARY KEY,
		created_at datetime, updated_at datetime, deleted_at datetime,
		user_id text,
		ship_full_name text, ship_line1 text, ship_line2 text,
		ship_city text, ship_postal_code text, ship_country text, ship_phone text,
		payment_method text,
		items_price numeric, tax_price numeric, shipping_price numeric, total_price numeric,
		status text DEFAULT 'pending',
		paid_at datetime, shipped_at datetime, sent_at datetime,
		delivered_at datetime, received_at datetime, cancelled_at datetime
	)`,
	`CREATE TABLE order_items (
		id text PRIMARY KEY,
		created_at datetime, updated_at datetime, deleted_at datetime,
		order_id text, product_id text, name text, image text,
		quantity integer, unit_price numeric
	)`,
	`CREATE TABLE payment_results (
		id text PRIMARY KEY,
		created_at datetime, updated_at datetime, deleted_at datetime,
		order_id text, external_id text UNIQUE, status text,
		payer_email text, paid_at datetime
	)`,
	`CREATE TABLE carts (
		id text PRIMARY KEY,
		created_at datetime, updated_at datetime, deleted_at datetime,
		user_id text UNIQUE, total_items integer DEFAULT 0, total_price numeric DEFAULT 0
	)`,
	`CREATE TABLE cart_items (
		id text PRIMARY KEY,
		created_at datetime, updated_at datetime, deleted_at datetime,
		cart_id text, product_id text, name text, image text,
		quantity integer, price numeric,
		UNIQUE (cart_id, product_id)
	)`,
	`CREATE TABLE receipts (
		id text PRIMARY KEY,
		created_at datetime, updated_at datetime, deleted_at datetime,
		order_id text UNIQUE, number text UNIQUE,
		pdf_key text, archive_url text, archived_at datetime
	)`,
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	for _, stmt := range testSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Pricing: config.PricingConfig{
			TaxRatePercent:    10.0,
			FlatShippingPrice: 5.0,
			FreeShippingOver:  100.0,
		},
		Frontend: config.FrontendConfig{BaseURL: "http://localhost:3000"},
	}
}

func seedUser(t *testing.T, db *gorm.DB, balance float64) *models.User {
	t.Helper()
	user := &models.User{
		Name:    "Dana Voss",
		Email:   fmt.Sprintf("dana+%s@example.com", uuid.NewString()[:8]),
		Role:    models.RoleCustomer,
		Balance: balance,
	}
	require.NoError(t, user.SetPassword("Sup3r$ecret"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, price float64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:   uuid.New(),
		CategoryID: uuid.New(),
		Name:       "Walnut Desk Organizer",
		Price:      price,
		Stock:      stock,
		Active:     true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func testAddress() models.ShippingAddress {
	return models.ShippingAddress{
		FullName:   "Dana Voss",
		Line1:      "12 Alder Row",
		City:       "Portland",
		PostalCode: "97209",
		Country:    "US",
	}
}

func newTestOrderService(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	cfg := testConfig()
	notifications := NewNotificationService(db, cfg, logrus.New())
	return NewOrderService(db, cfg, notifications), db
}

func newTestPaymentService(t *testing.T) (*PaymentService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	cfg := testConfig()
	notifications := NewNotificationService(db, cfg, logrus.New())
	return NewPaymentService(db, cfg, notifications), db
}
