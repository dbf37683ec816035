// internal/services/receipt_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/marketbay/storefront-backend/internal/config"
	"github.com/marketbay/storefront-backend/internal/models"
)

var (
	ErrReceiptNotFound     = errors.New("receipt not found")
	ErrReceiptRenderFailed = errors.New("receipt could not be rendered")
)

type ReceiptService struct {
	db      *gorm.DB
	config  *config.Config
	storage *StorageService
	client  *http.Client
	logger  *logrus.Logger
}

func NewReceiptService(db *gorm.DB, config *config.Config, storage *StorageService, logger *logrus.Logger) *ReceiptService {
	return &ReceiptService{
		db:      db,
		config:  config,
		storage: storage,
		client: &http.Client{
			Timeout: time.Duration(config.Receipt.RenderTimeout) * time.Second,
		},
		logger: logger,
	}
}

// GenerateForOrder creates the receipt record for a freshly placed
// order. PDF rendering and archival run best effort; the receipt row and
// its HTML view are always available.
func (s *ReceiptService) GenerateForOrder(ctx context.Context, order *models.Order) (*models.Receipt, error) {
	// An order carries at most one receipt
	var existing models.Receipt
	if err := s.db.Where("order_id = ?", order.ID).First(&existing).Error; err == nil {
		return &existing, nil
	}

	receipt := &models.Receipt{
		OrderID: order.ID,
		Number:  s.nextNumber(),
	}

	if err := s.db.Create(receipt).Error; err != nil {
		return nil, fmt.Errorf("failed to create receipt: %w", err)
	}

	if s.config.Receipt.ArchiveEnabled && s.config.Receipt.RendererURL != "" {
		if err := s.archive(ctx, receipt, order); err != nil {
			s.logger.WithFields(logrus.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			}).Warn("receipt archive failed")
		}
	}

	return receipt, nil
}

func (s *ReceiptService) GetByOrder(orderID uuid.UUID) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := s.db.Preload("Order.Items").Preload("Order.User").
		Where("order_id = ?", orderID).First(&receipt).Error; err != nil {
		return nil, ErrReceiptNotFound
	}
	return &receipt, nil
}

// RenderHTML produces the browser view of the receipt.
func (s *ReceiptService) RenderHTML(receipt *models.Receipt, order *models.Order) (string, error) {
	tmpl, err := template.New("receipt").Funcs(template.FuncMap{
		"mulQty": func(price float64, qty int) float64 { return price * float64(qty) },
	}).Parse(receiptTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse receipt template: %w", err)
	}

	data := map[string]interface{}{
		"Number":        receipt.Number,
		"Date":          receipt.CreatedAt.Format("January 2, 2006"),
		"CustomerName":  order.User.Name,
		"Address":       order.ShippingAddress,
		"Items":         order.Items,
		"ItemsPrice":    fmt.Sprintf("%.2f", order.ItemsPrice),
		"TaxPrice":      fmt.Sprintf("%.2f", order.TaxPrice),
		"ShippingPrice": fmt.Sprintf("%.2f", order.ShippingPrice),
		"TotalPrice":    fmt.Sprintf("%.2f", order.TotalPrice),
		"PaymentMethod": strings.ReplaceAll(string(order.PaymentMethod), "_", " "),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render receipt: %w", err)
	}

	return buf.String(), nil
}

// DownloadURL returns a short-lived link to the archived PDF.
func (s *ReceiptService) DownloadURL(receipt *models.Receipt) (string, error) {
	if receipt.PDFKey == "" {
		return "", ErrReceiptNotFound
	}
	return s.storage.GeneratePresignedURL(receipt.PDFKey, 15*time.Minute)
}

// ViewURL is the stable HTML receipt link served by this API.
func (s *ReceiptService) ViewURL(receipt *models.Receipt) string {
	return fmt.Sprintf("%s/receipts/%s", s.config.Frontend.BaseURL, receipt.OrderID)
}

// RenderPDF produces the PDF receipt through the external renderer.
func (s *ReceiptService) RenderPDF(ctx context.Context, receipt *models.Receipt, order *models.Order) ([]byte, error) {
	if s.config.Receipt.RendererURL == "" {
		return nil, ErrReceiptRenderFailed
	}

	html, err := s.RenderHTML(receipt, order)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Receipt.RendererURL, strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to build render request: %w", err)
	}
	req.Header.Set("Content-Type", "text/html; charset=utf-8")
	req.Header.Set("Accept", "application/pdf")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("renderer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: renderer returned %d", ErrReceiptRenderFailed, resp.StatusCode)
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered pdf: %w", err)
	}

	return pdf, nil
}

// archive renders the receipt to PDF and stores the result.
func (s *ReceiptService) archive(ctx context.Context, receipt *models.Receipt, order *models.Order) error {
	pdf, err := s.RenderPDF(ctx, receipt, order)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("receipts/%s/%s.pdf", receipt.CreatedAt.Format("2006/01"), receipt.Number)
	upload, err := s.storage.PutObject(pdf, key, "application/pdf", false)
	if err != nil {
		return err
	}

	now := time.Now()
	return s.db.Model(receipt).Updates(map[string]interface{}{
		"pdf_key":     upload.Key,
		"archive_url": upload.URL,
		"archived_at": now,
	}).Error
}

func (s *ReceiptService) nextNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("RCP-%s-%s", time.Now().Format("2006"), suffix)
}

const receiptTemplate = `
<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
	body { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; margin: 40px; }
	h1 { font-size: 22px; }
	table { width: 100%; border-collapse: collapse; margin-top: 16px; }
	th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #ddd; }
	.totals td { border: none; }
	.totals .grand { font-weight: bold; }
</style>
</head>
<body>
	<h1>Receipt {{.Number}}</h1>
	<p>{{.Date}}</p>
	<p>
		{{.CustomerName}}<br>
		{{.Address.Line1}}{{if .Address.Line2}}, {{.Address.Line2}}{{end}}<br>
		{{.Address.City}} {{.Address.PostalCode}}, {{.Address.Country}}
	</p>
	<table>
		<tr><th>Item</th><th>Qty</th><th>Unit</th><th>Subtotal</th></tr>
		{{range .Items}}
		<tr>
			<td>{{.Name}}</td>
			<td>{{.Quantity}}</td>
			<td>${{printf "%.2f" .UnitPrice}}</td>
			<td>${{printf "%.2f" (mulQty .UnitPrice .Quantity)}}</td>
		</tr>
		{{end}}
	</table>
	<table class="totals">
		<tr><td>Items</td><td>${{.ItemsPrice}}</td></tr>
		<tr><td>Tax</td><td>${{.TaxPrice}}</td></tr>
		<tr><td>Shipping</td><td>${{.ShippingPrice}}</td></tr>
		<tr class="grand"><td>Total</td><td>${{.TotalPrice}}</td></tr>
	</table>
	<p>Paid via {{.PaymentMethod}}. Thank you for shopping with Marketbay.</p>
</body>
</html>`
