// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/marketbay/storefront-backend/internal/config"
	"github.com/marketbay/storefront-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
		logger: logger,
	}
}

func (s *NotificationService) SendWelcomeEmail(user *models.User) error {
	tmpl := s.getEmailTemplate("welcome")

	data := map[string]interface{}{
		"Name":     user.Name,
		"StoreURL": s.config.Frontend.BaseURL,
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, tmpl.Subject, body)
}

func (s *NotificationService) SendPasswordResetEmail(user *models.User, resetToken string) error {
	tmpl := s.getEmailTemplate("password_reset")

	data := map[string]interface{}{
		"Name":      user.Name,
		"ResetURL":  fmt.Sprintf("%s/reset-password?token=%s", s.config.Frontend.BaseURL, resetToken),
		"ExpiresIn": "10 minutes",
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, tmpl.Subject, body)
}

func (s *NotificationService) SendOTPEmail(user *models.User, code string) error {
	tmpl := s.getEmailTemplate("otp")

	data := map[string]interface{}{
		"Name":      user.Name,
		"Code":      code,
		"ExpiresIn": "5 minutes",
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, tmpl.Subject, body)
}

func (s *NotificationService) SendOrderConfirmationEmail(user *models.User, order *models.Order, receiptURL string) error {
	tmpl := s.getEmailTemplate("order_confirmation")

	data := map[string]interface{}{
		"Name":       user.Name,
		"OrderID":    order.ID.String(),
		"Total":      fmt.Sprintf("%.2f", order.TotalPrice),
		"Items":      order.Items,
		"OrderURL":   fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
		"ReceiptURL": receiptURL,
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, tmpl.Subject, body)
}

func (s *NotificationService) SendOrderStatusEmail(user *models.User, order *models.Order) error {
	tmpl := s.getEmailTemplate("order_status")

	data := map[string]interface{}{
		"Name":     user.Name,
		"OrderID":  order.ID.String(),
		"Status":   string(order.Status),
		"OrderURL": fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, tmpl.Subject, body)
}

// NotifyAsync fires the given send func on its own goroutine. Email
// failures are logged, never surfaced to the caller.
func (s *NotificationService) NotifyAsync(kind string, send func() error) {
	go func() {
		if err := send(); err != nil {
			s.logger.WithFields(logrus.Fields{
				"kind":  kind,
				"error": err.Error(),
			}).Warn("notification delivery failed")
		}
	}()
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		s.logger.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("email skipped, SMTP not configured")
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	// Compose message
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"welcome": {
			Subject: "Welcome to Marketbay",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.Name}}!</h2>
	<p>Thanks for creating an account. Happy shopping!</p>
	<a href="{{.StoreURL}}">Browse the store</a>
	<p>Best regards,<br>The Marketbay Team</p>
</body>
</html>`,
		},
		"password_reset": {
			Subject: "Password Reset Request",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>We received a request to reset your password. The link below expires in {{.ExpiresIn}}.</p>
	<a href="{{.ResetURL}}">Reset Password</a>
	<p>If you did not request this, you can safely ignore this email.</p>
	<p>Best regards,<br>The Marketbay Team</p>
</body>
</html>`,
		},
		"otp": {
			Subject: "Your Sign-In Code",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>Your one-time sign-in code is:</p>
	<h1>{{.Code}}</h1>
	<p>The code expires in {{.ExpiresIn}}.</p>
	<p>Best regards,<br>The Marketbay Team</p>
</body>
</html>`,
		},
		"order_confirmation": {
			Subject: "Order Confirmation",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Thank you for your order, {{.Name}}!</h2>
	<p>Order <strong>{{.OrderID}}</strong> has been placed. Total: ${{.Total}}</p>
	<ul>
	{{range .Items}}<li>{{.Name}} x{{.Quantity}}</li>{{end}}
	</ul>
	<p><a href="{{.OrderURL}}">View your order</a>{{if .ReceiptURL}} or <a href="{{.ReceiptURL}}">download your receipt</a>{{end}}.</p>
	<p>Best regards,<br>The Marketbay Team</p>
</body>
</html>`,
		},
		"order_status": {
			Subject: "Order Update",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>Your order <strong>{{.OrderID}}</strong> is now <strong>{{.Status}}</strong>.</p>
	<a href="{{.OrderURL}}">View your order</a>
	<p>Best regards,<br>The Marketbay Team</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
