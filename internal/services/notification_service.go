// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
)

// Mailer delivers a composed message. gomail's dialer satisfies it.
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

type NotificationService struct {
	config *config.Config
	mailer Mailer
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	s := &NotificationService{config: cfg}
	if cfg.Email.SMTPHost != "" {
		s.mailer = gomail.NewDialer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPUsername, cfg.Email.SMTPPassword)
	}
	return s
}

// WithMailer replaces the SMTP dialer.
func (s *NotificationService) WithMailer(m Mailer) *NotificationService {
	s.mailer = m
	return s
}

func (s *NotificationService) SendWelcomeEmail(user *models.User) error {
	return s.send(user.Email, "welcome", map[string]interface{}{
		"Name":    user.Name,
		"ShopURL": s.config.Frontend.BaseURL,
	})
}

func (s *NotificationService) SendPasswordResetEmail(user *models.User, resetToken string) error {
	return s.send(user.Email, "password_reset", map[string]interface{}{
		"Name":      user.Name,
		"ResetURL":  fmt.Sprintf("%s/reset-password?token=%s", s.config.Frontend.BaseURL, resetToken),
		"ExpiresIn": fmt.Sprintf("%d minutes", s.config.JWT.ResetTokenTTL),
	})
}

func (s *NotificationService) SendOrderConfirmation(order *models.Order) error {
	return s.send(order.CustomerEmail, "order_confirmation", map[string]interface{}{
		"Name":          order.CustomerName,
		"OrderID":       order.ID,
		"Items":         order.Items,
		"Subtotal":      order.Subtotal.StringFixed(2),
		"Discount":      order.DiscountAmount.StringFixed(2),
		"Shipping":      order.ShippingTotal.StringFixed(2),
		"Total":         order.Total.StringFixed(2),
		"PaymentMethod": order.PaymentMethod,
		"OrderURL":      fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
	})
}

// SendContactMessage forwards a storefront contact form to the shop inbox.
func (s *NotificationService) SendContactMessage(to string, msg *models.ContactMessage) error {
	if to == "" {
		to = s.config.Email.FromEmail
	}
	return s.send(to, "contact_message", map[string]interface{}{
		"Name":    msg.Name,
		"Email":   msg.Email,
		"Subject": msg.Subject,
		"Message": msg.Message,
	})
}

func (s *NotificationService) send(to, templateType string, data map[string]interface{}) error {
	tmpl := s.getEmailTemplate(templateType)

	var subject bytes.Buffer
	if err := texttemplate.Must(texttemplate.New("subject").Parse(tmpl.Subject)).Execute(&subject, data); err != nil {
		return fmt.Errorf("failed to render email subject: %w", err)
	}
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(to, subject.String(), body)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.mailer == nil {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email delivery disabled, skipping")
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.Email.FromEmail, s.config.Email.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.mailer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
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
			Subject: "Hoş geldiniz",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Merhaba {{.Name}},</h2>
	<p>Hesabınız oluşturuldu. Alışverişe başlamak için <a href="{{.ShopURL}}">mağazamızı</a> ziyaret edin.</p>
</body>
</html>`,
		},
		"password_reset": {
			Subject: "Şifre sıfırlama",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Merhaba {{.Name}},</h2>
	<p>Şifrenizi sıfırlamak için aşağıdaki bağlantıya tıklayın. Bağlantı {{.ExpiresIn}} geçerlidir.</p>
	<a href="{{.ResetURL}}">Şifremi sıfırla</a>
	<p>Bu isteği siz yapmadıysanız bu e-postayı yok sayabilirsiniz.</p>
</body>
</html>`,
		},
		"order_confirmation": {
			Subject: "Siparişiniz alındı #{{.OrderID}}",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Teşekkürler {{.Name}}!</h2>
	<p>Siparişiniz hazırlanıyor.</p>
	<table>
	{{range .Items}}<tr><td>{{.ProductName}}</td><td>{{.Quantity}}</td><td>{{.Price.StringFixed 2}}</td></tr>{{end}}
	</table>
	<p>Ara toplam: {{.Subtotal}}<br>İndirim: {{.Discount}}<br>Kargo: {{.Shipping}}<br><strong>Toplam: {{.Total}}</strong></p>
	<p>Ödeme yöntemi: {{.PaymentMethod}}</p>
	<a href="{{.OrderURL}}">Siparişi görüntüle</a>
</body>
</html>`,
		},
		"contact_message": {
			Subject: "İletişim formu: {{.Subject}}",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<p><strong>{{.Name}}</strong> &lt;{{.Email}}&gt; yazdı:</p>
	<p>{{.Message}}</p>
</body>
</html>`,
		},
	}

	if template, exists := templates[templateType]; exists {
		return template
	}

	// Default template
	return EmailTemplate{
		Subject: "Bildirim",
		Body:    "<p>{{.Message}}</p>",
	}
}
