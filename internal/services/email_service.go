package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"path/filepath"
	"time"

	"github.com/prooflab/backend/internal/config"
	"github.com/prooflab/backend/internal/models"
)

type EmailService struct {
	cfg       *config.Config
	templates map[string]*template.Template
}

func NewEmailService(cfg *config.Config) *EmailService {
	service := &EmailService{
		cfg:       cfg,
		templates: make(map[string]*template.Template),
	}
	service.loadTemplates()
	return service
}

func (s *EmailService) loadTemplates() {
	templateFiles := []string{
		"gallery_ready.html",
		"order_confirmation.html",
	}

	for _, file := range templateFiles {
		path := filepath.Join("templates", file)
		tmpl, err := template.ParseFiles(path)
		if err != nil {
			log.Printf("WARN: failed to load email template %s: %v", file, err)
			continue
		}
		s.templates[file] = tmpl
	}
}

// SendGalleryReady notifies a client that their gallery is available, with
// the access code they redeem to get in.
func (s *EmailService) SendGalleryReady(client *models.Client, gallery *models.Gallery, code string) error {
	data := map[string]interface{}{
		"Name":        client.Name,
		"GalleryName": gallery.Name,
		"Code":        code,
		"GalleryURL":  fmt.Sprintf("%s/gallery?code=%s", s.cfg.FrontendURL, code),
	}
	subject := fmt.Sprintf("Your photos are ready: %s", gallery.Name)
	return s.sendEmail(client.Email, subject, "gallery_ready.html", data)
}

// SendOrderConfirmation sends an order confirmation after payment. The
// order's items must be loaded with their products.
func (s *EmailService) SendOrderConfirmation(client *models.Client, order *models.Order) error {
	items := make([]map[string]interface{}, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]interface{}{
			"Product":   item.Product.Name,
			"Image":     item.Image.Name,
			"Quantity":  item.Quantity,
			"LineTotal": fmt.Sprintf("%.2f", item.LineTotal),
		})
	}
	data := map[string]interface{}{
		"Name":    client.Name,
		"OrderID": order.ID.String(),
		"Total":   fmt.Sprintf("%.2f", order.TotalAmount),
		"Date":    time.Now().Format("02.01.2006"),
		"Items":   items,
	}
	subject := fmt.Sprintf("Order confirmation %s", order.ID.String()[:8])
	return s.sendEmail(client.Email, subject, "order_confirmation.html", data)
}

// SendGenericTextEmail sends a plain text email with given subject and body
func (s *EmailService) SendGenericTextEmail(to, subject, body string) error {
	from := fmt.Sprintf("%s <%s>", s.cfg.SMTPFromName, s.cfg.SMTPFrom)
	message := fmt.Sprintf("From: %s\r\n", from)
	message += fmt.Sprintf("To: %s\r\n", to)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "Content-Type: text/plain; charset=\"UTF-8\"\r\n"
	message += "\r\n"
	message += body
	return s.sendSMTP(to, []byte(message))
}

func (s *EmailService) sendEmail(to, subject, templateName string, data interface{}) error {
	tmpl, exists := s.templates[templateName]
	if !exists {
		return fmt.Errorf("template %s not found", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	from := fmt.Sprintf("%s <%s>", s.cfg.SMTPFromName, s.cfg.SMTPFrom)

	message := fmt.Sprintf("From: %s\r\n", from)
	message += fmt.Sprintf("To: %s\r\n", to)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	message += "\r\n"
	message += body.String()

	return s.sendSMTP(to, []byte(message))
}

// sendSMTP sends an email via SMTP. Port 465 uses implicit TLS, everything
// else goes through the stdlib STARTTLS path.
func (s *EmailService) sendSMTP(to string, message []byte) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	if s.cfg.SMTPPort == 465 {
		tlsConfig := &tls.Config{
			ServerName: s.cfg.SMTPHost,
		}

		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
		defer client.Close()

		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}

		if err := client.Mail(s.cfg.SMTPFrom); err != nil {
			return err
		}
		if err := client.Rcpt(to); err != nil {
			return err
		}

		w, err := client.Data()
		if err != nil {
			return err
		}
		if _, err = w.Write(message); err != nil {
			return err
		}
		if err = w.Close(); err != nil {
			return err
		}

		return client.Quit()
	}

	return smtp.SendMail(addr, auth, s.cfg.SMTPFrom, []string{to}, message)
}
