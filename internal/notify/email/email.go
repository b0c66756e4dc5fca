package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"text/template"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/folio/internal/config"
	mail "github.com/xhit/go-simple-mail/v2"
)

// NotificationService sends plain text mail to the operator mailbox.
// The operator mailbox is both the authenticated relay account and the recipient.
type NotificationService struct {
	config *config.EmailConfig
}

// ContactFailure describes a contact submission that could not be stored.
type ContactFailure struct {
	Name        string
	Email       string
	Subject     string
	Description string
	Failure     string
}

// New creates a new email notification service.
func New(cfg *config.EmailConfig) *NotificationService {
	return &NotificationService{
		config: cfg,
	}
}

// SendContactFailure mails the operator the content of a contact submission that failed to persist.
// The submitter's address is used as the sender.
func (n *NotificationService) SendContactFailure(f ContactFailure) error {
	body, err := generateContactFailureBody(f)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}
	return n.Send(f.Name, body, f.Email)
}

//go:embed templates/*.txt
var templatesFS embed.FS

var templates = template.Must(template.New("").ParseFS(templatesFS, "templates/*.txt"))

func generateContactFailureBody(f ContactFailure) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "contact_failure.txt", f); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Send delivers a plain text message to the operator mailbox with from as the sender.
// There is no retry. The SMTP connection is closed on every return path.
func (n *NotificationService) Send(subject, body, from string) error {
	if n.config == nil || !n.config.Enabled {
		log.Warn("Email notifications are disabled, dropping message", "from", from, "subject", subject)
		return nil
	}

	server := mail.NewSMTPClient()
	server.Host = n.config.SMTPHost
	server.Port = n.config.SMTPPort
	server.Username = n.config.Username
	server.Password = n.config.Password
	server.Encryption = mail.EncryptionSTARTTLS

	if n.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = n.config.ConnectTimeout
	server.SendTimeout = n.config.SendTimeout

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := smtpClient.Close(); closeErr != nil {
			log.Warn("Failed to close SMTP client", "error", closeErr)
		}
	}()

	email := mail.NewMSG()
	email.SetFrom(from)
	email.SetReplyTo(from)
	email.AddTo(n.config.Username)
	email.SetSubject(subject)
	email.SetBody(mail.TextPlain, body)

	if email.Error != nil {
		return fmt.Errorf("failed to build email: %w", email.Error)
	}

	if err := email.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("Email notification sent successfully", "to", n.config.Username, "subject", subject)
	return nil
}
