package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/clubhub/config"
)

// Email is one transactional send. Either To or Bcc is set: group messages
// go out as a single email with every recipient in Bcc.
type Email struct {
	To      string
	Bcc     []string
	Subject string
	Body    string
}

// Mailer is the transactional email sender.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// NewMailer picks the provider from config.
func NewMailer(cfg config.EmailConfig, client *http.Client) Mailer {
	switch cfg.Provider {
	case "emailjs":
		return NewEmailJSMailer(cfg, client)
	case "smtp":
		return NewSMTPMailer(cfg)
	}
	return disabledMailer{}
}

// ObservedMailer calls observe with the outcome of every send.
func ObservedMailer(m Mailer, observe func(error)) Mailer {
	if observe == nil {
		return m
	}
	return &observedMailer{next: m, observe: observe}
}

type observedMailer struct {
	next    Mailer
	observe func(error)
}

func (m *observedMailer) Send(ctx context.Context, email Email) error {
	err := m.next.Send(ctx, email)
	m.observe(err)
	return err
}

type disabledMailer struct{}

func (disabledMailer) Send(context.Context, Email) error { return ErrEmailDisabled }

const emailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// EmailJSMailer sends through the EmailJS REST API. The template receives
// subject, message and either to_email or bcc (comma joined).
type EmailJSMailer struct {
	client     *http.Client
	endpoint   string
	serviceID  string
	templateID string
	publicKey  string
	privateKey string
}

func NewEmailJSMailer(cfg config.EmailConfig, client *http.Client) *EmailJSMailer {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &EmailJSMailer{
		client:     client,
		endpoint:   emailJSEndpoint,
		serviceID:  cfg.EmailJSServiceID,
		templateID: cfg.EmailJSTemplateID,
		publicKey:  cfg.EmailJSPublicKey,
		privateKey: cfg.EmailJSPrivateKey,
	}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

func (m *EmailJSMailer) Send(ctx context.Context, email Email) error {
	params := map[string]string{
		"subject": email.Subject,
		"message": email.Body,
	}
	if email.To != "" {
		params["to_email"] = email.To
	}
	if len(email.Bcc) > 0 {
		params["bcc"] = strings.Join(email.Bcc, ",")
	}

	payload, err := json.Marshal(emailJSRequest{
		ServiceID:      m.serviceID,
		TemplateID:     m.templateID,
		UserID:         m.publicKey,
		AccessToken:    m.privateKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("failed to encode emailjs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: emailjs: %v", ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: emailjs returned %d: %s", ErrExternalService, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// SMTPMailer sends HTML mail over SMTP, implicit TLS on port 465 and
// STARTTLS otherwise.
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.SMTPFrom,
	}
}

// buildMessage renders headers and body. Bcc recipients get no header.
func (m *SMTPMailer) buildMessage(email Email) []byte {
	var b strings.Builder
	to := email.To
	if to == "" {
		to = "undisclosed-recipients:;"
	}
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("From: " + m.from + "\r\n")
	b.WriteString("Subject: " + email.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(email.Body + "\r\n")
	return []byte(b.String())
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	tlsconfig := &tls.Config{ServerName: m.host}

	var client *smtp.Client
	if m.port == 465 {
		dialer := &tls.Dialer{Config: tlsconfig}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return fmt.Errorf("%w: smtp tls dial: %v", ErrExternalService, err)
		}
		client, err = smtp.NewClient(conn, m.host)
		if err != nil {
			conn.Close()
			return fmt.Errorf("%w: smtp client: %v", ErrExternalService, err)
		}
	} else {
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("%w: smtp dial: %v", ErrExternalService, err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("%w: smtp starttls: %v", ErrExternalService, err)
		}
	}
	defer client.Quit()

	if m.user != "" {
		if err := client.Auth(smtp.PlainAuth("", m.user, m.pass, m.host)); err != nil {
			return fmt.Errorf("%w: smtp auth: %v", ErrExternalService, err)
		}
	}
	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("%w: smtp MAIL FROM: %v", ErrExternalService, err)
	}
	recipients := email.Bcc
	if email.To != "" {
		recipients = append([]string{email.To}, recipients...)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("%w: smtp RCPT TO %s: %v", ErrExternalService, rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("%w: smtp DATA: %v", ErrExternalService, err)
	}
	if _, err := w.Write(m.buildMessage(email)); err != nil {
		return fmt.Errorf("%w: smtp write: %v", ErrExternalService, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: smtp close DATA: %v", ErrExternalService, err)
	}
	return nil
}

// RecordingMailer keeps sent emails in memory.
type RecordingMailer struct {
	mu   sync.Mutex
	Sent []Email
	Err  error
}

func (m *RecordingMailer) Send(ctx context.Context, email Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, email)
	return nil
}

var emailTemplates = template.Must(template.New("emails").Parse(`
{{define "welcome"}}<p>Hi {{.FirstName}},</p>
<p>Welcome to the club! Your account has been created as <b>{{.Role}}</b>.</p>
<p><a href="{{.Link}}">Sign in</a> to see upcoming tournaments.</p>{{end}}
{{define "access_request"}}<p><b>{{.Name}}</b> ({{.Email}}) asked to be added to the club.</p>
{{if .Message}}<p>{{.Message}}</p>{{end}}{{end}}
{{define "message"}}<p>{{.Body}}</p>
<p style="color:#888">Sent by {{.From}} via the club portal.</p>{{end}}
`))

// GenerateEmailBody renders one of the built-in HTML templates.
func GenerateEmailBody(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("ошибка выполнения шаблона %s: %w", name, err)
	}
	return strings.TrimSpace(body.String()), nil
}

// EmailService composes club emails on top of a Mailer.
type EmailService struct {
	mailer    Mailer
	publicURL string
}

func NewEmailService(mailer Mailer, publicURL string) *EmailService {
	return &EmailService{mailer: mailer, publicURL: publicURL}
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, to, firstName, role string) error {
	body, err := GenerateEmailBody("welcome", map[string]string{
		"FirstName": firstName,
		"Role":      role,
		"Link":      s.publicURL + "/login",
	})
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, Email{To: to, Subject: "Welcome to the club", Body: body})
}

// SendGroupEmail sends one email with every recipient in Bcc.
func (s *EmailService) SendGroupEmail(ctx context.Context, bcc []string, subject, text, from string) error {
	body, err := GenerateEmailBody("message", map[string]string{"Body": text, "From": from})
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, Email{Bcc: bcc, Subject: subject, Body: body})
}

func (s *EmailService) SendAccessRequest(ctx context.Context, coaches []string, name, email, message string) error {
	body, err := GenerateEmailBody("access_request", map[string]string{
		"Name": name, "Email": email, "Message": message,
	})
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, Email{Bcc: coaches, Subject: "Club access request from " + name, Body: body})
}
