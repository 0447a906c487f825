package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPProvider struct {
	cfg Config
}

func NewSMTP(cfg Config) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n%s\r\n%s", to[0], subject, mime, htmlBody))

	return smtp.SendMail(addr, auth, p.cfg.From, to, msg)
}

var invoiceIssuedTmpl = template.Must(template.New("invoice_issued").Parse(`
<p>Hi {{.CustomerName}},</p>
<p>Invoice <strong>{{.InvoiceNumber}}</strong> for {{.Total}} is ready.
{{if .DueDate}}Payment is due by {{.DueDate}}.{{end}}</p>
<p>Thank you,<br>{{.OrgName}}</p>
`))

type InvoiceIssuedData struct {
	CustomerName  string
	InvoiceNumber string
	Total         string
	DueDate       string
	OrgName       string
}

// SendInvoiceIssued notifies a customer that an invoice went out.
func SendInvoiceIssued(ctx context.Context, p Provider, to string, data InvoiceIssuedData) error {
	if to == "" {
		return nil
	}
	var body bytes.Buffer
	if err := invoiceIssuedTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render invoice email: %w", err)
	}
	subject := fmt.Sprintf("Invoice %s from %s", data.InvoiceNumber, data.OrgName)
	return p.Send(ctx, []string{to}, subject, body.String())
}
