package pdf

import (
	"context"
	"io"
)

type Provider interface {
	GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error)
}

type InvoiceData struct {
	OrgName       string
	InvoiceNumber string
	IssueDate     string
	DueDate       string

	BillToName  string
	BillToEmail string

	Items []InvoiceItem

	Total      string
	Paid       string
	BalanceDue string
}

type InvoiceItem struct {
	Description string
	Amount      string
}
