package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// EventRecord deduplicates provider webhook deliveries. The unique
// (provider, provider_event_id) pair makes replays observable.
type EventRecord struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	Provider        string         `json:"provider" gorm:"type:text;not null;uniqueIndex:ux_payment_event,priority:1"`
	ProviderEventID string         `json:"provider_event_id" gorm:"type:text;not null;uniqueIndex:ux_payment_event,priority:2"`
	EventType       string         `json:"event_type" gorm:"type:text;not null"`
	Payload         datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	ProcessedAt     *time.Time     `json:"processed_at"`
	CreatedAt       time.Time      `json:"created_at" gorm:"not null"`
}

func (EventRecord) TableName() string { return "payment_event_records" }

// Payment is a settled amount applied against an invoice.
type Payment struct {
	ID                snowflake.ID    `json:"id" gorm:"primaryKey"`
	OrgID             snowflake.ID    `json:"organization_id" gorm:"column:organization_id;not null"`
	InvoiceID         snowflake.ID    `json:"invoice_id" gorm:"not null;index"`
	CustomerID        *snowflake.ID   `json:"customer_id,omitempty"`
	Amount            decimal.Decimal `json:"amount" gorm:"type:numeric(18,2)"`
	Currency          string          `json:"currency"`
	Provider          string          `json:"provider" gorm:"type:text;not null"`
	ProviderPaymentID string          `json:"provider_payment_id" gorm:"type:text"`
	ReceivedAt        time.Time       `json:"received_at" gorm:"not null"`
	CreatedAt         time.Time       `json:"created_at" gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

// Canonical event types emitted by provider adapters.
const (
	EventTypePaymentSucceeded    = "payment_succeeded"
	EventTypeSubscriptionUpdated = "subscription_updated"
)

// PaymentEvent is the canonical event parsed by adapters.
type PaymentEvent struct {
	Provider          string
	ProviderEventID   string
	ProviderPaymentID string
	Type              string

	// Set for payment events.
	InvoiceID   *snowflake.ID
	CustomerID  *snowflake.ID
	AmountCents int64
	Currency    string

	// Set for subscription events. Status is already mapped to the
	// agreement vocabulary.
	SubscriptionID     string
	SubscriptionStatus string

	OccurredAt time.Time
	RawPayload []byte
}

var (
	ErrInvalidSignature      = errors.New("invalid_signature")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrInvalidEvent          = errors.New("invalid_event")
	ErrInvalidAmount         = errors.New("invalid_amount")
	ErrInvalidCurrency       = errors.New("invalid_currency")
	ErrEventIgnored          = errors.New("event_ignored")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
	ErrInvoiceNotFound       = errors.New("invoice_not_found")
	ErrInvoiceNotOpen        = errors.New("invoice_not_open")
	ErrAgreementNotFound     = errors.New("agreement_not_found")
)
