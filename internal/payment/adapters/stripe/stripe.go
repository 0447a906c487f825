package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/fieldline/fieldline/internal/clock"
	paymentdomain "github.com/fieldline/fieldline/internal/payment/domain"
)

const Provider = "stripe"

// signatureTolerance bounds how old a signed timestamp may be. Stripe's
// own SDKs default to five minutes; anything older is treated as a
// replayed delivery.
const signatureTolerance = 5 * time.Minute

type Adapter struct {
	webhookSecret string
	clk           clock.Clock
}

// NewAdapter builds the Stripe webhook adapter. An empty secret
// disables signature verification; that mode is only for local testing
// against the Stripe CLI without a configured endpoint secret.
func NewAdapter(webhookSecret string, clk clock.Clock) *Adapter {
	return &Adapter{webhookSecret: strings.TrimSpace(webhookSecret), clk: clk}
}

func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	if a.webhookSecret == "" {
		return nil
	}

	sigHeader := strings.TrimSpace(headers.Get("Stripe-Signature"))
	if sigHeader == "" {
		return paymentdomain.ErrInvalidSignature
	}

	timestamp, signatures, err := parseStripeSignature(sigHeader)
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}

	signedAt, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}
	age := a.clk.Now().UTC().Sub(time.Unix(signedAt, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return paymentdomain.ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}

	return paymentdomain.ErrInvalidSignature
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.PaymentEvent, error) {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	switch strings.TrimSpace(event.Type) {
	case "checkout.session.completed":
		return a.parseCheckoutSession(event, payload)
	case "payment_intent.succeeded":
		return a.parsePaymentIntent(event, payload)
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		return a.parseSubscription(event, payload)
	default:
		return nil, paymentdomain.ErrEventIgnored
	}
}

type stripeEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    stripeEventData `json:"data"`
}

type stripeEventData struct {
	Object json.RawMessage `json:"object"`
}

type stripeCheckoutSession struct {
	ID          string         `json:"id"`
	AmountTotal int64          `json:"amount_total"`
	Currency    string         `json:"currency"`
	Created     int64          `json:"created"`
	Metadata    map[string]any `json:"metadata"`
}

type stripePaymentIntent struct {
	ID             string         `json:"id"`
	Amount         int64          `json:"amount"`
	AmountReceived int64          `json:"amount_received"`
	Currency       string         `json:"currency"`
	Created        int64          `json:"created"`
	Metadata       map[string]any `json:"metadata"`
}

type stripeSubscription struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Created  int64  `json:"created"`
	CancelAt int64  `json:"cancel_at"`
}

func (a *Adapter) parseCheckoutSession(event stripeEvent, payload []byte) (*paymentdomain.PaymentEvent, error) {
	var session stripeCheckoutSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}

	invoiceID, customerID := parseMetadataIDs(session.Metadata)

	return &paymentdomain.PaymentEvent{
		Provider:          Provider,
		ProviderEventID:   event.ID,
		ProviderPaymentID: session.ID,
		Type:              paymentdomain.EventTypePaymentSucceeded,
		InvoiceID:         invoiceID,
		CustomerID:        customerID,
		AmountCents:       session.AmountTotal,
		Currency:          strings.ToUpper(strings.TrimSpace(session.Currency)),
		OccurredAt:        timestamp(session.Created, event.Created),
		RawPayload:        payload,
	}, nil
}

func (a *Adapter) parsePaymentIntent(event stripeEvent, payload []byte) (*paymentdomain.PaymentEvent, error) {
	var intent stripePaymentIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}

	amount := intent.AmountReceived
	if amount <= 0 {
		amount = intent.Amount
	}
	invoiceID, customerID := parseMetadataIDs(intent.Metadata)

	return &paymentdomain.PaymentEvent{
		Provider:          Provider,
		ProviderEventID:   event.ID,
		ProviderPaymentID: intent.ID,
		Type:              paymentdomain.EventTypePaymentSucceeded,
		InvoiceID:         invoiceID,
		CustomerID:        customerID,
		AmountCents:       amount,
		Currency:          strings.ToUpper(strings.TrimSpace(intent.Currency)),
		OccurredAt:        timestamp(intent.Created, event.Created),
		RawPayload:        payload,
	}, nil
}

func (a *Adapter) parseSubscription(event stripeEvent, payload []byte) (*paymentdomain.PaymentEvent, error) {
	var sub stripeSubscription
	if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(sub.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	status := MapSubscriptionStatus(sub.Status)
	if strings.HasSuffix(event.Type, ".deleted") {
		status = MapSubscriptionStatus("canceled")
	}
	if status == "" {
		return nil, paymentdomain.ErrEventIgnored
	}

	return &paymentdomain.PaymentEvent{
		Provider:           Provider,
		ProviderEventID:    event.ID,
		Type:               paymentdomain.EventTypeSubscriptionUpdated,
		SubscriptionID:     sub.ID,
		SubscriptionStatus: status,
		OccurredAt:         timestamp(sub.Created, event.Created),
		RawPayload:         payload,
	}, nil
}

func parseStripeSignature(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("invalid_signature")
	}
	return timestamp, signatures, nil
}

func timestamp(primary int64, fallback int64) time.Time {
	value := primary
	if value == 0 {
		value = fallback
	}
	if value == 0 {
		return time.Now().UTC()
	}
	return time.Unix(value, 0).UTC()
}

func parseMetadataIDs(metadata map[string]any) (*snowflake.ID, *snowflake.ID) {
	var invoiceID, customerID *snowflake.ID
	if raw := readMetadataValue(metadata, "invoice_id"); raw != "" {
		if id, err := snowflake.ParseString(raw); err == nil {
			invoiceID = &id
		}
	}
	if raw := readMetadataValue(metadata, "customer_id"); raw != "" {
		if id, err := snowflake.ParseString(raw); err == nil {
			customerID = &id
		}
	}
	return invoiceID, customerID
}

func readMetadataValue(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	value, ok := metadata[key]
	if !ok {
		return ""
	}
	switch cast := value.(type) {
	case string:
		return strings.TrimSpace(cast)
	case float64:
		if cast == 0 {
			return ""
		}
		return strconv.FormatInt(int64(cast), 10)
	case json.Number:
		return cast.String()
	case int64:
		return strconv.FormatInt(cast, 10)
	case int:
		return strconv.Itoa(cast)
	}
	return ""
}
