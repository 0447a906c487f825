package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	agreementdomain "github.com/fieldline/fieldline/internal/agreement/domain"
	"github.com/fieldline/fieldline/internal/clock"
	paymentdomain "github.com/fieldline/fieldline/internal/payment/domain"
)

var verifyNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func signPayload(secret string, payload []byte, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	secret := "whsec_test"
	adapter := NewAdapter(secret, clock.NewFakeClock(verifyNow))
	payload := []byte(`{"id":"evt_1"}`)

	headers := http.Header{}
	headers.Set("Stripe-Signature", signPayload(secret, payload, verifyNow.Unix()))

	if err := adapter.Verify(context.Background(), payload, headers); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	adapter := NewAdapter("whsec_test", clock.NewFakeClock(verifyNow))
	payload := []byte(`{"id":"evt_1"}`)

	headers := http.Header{}
	headers.Set("Stripe-Signature", signPayload("whsec_other", payload, verifyNow.Unix()))

	if err := adapter.Verify(context.Background(), payload, headers); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	headers.Set("Stripe-Signature", "garbage")
	if err := adapter.Verify(context.Background(), payload, headers); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for malformed header, got %v", err)
	}
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	secret := "whsec_test"
	fake := clock.NewFakeClock(verifyNow)
	adapter := NewAdapter(secret, fake)
	payload := []byte(`{"id":"evt_1"}`)

	headers := http.Header{}
	headers.Set("Stripe-Signature", signPayload(secret, payload, verifyNow.Unix()))

	// Within tolerance the stored signature still verifies.
	fake.Advance(4 * time.Minute)
	if err := adapter.Verify(context.Background(), payload, headers); err != nil {
		t.Fatalf("verify within tolerance: %v", err)
	}

	// Past tolerance the same delivery reads as a replay.
	fake.Advance(2 * time.Minute)
	if err := adapter.Verify(context.Background(), payload, headers); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for stale timestamp, got %v", err)
	}
}

func TestVerifyRejectsFutureTimestamp(t *testing.T) {
	secret := "whsec_test"
	adapter := NewAdapter(secret, clock.NewFakeClock(verifyNow))
	payload := []byte(`{"id":"evt_1"}`)

	future := verifyNow.Add(10 * time.Minute).Unix()
	headers := http.Header{}
	headers.Set("Stripe-Signature", signPayload(secret, payload, future))

	if err := adapter.Verify(context.Background(), payload, headers); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for future timestamp, got %v", err)
	}
}

func TestVerifyMissingHeader(t *testing.T) {
	adapter := NewAdapter("whsec_test", clock.NewFakeClock(verifyNow))
	if err := adapter.Verify(context.Background(), []byte(`{}`), http.Header{}); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestParseCheckoutSessionCompleted(t *testing.T) {
	adapter := NewAdapter("", clock.NewFakeClock(verifyNow))
	payload := []byte(`{
		"id": "evt_checkout",
		"type": "checkout.session.completed",
		"created": 1748856000,
		"data": {"object": {
			"id": "cs_1",
			"amount_total": 12000,
			"currency": "usd",
			"metadata": {"invoice_id": "2010735548360036353"}
		}}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if event.Type != paymentdomain.EventTypePaymentSucceeded {
		t.Fatalf("type: got %s", event.Type)
	}
	if event.AmountCents != 12000 {
		t.Fatalf("amount: got %d, want 12000", event.AmountCents)
	}
	if event.Currency != "USD" {
		t.Fatalf("currency: got %s, want USD", event.Currency)
	}
	if event.InvoiceID == nil || event.InvoiceID.String() != "2010735548360036353" {
		t.Fatalf("invoice id not parsed from metadata: %v", event.InvoiceID)
	}
}

func TestParseSubscriptionDeletedMapsToCancelled(t *testing.T) {
	adapter := NewAdapter("", clock.NewFakeClock(verifyNow))
	payload := []byte(`{
		"id": "evt_sub",
		"type": "customer.subscription.deleted",
		"created": 1748856000,
		"data": {"object": {"id": "sub_1", "status": "active"}}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if event.Type != paymentdomain.EventTypeSubscriptionUpdated {
		t.Fatalf("type: got %s", event.Type)
	}
	if event.SubscriptionStatus != agreementdomain.StatusCancelled {
		t.Fatalf("status: got %s, want cancelled", event.SubscriptionStatus)
	}
}

func TestParseIgnoresUnknownEventTypes(t *testing.T) {
	adapter := NewAdapter("", clock.NewFakeClock(verifyNow))
	payload := []byte(`{"id":"evt_x","type":"invoice.finalized","data":{"object":{}}}`)

	if _, err := adapter.Parse(context.Background(), payload); !errors.Is(err, paymentdomain.ErrEventIgnored) {
		t.Fatalf("expected ErrEventIgnored, got %v", err)
	}
}

func TestMapSubscriptionStatus(t *testing.T) {
	cases := map[string]string{
		"active":             agreementdomain.StatusActive,
		"trialing":           agreementdomain.StatusTrial,
		"past_due":           agreementdomain.StatusPastDue,
		"canceled":           agreementdomain.StatusCancelled,
		"incomplete_expired": agreementdomain.StatusCancelled,
	}
	for input, want := range cases {
		if got := MapSubscriptionStatus(input); got != want {
			t.Fatalf("map %q: got %q, want %q", input, got, want)
		}
	}
	if got := MapSubscriptionStatus("paused"); got != "" {
		t.Fatalf("unknown status must map to empty, got %q", got)
	}
}
