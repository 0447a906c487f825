package advisor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldline/fieldline/internal/advisor"
)

func TestGenerateQuoteFallbackTotals(t *testing.T) {
	f := newAdvisorFixture()
	svc := f.service(t, nil)

	resp, err := svc.GenerateQuote(context.Background(), advisor.QuoteRequest{
		Trade:       "hvac",
		Description: "AC condenser replacement",
		BasePrice:   500,
	})
	if err != nil {
		t.Fatalf("generate quote: %v", err)
	}

	if len(resp.Tiers) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(resp.Tiers))
	}

	want := map[string]float64{
		advisor.TierGood:   500,
		advisor.TierBetter: 600,
		advisor.TierBest:   800,
	}
	for _, tier := range resp.Tiers {
		if got := tier.Total; got != want[tier.Tier] {
			t.Fatalf("tier %s: total %v, want %v", tier.Tier, got, want[tier.Tier])
		}
	}
}

func TestGenerateQuoteModelOverridesCopyOnly(t *testing.T) {
	f := newAdvisorFixture()
	client := &stubClient{response: `{"tiers":[{"tier":"best","title":"Gold Comfort Plan","description":"Everything included.","total":9999}]}`}
	svc := f.service(t, client)

	resp, err := svc.GenerateQuote(context.Background(), advisor.QuoteRequest{
		Trade:     "plumbing",
		BasePrice: 500,
	})
	if err != nil {
		t.Fatalf("generate quote: %v", err)
	}

	var best advisor.QuoteTier
	for _, tier := range resp.Tiers {
		if tier.Tier == advisor.TierBest {
			best = tier
		}
	}
	if best.Title != "Gold Comfort Plan" {
		t.Fatalf("title not overridden: %q", best.Title)
	}
	if best.Total != 800 {
		t.Fatalf("model must not change totals: got %v", best.Total)
	}
}

func TestGenerateQuoteModelFailureFallsBack(t *testing.T) {
	f := newAdvisorFixture()
	client := &stubClient{err: errors.New("upstream unavailable")}
	svc := f.service(t, client)

	resp, err := svc.GenerateQuote(context.Background(), advisor.QuoteRequest{
		Trade:     "electrical",
		BasePrice: 250,
	})
	if err != nil {
		t.Fatalf("generate quote: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("expected one model call, got %d", client.calls)
	}
	if resp.Tiers[0].Title != "Standard Service" {
		t.Fatalf("fallback copy expected, got %q", resp.Tiers[0].Title)
	}
}

func TestGenerateQuoteRejectsNonPositiveBase(t *testing.T) {
	f := newAdvisorFixture()
	svc := f.service(t, nil)

	if _, err := svc.GenerateQuote(context.Background(), advisor.QuoteRequest{BasePrice: 0}); !errors.Is(err, advisor.ErrInvalidBasePrice) {
		t.Fatalf("expected ErrInvalidBasePrice, got %v", err)
	}
	if _, err := svc.GenerateQuote(context.Background(), advisor.QuoteRequest{BasePrice: -1}); !errors.Is(err, advisor.ErrInvalidBasePrice) {
		t.Fatalf("expected ErrInvalidBasePrice, got %v", err)
	}
}
