package advisor

import (
	"context"
	"errors"
	"fmt"
	"math"
)

const quoteEndpoint = "quote_generator"

var ErrInvalidBasePrice = errors.New("invalid_base_price")

type QuoteRequest struct {
	Trade       string  `json:"trade"`
	Description string  `json:"description"`
	BasePrice   float64 `json:"base_price"`
}

type QuoteTier struct {
	Tier        string  `json:"tier"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Total       float64 `json:"total"`
}

type QuoteResponse struct {
	Trade string      `json:"trade"`
	Tiers []QuoteTier `json:"tiers"`
}

const (
	TierGood   = "good"
	TierBetter = "better"
	TierBest   = "best"
)

type aiQuoteTier struct {
	Tier        string  `json:"tier"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type aiQuoteResponse struct {
	Tiers []aiQuoteTier `json:"tiers"`
}

// GenerateQuote builds good/better/best tiers from a base price. Tier
// totals come from the fixed multipliers in every case; the model only
// supplies titles and pitch copy.
func (s *Service) GenerateQuote(ctx context.Context, req QuoteRequest) (QuoteResponse, error) {
	if req.BasePrice <= 0 {
		return QuoteResponse{}, ErrInvalidBasePrice
	}

	cfg := s.thresholds()
	resp := QuoteResponse{
		Trade: req.Trade,
		Tiers: []QuoteTier{
			{
				Tier:        TierGood,
				Title:       "Standard Service",
				Description: "Covers the requested work with standard parts and labor.",
				Total:       math.Round(req.BasePrice),
			},
			{
				Tier:        TierBetter,
				Title:       "Preferred Service",
				Description: "Adds upgraded parts and a one-year workmanship warranty.",
				Total:       math.Round(req.BasePrice * cfg.QuoteBetterMultiplier),
			},
			{
				Tier:        TierBest,
				Title:       "Premium Service",
				Description: "Top-tier parts, priority scheduling and an extended warranty.",
				Total:       math.Round(req.BasePrice * cfg.QuoteBestMultiplier),
			},
		},
	}

	var parsed aiQuoteResponse
	ok := s.complete(ctx, quoteEndpoint,
		"You are a field-service sales assistant. Respond with JSON only.",
		fmt.Sprintf(`Write customer-facing titles and one-sentence descriptions for a three-tier quote.

Trade: %s
Job: %s

Respond with {"tiers":[{"tier":"good|better|best","title":"...","description":"..."}]}`,
			req.Trade, req.Description),
		&parsed,
	)
	if !ok {
		s.record(quoteEndpoint, outcomeFallback)
		return resp, nil
	}

	copyByTier := make(map[string]aiQuoteTier, len(parsed.Tiers))
	for _, tier := range parsed.Tiers {
		copyByTier[tier.Tier] = tier
	}
	for i := range resp.Tiers {
		row, found := copyByTier[resp.Tiers[i].Tier]
		if !found {
			continue
		}
		if row.Title != nil && *row.Title != "" {
			resp.Tiers[i].Title = *row.Title
		}
		if row.Description != nil && *row.Description != "" {
			resp.Tiers[i].Description = *row.Description
		}
	}
	s.record(quoteEndpoint, outcomeAI)
	return resp, nil
}
