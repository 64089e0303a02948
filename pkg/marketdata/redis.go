package marketdata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/altilar-labs/microlob/pkg/core"
)

// BookSnapshot is the JSON document written to Redis for the current
// top of book. Prices are raw integer ticks scaled by the publisher's
// tickSize and rendered as decimal strings, for anything consuming this
// key that isn't itself tick-aware.
type BookSnapshot struct {
	Symbol    uint32 `json:"symbol"`
	BidPrice  string `json:"bid_price,omitempty"`
	BidQty    uint64 `json:"bid_quantity"`
	AskPrice  string `json:"ask_price,omitempty"`
	AskQty    uint64 `json:"ask_quantity"`
}

// BookPublisher writes a top-of-book snapshot to a single Redis string
// key, overwriting it on every publish. This engine's book lives
// entirely in memory, so Redis here is a read replica for external
// consumers, not the source of truth.
type BookPublisher struct {
	client   *redis.Client
	key      string
	tickSize float64
	logger   zerolog.Logger
}

// NewBookPublisher returns a publisher that writes snapshots to
// "<keyPrefix>:book". tickSize is the deployment's price-tick-to-decimal
// conversion factor (e.g. 0.01 for cent ticks).
func NewBookPublisher(client *redis.Client, keyPrefix string, tickSize float64, logger zerolog.Logger) *BookPublisher {
	return &BookPublisher{
		client:   client,
		key:      fmt.Sprintf("%s:book", keyPrefix),
		tickSize: tickSize,
		logger:   logger,
	}
}

// Publish writes the current best bid/ask from engine to Redis. It is
// intended to be called periodically (e.g. after a batch of dispatches)
// rather than once per event.
func (p *BookPublisher) Publish(ctx context.Context, symbol uint32, engine *core.MatchingEngine) error {
	snap := BookSnapshot{Symbol: symbol}

	if bids := engine.BidDepth(1); len(bids) > 0 {
		snap.BidPrice = p.formatPrice(bids[0].Price.Ticks())
		snap.BidQty = bids[0].Quantity.Lots()
	}
	if asks := engine.AskDepth(1); len(asks) > 0 {
		snap.AskPrice = p.formatPrice(asks[0].Price.Ticks())
		snap.AskQty = asks[0].Quantity.Lots()
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marketdata: marshal book snapshot: %w", err)
	}

	if err := p.client.Set(ctx, p.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("marketdata: write book snapshot: %w", err)
	}

	p.logger.Debug().Str("key", p.key).Msg("published book snapshot")
	return nil
}

func (p *BookPublisher) formatPrice(ticks int64) string {
	return fpdecimal.FromFloat(float64(ticks) * p.tickSize).String()
}

// Close releases the underlying Redis client.
func (p *BookPublisher) Close() error {
	return p.client.Close()
}
