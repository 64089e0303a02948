// Package marketdata publishes the engine's output to the outside world:
// every Fill as a Kafka record for downstream trade reporting, and a
// periodic top-of-book snapshot to Redis for anything that wants the
// current best bid/ask without subscribing to the full event stream.
// Neither publisher sits on the matching hot path — the fill publisher is
// fed the events the gateway already produced and the book publisher
// reads the engine's depth snapshot; neither is called from inside
// MatchingEngine.New itself.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/altilar-labs/microlob/pkg/wire"
)

// Fill is the JSON shape published to Kafka for one Fill event. There is
// no .proto schema in this system, so the wire format for the outside
// world is JSON rather than a second binary encoding.
type Fill struct {
	Symbol    uint32 `json:"symbol"`
	TakerID   uint64 `json:"taker_id"`
	MakerID   uint64 `json:"maker_id"`
	Side      string `json:"side"`
	Price     int64  `json:"price_ticks"`
	Quantity  uint64 `json:"quantity_lots"`
	Sequence  uint64 `json:"sequence"`
}

// FillPublisher sends every Fill event to a Kafka topic via a sync
// producer kept alive across calls instead of dialing per message.
type FillPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewFillPublisher dials brokers and returns a publisher bound to topic.
// Producer acks and retries are configured for at-least-once delivery,
// since a dropped fill record is a reporting gap, not a correctness bug
// in the book itself.
func NewFillPublisher(brokers []string, topic string, logger zerolog.Logger) (*FillPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("marketdata: create kafka producer: %w", err)
	}

	return &FillPublisher{producer: producer, topic: topic, logger: logger}, nil
}

// PublishFill serializes ev as JSON and sends it to the configured topic,
// keyed on the taker's OrderID so all fills for one taker land on the
// same partition.
func (p *FillPublisher) PublishFill(ctx context.Context, ev wire.Event) error {
	if ev.Kind != wire.EvtFill {
		return nil
	}

	payload, err := json.Marshal(Fill{
		Symbol:   ev.Symbol,
		TakerID:  ev.OrderID,
		MakerID:  ev.CounterID,
		Side:     sideLabel(ev.Side),
		Price:    ev.Price,
		Quantity: ev.Quantity,
		Sequence: ev.Sequence,
	})
	if err != nil {
		return fmt.Errorf("marketdata: marshal fill: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(fmt.Sprintf("%d", ev.OrderID)),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("marketdata: send fill to kafka: %w", err)
	}

	p.logger.Debug().
		Int32("partition", partition).
		Int64("offset", offset).
		Uint64("sequence", ev.Sequence).
		Msg("published fill")
	return nil
}

// Close releases the underlying producer.
func (p *FillPublisher) Close() error {
	return p.producer.Close()
}

func sideLabel(side uint8) string {
	if side == 0 {
		return "BID"
	}
	return "ASK"
}
