package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventStockReceived = "StockReceived"
	EventStockShipped  = "StockShipped"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type InventoryListener struct {
	consumer   MessageReader
	deadLetter Publisher
	uc         inventory.UseCase
	logger     logger.ZapLogger
}

// NewInventoryListener applies stock events read from consumer. Events that
// cannot be applied are forwarded to deadLetter when it is not nil.
func NewInventoryListener(consumer MessageReader, deadLetter Publisher, uc inventory.UseCase, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer:   consumer,
		deadLetter: deadLetter,
		uc:         uc,
		logger:     logger,
	}
}

func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("Starting Inventory Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Inventory Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				// Don't log context canceled error as error
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			if err := l.processMessage(ctx, msg.Value); err != nil {
				l.logger.Error("Failed to apply stock event",
					zap.String("key", string(msg.Key)),
					zap.Int64("offset", msg.Offset),
					zap.Error(err),
				)
				l.forward(ctx, msg)
			}
		}
	}
}

type StockEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   StockPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type StockPayload struct {
	Category       string  `json:"category"`
	AttributeValue float64 `json:"attribute_value"`
	Quantity       int     `json:"quantity"`
}

// processMessage applies one event. Unknown event types are skipped.
func (l *InventoryListener) processMessage(ctx context.Context, value []byte) error {
	var event StockEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	input := &dto.StockInput{
		Category:       event.Payload.Category,
		AttributeValue: event.Payload.AttributeValue,
		Quantity:       event.Payload.Quantity,
		Reference:      event.EventID,
	}

	var err error
	switch event.EventType {
	case EventStockReceived:
		l.logger.Info("Processing StockReceived event", zap.String("event_id", event.EventID))
		_, err = l.uc.AddStock(ctx, input)
	case EventStockShipped:
		l.logger.Info("Processing StockShipped event", zap.String("event_id", event.EventID))
		_, err = l.uc.RemoveStock(ctx, input)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s event %s: %w", event.EventType, event.EventID, err)
	}
	return nil
}

func (l *InventoryListener) forward(ctx context.Context, msg kafka.Message) {
	if l.deadLetter == nil {
		return
	}
	if err := l.deadLetter.Publish(ctx, string(msg.Key), msg.Value); err != nil {
		l.logger.Error("Failed to forward stock event to dead letter topic", zap.Error(err))
	}
}
