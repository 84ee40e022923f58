package listener

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/errs"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUseCase struct {
	inventory.UseCase

	mu      sync.Mutex
	added   []dto.StockInput
	removed []dto.StockInput
}

func (f *fakeUseCase) AddStock(ctx context.Context, input *dto.StockInput) (*model.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, *input)
	return &model.InventoryRecord{Category: input.Category, Quantity: input.Quantity}, nil
}

func (f *fakeUseCase) RemoveStock(ctx context.Context, input *dto.StockInput) (*model.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if input.Quantity > 10 {
		return nil, &errs.StockError{Category: input.Category, AttributeValue: input.AttributeValue, Quantity: input.Quantity}
	}
	f.removed = append(f.removed, *input)
	return &model.InventoryRecord{Category: input.Category}, nil
}

type chanReader struct {
	msgs chan kafka.Message
}

func (r *chanReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	values []string
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = append(p.values, string(value))
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.values)
}

func TestProcessMessage(t *testing.T) {
	uc := &fakeUseCase{}
	l := NewInventoryListener(nil, nil, uc, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, l.processMessage(ctx, []byte(`{"event_id":"e1","event_type":"StockReceived","payload":{"category":"red","attribute_value":50,"quantity":5}}`)))
	require.NoError(t, l.processMessage(ctx, []byte(`{"event_id":"e2","event_type":"StockShipped","payload":{"category":"red","attribute_value":50,"quantity":2}}`)))
	require.NoError(t, l.processMessage(ctx, []byte(`{"event_id":"e3","event_type":"PriceChanged"}`)))

	require.Len(t, uc.added, 1)
	assert.Equal(t, dto.StockInput{Category: "red", AttributeValue: 50, Quantity: 5, Reference: "e1"}, uc.added[0])
	require.Len(t, uc.removed, 1)
	assert.Equal(t, 2, uc.removed[0].Quantity)
}

func TestProcessMessage_Errors(t *testing.T) {
	l := NewInventoryListener(nil, nil, &fakeUseCase{}, logger.NewNop())
	ctx := context.Background()

	assert.Error(t, l.processMessage(ctx, []byte(`not json`)))

	err := l.processMessage(ctx, []byte(`{"event_id":"e4","event_type":"StockShipped","payload":{"category":"red","attribute_value":50,"quantity":20}}`))
	assert.ErrorIs(t, err, errs.ErrInsufficientStock)
}

func TestStart_ForwardsFailedEvents(t *testing.T) {
	reader := &chanReader{msgs: make(chan kafka.Message, 2)}
	dlq := &recordingPublisher{}
	uc := &fakeUseCase{}
	l := NewInventoryListener(reader, dlq, uc, logger.NewNop())

	reader.msgs <- kafka.Message{Key: []byte("red"), Value: []byte(`{"event_id":"e1","event_type":"StockShipped","payload":{"category":"red","attribute_value":50,"quantity":99}}`)}
	reader.msgs <- kafka.Message{Key: []byte("red"), Value: []byte(`{"event_id":"e2","event_type":"StockReceived","payload":{"category":"red","attribute_value":50,"quantity":1}}`)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		uc.mu.Lock()
		defer uc.mu.Unlock()
		return len(uc.added) == 1
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, 1, dlq.count())
}
