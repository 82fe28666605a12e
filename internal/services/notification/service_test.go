package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ledgerpay/internal/models"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	return m.Called().Error(0)
}

func settled() *models.Transaction {
	tx := models.NewTransaction(models.TransactionTypeTransfer, "alice", "bob", "addr-bob", 12345)
	tx.Reference = "TX-01HZZZ"
	tx.Status = models.TransactionStatusCompleted
	return tx
}

func TestKafkaPublisher_PublishTransaction(t *testing.T) {
	writer := new(MockWriter)
	writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 || string(msgs[0].Key) != "TX-01HZZZ" {
			return false
		}
		var event TransactionEvent
		if err := json.Unmarshal(msgs[0].Value, &event); err != nil {
			return false
		}
		return event.EventType == EventTransactionCompleted &&
			event.Amount == 12345 &&
			event.AmountDisplay == "123.45" &&
			event.TransactionType == "transfer"
	})).Return(nil)

	p := NewKafkaPublisher(writer)
	require.NoError(t, p.PublishTransaction(context.Background(), settled()))
	writer.AssertExpectations(t)
}

func TestKafkaPublisher_WrapsWriterError(t *testing.T) {
	writer := new(MockWriter)
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	err := NewKafkaPublisher(writer).PublishTransaction(context.Background(), settled())
	assert.ErrorContains(t, err, "broker down")
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.PublishTransaction(context.Background(), settled()))
	assert.NoError(t, p.Close())
}
