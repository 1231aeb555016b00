package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/binder/internal/events"
	"github.com/MrJamesThe3rd/binder/internal/transaction"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, events.NewProducerConfig("binder-test"))
	defer producer.Close()

	ev := transaction.Event{
		Type:          transaction.EventSubmitted,
		TransactionID: uuid.New(),
		BuyerID:       uuid.New(),
		SellerID:      uuid.New(),
		Status:        transaction.StatusPending,
	}

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "binder.transactions" {
			return errors.New("unexpected topic " + msg.Topic)
		}

		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}

		if string(key) != ev.TransactionID.String() {
			return errors.New("message not keyed by transaction")
		}

		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}

		var got transaction.Event
		if err := json.Unmarshal(value, &got); err != nil {
			return err
		}

		if got.Type != ev.Type || got.Status != ev.Status {
			return errors.New("unexpected payload")
		}

		return nil
	})

	pub := events.NewKafkaPublisher(producer, "binder.transactions")
	require.NoError(t, pub.Publish(context.Background(), ev))
}

func TestKafkaPublisher_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, events.NewProducerConfig("binder-test"))
	defer producer.Close()

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := events.NewKafkaPublisher(producer, "binder.transactions")
	err := pub.Publish(context.Background(), transaction.Event{Type: transaction.EventCreated})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}
