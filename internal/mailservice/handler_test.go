package mailservice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/bloglist/internal/common"
)

func newTestService(t *testing.T) (*MailService, *MockMessageConsumer, *MockMailer, *MockLogger, *[]time.Duration) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	delays := &[]time.Duration{}

	s := &MailService{
		mb:        new(MockMessageConsumer),
		m:         new(MockMailer),
		recipient: "admin@example.com",
		logger:    new(MockLogger),
		ctx:       ctx,
		cancel:    cancel,
		sleep: func(_ context.Context, d time.Duration) bool {
			*delays = append(*delays, d)
			return true
		},
	}

	t.Cleanup(s.Close)

	return s, s.mb.(*MockMessageConsumer), s.m.(*MockMailer), s.logger.(*MockLogger), delays
}

func delivery(t *testing.T, ack *MockAcknowledger, tag uint64, v any) amqp.Delivery {
	t.Helper()

	body, err := json.Marshal(v)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: body}
}

func TestHandleUserCreated(t *testing.T) {
	event := common.UserCreatedEvent{ID: "u-1", Username: "testuser", Name: "Test User"}
	data := WelcomeData{Username: "testuser", Name: "Test User"}

	t.Run("sent first time", func(t *testing.T) {
		s, _, mailer, logger, delays := newTestService(t)
		ack := &MockAcknowledger{}

		mailer.On("send", "admin@example.com", data, welcomeTemplate).Return(nil).Once()

		s.handleUserCreated(delivery(t, ack, 1, event))

		mailer.AssertExpectations(t)
		assert.Equal(t, []uint64{1}, ack.Acked())
		assert.Empty(t, *delays)
		assert.Contains(t, logger.Infos(), "welcome email sent")
	})

	t.Run("retried then sent", func(t *testing.T) {
		s, _, mailer, _, delays := newTestService(t)
		ack := &MockAcknowledger{}

		mailer.On("send", "admin@example.com", data, welcomeTemplate).Return(errors.New("smtp down")).Twice()
		mailer.On("send", "admin@example.com", data, welcomeTemplate).Return(nil).Once()

		s.handleUserCreated(delivery(t, ack, 2, event))

		mailer.AssertNumberOfCalls(t, "send", 3)
		assert.Equal(t, []uint64{2}, ack.Acked())
		require.Len(t, *delays, 2)
		assert.Less(t, (*delays)[0], baseDelay)
		assert.Less(t, (*delays)[1], 2*baseDelay)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		s, _, mailer, logger, delays := newTestService(t)
		ack := &MockAcknowledger{}

		mailer.On("send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		s.handleUserCreated(delivery(t, ack, 3, event))

		mailer.AssertNumberOfCalls(t, "send", maxRetries)
		assert.Len(t, *delays, maxRetries)
		assert.Equal(t, []uint64{3}, ack.Acked())
		assert.Contains(t, logger.Errors(), "could not send welcome email")
	})

	t.Run("undecodable body is dropped", func(t *testing.T) {
		s, _, mailer, logger, _ := newTestService(t)
		ack := &MockAcknowledger{}

		s.handleUserCreated(amqp.Delivery{Acknowledger: ack, DeliveryTag: 4, Body: []byte("{")})

		mailer.AssertNotCalled(t, "send", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, []uint64{4}, ack.Acked())
		assert.Contains(t, logger.Errors(), "could not unmarshal message")
	})
}

func TestSendWelcomeEmail(t *testing.T) {
	s, mc, mailer, _, _ := newTestService(t)
	ack := &MockAcknowledger{}
	msgs := make(chan amqp.Delivery, 1)

	mc.On("Consume", common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue).Return(msgs, nil).Once()
	mailer.On("send", "admin@example.com", mock.Anything, welcomeTemplate).Return(nil).Once()

	require.NoError(t, s.SendWelcomeEmail())

	msgs <- delivery(t, ack, 7, common.UserCreatedEvent{Username: "testuser"})

	assert.Eventually(t, func() bool {
		return len(ack.Acked()) == 1
	}, time.Second, 10*time.Millisecond)

	mc.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestSendWelcomeEmailConsumeError(t *testing.T) {
	s, mc, _, _, _ := newTestService(t)

	mc.On("Consume", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("channel closed")).Once()

	assert.Error(t, s.SendWelcomeEmail())
}
