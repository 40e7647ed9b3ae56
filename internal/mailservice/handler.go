package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sushihentaime/bloglist/internal/common"
	"golang.org/x/exp/rand"
)

const (
	welcomeTemplate = "user_welcome.tmpl"
	maxRetries      = 5
	baseDelay       = 500 * time.Millisecond
)

func NewMailService(mb common.MessageConsumer, cfg Config, logger MailLogger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:        mb,
		m:         NewMailer(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Sender, NewTemplate()),
		recipient: cfg.Recipient,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// SendWelcomeEmail starts consuming user.created events. Each event results in
// a welcome notice for the new user. It returns once the consumer is running.
func (s *MailService) SendWelcomeEmail() error {
	msgs, err := s.mb.Consume(common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue)
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.handleUserCreated(msg)

			case <-s.ctx.Done():
				s.logger.Info("stopping welcome email consumer")
				return
			}
		}
	}()

	return nil
}

func (s *MailService) handleUserCreated(msg amqp.Delivery) {
	var event common.UserCreatedEvent

	err := json.Unmarshal(msg.Body, &event)
	if err != nil {
		s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
		_ = msg.Ack(false)
		return
	}

	data := WelcomeData{Username: event.Username, Name: event.Name}

	// exponential backoff with jitter
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = s.m.send(s.recipient, data, welcomeTemplate)
		if err == nil {
			s.logger.Info("welcome email sent", slog.String("username", event.Username))
			_ = msg.Ack(false)
			return
		}

		delay := time.Duration(rand.Int63n(int64(baseDelay) << uint(attempt)))
		s.logger.Info("delaying welcome email", slog.String("username", event.Username), slog.Int("attempt", attempt), slog.Duration("delay", delay))
		if !s.sleep(s.ctx, delay) {
			break
		}
	}

	s.logger.Error("could not send welcome email", slog.String("username", event.Username), slog.String("error", err.Error()))
	_ = msg.Ack(false)
}

// Close stops the consumer and waits for the in-flight message.
func (s *MailService) Close() {
	s.cancel()
	s.wg.Wait()
}
