// Package service holds the application services that sit outside the
// per-scope workspace: the reservation event publisher and the public
// account registration.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/bocattovalley/bocatto-server/internal/model"
	q "github.com/bocattovalley/bocatto-server/internal/queue"
)

// DefaultDialTimeout bounds the broker connect of one publish.
const DefaultDialTimeout = 2 * time.Second

// ReservationPublisher publishes ReservationConfirmedEvents to RabbitMQ.
// Each call dials the broker; failures are logged and returned so the
// caller can choose to ignore them. The dial never outlives ctx.
type ReservationPublisher struct {
	URL         string
	DialTimeout time.Duration
	Logger      *zap.Logger
}

// NewReservationPublisher returns a publisher for the broker at url.
func NewReservationPublisher(url string, logger *zap.Logger) *ReservationPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationPublisher{
		URL:         url,
		DialTimeout: DefaultDialTimeout,
		Logger:      logger.With(zap.String("component", "reservation_publisher")),
	}
}

// dialTimeout is DialTimeout, shortened to what is left of ctx.
func (p *ReservationPublisher) dialTimeout(ctx context.Context) time.Duration {
	d := p.DialTimeout
	if d <= 0 {
		d = DefaultDialTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			d = left
		}
	}
	return d
}

// EventFor builds the event announcing r.
func EventFor(r model.Reservation) q.ReservationConfirmedEvent {
	return q.ReservationConfirmedEvent{
		ReservationID:     r.ID,
		ReservationNumber: r.Number,
		ClientID:          r.ClientID,
		EnvironmentID:     r.EnvironmentID,
		EnvironmentName:   r.EnvironmentName,
		Date:              r.Date,
		StartTime:         r.StartTime,
		EndTime:           r.EndTime,
		PartySize:         r.PartySize,
		Occasion:          r.Occasion,
		ConfirmedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// PublishConfirmed sends the event for r to the reservation.confirmed
// queue. Messages are marked as persistent and carry a random message id.
func (p *ReservationPublisher) PublishConfirmed(ctx context.Context, r model.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := p.dialTimeout(ctx)
	if timeout <= 0 {
		return context.DeadlineExceeded
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		p.Logger.Warn("dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Logger.Warn("channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.ReservationConfirmedQueue, // name
		true,                        // durable
		false,                       // autoDelete
		false,                       // exclusive
		false,                       // noWait
		nil,                         // args
	); err != nil {
		p.Logger.Warn("queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(EventFor(r))
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                          // default exchange
		q.ReservationConfirmedQueue, // routing key = queue name
		false,                       // mandatory
		false,                       // immediate
		pub,
	); err != nil {
		p.Logger.Warn("publish failed", zap.Error(err))
		return err
	}
	p.Logger.Debug("reservation published", zap.String("number", r.Number), zap.String("message_id", pub.MessageId))
	return nil
}
