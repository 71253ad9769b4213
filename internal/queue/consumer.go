// Package queue contains the background consumer that listens to the
// reservation.confirmed queue and appends one line per booking to a daily
// rotated log under logs/.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// NewReservationLog opens logs/reservations.%Y%m%d.log under dir, rotated
// daily, kept for seven days and linked from reservations.log.
func NewReservationLog(dir string) (*rotatelogs.RotateLogs, error) {
	return rotatelogs.New(
		filepath.Join(dir, "reservations.%Y%m%d.log"),
		rotatelogs.WithLinkName(filepath.Join(dir, "reservations.log")),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
}

// Consumer reads reservation.confirmed and writes each event to Out.
type Consumer struct {
	URL    string
	Out    io.Writer
	Logger *zap.Logger
}

// Run connects to RabbitMQ, declares the queue (durable) and consumes until
// ctx is cancelled. Broker failures are retried with exponential backoff
// capped at 30s; a message that cannot be handled is rejected without
// requeue so the consumer keeps going.
func (c *Consumer) Run(ctx context.Context) error {
	log := c.Logger.With(zap.String("component", "reservation_consumer"))
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Warn("dial broker failed", zap.Duration("retry_in", backoff), zap.Error(err))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(ReservationConfirmedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(ReservationConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	log.Info("consuming", zap.String("queue", ReservationConfirmedQueue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handleMessage(d.Body); err != nil {
				log.Error("handle message failed", zap.String("message_id", d.MessageId), zap.Error(err))
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(body []byte) error {
	var ev ReservationConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.ReservationNumber == "" {
		return errors.New("event without reservation number")
	}
	client := "anonymous"
	if ev.ClientID != nil {
		client = fmt.Sprintf("%d", *ev.ClientID)
	}
	line := fmt.Sprintf("[%s] Reservation confirmed | number=%s | id=%d | client=%s | area=%q | date=%s | time=%s-%s | guests=%d",
		ev.ConfirmedAt, ev.ReservationNumber, ev.ReservationID, client, ev.EnvironmentName, ev.Date, ev.StartTime, ev.EndTime, ev.PartySize)
	if ev.Occasion != "" {
		line += fmt.Sprintf(" | occasion=%q", ev.Occasion)
	}
	if _, err := io.WriteString(c.Out, line+"\n"); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// sleep waits for d or until ctx is done; it reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
