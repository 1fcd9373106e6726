package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer reads reservation.confirmed messages and appends one line per
// event to a log file.
type Consumer struct {
	URL     string
	LogPath string
	log     *zap.Logger
}

func NewConsumer(url, logPath string, log *zap.Logger) *Consumer {
	if logPath == "" {
		logPath = filepath.Join("logs", "reservations.log")
	}
	return &Consumer{URL: url, LogPath: logPath, log: log}
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.log.Warn("reservation-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("reservation-consumer: consume loop ended; reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

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

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("reservation-consumer: set QoS failed", zap.Error(err))
	}
	if err := declare(ch); err != nil {
		return err
	}
	msgs, err := ch.Consume(ReservationConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(d.Body); err != nil {
				c.log.Error("reservation-consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // no requeue, avoids a poison-message loop
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message body and appends it to LogPath.
func (c *Consumer) Handle(body []byte) error {
	var ev ReservationConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	return WriteLine(f, ev)
}

// WriteLine formats ev as a single human-readable line.
func WriteLine(w io.Writer, ev ReservationConfirmedEvent) error {
	_, err := fmt.Fprintf(w,
		"[%s] Reservation confirmed | code=%s | reservation_id=%d | user_id=%d | room=%q | room_type=%q | stay=%s..%s (%d nights) | total=%d cents | transaction_id=%d\n",
		ev.ConfirmedAt, ev.Code, ev.ReservationID, ev.UserID, ev.RoomNumber, ev.RoomType,
		ev.CheckIn, ev.CheckOut, ev.Nights, ev.TotalAmountCents, ev.TransactionID)
	if err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
