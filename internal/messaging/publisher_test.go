package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/mrdaebak/api/internal/event"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRoutingKey(t *testing.T) {
	e := event.New(event.TypeOrderStatusChanged, 1, uuid.New(), "DELIVERING", 0)
	if got := RoutingKey(e); got != "order.delivering" {
		t.Errorf("got %s, want order.delivering", got)
	}
}

func TestPublish(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch}

	e := event.New(event.TypeOrderPlaced, 12, uuid.New(), "RECEIVED", 75000)
	if err := p.Publish(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ch.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(ch.sent))
	}
	m := ch.sent[0]
	if m.exchange != Exchange || m.key != "order.received" {
		t.Errorf("unexpected routing: %s %s", m.exchange, m.key)
	}
	if m.msg.DeliveryMode != amqp091.Persistent || m.msg.MessageId != e.ID.String() || m.msg.Type != event.TypeOrderPlaced {
		t.Errorf("unexpected properties: %+v", m.msg)
	}

	var decoded event.OrderEvent
	if err := json.Unmarshal(m.msg.Body, &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.OrderID != 12 || decoded.FinalPrice != 75000 {
		t.Errorf("unexpected body: %+v", decoded)
	}
}

func TestPublish_Error(t *testing.T) {
	p := &Publisher{ch: &fakeChannel{err: amqp091.ErrClosed}}

	err := p.Publish(context.Background(), event.New(event.TypeOrderReady, 1, uuid.New(), "COOKING", 0))
	if !errors.Is(err, amqp091.ErrClosed) {
		t.Fatalf("expected ErrClosed, got: %v", err)
	}
}

func TestClose_WithoutConnection(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch}
	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ch.closed {
		t.Error("expected channel to be closed")
	}
}
