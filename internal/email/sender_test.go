package email

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"

	"github.com/gdnc/invoice-automation/internal/models"
)

// MockMailer records sent messages
type MockMailer struct {
	sent []Message
	err  error
}

func (m *MockMailer) Send(ctx context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// MockDeliveryStore keeps deliveries in memory
type MockDeliveryStore struct {
	deliveries map[int64]*models.Delivery
	nextID     int64
	createErr  error
}

func newMockStore() *MockDeliveryStore {
	return &MockDeliveryStore{deliveries: make(map[int64]*models.Delivery)}
}

func (s *MockDeliveryStore) Create(d *models.Delivery) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	d.ID = s.nextID
	cp := *d
	s.deliveries[d.ID] = &cp
	return nil
}

func (s *MockDeliveryStore) MarkSent(id int64, sentAt time.Time) error {
	s.deliveries[id].Status = models.DeliveryStatusSent
	s.deliveries[id].SentAt = &sentAt
	return nil
}

func (s *MockDeliveryStore) MarkFailed(id int64, reason string) error {
	s.deliveries[id].Status = models.DeliveryStatusFailed
	s.deliveries[id].ErrorMessage = reason
	return nil
}

func TestSenderDeliver(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	msg := Message{To: "jd@example.ch", Subject: "Facture", Body: "…", Attachments: []string{"/out/f.pdf"}}

	t.Run("success is recorded", func(t *testing.T) {
		mailer := &MockMailer{}
		store := newMockStore()
		s := NewSender(mailer, store, logger)

		require.NoError(t, s.Deliver(context.Background(), "20250001", "run-1", msg))
		require.Len(t, mailer.sent, 1)

		d := store.deliveries[1]
		assert.Equal(t, models.DeliveryStatusSent, d.Status)
		assert.Equal(t, "/out/f.pdf", d.AttachmentPath)
		assert.Equal(t, "run-1", d.RunID)
		assert.NotNil(t, d.SentAt)
	})

	t.Run("failure is recorded and returned", func(t *testing.T) {
		boom := &ConnectivityError{Addr: "smtp:587", Err: errors.New("no route")}
		store := newMockStore()
		s := NewSender(&MockMailer{err: boom}, store, logger)

		err := s.Deliver(context.Background(), "20250002", "", msg)
		assert.ErrorIs(t, err, ErrConnectivity)
		assert.Equal(t, models.DeliveryStatusFailed, store.deliveries[1].Status)
		assert.Contains(t, store.deliveries[1].ErrorMessage, "no route")
	})

	t.Run("bookkeeping failure does not block sending", func(t *testing.T) {
		mailer := &MockMailer{}
		store := newMockStore()
		store.createErr = errors.New("database is locked")
		s := NewSender(mailer, store, logger)

		require.NoError(t, s.Deliver(context.Background(), "20250003", "", msg))
		assert.Len(t, mailer.sent, 1)
	})

	t.Run("no store", func(t *testing.T) {
		mailer := &MockMailer{}
		require.NoError(t, NewSender(mailer, nil, logger).Deliver(context.Background(), "20250004", "", msg))
	})
}

func TestSMTPMailer(t *testing.T) {
	cfg := SMTPConfig{Host: "smtp.example.ch", Port: 587, From: "finances@example.ch", Bcc: "archive@example.ch"}

	t.Run("unreachable server is a connectivity error", func(t *testing.T) {
		m := NewSMTPMailer(cfg, zap.NewNop())
		m.dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return nil, errors.New("connection refused")
		}
		sent := false
		m.send = func(*mail.Message) error { sent = true; return nil }

		err := m.Send(context.Background(), Message{To: "a@example.ch", Subject: "s"})
		assert.ErrorIs(t, err, ErrConnectivity)
		var ce *ConnectivityError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "smtp.example.ch:587", ce.Addr)
		assert.False(t, sent)
	})

	t.Run("sends when reachable", func(t *testing.T) {
		m := NewSMTPMailer(cfg, zap.NewNop())
		m.dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
			client, server := net.Pipe()
			server.Close()
			return client, nil
		}
		var got *mail.Message
		m.send = func(mm *mail.Message) error { got = mm; return nil }

		require.NoError(t, m.Send(context.Background(), Message{To: "a@example.ch", Subject: "Facture 20250001", Body: "corps"}))
		require.NotNil(t, got)
		assert.Equal(t, []string{"a@example.ch"}, got.GetHeader("To"))
		assert.Equal(t, []string{"archive@example.ch"}, got.GetHeader("Bcc"))
		assert.Equal(t, []string{"Facture 20250001"}, got.GetHeader("Subject"))
	})

	t.Run("message without recipient", func(t *testing.T) {
		m := NewSMTPMailer(cfg, zap.NewNop())
		assert.Error(t, m.Send(context.Background(), Message{Subject: "s"}))
	})
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, LogMailer{Logger: zap.NewNop()}.Send(context.Background(), Message{To: "a@example.ch"}))
}
