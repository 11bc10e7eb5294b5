package email

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

var ErrConnectivity = errors.New("mail server unreachable")

// ConnectivityError reports that the mail server could not be reached
type ConnectivityError struct {
	Addr string
	Err  error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("mail server %s unreachable: %v", e.Addr, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

func (e *ConnectivityError) Is(target error) bool {
	return target == ErrConnectivity
}

// Mailer sends a composed message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds the SMTP connection settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Bcc      string
	Timeout  time.Duration
}

// SMTPMailer delivers messages over SMTP
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *zap.Logger
	dial   func(ctx context.Context, network, addr string) (net.Conn, error)
	send   func(m *mail.Message) error
}

// NewSMTPMailer creates an SMTP mailer
func NewSMTPMailer(cfg SMTPConfig, logger *zap.Logger) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = cfg.Timeout

	d := &net.Dialer{Timeout: cfg.Timeout}
	return &SMTPMailer{
		cfg:    cfg,
		logger: logger,
		dial:   d.DialContext,
		send:   func(m *mail.Message) error { return dialer.DialAndSend(m) },
	}
}

func (m *SMTPMailer) addr() string {
	return net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
}

// Probe checks that the SMTP server accepts TCP connections
func (m *SMTPMailer) Probe(ctx context.Context) error {
	conn, err := m.dial(ctx, "tcp", m.addr())
	if err != nil {
		return &ConnectivityError{Addr: m.addr(), Err: err}
	}
	return conn.Close()
}

// Send probes the server, then delivers msg with its attachments
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("message %q has no recipient", msg.Subject)
	}
	if err := m.Probe(ctx); err != nil {
		return err
	}

	mm := mail.NewMessage()
	mm.SetHeader("From", m.cfg.From)
	mm.SetHeader("To", msg.To)
	if m.cfg.Bcc != "" {
		mm.SetHeader("Bcc", m.cfg.Bcc)
	}
	mm.SetHeader("Subject", msg.Subject)
	mm.SetBody("text/plain", msg.Body)
	for _, path := range msg.Attachments {
		mm.Attach(path)
	}

	if err := m.send(mm); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return &ConnectivityError{Addr: m.addr(), Err: err}
		}
		return fmt.Errorf("failed to send e-mail to %s: %w", msg.To, err)
	}

	m.logger.Info("E-mail sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)))
	return nil
}

// LogMailer only logs messages. It stands in for SMTP when sending is disabled.
type LogMailer struct {
	Logger *zap.Logger
}

// Send logs the message
func (l LogMailer) Send(ctx context.Context, msg Message) error {
	l.Logger.Info("E-mail sending disabled, message not sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Strings("attachments", msg.Attachments),
		zap.String("body", msg.Body))
	return nil
}
