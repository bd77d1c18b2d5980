package ingest

import (
	"bytes"
	"context"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arjun/deadline-tracker/internal/core"
	"github.com/arjun/deadline-tracker/internal/ports"
)

// SMTPIngest receives messages over SMTP and feeds them through the
// engine. It never rejects mail: whatever the engine decides, the
// message is accepted so upstream delivery is unaffected.
type SMTPIngest struct {
	service         *core.EngineService
	logger          *zap.Logger
	listenAddr      string
	domain          string
	maxMessageBytes int
	server          *smtp.Server
}

// NewSMTPIngest creates a new SMTP ingestion adapter
func NewSMTPIngest(
	service *core.EngineService,
	logger *zap.Logger,
	listenAddr string,
	domain string,
	maxMessageBytes int,
) *SMTPIngest {
	if domain == "" {
		domain = "localhost"
	}
	if maxMessageBytes <= 0 {
		maxMessageBytes = 30 * 1024 * 1024
	}
	return &SMTPIngest{
		service:         service,
		logger:          logger,
		listenAddr:      listenAddr,
		domain:          domain,
		maxMessageBytes: maxMessageBytes,
	}
}

// ProcessMessage runs a single message through the engine.
// This is mainly used for testing or direct API calls.
func (i *SMTPIngest) ProcessMessage(ctx context.Context, msg *core.Message) (*core.ProcessResult, error) {
	return i.service.ProcessMessage(ctx, msg)
}

// Start starts the SMTP ingestion server
func (i *SMTPIngest) Start() error {
	i.server = smtp.NewServer(&smtpBackend{ingest: i})

	i.server.Addr = i.listenAddr
	i.server.Domain = i.domain
	i.server.ReadTimeout = 30 * time.Second
	i.server.WriteTimeout = 30 * time.Second
	i.server.MaxMessageBytes = int64(i.maxMessageBytes)
	i.server.MaxRecipients = 50
	i.server.AllowInsecureAuth = true

	i.logger.Info("SMTP ingest starting", zap.String("address", i.listenAddr))

	go func() {
		if err := i.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				i.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP ingestion server
func (i *SMTPIngest) Stop() error {
	if i.server != nil {
		return i.server.Close()
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	ingest *SMTPIngest
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{ingest: b.ingest}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	ingest *SMTPIngest
	sender string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
}

// Logout handles session termination
func (s *smtpSession) Logout() error {
	return nil
}

// AuthPlain handles PLAIN authentication (not needed here)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the envelope sender
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt accepts any recipient; the engine cares about content, not routing
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	return nil
}

// Data handles the message data
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		// Unreadable data never bounces mail either.
		s.ingest.logger.Error("Failed to read message data", zap.Error(err))
		return nil
	}

	parsed, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.ingest.logger.Error("Failed to parse email message", zap.Error(err))
		return nil
	}

	msg := s.toMessage(parsed)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := s.ingest.service.ProcessMessage(ctx, msg)
	if err != nil {
		// Processing failures never bounce mail.
		s.ingest.logger.Error("Failed to process message",
			zap.Error(err),
			zap.String("message_id", msg.ID),
			zap.String("sender", msg.Sender))
		return nil
	}

	fields := []zap.Field{
		zap.String("message_id", msg.ID),
		zap.String("sender", msg.Sender),
		zap.String("status", string(result.Status)),
	}
	if result.Deadline != nil && result.Deadline.HasDeadline {
		fields = append(fields,
			zap.Time("deadline", result.Deadline.Date),
			zap.String("deadline_type", string(result.Deadline.Type)))
	}
	s.ingest.logger.Info("Processed message", fields...)

	return nil
}

// toMessage converts a parsed email into the engine's message model
func (s *smtpSession) toMessage(parsed *mail.Message) *core.Message {
	body, err := extractTextFromMessage(parsed)
	if err != nil {
		s.ingest.logger.Warn("Failed to extract text content", zap.Error(err))
	}

	subject := parsed.Header.Get("Subject")
	if decoded, err := decodeEncodedHeader(subject); err == nil {
		subject = decoded
	}

	sender := parsed.Header.Get("From")
	if sender == "" {
		sender = s.sender
	}
	if addr, err := mail.ParseAddress(sender); err == nil {
		sender = addr.Address
	}

	id := strings.Trim(parsed.Header.Get("Message-ID"), "<> ")
	if id == "" {
		id = uuid.NewString()
	}

	receivedAt := time.Now()
	if date, err := parsed.Header.Date(); err == nil {
		receivedAt = date
	}

	return &core.Message{
		ID:         id,
		Subject:    subject,
		Sender:     sender,
		Body:       body,
		ReceivedAt: receivedAt,
	}
}

var _ ports.MessageIngest = (*SMTPIngest)(nil)
