package notify

import (
	"context"
	"errors"
	"fmt"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"expensetracker/internal/config"
)

// Sender delivers a rendered message over one channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// mailDialer is the part of *gomail.Dialer used for delivery.
type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailSender delivers messages by SMTP.
type MailSender struct {
	dialer mailDialer
	from   string
}

// NewMailSender creates an SMTP sender.
func NewMailSender(host string, port int, user, password, from string) *MailSender {
	return &MailSender{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

// Send implements Sender. Recipients without an email address are skipped.
func (s *MailSender) Send(ctx context.Context, msg Message) error {
	if msg.To.Email == "" || msg.HTML == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To.Email)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To.Email, err)
	}
	return nil
}

// pushPublisher is the part of *expo.PushClient used for delivery.
type pushPublisher interface {
	Publish(message *expo.PushMessage) (expo.PushResponse, error)
}

// PushSender delivers messages through the Expo push service.
type PushSender struct {
	client pushPublisher
}

// NewPushSender creates a push sender using the default Expo endpoint.
func NewPushSender() *PushSender {
	return &PushSender{client: expo.NewPushClient(nil)}
}

// Send implements Sender. Recipients without a push token are skipped.
func (s *PushSender) Send(ctx context.Context, msg Message) error {
	if msg.To.PushToken == "" || msg.Body == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	token, err := expo.NewExponentPushToken(msg.To.PushToken)
	if err != nil {
		return Permanent(fmt.Errorf("invalid push token for user %s: %w", msg.To.UserID, err))
	}

	response, err := s.client.Publish(&expo.PushMessage{
		To:       []expo.ExponentPushToken{token},
		Title:    msg.Title,
		Body:     msg.Body,
		Sound:    "default",
		Priority: expo.DefaultPriority,
		Data:     msg.Data,
	})
	if err != nil {
		return fmt.Errorf("publish push notification: %w", err)
	}
	if err := response.ValidateResponse(); err != nil {
		return Permanent(fmt.Errorf("push notification rejected: %w", err))
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	log *zap.SugaredLogger
}

// NewLogSender creates a sender that only logs.
func NewLogSender(log *zap.SugaredLogger) *LogSender {
	return &LogSender{log: log}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Infow("notification",
		"user_id", msg.To.UserID,
		"email", msg.To.Email,
		"subject", msg.Subject,
		"push", msg.To.PushToken != "",
	)
	return nil
}

// MultiSender fans a message out to every sender. All senders are tried; their
// errors are joined. Once any sender has delivered, the joined error is
// permanent so the message is not sent again through the senders that worked.
type MultiSender []Sender

// Send implements Sender.
func (m MultiSender) Send(ctx context.Context, msg Message) error {
	var errs []error
	delivered := 0
	for _, s := range m {
		if err := s.Send(ctx, msg); err != nil {
			errs = append(errs, err)
			continue
		}
		delivered++
	}
	err := errors.Join(errs...)
	if delivered > 0 {
		return Permanent(err)
	}
	return err
}

// NewSenderFromConfig builds the delivery chain for cfg: SMTP when configured,
// otherwise the log, plus Expo push when enabled.
func NewSenderFromConfig(cfg *config.Config, log *zap.SugaredLogger) Sender {
	var senders MultiSender
	if cfg.MailConfigured() {
		senders = append(senders, NewMailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom))
	} else {
		log.Warn("SMTP_HOST not set, notification mail is logged only")
		senders = append(senders, NewLogSender(log))
	}
	if cfg.PushEnabled {
		senders = append(senders, NewPushSender())
	}
	if len(senders) == 1 {
		return senders[0]
	}
	return senders
}
