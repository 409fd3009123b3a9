// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mailer builds the digest email and delivers it through an
// authenticated SMTP relay.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

// ErrNoRecipients is returned when a message has no To address.
var ErrNoRecipients = errors.New("no recipients in EMAIL_TO")

var recipientSep = regexp.MustCompile(`[;,]+`)

// ParseRecipients splits a comma- or semicolon-separated address list,
// trimming each entry and dropping empties.
func ParseRecipients(raw string) []string {
	var out []string
	for _, part := range recipientSep.Split(raw, -1) {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Message is a rendered digest ready for delivery.
type Message struct {
	From    string
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Text    string
	HTML    string
}

// NewMessage addresses a digest according to cfg.
func NewMessage(cfg types.EmailConfig, subject, text, html string) Message {
	return Message{
		From:    cfg.From,
		To:      ParseRecipients(cfg.To),
		Cc:      ParseRecipients(cfg.Cc),
		Bcc:     ParseRecipients(cfg.Bcc),
		Subject: subject,
		Text:    text,
		HTML:    html,
	}
}

// Recipients returns the envelope recipients: To, then Cc, then Bcc.
func (m Message) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	return append(out, m.Bcc...)
}

// Build converts m into a multipart/alternative MIME message with a plain
// text part followed by the HTML part. Bcc addresses are envelope-only and
// never written to the headers.
func Build(m Message) (*mail.Msg, error) {
	if len(m.To) == 0 {
		return nil, ErrNoRecipients
	}

	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("setting From %q: %w", m.From, err)
	}
	if err := msg.To(m.To...); err != nil {
		return nil, fmt.Errorf("setting To: %w", err)
	}
	if len(m.Cc) > 0 {
		if err := msg.Cc(m.Cc...); err != nil {
			return nil, fmt.Errorf("setting Cc: %w", err)
		}
	}
	if len(m.Bcc) > 0 {
		if err := msg.Bcc(m.Bcc...); err != nil {
			return nil, fmt.Errorf("setting Bcc: %w", err)
		}
	}

	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Text)
	msg.AddAlternativeString(mail.TypeTextHTML, m.HTML)
	return msg, nil
}

// Sender delivers a Message. Tests substitute a recording implementation.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SMTPSender delivers over SMTP with mandatory STARTTLS (implicit TLS on
// port 465) and PLAIN authentication.
type SMTPSender struct {
	Config types.SMTPConfig
}

// Send dials the relay, authenticates, and submits m to every envelope
// recipient. The whole exchange is bounded by Config.Timeout.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	msg, err := Build(m)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.Config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.Config.User),
		mail.WithPassword(s.Config.Password),
	}
	if s.Config.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if s.Config.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.Config.Timeout))
	}

	client, err := mail.NewClient(s.Config.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}

	if s.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Config.Timeout)
		defer cancel()
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending via %s:%d: %w", s.Config.Host, s.Config.Port, err)
	}
	return nil
}
