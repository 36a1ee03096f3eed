// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mail delivers outgoing email. SMTPSender talks to a real SMTP
// server; LogSender writes messages to the structured log and is used in
// development when no SMTP host is configured.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message or returns an error.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SMTPConfig holds the connection settings for SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// sendTimeout bounds a single dial-and-send.
const sendTimeout = 10 * time.Second

// SMTPSender delivers mail through an SMTP server using go-mail.
type SMTPSender struct {
	client *gomail.Client
	from   string
}

// NewSMTPSender creates an SMTP sender. STARTTLS is used when the server
// offers it. Authentication is enabled only when a username is set.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(sendTimeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.From}, nil
}

// Send dials the server and delivers m.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	msg, err := buildMsg(s.from, m)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMsg(from string, m Message) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, m.Body)
	return msg, nil
}

// LogSender logs messages instead of sending them.
type LogSender struct {
	From string
}

// Send writes m to the default logger.
func (s LogSender) Send(_ context.Context, m Message) error {
	slog.Info("mail (not sent, no SMTP host configured)",
		"from", s.From,
		"to", m.To,
		"subject", m.Subject,
		"body", m.Body,
	)
	return nil
}

// New returns an SMTPSender when cfg.Host is set, otherwise a LogSender.
func New(cfg SMTPConfig) (Sender, error) {
	if cfg.Host == "" {
		return LogSender{From: cfg.From}, nil
	}
	return NewSMTPSender(cfg)
}
