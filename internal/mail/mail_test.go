// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package mail

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPicksSender(t *testing.T) {
	s, err := New(SMTPConfig{From: "noreply@yamdb.local"})
	require.NoError(t, err)
	assert.IsType(t, LogSender{}, s)

	s, err = New(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "noreply@yamdb.local"})
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)
}

func TestLogSenderWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	err := LogSender{From: "noreply@yamdb.local"}.Send(context.Background(), Message{
		To:      "ada@example.com",
		Subject: "YaMDb registration",
		Body:    "Confirmation code: 12345678",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, "12345678")
}

func TestBuildMsg(t *testing.T) {
	msg, err := buildMsg("noreply@yamdb.local", Message{
		To:      "ada@example.com",
		Subject: "YaMDb registration",
		Body:    "Confirmation code: 12345678",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: YaMDb registration")
	assert.Contains(t, raw, "ada@example.com")
	assert.True(t, strings.Contains(raw, "Confirmation code: 12345678"))
}

func TestBuildMsgRejectsBadAddress(t *testing.T) {
	_, err := buildMsg("noreply@yamdb.local", Message{To: "not an address"})
	assert.Error(t, err)
}
