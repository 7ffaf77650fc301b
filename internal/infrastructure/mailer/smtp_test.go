package mailer

import (
	"bytes"
	"context"
	"testing"

	"lab-booking/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier_Send(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	err := NewLogNotifier(log).Send(context.Background(), "uma@example.com", "Welcome", "<p>hi</p>")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"to":"uma@example.com"`)
	assert.Contains(t, buf.String(), `"subject":"Welcome"`)
	assert.NotContains(t, buf.String(), "<p>hi</p>")
}

func TestSMTPNotifier_RejectsInvalidRecipient(t *testing.T) {
	n, err := NewSMTPNotifier(config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "user",
		Password: "secret",
		From:     "noreply@example.com",
		FromName: "Lab",
	})
	require.NoError(t, err)

	err = n.Send(context.Background(), "not an address", "Subject", "<p>body</p>")
	assert.Error(t, err)
}

func TestNewSMTPNotifier_RequiresHost(t *testing.T) {
	_, err := NewSMTPNotifier(config.SMTPConfig{Port: 587})
	assert.Error(t, err)
}
