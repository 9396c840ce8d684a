package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/clubhub/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emailJSConfig() config.EmailConfig {
	return config.EmailConfig{
		Provider:          "emailjs",
		EmailJSServiceID:  "svc",
		EmailJSTemplateID: "tpl",
		EmailJSPublicKey:  "pub",
		EmailJSPrivateKey: "priv",
	}
}

func TestEmailJSMailerSendsBccList(t *testing.T) {
	var got emailJSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewEmailJSMailer(emailJSConfig(), srv.Client())
	m.endpoint = srv.URL

	err := m.Send(context.Background(), Email{Bcc: []string{"a@x.com", "b@x.com"}, Subject: "Hi", Body: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "svc", got.ServiceID)
	assert.Equal(t, "tpl", got.TemplateID)
	assert.Equal(t, "pub", got.UserID)
	assert.Equal(t, "priv", got.AccessToken)
	assert.Equal(t, "a@x.com,b@x.com", got.TemplateParams["bcc"])
	assert.Equal(t, "Hi", got.TemplateParams["subject"])
	assert.NotContains(t, got.TemplateParams, "to_email")
}

func TestEmailJSMailerFailureIsExternal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "The template ID is invalid", http.StatusBadRequest)
	}))
	defer srv.Close()

	m := NewEmailJSMailer(emailJSConfig(), srv.Client())
	m.endpoint = srv.URL

	err := m.Send(context.Background(), Email{To: "a@x.com", Subject: "Hi", Body: "x"})
	require.ErrorIs(t, err, ErrExternalService)
	assert.Contains(t, err.Error(), "template ID is invalid")
}

func TestNewMailerSelectsProvider(t *testing.T) {
	assert.IsType(t, &EmailJSMailer{}, NewMailer(emailJSConfig(), nil))
	assert.IsType(t, &SMTPMailer{}, NewMailer(config.EmailConfig{Provider: "smtp"}, nil))

	err := NewMailer(config.EmailConfig{Provider: "none"}, nil).Send(context.Background(), Email{To: "a@x.com"})
	assert.ErrorIs(t, err, ErrEmailDisabled)
}

func TestSMTPMessageHidesBcc(t *testing.T) {
	m := NewSMTPMailer(config.EmailConfig{SMTPFrom: "club@example.com"})
	msg := string(m.buildMessage(Email{Bcc: []string{"secret@x.com"}, Subject: "Hi", Body: "<p>x</p>"}))

	assert.Contains(t, msg, "To: undisclosed-recipients:;\r\n")
	assert.Contains(t, msg, "From: club@example.com\r\n")
	assert.NotContains(t, msg, "secret@x.com")
}

func TestGenerateEmailBodyEscapes(t *testing.T) {
	body, err := GenerateEmailBody("message", map[string]string{"Body": "<script>x</script>", "From": "Coach"})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "Sent by Coach")

	_, err = GenerateEmailBody("missing", nil)
	assert.Error(t, err)
}

func TestObservedMailerReportsOutcome(t *testing.T) {
	var outcomes []error
	m := ObservedMailer(&RecordingMailer{}, func(err error) { outcomes = append(outcomes, err) })
	require.NoError(t, m.Send(context.Background(), Email{To: "a@x.com"}))

	disabled := ObservedMailer(NewMailer(config.EmailConfig{}, nil), func(err error) { outcomes = append(outcomes, err) })
	assert.ErrorIs(t, disabled.Send(context.Background(), Email{To: "a@x.com"}), ErrEmailDisabled)

	require.Len(t, outcomes, 2)
	assert.NoError(t, outcomes[0])
	assert.ErrorIs(t, outcomes[1], ErrEmailDisabled)
}
