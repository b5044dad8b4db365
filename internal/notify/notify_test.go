package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
)

func testJob(kind domain.NotificationKind, locale domain.Locale) *domain.NotificationJob {
	return &domain.NotificationJob{
		Record:          domain.Record{ID: "ntf-1"},
		Kind:            kind,
		RecipientUserID: "usr-1",
		RecipientEmail:  "ona@example.com",
		Locale:          locale,
		Payload:         domain.NotificationPayload{CounterpartName: "Jonas", Date: domain.ChristmasEve},
	}
}

func TestRenderer_EnglishSubjects(t *testing.T) {
	r := NewRenderer("https://nesvesk-vienas.lt/")

	tests := []struct {
		kind    domain.NotificationKind
		subject string
		link    string
	}{
		{domain.NotifyInvitationReceived, "Jonas wants to celebrate Christmas Eve (24 Dec) with you!", "https://nesvesk-vienas.lt/dashboard"},
		{domain.NotifyInvitationAccepted, "Jonas accepted your invitation for Christmas Eve (24 Dec)!", "https://nesvesk-vienas.lt/matches"},
		{domain.NotifyInvitationDeclined, "Update on your Christmas Eve (24 Dec) invitation", "https://nesvesk-vienas.lt/browse"},
		{domain.NotifyNewMessage, "New message from Jonas", "https://nesvesk-vienas.lt/dashboard"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			email, err := r.Render(testJob(tt.kind, domain.LocaleEnglish))
			require.NoError(t, err)

			assert.Equal(t, tt.subject, email.Subject)
			assert.Equal(t, "ona@example.com", email.To)
			assert.Contains(t, email.HTML, `href="`+tt.link+`"`)
			assert.Contains(t, email.HTML, "<strong>Jonas</strong>")
			assert.NotContains(t, email.Subject, "%!")
			assert.Contains(t, email.Text, "Jonas")
			assert.NotContains(t, email.Text, "<div")
		})
	}
}

func TestRenderer_Lithuanian(t *testing.T) {
	r := NewRenderer("http://localhost:3000")

	email, err := r.Render(testJob(domain.NotifyNewMessage, domain.LocaleLithuanian))
	require.NoError(t, err)

	assert.Equal(t, "Nauja žinutė nuo Jonas", email.Subject)
	assert.Contains(t, email.HTML, "Skaityti žinutę")
}

func TestRenderer_EscapesNames(t *testing.T) {
	r := NewRenderer("http://localhost:3000")
	job := testJob(domain.NotifyInvitationReceived, domain.LocaleEnglish)
	job.Payload.CounterpartName = "<script>x</script>"

	email, err := r.Render(job)
	require.NoError(t, err)

	assert.NotContains(t, email.HTML, "<script>")
	assert.Contains(t, email.HTML, "&lt;script&gt;")
}

func TestRenderer_StableIdempotencyKey(t *testing.T) {
	r := NewRenderer("http://localhost:3000")

	a, err := r.Render(testJob(domain.NotifyNewMessage, domain.LocaleEnglish))
	require.NoError(t, err)
	b, err := r.Render(testJob(domain.NotifyNewMessage, domain.LocaleEnglish))
	require.NoError(t, err)

	assert.Equal(t, a.IdempotencyKey, b.IdempotencyKey)
	assert.NotEqual(t, IdempotencyKeyFor("ntf-2"), a.IdempotencyKey)
}

func TestRenderer_UnknownKind(t *testing.T) {
	_, err := NewRenderer("").Render(testJob("birthday", domain.LocaleEnglish))
	assert.Error(t, err)
}

func TestMatchLocale(t *testing.T) {
	tests := []struct {
		name      string
		preferred domain.Locale
		header    string
		fallback  domain.Locale
		want      domain.Locale
	}{
		{"profile wins", domain.LocaleEnglish, "lt-LT", domain.LocaleLithuanian, domain.LocaleEnglish},
		{"header english", "", "en-GB,en;q=0.9", domain.LocaleLithuanian, domain.LocaleEnglish},
		{"header lithuanian", "", "lt", domain.LocaleEnglish, domain.LocaleLithuanian},
		{"unsupported header", "", "de-DE", domain.LocaleEnglish, domain.LocaleEnglish},
		{"nothing", "", "", "", domain.LocaleLithuanian},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchLocale(tt.preferred, tt.header, tt.fallback))
		})
	}
}

func TestDateLabel(t *testing.T) {
	assert.Equal(t, "New Year's Eve (31 Dec)", DateLabel(domain.NewYearsEve, domain.LocaleEnglish))
	assert.Equal(t, "Kūčias (gruodžio 24 d.)", DateLabel(domain.ChristmasEve, domain.LocaleLithuanian))
	assert.Equal(t, "1 Jan", DateLabel("1 Jan", domain.LocaleEnglish))
}

func TestResendClient_Send(t *testing.T) {
	var (
		gotAuth, gotKey string
		gotBody         resendRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("Idempotency-Key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	c := NewResendClient(ResendConfig{APIKey: "re_test", BaseURL: srv.URL + "/", From: "Nešvęsk Vienas <noreply@nesvesk-vienas.lt>", Timeout: time.Second})

	err := c.Send(context.Background(), Email{To: "ona@example.com", Subject: "Hi", HTML: "<p>Hi</p>", Text: "Hi", IdempotencyKey: "key-1"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer re_test", gotAuth)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, []string{"ona@example.com"}, gotBody.To)
	assert.Equal(t, "Nešvęsk Vienas <noreply@nesvesk-vienas.lt>", gotBody.From)
	assert.Equal(t, "Hi", gotBody.Subject)
}

func TestResendClient_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`))
	}))
	defer srv.Close()

	c := NewResendClient(ResendConfig{APIKey: "re_test", BaseURL: srv.URL})
	err := c.Send(context.Background(), Email{To: "bad"})

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusUnprocessableEntity, pe.Status)
	assert.Equal(t, "validation_error", pe.Name)
	assert.Contains(t, err.Error(), "Invalid to field")
}

func TestLogMailer(t *testing.T) {
	m := NewLogMailer(slog.New(slog.DiscardHandler))
	assert.NoError(t, m.Send(context.Background(), Email{To: "x@example.com"}))
}
