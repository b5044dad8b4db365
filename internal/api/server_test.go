package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/nesvesk-vienas/nesvesk-server/internal/auth"
	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	"github.com/nesvesk-vienas/nesvesk-server/internal/metrics"
	"github.com/nesvesk-vienas/nesvesk-server/internal/service"
	"github.com/nesvesk-vienas/nesvesk-server/internal/sse"
	"github.com/nesvesk-vienas/nesvesk-server/internal/store/sqlite"
	"github.com/nesvesk-vienas/nesvesk-server/internal/validation"
)

// testEnvelope decodes a success envelope.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// testErrorEnvelope decodes a coded error envelope.
type testErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api    humatest.TestAPI
	store  *sqlite.Store
	tokens *auth.TokenService
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sseManager := sse.NewManager(logger)
	t.Cleanup(func() { _ = sseManager.Shutdown(context.Background()) })

	tokens, err := auth.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)

	m := metrics.New(sseManager.ClientCount)
	effects := &service.Effects{Events: sseManager, Metrics: m, DefaultLocale: domain.LocaleLithuanian}
	v := validation.New()
	matches := service.NewMatchService(st, logger)

	services := &Services{
		User:       service.NewUserService(st, logger),
		Profile:    service.NewProfileService(st, nil, v, logger),
		Invitation: service.NewInvitationService(st, nil, effects, v, logger),
		Match:      matches,
		Message:    service.NewMessageService(st, matches, effects, v, logger),
		Badge:      service.NewBadgeService(st, logger),
	}

	s := NewServer(st, services, tokens, sseManager, nil, m, Config{AllowedOrigins: []string{"*"}}, logger)
	t.Cleanup(func() { _ = s.Shutdown() })

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
		tokens: tokens,
	}
}

// tokenFor issues an identity token for a provider subject named after name.
func (ts *testServer) tokenFor(t *testing.T, name string) string {
	t.Helper()
	token, err := ts.tokens.Issue(auth.Identity{
		ExternalID: "ext-" + name,
		Email:      name + "@example.com",
		Name:       name,
	})
	require.NoError(t, err)
	return token
}

// authHeader formats a token as a humatest header argument.
func authHeader(token string) string {
	return "Authorization: Bearer " + token
}

// member signs name in, creates a visible profile and returns token and user ID.
func (ts *testServer) member(t *testing.T, name string, role domain.Role) (token, userID string) {
	t.Helper()
	token = ts.tokenFor(t, name)

	resp := ts.api.Put("/api/v1/me/profile", authHeader(token), map[string]any{
		"role":            role,
		"first_name":      name,
		"last_name":       "Testaitė",
		"city":            domain.Vilnius,
		"phone":           "+37060000000",
		"address":         "Gedimino pr. 1",
		"languages":       []domain.Language{domain.Lithuanian},
		"available_dates": []domain.HolidayDate{domain.ChristmasEve},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	profile := decodeData[domain.Profile](t, resp.Body.Bytes())
	return token, profile.UserID
}

func decodeData[T any](t *testing.T, body []byte) T {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env))
	require.True(t, env.Success, string(body))
	require.Equal(t, EnvelopeVersion, env.Version)
	return env.Data
}

func decodeError(t *testing.T, body []byte) testErrorEnvelope {
	t.Helper()
	var env testErrorEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.False(t, env.Success, string(body))
	return env
}
