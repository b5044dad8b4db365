package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nesvesk-vienas/nesvesk-server/internal/auth"
	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	"github.com/nesvesk-vienas/nesvesk-server/internal/sse"
	"github.com/nesvesk-vienas/nesvesk-server/internal/store/sqlite"
	"github.com/nesvesk-vienas/nesvesk-server/internal/validation"
)

// countingNotifier records outbox wake-ups.
type countingNotifier struct {
	n atomic.Int32
}

func (c *countingNotifier) NotifyNewJob() { c.n.Add(1) }

type testEnv struct {
	store       *sqlite.Store
	events      *sse.Manager
	outbox      *countingNotifier
	users       *UserService
	profiles    *ProfileService
	invitations *InvitationService
	matches     *MatchService
	messages    *MessageService
	badges      *BadgeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	events := sse.NewManager(logger)
	t.Cleanup(func() { _ = events.Shutdown(context.Background()) })

	outbox := &countingNotifier{}
	effects := &Effects{Events: events, Outbox: outbox, DefaultLocale: domain.LocaleLithuanian}
	v := validation.New()

	matches := NewMatchService(st, logger)
	return &testEnv{
		store:       st,
		events:      events,
		outbox:      outbox,
		users:       NewUserService(st, logger),
		profiles:    NewProfileService(st, nil, v, logger),
		invitations: NewInvitationService(st, nil, effects, v, logger),
		matches:     matches,
		messages:    NewMessageService(st, matches, effects, v, logger),
		badges:      NewBadgeService(st, logger),
	}
}

// newUser provisions a user with a visible guest profile and returns its ID.
func (e *testEnv) newUser(t *testing.T, name string) string {
	t.Helper()
	return e.newUserWithRole(t, name, domain.RoleGuest)
}

func (e *testEnv) newUserWithRole(t *testing.T, name string, role domain.Role) string {
	t.Helper()
	ctx := context.Background()

	u, err := e.users.EnsureUser(ctx, auth.Identity{
		ExternalID: "ext-" + name,
		Email:      name + "@example.com",
		Name:       name,
	})
	require.NoError(t, err)

	_, err = e.profiles.UpsertProfile(ctx, u.ID, profileRequest(name, role))
	require.NoError(t, err)
	return u.ID
}

// newUserWithoutProfile provisions a user who never filled in a profile.
func (e *testEnv) newUserWithoutProfile(t *testing.T, name string) string {
	t.Helper()
	u, err := e.users.EnsureUser(context.Background(), auth.Identity{
		ExternalID: "ext-" + name,
		Email:      name + "@example.com",
		Name:       name,
	})
	require.NoError(t, err)
	return u.ID
}

func profileRequest(name string, role domain.Role) UpsertProfileRequest {
	return UpsertProfileRequest{
		Role:           role,
		FirstName:      name,
		LastName:       "Testaitė",
		City:           domain.Vilnius,
		Bio:            "Looking for company over the holidays",
		Phone:          "+37060000000",
		Address:        "Gedimino pr. 1",
		Languages:      []domain.Language{domain.Lithuanian},
		AvailableDates: []domain.HolidayDate{domain.ChristmasEve},
	}
}

// match sends an invitation from a to b and has b accept it.
func (e *testEnv) match(t *testing.T, a, b string) *domain.Invitation {
	t.Helper()
	ctx := context.Background()

	inv, err := e.invitations.Send(ctx, a, SendInvitationRequest{ToUserID: b, Date: domain.ChristmasEve})
	require.NoError(t, err)
	inv, err = e.invitations.Respond(ctx, inv.ID, b, true)
	require.NoError(t, err)
	return inv
}

// jobsFor returns the notification jobs queued for userID.
func (e *testEnv) jobsFor(t *testing.T, userID string) []*domain.NotificationJob {
	t.Helper()
	jobs, err := e.store.ListNotificationsFor(context.Background(), userID)
	require.NoError(t, err)
	return jobs
}

// fixedClock returns a clock that advances only when told to.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time { return c.t }

func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }
