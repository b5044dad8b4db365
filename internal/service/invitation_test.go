package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	domainerrors "github.com/nesvesk-vienas/nesvesk-server/internal/errors"
	"github.com/nesvesk-vienas/nesvesk-server/internal/ratelimit"
)

func TestSendInvitation_CreatesPendingAndQueuesEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ona := env.newUser(t, "ona")
	jonas := env.newUser(t, "jonas")

	inv, err := env.invitations.Send(ctx, ona, SendInvitationRequest{ToUserID: jonas, Date: domain.ChristmasEve})
	require.NoError(t, err)

	assert.Equal(t, domain.InvitationPending, inv.Status)
	assert.Equal(t, ona, inv.FromUserID)
	assert.Equal(t, jonas, inv.ToUserID)
	assert.Nil(t, inv.RespondedAt)

	jobs := env.jobsFor(t, jonas)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.NotifyInvitationReceived, jobs[0].Kind)
	assert.Equal(t, "jonas@example.com", jobs[0].RecipientEmail)
	assert.Equal(t, "ona", jobs[0].Payload.CounterpartName)
	assert.Equal(t, domain.ChristmasEve, jobs[0].Payload.Date)
	assert.Equal(t, domain.NotificationPending, jobs[0].Status)
	assert.EqualValues(t, 1, env.outbox.n.Load())

	count, err := env.invitations.GetPendingCount(ctx, jonas)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSendInvitation_InvalidTargets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ona := env.newUser(t, "ona")
	noProfile := env.newUserWithoutProfile(t, "petras")

	hidden := env.newUser(t, "rasa")
	req := profileRequest("rasa", domain.RoleHost)
	visible := false
	req.Visible = &visible
	_, err := env.profiles.UpsertProfile(ctx, hidden, req)
	require.NoError(t, err)

	tests := []struct {
		name string
		to   string
	}{
		{"self", ona},
		{"empty", ""},
		{"blank", "   "},
		{"unknown user", "usr-missing"},
		{"no profile", noProfile},
		{"hidden profile", hidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.invitations.Send(ctx, ona, SendInvitationRequest{ToUserID: tt.to, Date: domain.ChristmasEve})
			assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidTarget), "got %v", err)
		})
	}

	assert.Empty(t, env.jobsFor(t, noProfile))
}

func TestSendInvitation_RejectsUnknownDate(t *testing.T) {
	env := newTestEnv(t)
	ona := env.newUser(t, "ona")
	jonas := env.newUser(t, "jonas")

	_, err := env.invitations.Send(context.Background(), ona, SendInvitationRequest{ToUserID: jonas, Date: "1 Jan"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "got %v", err)
}

func TestSendInvitation_DuplicatePendingEitherDirection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ona := env.newUser(t, "ona")
	jonas := env.newUser(t, "jonas")

	_, err := env.invitations.Send(ctx, ona, SendInvitationRequest{ToUserID: jonas, Date: domain.ChristmasEve})
	require.NoError(t, err)

	_, err = env.invitations.Send(ctx, ona, SendInvitationRequest{ToUserID: jonas, Date: domain.ChristmasDay})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrDuplicatePending), "same direction: %v", err)

	_, err = env.invitations.Send(ctx, jonas, SendInvitationRequest{ToUserID: ona, Date: domain.ChristmasEve})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrDuplicatePending), "reverse direction: %v", err)

	// Only the first invitation queued an email.
	assert.Len(t, env.jobsFor(t, jonas), 1)
	assert.Empty(t, env.jobsFor(t, ona))
}

func TestSendInvitation_ConcurrentSendsCreateOnePending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ona := env.newUser(t, "ona")
	jonas := env.newUser(t, "jonas")

	const senders = 16
	errs := make([]error, senders)
	var wg sync.WaitGroup
	for i := range senders {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := ona, jonas
			if i%2 == 1 {
				from, to = jonas, ona
			}
			_, errs[i] = env.invitations.Send(ctx, from, SendInvitationRequest{ToUserID: to, Date: domain.ChristmasEve})
		}(i)
	}
	wg.Wait()

	// Every loser sees the duplicate, never a storage failure.
	var ok, dup int
	for i, err := range errs {
		switch {
		case err == nil:
			ok++
		case domainerrors.Is(err, domainerrors.ErrDuplicatePending):
			dup++
		default:
			t.Errorf("sender %d: unexpected error %v", i, err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, senders-1, dup)

	invs, err := env.store.ListInvitationsBetween(ctx, ona, jonas)
	require.NoError(t, err)
	assert.Len(t, invs, 1)
}

func TestSendInvitation_RateLimited(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	limiter := ratelimit.New(0.001, 1)
	t.Cleanup(limiter.Stop)
	env.invitations.limiter = limiter

	ona := env.newUser(t, "ona")
	jonas := env.newUser(t, "jonas")
	rasa := env.newUser(t, "rasa")

	_, err := env.invitations.Send(ctx, ona, SendInvitationRequest{ToUserID: jonas, Date: domain.ChristmasEve})
	require.NoError(t, err)

	_, err = env.invitations.Send(ctx, ona, SendInvitationRequest{ToUserID: rasa, Date: domain.ChristmasEve})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrRateLimited), "got %v", err)

	// The budget is per sender.
	_, err = env.invitations.Send(ctx, rasa, SendInvitationRequest{ToUserID: jonas, Date: domain.ChristmasDay})
	assert.NoError(t, err)
}

func TestRespond_AcceptMatchesBothSides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ona := env.newUser(t, "ona")
	jonas := env.newUser(t, "jonas")

	clock := &fixedClock{t: time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)}
	env.invitations.now = clock.now

	inv, err := env.invitations.Send(ctx, ona, SendInvitationRequest{ToUserID: jonas, Date: domain.ChristmasEve})
	require.NoError(t, err)

	clock.advance(time.Hour)
	resolved, err := env.invitations.Respond(ctx, inv.ID, jonas, true)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationAccepted, resolved.Status)
	require.NotNil(t, resolved.RespondedAt)
	assert.True(t, resolved.RespondedAt.Equal(clock.t))

	fromOna, err := env.invitations.GetConnectionStatus(ctx, ona, jonas)
	require.NoError(t, err)
	fromJonas, err := env.invitations.GetConnectionStatus(ctx, jonas, ona)
	require.NoError(t, err)

	assert.Equal(t, domain.ConnectionMatched, fromOna.Status)
	assert.Equal(t, domain.ConnectionMatched, fromJonas.Status)
	assert.True(t, fromOna.Matched)
	assert.True(t, fromJonas.Matched)

	matched, err := env.matches.AreMatched(ctx, jonas, ona)
	require.NoError(t, err)
	assert.True(t, matched)

	jobs := env.jobsFor(t, ona)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.NotifyInvitationAccepted, jobs[0].Kind)
	assert.Equal(t, "jonas", jobs[0].Payload.CounterpartName)

	count, err := env.invitations.GetPendingCount(ctx, jonas)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRespond_DeclineStatusPerSide(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ona := env.newUser(t, "ona")
	jonas := env.newUser(t, "jonas")

	inv, err := env.invitations.Send(ctx, ona, SendInvitationRequest{ToUserID: jonas, Date: domain.ChristmasEve})
	require.NoError(t, err)

	_, err = env.invitations.Respond(ctx, inv.ID, jonas, false)
	require.NoError(t, err)

	fromOna, err := env.invitations.GetConnectionStatus(ctx, ona, jonas)
	require.NoError(t, err)
	fromJonas, err := env.invitations.GetConnectionStatus(ctx, jonas, ona)
	require.NoError(t, err)

	assert.Equal(t, domain.ConnectionDeclinedByThem, fromOna.Status)
	assert.Equal(t, domain.ConnectionDeclinedByMe, fromJonas.Status)
	assert.False(t, fromOna.Matched)

	jobs := env.jobsFor(t, ona)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.NotifyInvitationDeclined, jobs[0].Kind)
}

func TestRespond_OnlyRecipientMayRespond(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ona := env.newUser(t, "ona")
	jonas := env.newUser(t, "jonas")
	rasa := env.newUser(t, "rasa")

	inv, err := env.invitations.Send(ctx, ona, SendInvitationRequest{ToUserID: jonas, Date: domain.ChristmasEve})
	require.NoError(t, err)

	_, err = env.invitations.Respond(ctx, inv.ID, ona, true)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotAuthorized), "sender: %v", err)

	_, err = env.invitations.Respond(ctx, inv.ID, rasa, true)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotAuthorized), "stranger: %v", err)

	stored, err := env.store.GetInvitation(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationPending, stored.Status)
}

func TestRespond_SecondResponseRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ona := env.newUser(t, "ona")
	jonas := env.newUser(t, "jonas")

	inv, err := env.invitations.Send(ctx, ona, SendInvitationRequest{ToUserID: jonas, Date: domain.ChristmasEve})
	require.NoError(t, err)

	_, err = env.invitations.Respond(ctx, inv.ID, jonas, false)
	require.NoError(t, err)

	_, err = env.invitations.Respond(ctx, inv.ID, jonas, true)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyResolved), "got %v", err)

	stored, err := env.store.GetInvitation(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationDeclined, stored.Status)
	assert.Len(t, env.jobsFor(t, ona), 1)
}

func TestRespond_UnknownInvitation(t *testing.T) {
	env := newTestEnv(t)
	jonas := env.newUser(t, "jonas")

	_, err := env.invitations.Respond(context.Background(), "inv-missing", jonas, true)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound), "got %v", err)
}

func TestInvitation_ReinviteAfterDecline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ona := env.newUser(t, "ona")
	jonas := env.newUser(t, "jonas")

	first, err := env.invitations.Send(ctx, ona, SendInvitationRequest{ToUserID: jonas, Date: domain.ChristmasEve})
	require.NoError(t, err)
	_, err = env.invitations.Respond(ctx, first.ID, jonas, false)
	require.NoError(t, err)

	// Either side may try again once nothing is pending.
	second, err := env.invitations.Send(ctx, jonas, SendInvitationRequest{ToUserID: ona, Date: domain.ChristmasDay})
	require.NoError(t, err)

	info, err := env.invitations.GetConnectionStatus(ctx, ona, jonas)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionPendingReceived, info.Status)
	assert.Equal(t, second.ID, info.InvitationID)
	assert.Equal(t, domain.ChristmasDay, info.Date)

	info, err = env.invitations.GetConnectionStatus(ctx, jonas, ona)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionPendingSent, info.Status)
}

func TestInvitation_MatchSurvivesLaterDecline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ona := env.newUser(t, "ona")
	jonas := env.newUser(t, "jonas")

	env.match(t, ona, jonas)

	later, err := env.invitations.Send(ctx, jonas, SendInvitationRequest{ToUserID: ona, Date: domain.ChristmasDay})
	require.NoError(t, err)
	_, err = env.invitations.Respond(ctx, later.ID, ona, false)
	require.NoError(t, err)

	info, err := env.invitations.GetConnectionStatus(ctx, ona, jonas)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionDeclinedByMe, info.Status)
	assert.True(t, info.Matched)

	matched, err := env.matches.AreMatched(ctx, ona, jonas)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestGetConnectionStatus_SelfAndNone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ona := env.newUser(t, "ona")
	jonas := env.newUser(t, "jonas")

	info, err := env.invitations.GetConnectionStatus(ctx, ona, ona)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionSelf, info.Status)

	info, err = env.invitations.GetConnectionStatus(ctx, ona, jonas)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionNone, info.Status)
	assert.False(t, info.Matched)
}

func TestSendInvitation_RespectsEmailPreferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ona := env.newUser(t, "ona")
	jonas := env.newUser(t, "jonas")

	req := profileRequest("jonas", domain.RoleGuest)
	req.Notifications = &domain.NotificationPrefs{Email: true, OnInvitation: false, OnMatch: true, OnMessage: true}
	_, err := env.profiles.UpsertProfile(ctx, jonas, req)
	require.NoError(t, err)

	inv, err := env.invitations.Send(ctx, ona, SendInvitationRequest{ToUserID: jonas, Date: domain.ChristmasEve})
	require.NoError(t, err)

	assert.Empty(t, env.jobsFor(t, jonas))
	assert.Zero(t, env.outbox.n.Load())

	// Ona still hears about the match.
	_, err = env.invitations.Respond(ctx, inv.ID, jonas, true)
	require.NoError(t, err)
	assert.Len(t, env.jobsFor(t, ona), 1)
}

func TestGetMyInvitations_IncludesCounterpart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ona := env.newUser(t, "ona")
	jonas := env.newUser(t, "jonas")
	rasa := env.newUser(t, "rasa")

	_, err := env.invitations.Send(ctx, ona, SendInvitationRequest{ToUserID: jonas, Date: domain.ChristmasEve})
	require.NoError(t, err)
	_, err = env.invitations.Send(ctx, rasa, SendInvitationRequest{ToUserID: ona, Date: domain.ChristmasDay})
	require.NoError(t, err)

	mine, err := env.invitations.GetMyInvitations(ctx, ona)
	require.NoError(t, err)

	require.Len(t, mine.Sent, 1)
	require.Len(t, mine.Received, 1)
	require.NotNil(t, mine.Sent[0].Counterpart)
	require.NotNil(t, mine.Received[0].Counterpart)
	assert.Equal(t, "jonas", mine.Sent[0].Counterpart.FirstName)
	assert.Equal(t, "rasa", mine.Received[0].Counterpart.FirstName)
}

func TestGetMyInvitations_EmptyLists(t *testing.T) {
	env := newTestEnv(t)
	ona := env.newUser(t, "ona")

	mine, err := env.invitations.GetMyInvitations(context.Background(), ona)
	require.NoError(t, err)
	assert.NotNil(t, mine.Sent)
	assert.NotNil(t, mine.Received)
	assert.Empty(t, mine.Sent)
}
