package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
)

func TestListMyConnections_SplitsHostingAndAttending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	host := env.newUserWithRole(t, "ona", domain.RoleHost)
	guest := env.newUser(t, "jonas")
	otherHost := env.newUserWithRole(t, "rasa", domain.RoleHost)

	// The guest invites the host; the host still hosts.
	env.match(t, guest, host)
	// Both can host, so the sender hosts.
	env.match(t, host, otherHost)

	_, err := env.messages.Send(ctx, host, guest, SendMessageRequest{
		EventCard: &EventCardRequest{Date: domain.ChristmasEve, Address: "Pilies g. 10"},
	})
	require.NoError(t, err)

	conns, err := env.matches.ListMyConnections(ctx, host)
	require.NoError(t, err)
	require.Len(t, conns.Hosting, 2)
	assert.Empty(t, conns.Attending)

	byGuest := map[string]domain.Connection{}
	for _, c := range conns.Hosting {
		assert.Equal(t, host, c.HostID)
		byGuest[c.GuestID] = c
	}
	require.Contains(t, byGuest, guest)
	require.Contains(t, byGuest, otherHost)

	withGuest := byGuest[guest]
	require.NotNil(t, withGuest.Counterpart)
	assert.Equal(t, "jonas", withGuest.Counterpart.FirstName)
	require.NotNil(t, withGuest.LatestEvent)
	assert.Equal(t, "Pilies g. 10", withGuest.LatestEvent.Address)
	assert.Nil(t, byGuest[otherHost].LatestEvent)

	guestConns, err := env.matches.ListMyConnections(ctx, guest)
	require.NoError(t, err)
	assert.Empty(t, guestConns.Hosting)
	require.Len(t, guestConns.Attending, 1)
	assert.Equal(t, host, guestConns.Attending[0].HostID)

	attending, err := env.matches.ListMyConnections(ctx, otherHost)
	require.NoError(t, err)
	require.Len(t, attending.Attending, 1)
	assert.Equal(t, host, attending.Attending[0].HostID)
}

func TestListMyConnections_IgnoresPendingAndDeclined(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ona := env.newUser(t, "ona")
	jonas := env.newUser(t, "jonas")
	rasa := env.newUser(t, "rasa")

	_, err := env.invitations.Send(ctx, ona, SendInvitationRequest{ToUserID: jonas, Date: domain.ChristmasEve})
	require.NoError(t, err)
	declined, err := env.invitations.Send(ctx, rasa, SendInvitationRequest{ToUserID: ona, Date: domain.ChristmasDay})
	require.NoError(t, err)
	_, err = env.invitations.Respond(ctx, declined.ID, ona, false)
	require.NoError(t, err)

	conns, err := env.matches.ListMyConnections(ctx, ona)
	require.NoError(t, err)
	assert.NotNil(t, conns.Hosting)
	assert.NotNil(t, conns.Attending)
	assert.Empty(t, conns.Hosting)
	assert.Empty(t, conns.Attending)
}

func TestAreMatched_SelfIsNeverMatched(t *testing.T) {
	env := newTestEnv(t)
	ona := env.newUser(t, "ona")

	matched, err := env.matches.AreMatched(context.Background(), ona, ona)
	require.NoError(t, err)
	assert.False(t, matched)
}
