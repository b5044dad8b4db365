package sse

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev := <-c.EventChan:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case ev := <-c.EventChan:
		t.Fatalf("unexpected event %s", ev.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestManager_EmitToUserOnlyReachesThatUser(t *testing.T) {
	m := newTestManager(t)

	alice, err := m.Connect("usr-alice")
	require.NoError(t, err)
	bob, err := m.Connect("usr-bob")
	require.NoError(t, err)

	inv := &domain.Invitation{FromUserID: "usr-bob", ToUserID: "usr-alice", Status: domain.InvitationPending}
	m.Emit(NewInvitationReceivedEvent(inv, "Bob"))

	ev := receive(t, alice)
	assert.Equal(t, EventInvitationReceived, ev.Type)
	data, ok := ev.Data.(InvitationEventData)
	require.True(t, ok)
	assert.Equal(t, "Bob", data.Counterpart)

	assertNoEvent(t, bob)
}

func TestManager_BroadcastWithoutUser(t *testing.T) {
	m := newTestManager(t)

	a, _ := m.Connect("usr-a")
	b, _ := m.Connect("usr-b")

	m.Emit(Event{Type: EventBadgeCounts, Timestamp: time.Now()})

	assert.Equal(t, EventBadgeCounts, receive(t, a).Type)
	assert.Equal(t, EventBadgeCounts, receive(t, b).Type)
}

func TestManager_ConnectDisconnect(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))

	c1, err := m.Connect("usr-a")
	require.NoError(t, err)
	_, err = m.Connect("usr-a")
	require.NoError(t, err)

	assert.Equal(t, 2, m.ClientCount())
	assert.True(t, m.IsOnline("usr-a"))
	assert.False(t, m.IsOnline("usr-b"))

	m.Disconnect(c1.ID)
	m.Disconnect(c1.ID) // second call is a no-op
	assert.Equal(t, 1, m.ClientCount())

	_, open := <-c1.Done
	assert.False(t, open)
}

func TestManager_ResolvedEventTargetsSender(t *testing.T) {
	accepted := &domain.Invitation{FromUserID: "usr-a", ToUserID: "usr-b", Status: domain.InvitationAccepted}
	declined := &domain.Invitation{FromUserID: "usr-a", ToUserID: "usr-b", Status: domain.InvitationDeclined}

	ev := NewInvitationResolvedEvent(accepted, "B")
	assert.Equal(t, EventInvitationAccepted, ev.Type)
	assert.Equal(t, "usr-a", ev.UserID)

	assert.Equal(t, EventInvitationDeclined, NewInvitationResolvedEvent(declined, "B").Type)
	assert.Equal(t, "usr-b", NewMessageEvent(&domain.Message{SenderID: "usr-a", ReceiverID: "usr-b"}).UserID)
}

func TestManager_EmitAfterShutdownIsDropped(t *testing.T) {
	m := newTestManager(t)
	c, _ := m.Connect("usr-a")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))

	assert.NotPanics(t, func() { m.EmitToUser("usr-a", NewBadgeCountsEvent("usr-a", 1, 2)) })
	assert.Equal(t, 0, m.ClientCount())

	_, open := <-c.Done
	assert.False(t, open)
}

func TestHandler_StreamsEventsForUser(t *testing.T) {
	m := newTestManager(t)
	h := NewHandler(m, func(r *http.Request) (string, error) {
		return r.Header.Get("X-User"), nil
	}, slog.New(slog.DiscardHandler))

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("X-User", "usr-a")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		_, err = reader.ReadString('\n') // data
		require.NoError(t, err)
		_, err = reader.ReadString('\n') // blank
		require.NoError(t, err)
		return strings.TrimSpace(strings.TrimPrefix(line, "event:"))
	}

	assert.Equal(t, "connected", readEvent())

	require.Eventually(t, func() bool { return m.IsOnline("usr-a") }, time.Second, 10*time.Millisecond)
	m.EmitToUser("usr-a", NewBadgeCountsEvent("usr-a", 3, 1))

	assert.Equal(t, "badge.counts", readEvent())
}

func TestHandler_RejectsAnonymous(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	h := NewHandler(m, func(*http.Request) (string, error) {
		return "", errors.New("no token")
	}, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, m.ClientCount())
}
