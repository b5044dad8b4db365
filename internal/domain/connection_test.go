package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func invitation(from, to string, status InvitationStatus, created time.Time, seq int64) *Invitation {
	return &Invitation{
		Record:     Record{ID: from + "-" + to, CreatedAt: created, UpdatedAt: created},
		Seq:        seq,
		FromUserID: from,
		ToUserID:   to,
		Date:       ChristmasEve,
		Status:     status,
	}
}

func TestDeriveConnectionStatus(t *testing.T) {
	now := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		viewer string
		other  string
		latest *Invitation
		want   ConnectionStatus
	}{
		{"self short-circuits", "a", "a", invitation("a", "b", InvitationPending, now, 1), ConnectionSelf},
		{"no history", "a", "b", nil, ConnectionNone},
		{"pending sent", "a", "b", invitation("a", "b", InvitationPending, now, 1), ConnectionPendingSent},
		{"pending received", "b", "a", invitation("a", "b", InvitationPending, now, 1), ConnectionPendingReceived},
		{"accepted seen by sender", "a", "b", invitation("a", "b", InvitationAccepted, now, 1), ConnectionMatched},
		{"accepted seen by recipient", "b", "a", invitation("a", "b", InvitationAccepted, now, 1), ConnectionMatched},
		{"declined seen by sender", "a", "b", invitation("a", "b", InvitationDeclined, now, 1), ConnectionDeclinedByThem},
		{"declined seen by recipient", "b", "a", invitation("a", "b", InvitationDeclined, now, 1), ConnectionDeclinedByMe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveConnectionStatus(tt.viewer, tt.other, tt.latest))
		})
	}
}

func TestLatestInvitation_TieBrokenBySeq(t *testing.T) {
	now := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)

	older := invitation("a", "b", InvitationDeclined, now.Add(-time.Hour), 1)
	first := invitation("b", "a", InvitationDeclined, now, 2)
	second := invitation("a", "b", InvitationPending, now, 3)

	assert.Same(t, second, LatestInvitation([]*Invitation{first, second, older}))
	assert.Same(t, second, LatestInvitation([]*Invitation{second, older, first}))
	assert.Nil(t, LatestInvitation(nil))
}

func TestHostOf(t *testing.T) {
	inv := invitation("sender", "recipient", InvitationAccepted, time.Now(), 1)
	host := &Profile{Role: RoleHost}
	guest := &Profile{Role: RoleGuest}
	both := &Profile{Role: RoleBoth}

	tests := []struct {
		name     string
		from, to *Profile
		want     string
	}{
		{"guest invites host", guest, host, "recipient"},
		{"host invites guest", host, guest, "sender"},
		{"both invites guest", both, guest, "sender"},
		{"guest invites both", guest, both, "recipient"},
		{"both sides can host", both, host, "sender"},
		{"neither can host", guest, guest, "sender"},
		{"missing profiles", nil, nil, "sender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HostOf(inv, tt.from, tt.to))
		})
	}
}
