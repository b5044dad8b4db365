package domain

// ConnectionStatus is the viewer-relative relationship with another user.
type ConnectionStatus string

// Connection statuses.
const (
	ConnectionSelf            ConnectionStatus = "self"
	ConnectionMatched         ConnectionStatus = "matched"
	ConnectionPendingSent     ConnectionStatus = "pending_sent"
	ConnectionPendingReceived ConnectionStatus = "pending_received"
	ConnectionDeclinedByMe    ConnectionStatus = "declined_by_me"
	ConnectionDeclinedByThem  ConnectionStatus = "declined_by_them"
	ConnectionNone            ConnectionStatus = "none"
)

// DeriveConnectionStatus maps the most recent invitation between viewer and
// other to a status. latest may be nil when the pair has no history.
func DeriveConnectionStatus(viewerID, otherID string, latest *Invitation) ConnectionStatus {
	if viewerID == otherID {
		return ConnectionSelf
	}
	if latest == nil {
		return ConnectionNone
	}

	sentByViewer := latest.FromUserID == viewerID
	switch latest.Status {
	case InvitationAccepted:
		return ConnectionMatched
	case InvitationPending:
		if sentByViewer {
			return ConnectionPendingSent
		}
		return ConnectionPendingReceived
	case InvitationDeclined:
		// The recipient is the one who declines.
		if sentByViewer {
			return ConnectionDeclinedByThem
		}
		return ConnectionDeclinedByMe
	default:
		return ConnectionNone
	}
}

// LatestInvitation returns the most recent invitation of invs, or nil.
func LatestInvitation(invs []*Invitation) *Invitation {
	var latest *Invitation
	for _, inv := range invs {
		if latest == nil || inv.NewerThan(latest) {
			latest = inv
		}
	}
	return latest
}

// ConnectionInfo reports both views of a pair's relationship.
// Status follows the most recent invitation. Matched is sticky: it stays true
// once any invitation between the pair was accepted, even if a later one was
// declined or is pending.
type ConnectionInfo struct {
	Status       ConnectionStatus `json:"status"`
	Matched      bool             `json:"matched"`
	InvitationID string           `json:"invitation_id,omitempty"`
	Date         HolidayDate      `json:"date,omitempty"`
}

// Connection is one accepted invitation seen from a participant.
type Connection struct {
	InvitationID string          `json:"invitation_id"`
	Date         HolidayDate     `json:"date"`
	HostID       string          `json:"host_id"`
	GuestID      string          `json:"guest_id"`
	Counterpart  *ProfileSummary `json:"counterpart,omitempty"`
	LatestEvent  *EventCard      `json:"latest_event,omitempty"`
}

// Connections splits a user's matches by the part they play.
type Connections struct {
	Hosting   []Connection `json:"hosting"`
	Attending []Connection `json:"attending"`
}

// HostOf decides who hosts an accepted invitation. When exactly one side can
// host, that side hosts. Otherwise the sender is treated as the host.
func HostOf(inv *Invitation, from, to *Profile) string {
	fromHosts := from != nil && from.CanHost()
	toHosts := to != nil && to.CanHost()
	if toHosts && !fromHosts {
		return inv.ToUserID
	}
	return inv.FromUserID
}
