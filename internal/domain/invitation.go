package domain

import "time"

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

// Invitation statuses. Accepted and declined are terminal.
const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation is a directed request from one user to another to celebrate
// together on a specific date. Only the recipient may resolve it.
type Invitation struct {
	Record
	Seq         int64            `json:"-"` // store-assigned creation order
	FromUserID  string           `json:"from_user_id"`
	ToUserID    string           `json:"to_user_id"`
	Date        HolidayDate      `json:"date"`
	Status      InvitationStatus `json:"status"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

// IsPending reports whether the invitation still awaits a response.
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationPending
}

// Involves reports whether userID is either party.
func (i *Invitation) Involves(userID string) bool {
	return i.FromUserID == userID || i.ToUserID == userID
}

// Counterpart returns the other party from userID's point of view.
func (i *Invitation) Counterpart(userID string) string {
	if i.FromUserID == userID {
		return i.ToUserID
	}
	return i.FromUserID
}

// Resolve moves a pending invitation to accepted or declined.
func (i *Invitation) Resolve(accept bool, now time.Time) {
	if accept {
		i.Status = InvitationAccepted
	} else {
		i.Status = InvitationDeclined
	}
	i.RespondedAt = &now
	i.Touch(now)
}

// NewerThan reports whether i was created after other.
// Creation time decides; equal times fall back to store order.
func (i *Invitation) NewerThan(other *Invitation) bool {
	if !i.CreatedAt.Equal(other.CreatedAt) {
		return i.CreatedAt.After(other.CreatedAt)
	}
	return i.Seq > other.Seq
}

// PairKey orders two user IDs so an unordered pair has one canonical form.
func PairKey(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}

// InvitationView is an invitation joined with the counterpart's profile.
type InvitationView struct {
	Invitation
	Counterpart *ProfileSummary `json:"counterpart,omitempty"`
}

// MyInvitations groups a user's invitations by direction.
type MyInvitations struct {
	Sent     []InvitationView `json:"sent"`
	Received []InvitationView `json:"received"`
}
