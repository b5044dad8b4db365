package domain

import (
	"strings"
	"time"
)

// EventCard is a structured message payload with the logistics of a
// confirmed celebration.
type EventCard struct {
	Date    HolidayDate `json:"date"`
	Address string      `json:"address,omitempty"`
	Phone   string      `json:"phone,omitempty"`
	Note    string      `json:"note,omitempty"`
}

// Message belongs to the conversation of the unordered pair
// {SenderID, ReceiverID}. Only the read flag ever changes.
type Message struct {
	ID         string     `json:"id"`
	Seq        int64      `json:"-"` // store-assigned total order
	SenderID   string     `json:"sender_id"`
	ReceiverID string     `json:"receiver_id"`
	Content    string     `json:"content,omitempty"`
	EventCard  *EventCard `json:"event_card,omitempty"`
	Read       bool       `json:"read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// HasPayload reports whether the message carries text or an event card.
func (m *Message) HasPayload() bool {
	return strings.TrimSpace(m.Content) != "" || m.EventCard != nil
}

// IsEventCard reports whether the message carries an event card.
func (m *Message) IsEventCard() bool {
	return m.EventCard != nil
}

// ConversationHead is the newest message of one conversation plus how many
// of its messages the viewer has not read.
type ConversationHead struct {
	Last   *Message
	Unread int
}

// Partner returns the other participant of the conversation.
func (h *ConversationHead) Partner(viewerID string) string {
	if h.Last.SenderID == viewerID {
		return h.Last.ReceiverID
	}
	return h.Last.SenderID
}

// ConversationSummary is one inbox row.
type ConversationSummary struct {
	PartnerID   string          `json:"partner_id"`
	Partner     *ProfileSummary `json:"partner,omitempty"`
	LastMessage *Message        `json:"last_message"`
	UnreadCount int             `json:"unread_count"`
	IsHost      bool            `json:"is_host"`
}
