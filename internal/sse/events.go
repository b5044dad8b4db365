// Package sse pushes live invitation, message and badge updates to browsers
// over Server-Sent Events.
package sse

import (
	"time"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
)

// Streams are one-way. Everything a client changes goes through the REST API,
// and the stream only tells it to refresh.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventConnected is the first event on every stream.
	EventConnected EventType = "connected"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"

	// EventInvitationReceived tells the recipient a new invitation arrived.
	EventInvitationReceived EventType = "invitation.received"
	// EventInvitationAccepted tells the sender their invitation was accepted.
	EventInvitationAccepted EventType = "invitation.accepted"
	// EventInvitationDeclined tells the sender their invitation was declined.
	EventInvitationDeclined EventType = "invitation.declined"

	// EventMessageNew tells the receiver a message arrived.
	EventMessageNew EventType = "message.new"
	// EventMessagesRead tells the sender the receiver has read the conversation.
	EventMessagesRead EventType = "message.read"

	// EventBadgeCounts carries fresh navigation badge numbers.
	EventBadgeCounts EventType = "badge.counts"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// UserID addresses the event. Empty means every connected client.
	UserID string `json:"-"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// InvitationEventData is the data payload for invitation events.
type InvitationEventData struct {
	Invitation  *domain.Invitation `json:"invitation"`
	Counterpart string             `json:"counterpart_name,omitempty"`
}

// MessageEventData is the data payload for message.new events.
type MessageEventData struct {
	Message *domain.Message `json:"message"`
}

// MessagesReadEventData is the data payload for message.read events.
type MessagesReadEventData struct {
	ReaderID string    `json:"reader_id"`
	Count    int       `json:"count"`
	ReadAt   time.Time `json:"read_at"`
}

// BadgeCountsEventData is the data payload for badge.counts events.
type BadgeCountsEventData struct {
	PendingInvitations int `json:"pending_invitations"`
	UnreadMessages     int `json:"unread_messages"`
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: now},
		Timestamp: now,
	}
}

// NewInvitationReceivedEvent creates an invitation.received event for the recipient.
func NewInvitationReceivedEvent(inv *domain.Invitation, senderName string) Event {
	return Event{
		Type:      EventInvitationReceived,
		Data:      InvitationEventData{Invitation: inv, Counterpart: senderName},
		Timestamp: time.Now(),
		UserID:    inv.ToUserID,
	}
}

// NewInvitationResolvedEvent creates an invitation.accepted or
// invitation.declined event for the sender.
func NewInvitationResolvedEvent(inv *domain.Invitation, recipientName string) Event {
	eventType := EventInvitationDeclined
	if inv.Status == domain.InvitationAccepted {
		eventType = EventInvitationAccepted
	}
	return Event{
		Type:      eventType,
		Data:      InvitationEventData{Invitation: inv, Counterpart: recipientName},
		Timestamp: time.Now(),
		UserID:    inv.FromUserID,
	}
}

// NewMessageEvent creates a message.new event for the receiver.
func NewMessageEvent(msg *domain.Message) Event {
	return Event{
		Type:      EventMessageNew,
		Data:      MessageEventData{Message: msg},
		Timestamp: time.Now(),
		UserID:    msg.ReceiverID,
	}
}

// NewMessagesReadEvent creates a message.read event for the other party.
func NewMessagesReadEvent(senderID, readerID string, count int, at time.Time) Event {
	return Event{
		Type:      EventMessagesRead,
		Data:      MessagesReadEventData{ReaderID: readerID, Count: count, ReadAt: at},
		Timestamp: time.Now(),
		UserID:    senderID,
	}
}

// NewBadgeCountsEvent creates a badge.counts event.
func NewBadgeCountsEvent(userID string, pending, unread int) Event {
	return Event{
		Type:      EventBadgeCounts,
		Data:      BadgeCountsEventData{PendingInvitations: pending, UnreadMessages: unread},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}
