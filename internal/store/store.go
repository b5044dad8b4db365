// Package store defines the persistence interface for the matching core.
package store

import (
	"context"
	"time"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
)

// Store defines the interface for all persistence operations.
//
// Writes that report a state change to another user take the outbox job as
// an argument so both rows commit in one transaction. A nil job means the
// recipient opted out or has no email.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	UpsertUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)

	// Profiles
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	GetProfilesByIDs(ctx context.Context, userIDs []string) (map[string]*domain.Profile, error)
	SaveProfile(ctx context.Context, profile *domain.Profile) error
	ListVisibleProfiles(ctx context.Context) ([]*domain.Profile, error)
	TouchLastActive(ctx context.Context, userID string, at time.Time) error

	// Invitations
	CreateInvitation(ctx context.Context, inv *domain.Invitation, job *domain.NotificationJob) error
	GetInvitation(ctx context.Context, id string) (*domain.Invitation, error)
	ResolveInvitation(ctx context.Context, inv *domain.Invitation, job *domain.NotificationJob) error
	ListInvitationsBetween(ctx context.Context, a, b string) ([]*domain.Invitation, error)
	HasAcceptedInvitation(ctx context.Context, a, b string) (bool, error)
	ListInvitationsFrom(ctx context.Context, userID string) ([]*domain.Invitation, error)
	ListInvitationsTo(ctx context.Context, userID string) ([]*domain.Invitation, error)
	ListAcceptedInvitations(ctx context.Context, userID string) ([]*domain.Invitation, error)
	CountPendingReceived(ctx context.Context, userID string) (int, error)

	// Messages
	CreateMessage(ctx context.Context, msg *domain.Message, job *domain.NotificationJob) error
	ListConversation(ctx context.Context, a, b string) ([]*domain.Message, error)
	MarkConversationRead(ctx context.Context, readerID, otherID string, at time.Time) (int, error)
	MarkMessagesRead(ctx context.Context, ids []string, readerID string, at time.Time) (int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	ListConversationHeads(ctx context.Context, userID string) ([]*domain.ConversationHead, error)
	LatestEventCard(ctx context.Context, a, b string) (*domain.EventCard, error)

	// Notification outbox
	ClaimNotification(ctx context.Context, now time.Time) (*domain.NotificationJob, error)
	UpdateNotification(ctx context.Context, job *domain.NotificationJob) error
	ResetRunningNotifications(ctx context.Context) (int, error)
	ListNotificationsFor(ctx context.Context, userID string) ([]*domain.NotificationJob, error)
	CountNotificationsByStatus(ctx context.Context) (map[domain.NotificationStatus]int, error)
}
