// Package service implements the matching core: invitations, connection
// status, matches, messaging and the notification outbox.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	domainerrors "github.com/nesvesk-vienas/nesvesk-server/internal/errors"
	"github.com/nesvesk-vienas/nesvesk-server/internal/id"
	"github.com/nesvesk-vienas/nesvesk-server/internal/metrics"
	"github.com/nesvesk-vienas/nesvesk-server/internal/notify"
	"github.com/nesvesk-vienas/nesvesk-server/internal/sse"
	"github.com/nesvesk-vienas/nesvesk-server/internal/store"
)

// JobNotifier wakes the outbox workers after a job was enqueued.
type JobNotifier interface {
	NotifyNewJob()
}

// Effects bundles the channels a committed state change is reported on.
// Every field is optional.
type Effects struct {
	Events        *sse.Manager
	Outbox        JobNotifier
	Metrics       *metrics.Metrics
	DefaultLocale domain.Locale
}

func (e *Effects) emit(event sse.Event) {
	if e == nil || e.Events == nil {
		return
	}
	e.Events.Emit(event)
}

// emitBadges pushes fresh badge numbers to userID. Failures only cost a
// stale badge.
func (e *Effects) emitBadges(ctx context.Context, s store.Store, userID string) {
	if e == nil || e.Events == nil {
		return
	}
	pending, err := s.CountPendingReceived(ctx, userID)
	if err != nil {
		return
	}
	unread, err := s.CountUnread(ctx, userID)
	if err != nil {
		return
	}
	e.Events.Emit(sse.NewBadgeCountsEvent(userID, pending, unread))
}

func (e *Effects) wake() {
	if e == nil || e.Outbox == nil {
		return
	}
	e.Outbox.NotifyNewJob()
}

func (e *Effects) metrics() *metrics.Metrics {
	if e == nil {
		return nil
	}
	return e.Metrics
}

func (e *Effects) defaultLocale() domain.Locale {
	if e == nil {
		return domain.LocaleLithuanian
	}
	return e.DefaultLocale
}

// party is a user joined with their profile, which may be missing.
type party struct {
	user    *domain.User
	profile *domain.Profile
}

func (p party) displayName() string {
	if p.profile != nil && p.profile.FirstName != "" {
		return p.profile.DisplayName()
	}
	if p.user != nil && p.user.Name != "" {
		return p.user.Name
	}
	return "Nešvęsk Vienas"
}

func (p party) prefs() domain.NotificationPrefs {
	if p.profile == nil {
		return domain.DefaultNotificationPrefs()
	}
	return p.profile.Notifications
}

// loadParty reads a user and their profile. A missing profile is not an error.
func loadParty(ctx context.Context, s store.Store, userID string) (party, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return party{}, err
	}
	profile, err := s.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return party{}, err
	}
	return party{user: user, profile: profile}, nil
}

// newNotificationJob builds the outbox job for recipient, or returns nil when
// the recipient has no address or opted out of kind.
func (e *Effects) newNotificationJob(kind domain.NotificationKind, recipient, counterpart party, date domain.HolidayDate, now time.Time) (*domain.NotificationJob, error) {
	if recipient.user == nil || !recipient.user.HasEmail() {
		return nil, nil
	}
	if !recipient.prefs().Allows(kind) {
		return nil, nil
	}

	jobID, err := id.Generate(id.PrefixNotification)
	if err != nil {
		return nil, err
	}

	var preferred domain.Locale
	if recipient.profile != nil {
		preferred = recipient.profile.Locale
	}

	job := &domain.NotificationJob{
		Record:          domain.Record{ID: jobID},
		Kind:            kind,
		RecipientUserID: recipient.user.ID,
		RecipientEmail:  recipient.user.Email,
		Locale:          notify.MatchLocale(preferred, "", e.defaultLocale()),
		Payload: domain.NotificationPayload{
			CounterpartName: counterpart.displayName(),
			Date:            date,
		},
		Status:        domain.NotificationPending,
		NextAttemptAt: now,
	}
	job.InitTimestamps(now)
	return job, nil
}

// internal wraps an unexpected store failure.
func internal(logger *slog.Logger, err error, msg string) error {
	logger.Error(msg, slog.String("error", err.Error()))
	return domainerrors.Wrap(err, domainerrors.CodeInternal, msg)
}
