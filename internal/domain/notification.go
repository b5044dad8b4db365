package domain

import "time"

// NotificationKind selects the email template.
type NotificationKind string

// Notification kinds.
const (
	NotifyInvitationReceived NotificationKind = "invitationReceived"
	NotifyInvitationAccepted NotificationKind = "invitationAccepted"
	NotifyInvitationDeclined NotificationKind = "invitationDeclined"
	NotifyNewMessage         NotificationKind = "newMessage"
)

// Valid reports whether k is a known kind.
func (k NotificationKind) Valid() bool {
	switch k {
	case NotifyInvitationReceived, NotifyInvitationAccepted, NotifyInvitationDeclined, NotifyNewMessage:
		return true
	default:
		return false
	}
}

// NotificationStatus is the delivery state of an outbox job.
type NotificationStatus string

// Notification statuses.
const (
	NotificationPending NotificationStatus = "pending"
	NotificationRunning NotificationStatus = "running"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// NotificationPayload is the interpolation data resolved when a job is enqueued.
type NotificationPayload struct {
	CounterpartName string      `json:"counterpart_name"`
	Date            HolidayDate `json:"date,omitempty"`
}

// NotificationJob is an outbox record written in the same transaction as
// the state change it reports.
type NotificationJob struct {
	Record
	Kind            NotificationKind    `json:"kind"`
	RecipientUserID string              `json:"recipient_user_id"`
	RecipientEmail  string              `json:"recipient_email"`
	Locale          Locale              `json:"locale"`
	Payload         NotificationPayload `json:"payload"`
	Status          NotificationStatus  `json:"status"`
	Attempts        int                 `json:"attempts"`
	LastError       string              `json:"last_error,omitempty"`
	NextAttemptAt   time.Time           `json:"next_attempt_at"`
	SentAt          *time.Time          `json:"sent_at,omitempty"`
}

// MarkRunning records a delivery attempt.
func (j *NotificationJob) MarkRunning(now time.Time) {
	j.Status = NotificationRunning
	j.Attempts++
	j.Touch(now)
}

// MarkSent transitions the job to sent.
func (j *NotificationJob) MarkSent(now time.Time) {
	j.Status = NotificationSent
	j.LastError = ""
	j.SentAt = &now
	j.Touch(now)
}

// MarkAttemptFailed records a failed attempt. The job goes back to pending
// with exponential backoff, or to failed once maxAttempts is used up.
func (j *NotificationJob) MarkAttemptFailed(err error, now time.Time, maxAttempts int, baseBackoff time.Duration) {
	j.LastError = err.Error()
	j.Touch(now)
	if j.Attempts >= maxAttempts {
		j.Status = NotificationFailed
		return
	}
	j.Status = NotificationPending
	j.NextAttemptAt = now.Add(Backoff(baseBackoff, j.Attempts))
}

// Backoff returns base doubled for every attempt after the first, capped at one hour.
func Backoff(base time.Duration, attempt int) time.Duration {
	const maxBackoff = time.Hour
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
