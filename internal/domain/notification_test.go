package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	base := 30 * time.Second

	assert.Equal(t, 30*time.Second, Backoff(base, 1))
	assert.Equal(t, time.Minute, Backoff(base, 2))
	assert.Equal(t, 2*time.Minute, Backoff(base, 3))
	assert.Equal(t, time.Hour, Backoff(base, 20))
}

func TestNotificationJob_Lifecycle(t *testing.T) {
	now := time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC)
	job := &NotificationJob{Kind: NotifyNewMessage, Status: NotificationPending}

	job.MarkRunning(now)
	assert.Equal(t, NotificationRunning, job.Status)
	assert.Equal(t, 1, job.Attempts)

	job.MarkAttemptFailed(errors.New("provider 503"), now, 3, time.Minute)
	assert.Equal(t, NotificationPending, job.Status)
	assert.Equal(t, "provider 503", job.LastError)
	assert.Equal(t, now.Add(time.Minute), job.NextAttemptAt)

	job.MarkRunning(now)
	job.MarkSent(now)
	assert.Equal(t, NotificationSent, job.Status)
	assert.Empty(t, job.LastError)
	assert.NotNil(t, job.SentAt)
}

func TestNotificationJob_FailsAfterMaxAttempts(t *testing.T) {
	now := time.Now()
	job := &NotificationJob{Status: NotificationPending}

	for range 3 {
		job.MarkRunning(now)
		job.MarkAttemptFailed(errors.New("boom"), now, 3, time.Second)
	}

	assert.Equal(t, NotificationFailed, job.Status)
	assert.Equal(t, 3, job.Attempts)
}

func TestMessage_HasPayload(t *testing.T) {
	assert.False(t, (&Message{}).HasPayload())
	assert.False(t, (&Message{Content: "   "}).HasPayload())
	assert.True(t, (&Message{Content: "labas"}).HasPayload())
	assert.True(t, (&Message{EventCard: &EventCard{Date: NewYearsEve}}).HasPayload())
}
