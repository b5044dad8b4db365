package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfile_IsComplete(t *testing.T) {
	p := &Profile{}
	assert.False(t, p.IsComplete())

	p.Languages = []Language{Lithuanian}
	assert.False(t, p.IsComplete())

	p.AvailableDates = []HolidayDate{NewYearsEve}
	assert.True(t, p.IsComplete())
}

func TestProfile_WithoutContact(t *testing.T) {
	p := &Profile{UserID: "usr-1", FirstName: "Ona", LastName: "Petraitė", Phone: "+370", Address: "Gedimino pr. 1"}

	public := p.WithoutContact()

	assert.Equal(t, "Ona", public.FirstName)
	assert.Empty(t, public.LastName)
	assert.Empty(t, public.Phone)
	assert.Empty(t, public.Address)
	assert.Equal(t, "Petraitė", p.LastName, "original must be untouched")
}

func TestProfileFilter_Matches(t *testing.T) {
	p := &Profile{
		Role:           RoleBoth,
		City:           Kaunas,
		Languages:      []Language{Lithuanian, English},
		AvailableDates: []HolidayDate{ChristmasEve},
		Visible:        true,
	}

	assert.True(t, ProfileFilter{}.Matches(p))
	assert.True(t, ProfileFilter{Role: RoleHost}.Matches(p), "both matches any role")
	assert.True(t, ProfileFilter{City: Kaunas, Language: English, Date: ChristmasEve}.Matches(p))
	assert.False(t, ProfileFilter{City: Vilnius}.Matches(p))
	assert.False(t, ProfileFilter{Language: Russian}.Matches(p))
	assert.False(t, ProfileFilter{Date: NewYearsEve}.Matches(p))

	guest := &Profile{Role: RoleGuest, Visible: true}
	assert.False(t, ProfileFilter{Role: RoleHost}.Matches(guest))

	hidden := &Profile{Role: RoleHost}
	assert.False(t, ProfileFilter{}.Matches(hidden))
}

func TestNotificationPrefs_Allows(t *testing.T) {
	all := DefaultNotificationPrefs()
	for _, k := range []NotificationKind{NotifyInvitationReceived, NotifyInvitationAccepted, NotifyInvitationDeclined, NotifyNewMessage} {
		assert.True(t, all.Allows(k), k)
	}

	off := all
	off.Email = false
	assert.False(t, off.Allows(NotifyNewMessage))

	noMatch := all
	noMatch.OnMatch = false
	assert.False(t, noMatch.Allows(NotifyInvitationAccepted))
	assert.True(t, noMatch.Allows(NotifyInvitationDeclined))

	noInvites := all
	noInvites.OnInvitation = false
	assert.False(t, noInvites.Allows(NotifyInvitationReceived))
	assert.False(t, noInvites.Allows(NotifyInvitationDeclined))
	assert.True(t, noInvites.Allows(NotifyInvitationAccepted))
}
