package domain

import (
	"slices"
	"time"
)

// Locale is the language notification emails are rendered in.
type Locale string

// Supported locales.
const (
	LocaleLithuanian Locale = "lt"
	LocaleEnglish    Locale = "en"
)

// Valid reports whether l is a supported locale.
func (l Locale) Valid() bool {
	return l == LocaleLithuanian || l == LocaleEnglish
}

// NotificationPrefs controls which emails a user receives.
// Every switch defaults to on.
type NotificationPrefs struct {
	Email        bool `json:"email"`
	OnInvitation bool `json:"on_invitation"`
	OnMatch      bool `json:"on_match"`
	OnMessage    bool `json:"on_message"`
}

// DefaultNotificationPrefs returns preferences with everything enabled.
func DefaultNotificationPrefs() NotificationPrefs {
	return NotificationPrefs{Email: true, OnInvitation: true, OnMatch: true, OnMessage: true}
}

// Allows reports whether an email of kind may be sent under these preferences.
func (p NotificationPrefs) Allows(kind NotificationKind) bool {
	if !p.Email {
		return false
	}
	switch kind {
	case NotifyInvitationReceived, NotifyInvitationDeclined:
		return p.OnInvitation
	case NotifyInvitationAccepted:
		return p.OnMatch
	case NotifyNewMessage:
		return p.OnMessage
	default:
		return false
	}
}

// Profile is the public face of a user. It is owned 1:1 by a User and
// mutated only by that user.
type Profile struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    string    `json:"user_id"`

	Role      Role   `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"` // contact detail
	Age       int    `json:"age,omitempty"`
	City      City   `json:"city"`
	Bio       string `json:"bio"`
	PhotoURL  string `json:"photo_url,omitempty"`

	Phone   string `json:"phone,omitempty"`   // contact detail
	Address string `json:"address,omitempty"` // contact detail

	Languages      []Language    `json:"languages"`
	AvailableDates []HolidayDate `json:"available_dates"`
	DietaryInfo    []string      `json:"dietary_info,omitempty"`

	HostingStatus Capability `json:"hosting_status"`
	GuestStatus   Capability `json:"guest_status"`
	Concept       Concept    `json:"concept,omitempty"`
	Capacity      int        `json:"capacity,omitempty"`
	GuestAgeMin   int        `json:"guest_age_min,omitempty"`
	GuestAgeMax   int        `json:"guest_age_max,omitempty"`
	Amenities     []string   `json:"amenities,omitempty"`
	HouseRules    []string   `json:"house_rules,omitempty"`
	Vibes         []string   `json:"vibes,omitempty"`

	SmokingAllowed  bool `json:"smoking_allowed"`
	DrinkingAllowed bool `json:"drinking_allowed"`
	PetsAllowed     bool `json:"pets_allowed"`
	HasPets         bool `json:"has_pets"`

	Verified   bool       `json:"verified"`
	Visible    bool       `json:"visible"`
	LastActive *time.Time `json:"last_active,omitempty"`

	Locale        Locale            `json:"locale"`
	Notifications NotificationPrefs `json:"notifications"`
}

// DisplayName is the name shown to other users.
func (p *Profile) DisplayName() string {
	return p.FirstName
}

// IsComplete reports whether the profile may enter the matching surface.
func (p *Profile) IsComplete() bool {
	return len(p.AvailableDates) > 0 && len(p.Languages) > 0
}

// CanHost reports whether the owner is able to host.
func (p *Profile) CanHost() bool {
	return p.Role.CanHost()
}

// AvailableOn reports whether the owner listed date.
func (p *Profile) AvailableOn(date HolidayDate) bool {
	return slices.Contains(p.AvailableDates, date)
}

// Speaks reports whether the owner speaks lang.
func (p *Profile) Speaks(lang Language) bool {
	return slices.Contains(p.Languages, lang)
}

// WithoutContact returns a copy with contact details cleared. Used when the
// viewer is neither the owner nor matched with the owner.
func (p *Profile) WithoutContact() *Profile {
	cp := *p
	cp.LastName = ""
	cp.Phone = ""
	cp.Address = ""
	return &cp
}

// Summary returns the denormalized view joined into connection and
// conversation listings.
func (p *Profile) Summary() ProfileSummary {
	return ProfileSummary{
		UserID:    p.UserID,
		FirstName: p.FirstName,
		PhotoURL:  p.PhotoURL,
		City:      p.City,
		Role:      p.Role,
		Capacity:  p.Capacity,
		Verified:  p.Verified,
	}
}

// ProfileSummary is the short form of a profile.
type ProfileSummary struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	PhotoURL  string `json:"photo_url,omitempty"`
	City      City   `json:"city"`
	Role      Role   `json:"role"`
	Capacity  int    `json:"capacity,omitempty"`
	Verified  bool   `json:"verified"`
}

// ProfileFilter narrows profile browsing. Zero values match everything.
type ProfileFilter struct {
	City     City
	Role     Role
	Language Language
	Date     HolidayDate
	Query    string // free text over name, bio and tags
	Limit    int
	Offset   int
}

// Matches reports whether p passes every structured criterion of f.
// A role filter also accepts profiles whose role is "both".
func (f ProfileFilter) Matches(p *Profile) bool {
	if !p.Visible {
		return false
	}
	if f.City != "" && p.City != f.City {
		return false
	}
	if f.Role != "" && p.Role != f.Role && p.Role != RoleBoth {
		return false
	}
	if f.Language != "" && !p.Speaks(f.Language) {
		return false
	}
	if f.Date != "" && !p.AvailableOn(f.Date) {
		return false
	}
	return true
}
