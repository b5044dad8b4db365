package validation_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	domainerrors "github.com/nesvesk-vienas/nesvesk-server/internal/errors"
	"github.com/nesvesk-vienas/nesvesk-server/internal/validation"
)

type inviteRequest struct {
	ToUserID string             `json:"to_user_id" validate:"required"`
	Date     domain.HolidayDate `json:"date" validate:"required,holidaydate"`
}

type profileRequest struct {
	FirstName      string               `json:"first_name" validate:"required,max=50"`
	Role           domain.Role          `json:"role" validate:"required,role"`
	City           domain.City          `json:"city" validate:"required,city"`
	Languages      []domain.Language    `json:"languages" validate:"required,min=1,dive,language"`
	AvailableDates []domain.HolidayDate `json:"available_dates" validate:"required,min=1,dive,holidaydate"`
	Concept        domain.Concept       `json:"concept" validate:"concept"`
	Locale         domain.Locale        `json:"locale,omitempty" validate:"omitempty,locale"`
}

func validProfile() profileRequest {
	return profileRequest{
		FirstName:      "Ona",
		Role:           domain.RoleBoth,
		City:           domain.Klaipeda,
		Languages:      []domain.Language{domain.Lithuanian},
		AvailableDates: []domain.HolidayDate{domain.ChristmasDay},
	}
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(inviteRequest{ToUserID: "usr-1", Date: domain.NewYearsEve}))
	assert.NoError(t, v.Validate(validProfile()))
}

func TestValidator_DomainTags(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name   string
		mutate func(*profileRequest)
		field  string
	}{
		{"unknown role", func(p *profileRequest) { p.Role = "admin" }, "role"},
		{"unknown city", func(p *profileRequest) { p.City = "Riga" }, "city"},
		{"no languages", func(p *profileRequest) { p.Languages = nil }, "languages"},
		{"unknown language", func(p *profileRequest) { p.Languages = []domain.Language{"Klingon"} }, "languages[0]"},
		{"bad date", func(p *profileRequest) { p.AvailableDates = []domain.HolidayDate{"1 Jan"} }, "available_dates[0]"},
		{"unknown concept", func(p *profileRequest) { p.Concept = "Rave" }, "concept"},
		{"unknown locale", func(p *profileRequest) { p.Locale = "de" }, "locale"},
		{"name too long", func(p *profileRequest) { p.FirstName = string(make([]byte, 51)) }, "first_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validProfile()
			tt.mutate(&req)

			err := v.Validate(req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.field)
		})
	}
}

func TestValidator_HolidayDateMessage(t *testing.T) {
	v := validation.New()

	err := v.Validate(inviteRequest{ToUserID: "usr-1", Date: "27 Dec"})
	require.Error(t, err)

	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Contains(t, err.Error(), "date must be one of: 24 Dec")
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(inviteRequest{Date: domain.ChristmasEve})
	require.Error(t, err)

	// Should use JSON tag name, not struct field name.
	assert.Contains(t, err.Error(), "to_user_id")
	assert.NotContains(t, err.Error(), "ToUserID")
}
