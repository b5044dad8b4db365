package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	domainerrors "github.com/nesvesk-vienas/nesvesk-server/internal/errors"
	"github.com/nesvesk-vienas/nesvesk-server/internal/service"
)

func (s *Server) registerMeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMe",
		Method:      http.MethodGet,
		Path:        "/api/v1/me",
		Summary:     "Get current user",
		Description: "Returns the caller's account and, once created, their full profile",
		Tags:        []string{"Me"},
		Security:    bearer,
	}, s.handleGetMe)

	huma.Register(s.api, huma.Operation{
		OperationID: "upsertMyProfile",
		Method:      http.MethodPut,
		Path:        "/api/v1/me/profile",
		Summary:     "Create or update my profile",
		Description: "Replaces every editable field of the caller's profile",
		Tags:        []string{"Me"},
		Security:    bearer,
	}, s.handleUpsertMyProfile)
}

// === DTOs ===

// MeResponse is the caller's own account view.
type MeResponse struct {
	User    *domain.User    `json:"user"`
	Profile *domain.Profile `json:"profile,omitempty" doc:"Absent until the profile is created"`
}

// MeOutput wraps the me response for Huma.
type MeOutput struct {
	Body MeResponse
}

// UpsertProfileBody mirrors service.UpsertProfileRequest with schema tags.
type UpsertProfileBody struct {
	Role      domain.Role `json:"role" enum:"host,guest,both" doc:"Whether the user hosts, visits or both"`
	FirstName string      `json:"first_name" minLength:"1" maxLength:"50"`
	LastName  string      `json:"last_name,omitempty" maxLength:"50" doc:"Shown to matched users only"`
	Age       int         `json:"age,omitempty"`
	City      domain.City `json:"city" doc:"One of the supported cities"`
	Bio       string      `json:"bio,omitempty" maxLength:"1000"`
	PhotoURL  string      `json:"photo_url,omitempty" maxLength:"500"`
	Phone     string      `json:"phone,omitempty" maxLength:"30" doc:"Shown to matched users only"`
	Address   string      `json:"address,omitempty" maxLength:"200" doc:"Shown to matched users only"`

	Languages      []domain.Language    `json:"languages" minItems:"1"`
	AvailableDates []domain.HolidayDate `json:"available_dates" minItems:"1"`
	DietaryInfo    []string             `json:"dietary_info,omitempty"`

	HostingStatus domain.Capability `json:"hosting_status,omitempty"`
	GuestStatus   domain.Capability `json:"guest_status,omitempty"`
	Concept       domain.Concept    `json:"concept,omitempty"`
	Capacity      int               `json:"capacity,omitempty"`
	GuestAgeMin   int               `json:"guest_age_min,omitempty"`
	GuestAgeMax   int               `json:"guest_age_max,omitempty"`
	Amenities     []string          `json:"amenities,omitempty"`
	HouseRules    []string          `json:"house_rules,omitempty"`
	Vibes         []string          `json:"vibes,omitempty"`

	SmokingAllowed  bool `json:"smoking_allowed,omitempty"`
	DrinkingAllowed bool `json:"drinking_allowed,omitempty"`
	PetsAllowed     bool `json:"pets_allowed,omitempty"`
	HasPets         bool `json:"has_pets,omitempty"`

	Visible       *bool                     `json:"visible,omitempty" doc:"Defaults to true for new profiles"`
	Locale        domain.Locale             `json:"locale,omitempty" enum:"lt,en"`
	Notifications *domain.NotificationPrefs `json:"notifications,omitempty"`
}

// UpsertProfileInput wraps the profile body for Huma.
type UpsertProfileInput struct {
	Body UpsertProfileBody
}

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body *domain.Profile
}

// === Handlers ===

func (s *Server) handleGetMe(ctx context.Context, _ *struct{}) (*MeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.GetMyProfile(ctx, userID)
	if err != nil && !domainerrors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	return &MeOutput{Body: MeResponse{User: user, Profile: profile}}, nil
}

func (s *Server) handleUpsertMyProfile(ctx context.Context, input *UpsertProfileInput) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.UpsertProfile(ctx, userID, service.UpsertProfileRequest(input.Body))
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: profile}, nil
}
