package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	"github.com/nesvesk-vienas/nesvesk-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listProfiles",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles",
		Summary:     "Browse profiles",
		Description: "Lists visible profiles other than the caller's, with the caller's connection status to each",
		Tags:        []string{"Profiles"},
		Security:    bearer,
	}, s.handleListProfiles)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{userId}",
		Summary:     "Get profile",
		Description: "Returns a profile as the caller sees it. Contact details are included only for matched users",
		Tags:        []string{"Profiles"},
		Security:    bearer,
	}, s.handleGetProfile)
}

// === DTOs ===

// ListProfilesInput holds browse filters.
type ListProfilesInput struct {
	City     string `query:"city" doc:"Filter by city"`
	Role     string `query:"role" enum:"host,guest,both" doc:"Filter by role; both matches either"`
	Language string `query:"language" doc:"Filter by spoken language"`
	Date     string `query:"date" doc:"Filter by available date"`
	Query    string `query:"q" maxLength:"100" doc:"Free text over name, bio and tags"`
	Limit    int    `query:"limit" default:"20" minimum:"1" maximum:"100"`
	Offset   int    `query:"offset" default:"0" minimum:"0"`
}

// ListProfilesOutput wraps a page of profiles for Huma.
type ListProfilesOutput struct {
	Body *service.ProfileList
}

// GetProfileInput identifies a profile.
type GetProfileInput struct {
	UserID string `path:"userId" doc:"Profile owner's user ID"`
}

// GetProfileOutput wraps a profile view for Huma.
type GetProfileOutput struct {
	Body *service.ProfileView
}

// === Handlers ===

func (s *Server) handleListProfiles(ctx context.Context, input *ListProfilesInput) (*ListProfilesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.services.Profile.ListProfiles(ctx, userID, domain.ProfileFilter{
		City:     domain.City(input.City),
		Role:     domain.Role(input.Role),
		Language: domain.Language(input.Language),
		Date:     domain.HolidayDate(input.Date),
		Query:    input.Query,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &ListProfilesOutput{Body: list}, nil
}

func (s *Server) handleGetProfile(ctx context.Context, input *GetProfileInput) (*GetProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Profile.GetProfile(ctx, userID, input.UserID)
	if err != nil {
		return nil, err
	}

	return &GetProfileOutput{Body: view}, nil
}
