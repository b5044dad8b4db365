package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nesvesk-vienas/nesvesk-server/internal/service"
)

func (s *Server) registerBadgeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBadgeCounts",
		Method:      http.MethodGet,
		Path:        "/api/v1/badges",
		Summary:     "Get badge counts",
		Description: "Returns pending invitations and unread messages for the navigation badge",
		Tags:        []string{"Badges"},
		Security:    bearer,
	}, s.handleGetBadges)
}

// BadgeResponse adds the badge total to the counts.
type BadgeResponse struct {
	service.BadgeCounts
	Total int `json:"total"`
}

// BadgeOutput wraps badge counts for Huma.
type BadgeOutput struct {
	Body BadgeResponse
}

func (s *Server) handleGetBadges(ctx context.Context, _ *struct{}) (*BadgeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.services.Badge.GetBadgeCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &BadgeOutput{Body: BadgeResponse{BadgeCounts: counts, Total: counts.Total()}}, nil
}
