package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
)

func (s *Server) registerConnectionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getConnectionStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/connections/{userId}/status",
		Summary:     "Get connection status",
		Description: "Returns the caller's relationship with another user",
		Tags:        []string{"Connections"},
		Security:    bearer,
	}, s.handleGetConnectionStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMyConnections",
		Method:      http.MethodGet,
		Path:        "/api/v1/connections",
		Summary:     "List matches",
		Description: "Returns accepted invitations split into hosting and attending",
		Tags:        []string{"Connections"},
		Security:    bearer,
	}, s.handleListMyConnections)

	huma.Register(s.api, huma.Operation{
		OperationID: "checkMatch",
		Method:      http.MethodGet,
		Path:        "/api/v1/matches/{userId}",
		Summary:     "Check match",
		Description: "Reports whether the caller and another user are matched",
		Tags:        []string{"Connections"},
		Security:    bearer,
	}, s.handleCheckMatch)
}

// === DTOs ===

// UserPathInput identifies the other user of a pair.
type UserPathInput struct {
	UserID string `path:"userId" doc:"The other user's ID"`
}

// ConnectionStatusOutput wraps connection info for Huma.
type ConnectionStatusOutput struct {
	Body domain.ConnectionInfo
}

// ConnectionsOutput wraps the caller's matches for Huma.
type ConnectionsOutput struct {
	Body *domain.Connections
}

// MatchResponse reports whether two users are matched.
type MatchResponse struct {
	Matched bool `json:"matched"`
}

// MatchOutput wraps the match check for Huma.
type MatchOutput struct {
	Body MatchResponse
}

// === Handlers ===

func (s *Server) handleGetConnectionStatus(ctx context.Context, input *UserPathInput) (*ConnectionStatusOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	info, err := s.services.Invitation.GetConnectionStatus(ctx, userID, input.UserID)
	if err != nil {
		return nil, err
	}

	return &ConnectionStatusOutput{Body: info}, nil
}

func (s *Server) handleListMyConnections(ctx context.Context, _ *struct{}) (*ConnectionsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	conns, err := s.services.Match.ListMyConnections(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ConnectionsOutput{Body: conns}, nil
}

func (s *Server) handleCheckMatch(ctx context.Context, input *UserPathInput) (*MatchOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	matched, err := s.services.Match.AreMatched(ctx, userID, input.UserID)
	if err != nil {
		return nil, err
	}

	return &MatchOutput{Body: MatchResponse{Matched: matched}}, nil
}
