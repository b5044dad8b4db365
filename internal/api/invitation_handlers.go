package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	"github.com/nesvesk-vienas/nesvesk-server/internal/service"
)

func (s *Server) registerInvitationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "sendInvitation",
		Method:        http.MethodPost,
		Path:          "/api/v1/invitations",
		Summary:       "Send invitation",
		Description:   "Invites another user to celebrate on a date. Fails while an invitation between the pair is pending",
		Tags:          []string{"Invitations"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleSendInvitation)

	huma.Register(s.api, huma.Operation{
		OperationID: "respondInvitation",
		Method:      http.MethodPost,
		Path:        "/api/v1/invitations/{id}/respond",
		Summary:     "Respond to invitation",
		Description: "Accepts or declines a pending invitation. Only the recipient may respond",
		Tags:        []string{"Invitations"},
		Security:    bearer,
	}, s.handleRespondInvitation)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMyInvitations",
		Method:      http.MethodGet,
		Path:        "/api/v1/invitations",
		Summary:     "List my invitations",
		Description: "Returns sent and received invitations, newest first",
		Tags:        []string{"Invitations"},
		Security:    bearer,
	}, s.handleListMyInvitations)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPendingInvitationCount",
		Method:      http.MethodGet,
		Path:        "/api/v1/invitations/pending-count",
		Summary:     "Count pending invitations",
		Description: "Returns how many received invitations await the caller's response",
		Tags:        []string{"Invitations"},
		Security:    bearer,
	}, s.handlePendingCount)
}

// === DTOs ===

// SendInvitationInput contains the invitation to send.
type SendInvitationInput struct {
	Body struct {
		ToUserID string             `json:"to_user_id" minLength:"1" doc:"Recipient user ID"`
		Date     domain.HolidayDate `json:"date" doc:"Celebration date"`
	}
}

// InvitationOutput wraps an invitation for Huma.
type InvitationOutput struct {
	Body *domain.Invitation
}

// RespondInvitationInput contains the response.
type RespondInvitationInput struct {
	ID   string `path:"id" doc:"Invitation ID"`
	Body struct {
		Accept bool `json:"accept" doc:"True to accept, false to decline"`
	}
}

// MyInvitationsOutput wraps the caller's invitations for Huma.
type MyInvitationsOutput struct {
	Body *domain.MyInvitations
}

// CountResponse is a single count.
type CountResponse struct {
	Count int `json:"count"`
}

// CountOutput wraps a count for Huma.
type CountOutput struct {
	Body CountResponse
}

// === Handlers ===

func (s *Server) handleSendInvitation(ctx context.Context, input *SendInvitationInput) (*InvitationOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	inv, err := s.services.Invitation.Send(ctx, userID, service.SendInvitationRequest{
		ToUserID: input.Body.ToUserID,
		Date:     input.Body.Date,
	})
	if err != nil {
		return nil, err
	}

	return &InvitationOutput{Body: inv}, nil
}

func (s *Server) handleRespondInvitation(ctx context.Context, input *RespondInvitationInput) (*InvitationOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	inv, err := s.services.Invitation.Respond(ctx, input.ID, userID, input.Body.Accept)
	if err != nil {
		return nil, err
	}

	return &InvitationOutput{Body: inv}, nil
}

func (s *Server) handleListMyInvitations(ctx context.Context, _ *struct{}) (*MyInvitationsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	invs, err := s.services.Invitation.GetMyInvitations(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &MyInvitationsOutput{Body: invs}, nil
}

func (s *Server) handlePendingCount(ctx context.Context, _ *struct{}) (*CountOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.services.Invitation.GetPendingCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &CountOutput{Body: CountResponse{Count: n}}, nil
}
