package api

import (
	"github.com/nesvesk-vienas/nesvesk-server/internal/service"
)

// Services groups the business services used by the API server.
type Services struct {
	User       *service.UserService
	Profile    *service.ProfileService
	Invitation *service.InvitationService
	Match      *service.MatchService
	Message    *service.MessageService
	Badge      *service.BadgeService
}
