package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	"github.com/nesvesk-vienas/nesvesk-server/internal/service"
)

func (s *Server) registerMessageRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listMyConversations",
		Method:      http.MethodGet,
		Path:        "/api/v1/conversations",
		Summary:     "List my conversations",
		Description: "Returns one entry per conversation partner with the last message and unread count, most recent first",
		Tags:        []string{"Messages"},
		Security:    bearer,
	}, s.handleListMyConversations)

	huma.Register(s.api, huma.Operation{
		OperationID:   "sendMessage",
		Method:        http.MethodPost,
		Path:          "/api/v1/conversations/{userId}/messages",
		Summary:       "Send message",
		Description:   "Sends text or an event card to a matched user",
		Tags:          []string{"Messages"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleSendMessage)

	huma.Register(s.api, huma.Operation{
		OperationID: "listConversation",
		Method:      http.MethodGet,
		Path:        "/api/v1/conversations/{userId}/messages",
		Summary:     "List conversation",
		Description: "Returns every message between the caller and another user, oldest first",
		Tags:        []string{"Messages"},
		Security:    bearer,
	}, s.handleListConversation)

	huma.Register(s.api, huma.Operation{
		OperationID: "markConversationRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/conversations/{userId}/read",
		Summary:     "Mark conversation read",
		Tags:        []string{"Messages"},
		Security:    bearer,
	}, s.handleMarkConversationRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "markMessagesRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/messages/read",
		Summary:     "Mark messages read",
		Description: "Marks the given messages read. Messages not addressed to the caller are ignored",
		Tags:        []string{"Messages"},
		Security:    bearer,
	}, s.handleMarkMessagesRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUnreadCount",
		Method:      http.MethodGet,
		Path:        "/api/v1/messages/unread-count",
		Summary:     "Count unread messages",
		Tags:        []string{"Messages"},
		Security:    bearer,
	}, s.handleUnreadCount)
}

// === DTOs ===

// EventCardBody carries celebration logistics.
type EventCardBody struct {
	Date    domain.HolidayDate `json:"date" doc:"Celebration date"`
	Address string             `json:"address,omitempty" maxLength:"200"`
	Phone   string             `json:"phone,omitempty" maxLength:"30"`
	Note    string             `json:"note,omitempty" maxLength:"500"`
}

// SendMessageInput contains the message to send.
type SendMessageInput struct {
	UserID string `path:"userId" doc:"Receiver user ID"`
	Body   struct {
		Content   string         `json:"content,omitempty" maxLength:"2000"`
		EventCard *EventCardBody `json:"event_card,omitempty"`
	}
}

// MessageOutput wraps a message for Huma.
type MessageOutput struct {
	Body *domain.Message
}

// ConversationOutput wraps a conversation for Huma.
type ConversationOutput struct {
	Body []*domain.Message
}

// ConversationsOutput wraps the inbox for Huma.
type ConversationsOutput struct {
	Body []domain.ConversationSummary
}

// MarkMessagesReadInput lists messages to mark read.
type MarkMessagesReadInput struct {
	Body struct {
		MessageIDs []string `json:"message_ids" maxItems:"500"`
	}
}

// MarkedResponse reports how many messages changed.
type MarkedResponse struct {
	Marked int `json:"marked"`
}

// MarkedOutput wraps the marked count for Huma.
type MarkedOutput struct {
	Body MarkedResponse
}

// === Handlers ===

func (s *Server) handleSendMessage(ctx context.Context, input *SendMessageInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	req := service.SendMessageRequest{Content: input.Body.Content}
	if card := input.Body.EventCard; card != nil {
		req.EventCard = &service.EventCardRequest{
			Date:    card.Date,
			Address: card.Address,
			Phone:   card.Phone,
			Note:    card.Note,
		}
	}

	msg, err := s.services.Message.Send(ctx, userID, input.UserID, req)
	if err != nil {
		return nil, err
	}

	return &MessageOutput{Body: msg}, nil
}

func (s *Server) handleListMyConversations(ctx context.Context, _ *struct{}) (*ConversationsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	summaries, err := s.services.Message.ListMyConversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ConversationsOutput{Body: summaries}, nil
}

func (s *Server) handleListConversation(ctx context.Context, input *UserPathInput) (*ConversationOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	msgs, err := s.services.Message.ListConversation(ctx, userID, input.UserID)
	if err != nil {
		return nil, err
	}

	return &ConversationOutput{Body: msgs}, nil
}

func (s *Server) handleMarkConversationRead(ctx context.Context, input *UserPathInput) (*MarkedOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.services.Message.MarkConversationRead(ctx, userID, input.UserID)
	if err != nil {
		return nil, err
	}

	return &MarkedOutput{Body: MarkedResponse{Marked: n}}, nil
}

func (s *Server) handleMarkMessagesRead(ctx context.Context, input *MarkMessagesReadInput) (*MarkedOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.services.Message.MarkRead(ctx, userID, input.Body.MessageIDs)
	if err != nil {
		return nil, err
	}

	return &MarkedOutput{Body: MarkedResponse{Marked: n}}, nil
}

func (s *Server) handleUnreadCount(ctx context.Context, _ *struct{}) (*CountOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.services.Message.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &CountOutput{Body: CountResponse{Count: n}}, nil
}
