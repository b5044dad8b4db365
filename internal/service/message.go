package service

import (
	"context"
	"cmp"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	domainerrors "github.com/nesvesk-vienas/nesvesk-server/internal/errors"
	"github.com/nesvesk-vienas/nesvesk-server/internal/id"
	"github.com/nesvesk-vienas/nesvesk-server/internal/sse"
	"github.com/nesvesk-vienas/nesvesk-server/internal/store"
	"github.com/nesvesk-vienas/nesvesk-server/internal/validation"
)

// MessageService runs conversations between matched users.
type MessageService struct {
	store     store.Store
	matches   *MatchService
	effects   *Effects
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewMessageService creates a new message service.
func NewMessageService(
	store store.Store,
	matches *MatchService,
	effects *Effects,
	validator *validation.Validator,
	logger *slog.Logger,
) *MessageService {
	return &MessageService{
		store:     store,
		matches:   matches,
		effects:   effects,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// EventCardRequest carries the logistics of a confirmed celebration.
type EventCardRequest struct {
	Date    domain.HolidayDate `json:"date" validate:"required,holidaydate"`
	Address string             `json:"address,omitempty" validate:"max=200"`
	Phone   string             `json:"phone,omitempty" validate:"max=30"`
	Note    string             `json:"note,omitempty" validate:"max=500"`
}

// SendMessageRequest is the input of Send. At least one field is required.
type SendMessageRequest struct {
	Content   string            `json:"content,omitempty" validate:"max=2000"`
	EventCard *EventCardRequest `json:"event_card,omitempty"`
}

// Send posts a message from senderID to receiverID. The pair must be matched.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID string, req SendMessageRequest) (*domain.Message, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if senderID == receiverID {
		return nil, domainerrors.InvalidTarget("you cannot message yourself")
	}

	msgID, err := id.Generate(id.PrefixMessage)
	if err != nil {
		return nil, internal(s.logger, err, "failed to generate message ID")
	}

	now := s.now()
	msg := &domain.Message{
		ID:         msgID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    strings.TrimSpace(req.Content),
		CreatedAt:  now,
	}
	if req.EventCard != nil {
		msg.EventCard = &domain.EventCard{
			Date:    req.EventCard.Date,
			Address: strings.TrimSpace(req.EventCard.Address),
			Phone:   strings.TrimSpace(req.EventCard.Phone),
			Note:    strings.TrimSpace(req.EventCard.Note),
		}
	}
	if !msg.HasPayload() {
		return nil, domainerrors.Validation("a message needs content or an event card")
	}

	matched, err := s.matches.AreMatched(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, domainerrors.NotMatched("you can only message users you are matched with")
	}

	sender, err := loadParty(ctx, s.store, senderID)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load sender")
	}
	receiver, err := loadParty(ctx, s.store, receiverID)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load receiver")
	}

	var date domain.HolidayDate
	if msg.EventCard != nil {
		date = msg.EventCard.Date
	}
	job, err := s.effects.newNotificationJob(domain.NotifyNewMessage, receiver, sender, date, now)
	if err != nil {
		return nil, internal(s.logger, err, "failed to build notification")
	}

	if err := s.store.CreateMessage(ctx, msg, job); err != nil {
		return nil, internal(s.logger, err, "failed to save message")
	}

	kind := "text"
	if msg.IsEventCard() {
		kind = "event_card"
	}
	s.logger.Debug("message sent",
		slog.String("message_id", msg.ID),
		slog.String("kind", kind),
		slog.Bool("email_queued", job != nil))

	s.effects.metrics().MessageSent(kind)
	if job != nil {
		s.effects.wake()
	}
	s.effects.emit(sse.NewMessageEvent(msg))
	s.effects.emitBadges(ctx, s.store, receiverID)

	return msg, nil
}

// ListConversation returns every message between userID and otherID in
// chronological order.
func (s *MessageService) ListConversation(ctx context.Context, userID, otherID string) ([]*domain.Message, error) {
	msgs, err := s.store.ListConversation(ctx, userID, otherID)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load conversation")
	}
	if msgs == nil {
		msgs = []*domain.Message{}
	}
	return msgs, nil
}

// ListMyConversations returns userID's inbox: one summary per partner with
// the newest message and the partner's unread messages, most recent first.
func (s *MessageService) ListMyConversations(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	heads, err := s.store.ListConversationHeads(ctx, userID)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load conversations")
	}
	if len(heads) == 0 {
		return []domain.ConversationSummary{}, nil
	}

	invs, err := s.store.ListAcceptedInvitations(ctx, userID)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load matches")
	}
	// Newest accepted invitation per partner decides the roles.
	matchedBy := make(map[string]*domain.Invitation, len(invs))
	for _, inv := range invs {
		other := inv.Counterpart(userID)
		if _, ok := matchedBy[other]; !ok {
			matchedBy[other] = inv
		}
	}

	ids := make([]string, 0, len(heads)+1)
	ids = append(ids, userID)
	for _, h := range heads {
		ids = append(ids, h.Partner(userID))
	}
	profiles, err := s.store.GetProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load profiles")
	}

	summaries := make([]domain.ConversationSummary, 0, len(heads))
	for _, h := range heads {
		other := h.Partner(userID)
		summary := domain.ConversationSummary{
			PartnerID:   other,
			LastMessage: h.Last,
			UnreadCount: h.Unread,
		}
		if p, ok := profiles[other]; ok {
			ps := p.Summary()
			summary.Partner = &ps
		}
		if inv, ok := matchedBy[other]; ok {
			summary.IsHost = domain.HostOf(inv, profiles[inv.FromUserID], profiles[inv.ToUserID]) == userID
		}
		summaries = append(summaries, summary)
	}

	slices.SortStableFunc(summaries, func(a, b domain.ConversationSummary) int {
		return cmp.Compare(b.LastMessage.Seq, a.LastMessage.Seq)
	})
	return summaries, nil
}

// MarkRead marks the listed messages as read by readerID. IDs of messages
// the reader did not receive are ignored.
func (s *MessageService) MarkRead(ctx context.Context, readerID string, messageIDs []string) (int, error) {
	n, err := s.store.MarkMessagesRead(ctx, messageIDs, readerID, s.now())
	if err != nil {
		return 0, internal(s.logger, err, "failed to mark messages read")
	}
	if n > 0 {
		s.effects.emitBadges(ctx, s.store, readerID)
	}
	return n, nil
}

// MarkConversationRead marks everything otherID sent readerID as read and
// tells otherID.
func (s *MessageService) MarkConversationRead(ctx context.Context, readerID, otherID string) (int, error) {
	now := s.now()
	n, err := s.store.MarkConversationRead(ctx, readerID, otherID, now)
	if err != nil {
		return 0, internal(s.logger, err, "failed to mark conversation read")
	}
	if n > 0 {
		s.effects.emit(sse.NewMessagesReadEvent(otherID, readerID, n, now))
		s.effects.emitBadges(ctx, s.store, readerID)
	}
	return n, nil
}

// GetUnreadCount counts unread messages across all of userID's conversations.
func (s *MessageService) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	n, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, internal(s.logger, err, "failed to count unread messages")
	}
	return n, nil
}
