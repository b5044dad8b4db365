package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	domainerrors "github.com/nesvesk-vienas/nesvesk-server/internal/errors"
	"github.com/nesvesk-vienas/nesvesk-server/internal/search"
	"github.com/nesvesk-vienas/nesvesk-server/internal/store"
	"github.com/nesvesk-vienas/nesvesk-server/internal/validation"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ProfileService manages profiles and profile browsing.
type ProfileService struct {
	store     store.Store
	index     *search.SearchIndex // nil falls back to an in-memory filter
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewProfileService creates a new profile service.
func NewProfileService(store store.Store, index *search.SearchIndex, validator *validation.Validator, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:     store,
		index:     index,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// UpsertProfileRequest holds every field a user may edit on their profile.
type UpsertProfileRequest struct {
	Role      domain.Role `json:"role" validate:"required,role"`
	FirstName string      `json:"first_name" validate:"required,max=50"`
	LastName  string      `json:"last_name,omitempty" validate:"max=50"`
	Age       int         `json:"age,omitempty" validate:"omitempty,min=16,max=120"`
	City      domain.City `json:"city" validate:"required,city"`
	Bio       string      `json:"bio" validate:"max=1000"`
	PhotoURL  string      `json:"photo_url,omitempty" validate:"omitempty,url,max=500"`
	Phone     string      `json:"phone,omitempty" validate:"max=30"`
	Address   string      `json:"address,omitempty" validate:"max=200"`

	Languages      []domain.Language    `json:"languages" validate:"required,min=1,dive,language"`
	AvailableDates []domain.HolidayDate `json:"available_dates" validate:"required,min=1,dive,holidaydate"`
	DietaryInfo    []string             `json:"dietary_info,omitempty" validate:"max=20,dive,max=50"`

	HostingStatus domain.Capability `json:"hosting_status" validate:"omitempty,capability"`
	GuestStatus   domain.Capability `json:"guest_status" validate:"omitempty,capability"`
	Concept       domain.Concept    `json:"concept,omitempty" validate:"concept"`
	Capacity      int               `json:"capacity,omitempty" validate:"min=0,max=50"`
	GuestAgeMin   int               `json:"guest_age_min,omitempty" validate:"omitempty,min=16,max=120"`
	GuestAgeMax   int               `json:"guest_age_max,omitempty" validate:"omitempty,min=16,max=120,gtefield=GuestAgeMin"`
	Amenities     []string          `json:"amenities,omitempty" validate:"max=20,dive,max=50"`
	HouseRules    []string          `json:"house_rules,omitempty" validate:"max=20,dive,max=100"`
	Vibes         []string          `json:"vibes,omitempty" validate:"max=20,dive,max=50"`

	SmokingAllowed  bool `json:"smoking_allowed"`
	DrinkingAllowed bool `json:"drinking_allowed"`
	PetsAllowed     bool `json:"pets_allowed"`
	HasPets         bool `json:"has_pets"`

	Visible       *bool                     `json:"visible,omitempty"`
	Locale        domain.Locale             `json:"locale,omitempty" validate:"omitempty,locale"`
	Notifications *domain.NotificationPrefs `json:"notifications,omitempty"`
}

// ProfileView is a profile as seen by a particular viewer.
type ProfileView struct {
	Profile    *domain.Profile       `json:"profile"`
	Connection domain.ConnectionInfo `json:"connection"`
}

// ProfileListItem is one browse result.
type ProfileListItem struct {
	Profile *domain.Profile         `json:"profile"`
	Status  domain.ConnectionStatus `json:"status"`
	Matched bool                    `json:"matched"`
}

// ProfileList is a page of browse results.
type ProfileList struct {
	Items  []ProfileListItem `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// UpsertProfile creates or replaces the caller's profile.
func (s *ProfileService) UpsertProfile(ctx context.Context, userID string, req UpsertProfileRequest) (*domain.Profile, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	existing, err := s.store.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, internal(s.logger, err, "failed to load profile")
	}

	now := s.now()
	p := &domain.Profile{
		UserID:          userID,
		CreatedAt:       now,
		UpdatedAt:       now,
		Role:            req.Role,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Age:             req.Age,
		City:            req.City,
		Bio:             strings.TrimSpace(req.Bio),
		PhotoURL:        req.PhotoURL,
		Phone:           strings.TrimSpace(req.Phone),
		Address:         strings.TrimSpace(req.Address),
		Languages:       req.Languages,
		AvailableDates:  req.AvailableDates,
		DietaryInfo:     req.DietaryInfo,
		HostingStatus:   req.HostingStatus,
		GuestStatus:     req.GuestStatus,
		Concept:         req.Concept,
		Capacity:        req.Capacity,
		GuestAgeMin:     req.GuestAgeMin,
		GuestAgeMax:     req.GuestAgeMax,
		Amenities:       req.Amenities,
		HouseRules:      req.HouseRules,
		Vibes:           req.Vibes,
		SmokingAllowed:  req.SmokingAllowed,
		DrinkingAllowed: req.DrinkingAllowed,
		PetsAllowed:     req.PetsAllowed,
		HasPets:         req.HasPets,
		Visible:         true,
		LastActive:      &now,
		Locale:          req.Locale,
		Notifications:   domain.DefaultNotificationPrefs(),
	}

	// Verification is granted elsewhere and never set by the owner.
	if existing != nil {
		p.CreatedAt = existing.CreatedAt
		p.Verified = existing.Verified
		p.Visible = existing.Visible
		p.Notifications = existing.Notifications
		if p.Locale == "" {
			p.Locale = existing.Locale
		}
	}
	if req.Visible != nil {
		p.Visible = *req.Visible
	}
	if req.Notifications != nil {
		p.Notifications = *req.Notifications
	}
	if p.Locale == "" {
		p.Locale = domain.LocaleLithuanian
	}
	if p.HostingStatus == "" {
		p.HostingStatus = domain.CapabilityMaybe
	}
	if p.GuestStatus == "" {
		p.GuestStatus = domain.CapabilityMaybe
	}

	if err := s.store.SaveProfile(ctx, p); err != nil {
		return nil, internal(s.logger, err, "failed to save profile")
	}

	s.reindex(p)

	s.logger.Info("profile saved",
		slog.String("user_id", userID),
		slog.Bool("created", existing == nil),
		slog.Bool("visible", p.Visible))

	return p, nil
}

// reindex updates the search index. The index is rebuilt from the store on
// startup, so a failure here is only logged.
func (s *ProfileService) reindex(p *domain.Profile) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexProfile(p); err != nil {
		s.logger.Warn("failed to index profile",
			slog.String("user_id", p.UserID),
			slog.String("error", err.Error()))
	}
}

// GetMyProfile returns the caller's own profile with every field.
func (s *ProfileService) GetMyProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("profile not created yet")
		}
		return nil, internal(s.logger, err, "failed to load profile")
	}
	return p, nil
}

// GetProfile returns userID's profile as viewerID sees it. Contact details
// are only shown to the owner and to matched users. Hidden profiles are only
// shown to the owner and to users who already share an invitation with them.
func (s *ProfileService) GetProfile(ctx context.Context, viewerID, userID string) (*ProfileView, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("profile not found")
		}
		return nil, internal(s.logger, err, "failed to load profile")
	}

	if viewerID == userID {
		return &ProfileView{Profile: p, Connection: domain.ConnectionInfo{Status: domain.ConnectionSelf}}, nil
	}

	invs, err := s.store.ListInvitationsBetween(ctx, viewerID, userID)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load invitations")
	}
	info := connectionInfo(viewerID, userID, invs)

	if !p.Visible && len(invs) == 0 {
		return nil, domainerrors.NotFound("profile not found")
	}
	if !info.Matched {
		p = p.WithoutContact()
	}

	return &ProfileView{Profile: p, Connection: info}, nil
}

// ListProfiles browses visible profiles other than the viewer's own.
func (s *ProfileService) ListProfiles(ctx context.Context, viewerID string, filter domain.ProfileFilter) (*ProfileList, error) {
	filter.Limit = clampLimit(filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	profiles, total, err := s.findProfiles(ctx, viewerID, filter)
	if err != nil {
		return nil, err
	}

	connections, err := s.connectionsFor(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	items := make([]ProfileListItem, 0, len(profiles))
	for _, p := range profiles {
		info, ok := connections[p.UserID]
		if !ok {
			info.Status = domain.ConnectionNone
		}
		if !info.Matched {
			p = p.WithoutContact()
		}
		items = append(items, ProfileListItem{Profile: p, Status: info.Status, Matched: info.Matched})
	}

	return &ProfileList{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// findProfiles returns one page of matching profiles and the total count.
func (s *ProfileService) findProfiles(ctx context.Context, viewerID string, filter domain.ProfileFilter) ([]*domain.Profile, int, error) {
	if s.index != nil {
		// One extra row covers the viewer's own profile being filtered out.
		res, err := s.index.SearchProfiles(ctx, search.ProfileQuery{
			Text:     filter.Query,
			City:     filter.City,
			Role:     filter.Role,
			Language: filter.Language,
			Date:     filter.Date,
			Limit:    filter.Limit + 1,
			Offset:   filter.Offset,
		})
		if err != nil {
			return nil, 0, internal(s.logger, err, "profile search failed")
		}

		byID, err := s.store.GetProfilesByIDs(ctx, res.IDs)
		if err != nil {
			return nil, 0, internal(s.logger, err, "failed to load profiles")
		}

		total := int(res.Total)
		out := make([]*domain.Profile, 0, len(res.IDs))
		for _, id := range res.IDs {
			if id == viewerID {
				total--
				continue
			}
			// Skip stale index entries.
			if p, ok := byID[id]; ok && p.Visible {
				out = append(out, p)
			}
		}
		if len(out) > filter.Limit {
			out = out[:filter.Limit]
		}
		return out, total, nil
	}

	all, err := s.store.ListVisibleProfiles(ctx)
	if err != nil {
		return nil, 0, internal(s.logger, err, "failed to list profiles")
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	matched := make([]*domain.Profile, 0, len(all))
	for _, p := range all {
		if p.UserID == viewerID || !filter.Matches(p) {
			continue
		}
		if query != "" && !profileMentions(p, query) {
			continue
		}
		matched = append(matched, p)
	}

	total := len(matched)
	start := min(filter.Offset, total)
	end := min(start+filter.Limit, total)
	return matched[start:end], total, nil
}

func profileMentions(p *domain.Profile, query string) bool {
	if strings.Contains(strings.ToLower(p.FirstName), query) || strings.Contains(strings.ToLower(p.Bio), query) {
		return true
	}
	for _, v := range p.Vibes {
		if strings.Contains(strings.ToLower(v), query) {
			return true
		}
	}
	return false
}

// connectionsFor derives viewerID's connection with every user they share
// an invitation with.
func (s *ProfileService) connectionsFor(ctx context.Context, viewerID string) (map[string]domain.ConnectionInfo, error) {
	sent, err := s.store.ListInvitationsFrom(ctx, viewerID)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load invitations")
	}
	received, err := s.store.ListInvitationsTo(ctx, viewerID)
	if err != nil {
		return nil, internal(s.logger, err, "failed to load invitations")
	}

	byOther := make(map[string][]*domain.Invitation)
	for _, inv := range append(sent, received...) {
		other := inv.Counterpart(viewerID)
		byOther[other] = append(byOther[other], inv)
	}

	infos := make(map[string]domain.ConnectionInfo, len(byOther))
	for other, invs := range byOther {
		infos[other] = connectionInfo(viewerID, other, invs)
	}
	return infos, nil
}

// ReindexAll rebuilds the search index from the store.
func (s *ProfileService) ReindexAll(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	profiles, err := s.store.ListVisibleProfiles(ctx)
	if err != nil {
		return err
	}
	if err := s.index.Rebuild(); err != nil {
		return err
	}
	if err := s.index.IndexProfiles(profiles); err != nil {
		return err
	}
	s.logger.Info("profile index rebuilt", slog.Int("profiles", len(profiles)))
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	return min(limit, maxPageSize)
}
