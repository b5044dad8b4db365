package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	"github.com/nesvesk-vienas/nesvesk-server/internal/store"
)

// profileColumns is the ordered list of columns selected in profile queries.
// Must match the scan order in scanProfile.
const profileColumns = `user_id, created_at, updated_at,
	role, first_name, last_name, age, city, bio, photo_url, phone, address,
	languages, available_dates, dietary_info,
	hosting_status, guest_status, concept, capacity, guest_age_min, guest_age_max,
	amenities, house_rules, vibes,
	smoking_allowed, drinking_allowed, pets_allowed, has_pets,
	verified, visible, last_active, locale,
	notify_email, notify_on_invitation, notify_on_match, notify_on_message`

// scanProfile scans a sql.Row (or sql.Rows via its Scan method) into a domain.Profile.
func scanProfile(scanner interface{ Scan(dest ...any) error }) (*domain.Profile, error) {
	var p domain.Profile

	var (
		createdAt      string
		updatedAt      string
		role           string
		city           string
		languages      string
		availableDates string
		dietaryInfo    string
		hostingStatus  string
		guestStatus    string
		concept        string
		amenities      string
		houseRules     string
		vibes          string
		smoking        int
		drinking       int
		petsAllowed    int
		hasPets        int
		verified       int
		visible        int
		lastActive     sql.NullString
		locale         string
		notifyEmail    int
		notifyInvite   int
		notifyMatch    int
		notifyMessage  int
	)

	err := scanner.Scan(
		&p.UserID,
		&createdAt,
		&updatedAt,
		&role,
		&p.FirstName,
		&p.LastName,
		&p.Age,
		&city,
		&p.Bio,
		&p.PhotoURL,
		&p.Phone,
		&p.Address,
		&languages,
		&availableDates,
		&dietaryInfo,
		&hostingStatus,
		&guestStatus,
		&concept,
		&p.Capacity,
		&p.GuestAgeMin,
		&p.GuestAgeMax,
		&amenities,
		&houseRules,
		&vibes,
		&smoking,
		&drinking,
		&petsAllowed,
		&hasPets,
		&verified,
		&visible,
		&lastActive,
		&locale,
		&notifyEmail,
		&notifyInvite,
		&notifyMatch,
		&notifyMessage,
	)
	if err != nil {
		return nil, err
	}

	// Parse timestamps.
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	p.LastActive, err = parseNullableTime(lastActive)
	if err != nil {
		return nil, err
	}

	// JSON list columns.
	if p.Languages, err = unmarshalList[domain.Language](languages); err != nil {
		return nil, fmt.Errorf("languages: %w", err)
	}
	if p.AvailableDates, err = unmarshalList[domain.HolidayDate](availableDates); err != nil {
		return nil, fmt.Errorf("available_dates: %w", err)
	}
	if p.DietaryInfo, err = unmarshalList[string](dietaryInfo); err != nil {
		return nil, fmt.Errorf("dietary_info: %w", err)
	}
	if p.Amenities, err = unmarshalList[string](amenities); err != nil {
		return nil, fmt.Errorf("amenities: %w", err)
	}
	if p.HouseRules, err = unmarshalList[string](houseRules); err != nil {
		return nil, fmt.Errorf("house_rules: %w", err)
	}
	if p.Vibes, err = unmarshalList[string](vibes); err != nil {
		return nil, fmt.Errorf("vibes: %w", err)
	}

	// Enum fields.
	p.Role = domain.Role(role)
	p.City = domain.City(city)
	p.HostingStatus = domain.Capability(hostingStatus)
	p.GuestStatus = domain.Capability(guestStatus)
	p.Concept = domain.Concept(concept)
	p.Locale = domain.Locale(locale)

	p.SmokingAllowed = smoking != 0
	p.DrinkingAllowed = drinking != 0
	p.PetsAllowed = petsAllowed != 0
	p.HasPets = hasPets != 0
	p.Verified = verified != 0
	p.Visible = visible != 0

	p.Notifications = domain.NotificationPrefs{
		Email:        notifyEmail != 0,
		OnInvitation: notifyInvite != 0,
		OnMatch:      notifyMatch != 0,
		OnMessage:    notifyMessage != 0,
	}

	return &p, nil
}

// GetProfile retrieves a profile by owner ID.
// Returns store.ErrNotFound if the user has no profile yet.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfilesByIDs retrieves profiles for multiple user IDs.
// Missing profiles are omitted from the map.
func (s *Store) GetProfilesByIDs(ctx context.Context, userIDs []string) (map[string]*domain.Profile, error) {
	profiles := make(map[string]*domain.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return profiles, nil
	}

	placeholders, args := inPlaceholders(userIDs)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles[p.UserID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// SaveProfile creates or replaces the profile of profile.UserID.
// The original created_at survives updates.
func (s *Store) SaveProfile(ctx context.Context, p *domain.Profile) error {
	lists := make([]string, 0, 6)
	for _, encode := range []func() (string, error){
		func() (string, error) { return marshalList(p.Languages) },
		func() (string, error) { return marshalList(p.AvailableDates) },
		func() (string, error) { return marshalList(p.DietaryInfo) },
		func() (string, error) { return marshalList(p.Amenities) },
		func() (string, error) { return marshalList(p.HouseRules) },
		func() (string, error) { return marshalList(p.Vibes) },
	} {
		v, err := encode()
		if err != nil {
			return fmt.Errorf("marshal profile lists: %w", err)
		}
		lists = append(lists, v)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			updated_at = excluded.updated_at,
			role = excluded.role,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			age = excluded.age,
			city = excluded.city,
			bio = excluded.bio,
			photo_url = excluded.photo_url,
			phone = excluded.phone,
			address = excluded.address,
			languages = excluded.languages,
			available_dates = excluded.available_dates,
			dietary_info = excluded.dietary_info,
			hosting_status = excluded.hosting_status,
			guest_status = excluded.guest_status,
			concept = excluded.concept,
			capacity = excluded.capacity,
			guest_age_min = excluded.guest_age_min,
			guest_age_max = excluded.guest_age_max,
			amenities = excluded.amenities,
			house_rules = excluded.house_rules,
			vibes = excluded.vibes,
			smoking_allowed = excluded.smoking_allowed,
			drinking_allowed = excluded.drinking_allowed,
			pets_allowed = excluded.pets_allowed,
			has_pets = excluded.has_pets,
			verified = excluded.verified,
			visible = excluded.visible,
			last_active = excluded.last_active,
			locale = excluded.locale,
			notify_email = excluded.notify_email,
			notify_on_invitation = excluded.notify_on_invitation,
			notify_on_match = excluded.notify_on_match,
			notify_on_message = excluded.notify_on_message`,
		p.UserID,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
		string(p.Role),
		p.FirstName,
		p.LastName,
		p.Age,
		string(p.City),
		p.Bio,
		p.PhotoURL,
		p.Phone,
		p.Address,
		lists[0],
		lists[1],
		lists[2],
		string(p.HostingStatus),
		string(p.GuestStatus),
		string(p.Concept),
		p.Capacity,
		p.GuestAgeMin,
		p.GuestAgeMax,
		lists[3],
		lists[4],
		lists[5],
		boolToInt(p.SmokingAllowed),
		boolToInt(p.DrinkingAllowed),
		boolToInt(p.PetsAllowed),
		boolToInt(p.HasPets),
		boolToInt(p.Verified),
		boolToInt(p.Visible),
		nullTimeString(p.LastActive),
		string(p.Locale),
		boolToInt(p.Notifications.Email),
		boolToInt(p.Notifications.OnInvitation),
		boolToInt(p.Notifications.OnMatch),
		boolToInt(p.Notifications.OnMessage),
	)
	return err
}

// ListVisibleProfiles returns every visible profile, most recently active first.
func (s *Store) ListVisibleProfiles(ctx context.Context) ([]*domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles
		WHERE visible = 1
		ORDER BY last_active IS NULL, last_active DESC, user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// TouchLastActive records activity for the profile owner. Users without a
// profile are ignored.
func (s *Store) TouchLastActive(ctx context.Context, userID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET last_active = ? WHERE user_id = ?`,
		formatTime(at), userID)
	return err
}
