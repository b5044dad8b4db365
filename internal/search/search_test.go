package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	index, err := NewSearchIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func profile(id, name string, role domain.Role, city domain.City, active time.Time) *domain.Profile {
	return &domain.Profile{
		UserID:         id,
		UpdatedAt:      active,
		LastActive:     &active,
		FirstName:      name,
		Role:           role,
		City:           city,
		Languages:      []domain.Language{domain.Lithuanian},
		AvailableDates: []domain.HolidayDate{domain.ChristmasEve},
		Visible:        true,
	}
}

func seed(t *testing.T, index *SearchIndex) {
	t.Helper()
	now := time.Now()

	ona := profile("usr-ona", "Ona", domain.RoleHost, domain.Vilnius, now)
	ona.Bio = "Kūčios su dvylika patiekalų"
	ona.Vibes = []string{"board games"}

	jonas := profile("usr-jonas", "Jonas", domain.RoleGuest, domain.Siauliai, now.Add(-time.Hour))
	jonas.Languages = []domain.Language{domain.English}
	jonas.AvailableDates = []domain.HolidayDate{domain.NewYearsEve}

	rasa := profile("usr-rasa", "Rasa", domain.RoleBoth, domain.Vilnius, now.Add(-2*time.Hour))
	rasa.Vibes = []string{"karaoke"}

	hidden := profile("usr-hidden", "Hidden", domain.RoleHost, domain.Vilnius, now)
	hidden.Visible = false

	require.NoError(t, index.IndexProfiles([]*domain.Profile{ona, jonas, rasa, hidden}))
}

func TestNewSearchIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndexProfiles_SkipsHidden(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestIndexProfile_HidingRemoves(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	p := profile("usr-ona", "Ona", domain.RoleHost, domain.Vilnius, time.Now())
	p.Visible = false
	require.NoError(t, index.IndexProfile(p))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestSearchProfiles_Filters(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)
	ctx := context.Background()

	tests := []struct {
		name  string
		query ProfileQuery
		want  []string
	}{
		{"no filters orders by activity", ProfileQuery{}, []string{"usr-ona", "usr-jonas", "usr-rasa"}},
		{"city", ProfileQuery{City: domain.Vilnius}, []string{"usr-ona", "usr-rasa"}},
		{"city with diacritics", ProfileQuery{City: domain.Siauliai}, []string{"usr-jonas"}},
		{"host includes both", ProfileQuery{Role: domain.RoleHost}, []string{"usr-ona", "usr-rasa"}},
		{"guest includes both", ProfileQuery{Role: domain.RoleGuest}, []string{"usr-jonas", "usr-rasa"}},
		{"language", ProfileQuery{Language: domain.English}, []string{"usr-jonas"}},
		{"date", ProfileQuery{Date: domain.ChristmasEve}, []string{"usr-ona", "usr-rasa"}},
		{"combined", ProfileQuery{City: domain.Vilnius, Role: domain.RoleGuest}, []string{"usr-rasa"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := index.SearchProfiles(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.IDs)
			assert.Equal(t, uint64(len(tt.want)), res.Total)
		})
	}
}

func TestSearchProfiles_FreeText(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)
	ctx := context.Background()

	// Folded match on the bio.
	res, err := index.SearchProfiles(ctx, ProfileQuery{Text: "kucios"})
	require.NoError(t, err)
	assert.Equal(t, []string{"usr-ona"}, res.IDs)

	// Tag match.
	res, err = index.SearchProfiles(ctx, ProfileQuery{Text: "karaoke"})
	require.NoError(t, err)
	assert.Equal(t, []string{"usr-rasa"}, res.IDs)

	// Typo in the name.
	res, err = index.SearchProfiles(ctx, ProfileQuery{Text: "Jonaz"})
	require.NoError(t, err)
	assert.Contains(t, res.IDs, "usr-jonas")
}

func TestSearchProfiles_Pagination(t *testing.T) {
	index := setupTestIndex(t)
	seed(t, index)

	res, err := index.SearchProfiles(context.Background(), ProfileQuery{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.Total)
	assert.Equal(t, []string{"usr-jonas", "usr-rasa"}, res.IDs)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "siauliai", Fold("Šiauliai"))
	assert.Equal(t, "klaipeda", Fold("Klaipėda"))
	assert.Equal(t, "kucios", Fold("Kūčios"))
}
