package search

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
)

// ProfileQuery configures a profile search.
type ProfileQuery struct {
	Text     string // free text over name, bio and tags
	City     domain.City
	Role     domain.Role
	Language domain.Language
	Date     domain.HolidayDate

	Limit  int
	Offset int
}

// ProfileResult is an ordered page of matching owner IDs.
type ProfileResult struct {
	Total  uint64   `json:"total"`
	TookMs int64    `json:"took_ms"`
	IDs    []string `json:"ids"`
}

// SearchProfiles executes a profile search. Without text the results are
// ordered by recent activity, otherwise by relevance.
func (s *SearchIndex) SearchProfiles(ctx context.Context, params ProfileQuery) (*ProfileResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = 20
	}

	req := bleve.NewSearchRequestOptions(buildProfileQuery(params), params.Limit, params.Offset, false)
	if params.Text == "" {
		req.SortBy([]string{"-last_active", "id"})
	} else {
		req.SortBy([]string{"-_score", "-last_active"})
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &ProfileResult{
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		IDs:    make([]string, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		result.IDs = append(result.IDs, hit.ID)
	}
	return result, nil
}

// buildProfileQuery constructs the Bleve query from params.
func buildProfileQuery(params ProfileQuery) query.Query {
	var queries []query.Query

	if params.Text != "" {
		text := Fold(params.Text)

		nameMatch := bleve.NewMatchQuery(text)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		tagsMatch := bleve.NewMatchQuery(text)
		tagsMatch.SetField("tags")
		tagsMatch.SetBoost(1.5)

		bioMatch := bleve.NewMatchQuery(text)
		bioMatch.SetField("bio")

		// Typo tolerance on names
		nameFuzzy := bleve.NewFuzzyQuery(text)
		nameFuzzy.SetField("name")
		nameFuzzy.SetFuzziness(1)
		nameFuzzy.SetBoost(0.8)

		queries = append(queries, bleve.NewDisjunctionQuery(nameMatch, tagsMatch, bioMatch, nameFuzzy))
	}

	if params.City != "" {
		queries = append(queries, termQuery("city", string(params.City)))
	}

	// A role filter also matches people who do both.
	if params.Role != "" {
		roles := []query.Query{termQuery("role", string(params.Role))}
		if params.Role != domain.RoleBoth {
			roles = append(roles, termQuery("role", string(domain.RoleBoth)))
		}
		queries = append(queries, bleve.NewDisjunctionQuery(roles...))
	}

	if params.Language != "" {
		queries = append(queries, termQuery("languages", string(params.Language)))
	}

	if params.Date != "" {
		queries = append(queries, termQuery("dates", string(params.Date)))
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

func termQuery(field, value string) query.Query {
	q := bleve.NewTermQuery(value)
	q.SetField(field)
	return q
}
