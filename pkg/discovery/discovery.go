// Package discovery implements scored natural-language and
// category-based search over the tool registry. It holds no state of
// its own: every query is a pure function of the registry snapshot.
package discovery

import (
	"errors"
	"fmt"
	"sort"

	"github.com/orienthq/orient/pkg/tools"
)

// DefaultLimit caps search results when the caller does not specify one.
const DefaultLimit = 10

// ErrInvalidCategory is returned by Browse for categories outside the
// closed set.
var ErrInvalidCategory = errors.New("invalid category")

// SearchResult pairs a tool with its relevance score for one query.
// Results are created fresh per query and never cached.
type SearchResult struct {
	Tool      tools.Descriptor `json:"tool"`
	Category  tools.Category   `json:"category"`
	Score     int              `json:"score"`
	MatchedOn []string         `json:"matched_on"`
}

// SearchResponse carries the ranked page plus the total number of
// tools that matched, for "N found, showing top K" reporting.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
}

// Service answers discovery queries against a registry.
type Service struct {
	registry *tools.Registry
}

// NewService creates a discovery service over the given registry.
func NewService(registry *tools.Registry) *Service {
	return &Service{registry: registry}
}

// ListCategories returns every category with its live tool count.
func (s *Service) ListCategories() []tools.CategoryInfo {
	categories := tools.AllCategories()
	infos := make([]tools.CategoryInfo, 0, len(categories))
	for _, category := range categories {
		infos = append(infos, tools.CategoryInfo{
			Name:        category,
			Description: tools.CategoryDescription(category),
			Keywords:    tools.CategoryKeywords(category),
			ToolCount:   len(s.registry.ByCategory(category)),
		})
	}
	return infos
}

// Browse returns all tools in a category. A category outside the
// closed set is an error carrying the valid names; an empty but valid
// category returns an empty list.
func (s *Service) Browse(category string) ([]tools.Descriptor, error) {
	cat, ok := tools.ParseCategory(category)
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid categories: %v)",
			ErrInvalidCategory, category, tools.AllCategories())
	}
	return s.registry.ByCategory(cat), nil
}

// Search ranks every registered tool against the query and returns at
// most limit results. Tools with score zero are excluded. Ordering is
// a total order: score descending, then tool name ascending.
func (s *Service) Search(query string, limit int) SearchResponse {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var results []SearchResult
	for _, desc := range s.registry.All() {
		score, matchedOn := scoreTool(desc, query)
		if score <= 0 {
			continue
		}
		results = append(results, SearchResult{
			Tool:      desc,
			Category:  desc.Category,
			Score:     score,
			MatchedOn: matchedOn,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Tool.Name < results[j].Tool.Name
	})

	total := len(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return SearchResponse{Results: results, Total: total}
}
