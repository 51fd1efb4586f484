package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/badgeth/the-graph-indexer-badges/pkg/httpkit"
	"github.com/badgeth/the-graph-indexer-badges/web/api"
	"github.com/badgeth/the-graph-indexer-badges/web/graph"
	"github.com/badgeth/the-graph-indexer-badges/web/handler/bind"
)

const GetIndexersRoute = http.MethodGet + " " + "/grt/indexers"

// Sentinel errors
var (
	ErrQueryFailed = errors.New("failed to query indexers")
)

type GrtGetIndexers struct {
	finder graph.IndexersFinder
}

func NewGrtGetIndexers(finder graph.IndexersFinder) *GrtGetIndexers {
	return &GrtGetIndexers{
		finder: finder,
	}
}

func (h *GrtGetIndexers) AddRoutes(m *http.ServeMux) {
	m.Handle(GetIndexersRoute, httpkit.HandlerFunc(h.GetIndexers))
}

func (h *GrtGetIndexers) GetIndexers(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	// Parse query parameters using bind layer
	req, err := bind.GetIndexersRequest(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	// Create domain criteria with validation
	criteria, err := graph.NewIndexersCriteria(req.OverDelegated, req.Page, req.PerPage)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	// Query indexers
	page, err := h.finder.FindIndexers(r.Context(), criteria)
	if err != nil {
		return httpkit.JsonError(api.InternalServerError(fmt.Errorf("%w: %w", ErrQueryFailed, err)))
	}

	// Build GitHub-style Link header for navigation
	if linkHeader := buildPaginationLinks(page, r.URL); linkHeader != "" {
		w.Header().Set("Link", linkHeader)
	}

	// Return JSON response
	resp := bind.GetIndexersResponse(page.Indexers)
	return httpkit.JSON(resp)
}

// buildPaginationLinks creates GitHub-style Link header for pagination navigation
func buildPaginationLinks(page *graph.IndexersPage, baseURL *url.URL) string {
	var links []string

	// Build base URL with existing query params (like the over_delegated filter)
	u := *baseURL
	query := u.Query()

	// Previous page link
	if page.HasPrevious() {
		query.Set("page", fmt.Sprintf("%d", page.Number-1))
		query.Set("per_page", fmt.Sprintf("%d", page.Size))
		u.RawQuery = query.Encode()
		links = append(links, fmt.Sprintf(`<%s>; rel="prev"`, u.String()))
	}

	// Next page link (GitHub-style: only if we know there are more pages)
	if page.HasNext() {
		query.Set("page", fmt.Sprintf("%d", page.Number+1))
		query.Set("per_page", fmt.Sprintf("%d", page.Size))
		u.RawQuery = query.Encode()
		links = append(links, fmt.Sprintf(`<%s>; rel="next"`, u.String()))
	}

	// Note: We intentionally omit "first" and "last" links for simplicity and performance.
	// rel="first" is redundant (always page=1) and rel="last" requires expensive count(*) queries.
	// Essential navigation (prev/next) works perfectly without the overhead.

	return strings.Join(links, ", ")
}
