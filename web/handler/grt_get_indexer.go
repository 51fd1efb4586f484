package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/badgeth/the-graph-indexer-badges/pkg/httpkit"
	"github.com/badgeth/the-graph-indexer-badges/web/api"
	"github.com/badgeth/the-graph-indexer-badges/web/graph"
	"github.com/badgeth/the-graph-indexer-badges/web/handler/bind"
)

const GetIndexerRoute = http.MethodGet + " " + "/grt/indexers/{address}"

// ErrIndexerNotFound indicates no indexer exists under the requested address
var ErrIndexerNotFound = errors.New("indexer not found")

type GrtGetIndexer struct {
	finder graph.IndexersFinder
}

func NewGrtGetIndexer(finder graph.IndexersFinder) *GrtGetIndexer {
	return &GrtGetIndexer{
		finder: finder,
	}
}

func (h *GrtGetIndexer) AddRoutes(m *http.ServeMux) {
	m.Handle(GetIndexerRoute, httpkit.HandlerFunc(h.GetIndexer))
}

func (h *GrtGetIndexer) GetIndexer(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	// Parse the address path value using bind layer
	req, err := bind.GetIndexerRequest(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	// Create the domain address with validation
	address, err := graph.ParseAddress(req.Address)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	// Query the indexer
	indexer, err := h.finder.FindIndexerByAddress(r.Context(), address)
	if err != nil {
		return httpkit.JsonError(api.InternalServerError(fmt.Errorf("%w: %w", ErrQueryFailed, err)))
	}

	if indexer == nil {
		return httpkit.JsonError(api.NotFound(fmt.Errorf("%w: %s", ErrIndexerNotFound, address)))
	}

	// Return JSON response
	return httpkit.JSON(bind.GetIndexerResponse(*indexer))
}
