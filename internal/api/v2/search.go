package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hashicorp-forge/notion-mirror/internal/server"
	"github.com/hashicorp-forge/notion-mirror/pkg/datastore"
	"github.com/hashicorp-forge/notion-mirror/pkg/search"
)

// SearchResponse is the response body of the search endpoint.
type SearchResponse struct {
	Hits             []search.Document `json:"hits"`
	TotalHits        int               `json:"totalHits"`
	Page             int               `json:"page"`
	PerPage          int               `json:"perPage"`
	ProcessingTimeMS int64             `json:"processingTimeMS"`
}

// SearchHandler runs full-text queries against mirrored documents.
//
//	GET /api/v2/search?q={query}&database={slug}&page={n}&perPage={n}
func SearchHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			params := r.URL.Query()

			q := params.Get("q")
			if q == "" {
				http.Error(w, "Missing required query parameter: q",
					http.StatusBadRequest)
				return
			}

			page, err := intParam(params.Get("page"))
			if err != nil {
				http.Error(w, fmt.Sprintf("Bad request: %q", err), http.StatusBadRequest)
				return
			}
			perPage, err := intParam(params.Get("perPage"))
			if err != nil {
				http.Error(w, fmt.Sprintf("Bad request: %q", err), http.StatusBadRequest)
				return
			}

			res, err := srv.Datastore.Query.Search(r.Context(), &search.Query{
				Query:        q,
				DatabaseSlug: params.Get("database"),
				Page:         page,
				PerPage:      perPage,
			})
			if errors.Is(err, datastore.ErrSearchDisabled) {
				http.Error(w, "Search is not configured", http.StatusNotImplemented)
				return
			}
			if err != nil {
				srv.Logger.Error("error searching documents",
					"error", err,
					"query", q,
				)
				http.Error(w, "Error searching documents",
					http.StatusInternalServerError)
				return
			}

			hits := res.Hits
			if hits == nil {
				hits = []search.Document{}
			}
			respondJSON(srv, w, SearchResponse{
				Hits:             hits,
				TotalHits:        res.TotalHits,
				Page:             res.Page,
				PerPage:          res.PerPage,
				ProcessingTimeMS: res.ProcessingTime.Milliseconds(),
			}, "error encoding search response")

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
	})
}

// intParam parses an optional non-negative integer query parameter.
func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

