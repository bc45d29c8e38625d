package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp-forge/notion-mirror/internal/server"
)

// parsePathSegments parses a URL path with the format
// "/api/v2/{apiPath}/{segment}/..." and returns the non-empty segments after
// the API path.
func parsePathSegments(url, apiPath string) ([]string, error) {
	prefix := fmt.Sprintf("/api/v2/%s", apiPath)
	if !strings.HasPrefix(url, prefix) {
		return nil, fmt.Errorf("invalid URL path")
	}
	url = strings.TrimPrefix(url, prefix)

	// A prefix match on "databases" must not accept "databasesfoo".
	if url != "" && !strings.HasPrefix(url, "/") {
		return nil, fmt.Errorf("invalid URL path")
	}

	var result []string
	for _, v := range strings.Split(url, "/") {
		if v != "" {
			result = append(result, v)
		}
	}
	return result, nil
}

// respondJSON writes v as a JSON response with status 200.
func respondJSON(srv server.Server, w http.ResponseWriter, v any, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		srv.Logger.Error(errMsg, "error", err)
		http.Error(w, "Error encoding response", http.StatusInternalServerError)
		return
	}
}
