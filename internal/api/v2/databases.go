package api

import (
	"net/http"

	"github.com/hashicorp-forge/notion-mirror/internal/server"
	"github.com/hashicorp-forge/notion-mirror/pkg/cache"
	"github.com/hashicorp-forge/notion-mirror/pkg/client"
)

// DatabasesHandler serves cached databases and their documents:
//
//	GET /api/v2/databases
//	GET /api/v2/databases/{database}
//	GET /api/v2/databases/{database}/documents
//	GET /api/v2/databases/{database}/documents/{document}
//	GET /api/v2/databases/{database}/documents/by-id/{id}
//
// Databases and documents are addressed by slug unless noted.
func DatabasesHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			segments, err := parsePathSegments(r.URL.Path, "databases")
			if err != nil {
				http.Error(w, "Not found", http.StatusNotFound)
				return
			}

			switch {
			case len(segments) == 0:
				listDatabases(srv, w, r)
			case len(segments) == 1:
				getDatabase(srv, w, r, segments[0])
			case len(segments) == 2 && segments[1] == "documents":
				listDocuments(srv, w, r, segments[0])
			case len(segments) == 3 && segments[1] == "documents":
				getDocument(srv, w, r, segments[0], cache.BySlug(segments[2]))
			case len(segments) == 4 && segments[1] == "documents" &&
				segments[2] == "by-id":
				getDocument(srv, w, r, segments[0], cache.ByID(segments[3]))
			default:
				http.Error(w, "Not found", http.StatusNotFound)
			}

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
	})
}

func listDatabases(srv server.Server, w http.ResponseWriter, r *http.Request) {
	dbs, err := srv.Datastore.Query.Databases(r.Context())
	if err != nil {
		srv.Logger.Error("error querying databases", "error", err)
		http.Error(w, "Error getting databases", http.StatusInternalServerError)
		return
	}

	resp := make([]client.Database, 0, len(dbs))
	for i := range dbs {
		resp = append(resp, client.NewDatabase(&dbs[i]))
	}
	respondJSON(srv, w, resp, "error encoding databases response")
}

func getDatabase(
	srv server.Server, w http.ResponseWriter, r *http.Request, slug string,
) {
	db, err := srv.Datastore.Query.Database(r.Context(), cache.BySlug(slug))
	if err != nil {
		srv.Logger.Error("error querying database",
			"error", err,
			"database", slug,
		)
		http.Error(w, "Error getting database", http.StatusInternalServerError)
		return
	}
	if db == nil {
		http.Error(w, "Database not found", http.StatusNotFound)
		return
	}

	respondJSON(srv, w, client.NewDatabase(db), "error encoding database response")
}

func listDocuments(
	srv server.Server, w http.ResponseWriter, r *http.Request, slug string,
) {
	docs, err := srv.Datastore.Query.DocumentsInDatabase(r.Context(), cache.BySlug(slug))
	if err != nil {
		srv.Logger.Error("error querying documents",
			"error", err,
			"database", slug,
		)
		http.Error(w, "Error getting documents", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		http.Error(w, "Database not found", http.StatusNotFound)
		return
	}

	respondJSON(srv, w, client.NewDocuments(docs), "error encoding documents response")
}

func getDocument(
	srv server.Server,
	w http.ResponseWriter,
	r *http.Request,
	databaseSlug string,
	document cache.IDOrSlug,
) {
	doc, err := srv.Datastore.Query.Document(
		r.Context(), cache.BySlug(databaseSlug), document)
	if err != nil {
		srv.Logger.Error("error querying document",
			"error", err,
			"database", databaseSlug,
			"document", document.String(),
		)
		http.Error(w, "Error getting document", http.StatusInternalServerError)
		return
	}
	if doc == nil {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}

	respondJSON(srv, w, client.NewDocument(doc), "error encoding document response")
}
