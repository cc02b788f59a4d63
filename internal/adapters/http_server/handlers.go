package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"tabito/internal/app"
	"tabito/internal/domain"
)

type Handlers struct {
	Imports *app.ImportService
	Q       *app.QueryService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/import/search", h.previewSearch)
	s.mux.Post("/v1/import", h.fullImport)
	s.mux.Post("/v1/import/quick", h.quickImport)

	s.mux.Get("/v1/experiences/{id}", h.getExperience)
	s.mux.Get("/v1/experiences", h.listExperiences)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// parseSource validates the ?source / body source value; empty defaults to
// the commercial places provider.
func parseSource(s string) (domain.Source, bool) {
	switch domain.Source(s) {
	case domain.SourcePlaces, "":
		return domain.SourcePlaces, true
	case domain.SourceOSM:
		return domain.SourceOSM, true
	}
	return "", false
}

func parseCategory(s string) (domain.Category, bool) {
	switch domain.Category(s) {
	case domain.CategoryHotel, domain.CategoryAttraction, domain.CategoryRestaurant:
		return domain.Category(s), true
	case "":
		return domain.CategoryAttraction, true
	}
	return "", false
}

// GET /v1/import/search?query&source&prefecture&category
func (h *Handlers) previewSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeProblem(w, http.StatusBadRequest, "Missing query", "query parameter is required")
		return
	}
	source, ok := parseSource(r.URL.Query().Get("source"))
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid source", "source must be places or osm")
		return
	}
	category, ok := parseCategory(r.URL.Query().Get("category"))
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid category", "category must be Hoteles, Atracciones or Restaurantes")
		return
	}
	prefecture := r.URL.Query().Get("prefecture")
	if prefecture == "" {
		prefecture = "Tokio"
	}

	results, err := h.Imports.PreviewSearch(r.Context(), query, source, prefecture, category)
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Search failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": results,
		"count":   len(results),
		"source":  source,
	})
}

type fullImportRequest struct {
	Source   string              `json:"source"`
	Data     []domain.Experience `json:"data"`
	Category string              `json:"category"`
}

// POST /v1/import
func (h *Handlers) fullImport(w http.ResponseWriter, r *http.Request) {
	var req fullImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	source, ok := parseSource(req.Source)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid source", "source must be places or osm")
		return
	}
	category, ok := parseCategory(req.Category)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid category", "category must be Hoteles, Atracciones or Restaurantes")
		return
	}
	if len(req.Data) == 0 {
		writeProblem(w, http.StatusBadRequest, "Empty batch", "data must contain at least one candidate")
		return
	}

	res := h.Imports.FullImport(r.Context(), source, req.Data, category)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"imported":   res.Imported,
		"duplicates": res.Duplicates,
		"errors":     res.Errors,
		"details":    res.Outcomes,
	})
}

type quickImportRequest struct {
	Query      string `json:"query"`
	Category   string `json:"category"`
	Prefecture string `json:"prefecture"`
	Limit      int    `json:"limit"`
	Source     string `json:"source"`
}

// POST /v1/import/quick
func (h *Handlers) quickImport(w http.ResponseWriter, r *http.Request) {
	var req quickImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if req.Query == "" {
		writeProblem(w, http.StatusBadRequest, "Missing query", "query is required")
		return
	}
	source, ok := parseSource(req.Source)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid source", "source must be places or osm")
		return
	}
	category, ok := parseCategory(req.Category)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid category", "category must be Hoteles, Atracciones or Restaurantes")
		return
	}
	if req.Prefecture == "" {
		req.Prefecture = "Tokio"
	}
	if req.Limit <= 0 || req.Limit > 20 {
		req.Limit = 5
	}

	res, err := h.Imports.QuickImport(r.Context(), req.Query, category, req.Prefecture, req.Limit, source)
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Import failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"imported":   res.Imported,
		"duplicates": res.Duplicates,
		"errors":     res.Errors,
		"source":     source,
		"message": strconv.Itoa(res.Imported) + " experiencias importadas, " +
			strconv.Itoa(res.Duplicates) + " duplicadas, " +
			strconv.Itoa(res.Errors) + " con errores",
	})
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) getExperience(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	rec, err := h.Q.GetExperience(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "experience not found")
		return
	}

	etag, body := calcETagAndBody(rec)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getExperience body")
	}
}

func (h *Handlers) listExperiences(w http.ResponseWriter, r *http.Request) {
	q := domain.ListQuery{
		Prefecture: r.URL.Query().Get("prefecture"),
		Limit:      50,
	}
	if cat := r.URL.Query().Get("category"); cat != "" {
		category, ok := parseCategory(cat)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Invalid category", "category must be Hoteles, Atracciones or Restaurantes")
			return
		}
		q.Category = category
	}
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		q.Limit = l
	}

	out, err := h.Q.ListExperiences(r.Context(), q)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List failed", err.Error())
		return
	}

	etag, body := calcETagAndBody(out)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listExperiences body")
	}
}
