package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/karimzidan/pmdoc/internal/artifact"
	"github.com/karimzidan/pmdoc/internal/docstore"
	"github.com/karimzidan/pmdoc/internal/fallback"
	"github.com/karimzidan/pmdoc/internal/vectordb"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleProviderStatus(w http.ResponseWriter, r *http.Request) {
	statuses := s.fm.Status()
	if statuses == nil {
		statuses = []fallback.ProviderStatus{}
	}
	respondJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleFallbackHistory(w http.ResponseWriter, r *http.Request) {
	events := s.fm.History().Events()
	if events == nil {
		events = []fallback.Event{}
	}
	respondJSON(w, http.StatusOK, events)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.ListCategories(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cats == nil {
		cats = []docstore.Category{}
	}
	respondJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	cat, err := s.store.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, cat)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := s.store.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cat)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cat, err := s.store.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description)
	if err != nil {
		s.respondStoreErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cat)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondStoreErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if projects == nil {
		projects = []docstore.Project{}
	}
	respondJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	project, err := s.store.CreateProject(r.Context(), req.Name, req.Description)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, project)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, project)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListDocuments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []docstore.Record{}
	}
	respondJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.gen == nil {
		respondError(w, http.StatusServiceUnavailable, "generation is not configured")
		return
	}
	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	docType := artifact.Type(req.Type)
	if !artifact.Known(docType) {
		respondError(w, http.StatusBadRequest, "unknown document type "+strconv.Quote(req.Type))
		return
	}

	rec, err := s.gen.GenerateDocument(r.Context(), chi.URLParam(r, "id"), docType)
	if err != nil {
		if errors.Is(err, fallback.ErrNoProvidersAvailable) {
			respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleContextPreview(w http.ResponseWriter, r *http.Request) {
	docType := artifact.Type(r.URL.Query().Get("type"))
	if !artifact.Known(docType) {
		respondError(w, http.StatusBadRequest, "unknown or missing document type")
		return
	}

	content := s.budgeter.BuildContextForDocument(r.Context(), chi.URLParam(r, "id"), docType)
	respondJSON(w, http.StatusOK, map[string]any{
		"type":         docType,
		"context":      content,
		"token_budget": s.budgeter.MaxContextTokens(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		respondError(w, http.StatusServiceUnavailable, "semantic search is not configured")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := s.search.Search(r.Context(), chi.URLParam(r, "id"), query, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []vectordb.SearchResult{}
	}
	respondJSON(w, http.StatusOK, results)
}

func (s *Server) handleCost(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	total, err := s.store.TotalCost(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	entries, err := s.store.ListGenerations(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []docstore.GenerationEntry{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"total_cost_usd": total,
		"generations":    entries,
	})
}

func (s *Server) respondStoreErr(w http.ResponseWriter, err error) {
	if errors.Is(err, docstore.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}
