package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/icsiak/studyshare/internal/middleware"
	"github.com/icsiak/studyshare/internal/services/materials"
	"github.com/icsiak/studyshare/pkg/httpext"
)

type materialRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Subject     string `json:"subject"`
}

// HandleListMaterials returns all material records, newest first.
func (a *API) HandleListMaterials(w http.ResponseWriter, r *http.Request) {
	if a.Materials == nil {
		httpext.JsonError(w, "Record store is not configured", http.StatusServiceUnavailable)
		return
	}

	records, err := a.Materials.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list materials")
		httpext.JsonError(w, "Failed to list materials", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// HandleGetMaterial returns one material record.
func (a *API) HandleGetMaterial(w http.ResponseWriter, r *http.Request) {
	if a.Materials == nil {
		httpext.JsonError(w, "Record store is not configured", http.StatusServiceUnavailable)
		return
	}

	record, err := a.Materials.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, materials.ErrNotFound) {
		httpext.JsonError(w, "Material not found", http.StatusNotFound)
		return
	}
	if err != nil {
		httpext.JsonError(w, "Failed to load material", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// HandleCreateMaterial creates a metadata record owned by the caller.
func (a *API) HandleCreateMaterial(w http.ResponseWriter, r *http.Request) {
	if a.Materials == nil {
		httpext.JsonError(w, "Record store is not configured", http.StatusServiceUnavailable)
		return
	}

	var req materialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		httpext.JsonError(w, "Title is required", http.StatusBadRequest)
		return
	}

	sess := middleware.GetSession(r)
	record, err := a.Materials.Create(r.Context(), materials.Material{
		UserID:      sess.UserID,
		Title:       req.Title,
		Description: req.Description,
		Subject:     req.Subject,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create material")
		httpext.JsonError(w, "Failed to create material", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// HandleUpdateMaterial updates a record; only the owner may.
func (a *API) HandleUpdateMaterial(w http.ResponseWriter, r *http.Request) {
	if a.Materials == nil {
		httpext.JsonError(w, "Record store is not configured", http.StatusServiceUnavailable)
		return
	}

	id := mux.Vars(r)["id"]
	existing, err := a.Materials.Get(r.Context(), id)
	if errors.Is(err, materials.ErrNotFound) {
		httpext.JsonError(w, "Material not found", http.StatusNotFound)
		return
	}
	if err != nil {
		httpext.JsonError(w, "Failed to load material", http.StatusInternalServerError)
		return
	}
	if existing.UserID != middleware.GetSession(r).UserID {
		httpext.JsonError(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req materialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		httpext.JsonError(w, "Title is required", http.StatusBadRequest)
		return
	}

	record, err := a.Materials.Update(r.Context(), materials.Material{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Subject:     req.Subject,
	})
	if err != nil {
		httpext.JsonError(w, "Failed to update material", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// HandleDeleteMaterial deletes a record; only the owner may.
func (a *API) HandleDeleteMaterial(w http.ResponseWriter, r *http.Request) {
	if a.Materials == nil {
		httpext.JsonError(w, "Record store is not configured", http.StatusServiceUnavailable)
		return
	}

	id := mux.Vars(r)["id"]
	existing, err := a.Materials.Get(r.Context(), id)
	if errors.Is(err, materials.ErrNotFound) {
		httpext.JsonError(w, "Material not found", http.StatusNotFound)
		return
	}
	if err != nil {
		httpext.JsonError(w, "Failed to load material", http.StatusInternalServerError)
		return
	}
	if existing.UserID != middleware.GetSession(r).UserID {
		httpext.JsonError(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := a.Materials.Delete(r.Context(), id); err != nil {
		httpext.JsonError(w, "Failed to delete material", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
