package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/icsiak/studyshare/internal/middleware"
	"github.com/icsiak/studyshare/internal/services/materials"
	"github.com/icsiak/studyshare/pkg/httpext"
)

const maxUploadBytes = 32 << 20

type uploadResponse struct {
	Material    materials.Material `json:"material"`
	DownloadURL string             `json:"download_url"`
}

// HandleUpload stores a multipart file in the object store and records its
// metadata. Object keys follow the <userID>-<unix>.<ext> convention.
func (a *API) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if a.Materials == nil || a.Storage == nil {
		httpext.JsonError(w, "Uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpext.JsonError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	if title == "" {
		httpext.JsonError(w, "Title is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpext.JsonError(w, "File is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	sess := middleware.GetSession(r)
	objectKey := fmt.Sprintf("%s-%d%s", sess.UserID, time.Now().Unix(), filepath.Ext(header.Filename))

	if _, err := a.Storage.Put(objectKey, file); err != nil {
		log.Error().Err(err).Str("key", objectKey).Msg("Failed to store upload")
		httpext.JsonError(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	record, err := a.Materials.Create(r.Context(), materials.Material{
		UserID:      sess.UserID,
		Title:       title,
		Description: r.FormValue("description"),
		Subject:     r.FormValue("subject"),
		ObjectKey:   objectKey,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to record upload")
		httpext.JsonError(w, "Failed to record upload", http.StatusInternalServerError)
		return
	}

	downloadURL, err := a.Storage.SignedURL(objectKey, time.Hour)
	if err != nil {
		httpext.JsonError(w, "Failed to sign download URL", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{Material: record, DownloadURL: downloadURL})
}

// HandleDownload serves an object through its signed URL.
func (a *API) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if a.Storage == nil {
		httpext.JsonError(w, "Downloads are not configured", http.StatusServiceUnavailable)
		return
	}

	key := mux.Vars(r)["key"]
	f, err := a.Storage.Open(key, r.URL.Query().Get("token"))
	if err != nil {
		httpext.JsonError(w, "Invalid or expired download link", http.StatusForbidden)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", key))
	http.ServeContent(w, r, key, time.Time{}, f)
}
