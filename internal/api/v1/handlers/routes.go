// Package handlers wires the v1 HTTP surface: the streaming chat relay,
// auth, material records, uploads and signed downloads.
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/icsiak/studyshare/internal/middleware"
	"github.com/icsiak/studyshare/internal/relay"
	"github.com/icsiak/studyshare/internal/services/materials"
	"github.com/icsiak/studyshare/internal/services/session"
	"github.com/icsiak/studyshare/internal/services/storage"
)

// API bundles the services behind the HTTP surface.
type API struct {
	Relay     *relay.Handler
	Upstream  relay.Upstream
	Sessions  *session.Service
	Materials *materials.Service
	Storage   *storage.Service
	Origin    string
}

// Router builds the v1 router.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.CORS(a.Origin))

	requireSession := middleware.RequireSession(a.Sessions)

	r.Handle("/v1/chat", middleware.RequireBearer(a.Relay)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/v1/ws/chat", a.HandleChatSocket)

	r.HandleFunc("/v1/auth/signin", a.HandleSignIn).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/signout", a.HandleSignOut).Methods(http.MethodPost)
	r.Handle("/v1/auth/session", requireSession(http.HandlerFunc(a.HandleSession))).Methods(http.MethodGet)

	r.HandleFunc("/v1/materials", a.HandleListMaterials).Methods(http.MethodGet)
	r.HandleFunc("/v1/materials/{id}", a.HandleGetMaterial).Methods(http.MethodGet)
	r.Handle("/v1/materials", requireSession(http.HandlerFunc(a.HandleCreateMaterial))).Methods(http.MethodPost)
	r.Handle("/v1/materials/{id}", requireSession(http.HandlerFunc(a.HandleUpdateMaterial))).Methods(http.MethodPut)
	r.Handle("/v1/materials/{id}", requireSession(http.HandlerFunc(a.HandleDeleteMaterial))).Methods(http.MethodDelete)

	r.Handle("/v1/uploads", requireSession(http.HandlerFunc(a.HandleUpload))).Methods(http.MethodPost)
	r.HandleFunc("/v1/files/{key}", a.HandleDownload).Methods(http.MethodGet)

	return r
}
