// Package gateway implements the request pipeline: parameter
// normalization, dispatch to the catalog, error classification and the
// JSON response envelope.
package gateway

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/appsift/appstore-gateway/internal/appstore"
	"github.com/appsift/appstore-gateway/internal/httputil"
	"github.com/appsift/appstore-gateway/internal/metrics"
	"github.com/appsift/appstore-gateway/pkg/logger"
)

// Handler routes the eight catalog operations.
type Handler struct {
	catalog   appstore.Catalog
	log       *logger.Logger
	metrics   *metrics.Metrics
	version   string
	startTime time.Time
}

// New creates the gateway handler.
func New(catalog appstore.Catalog, log *logger.Logger, m *metrics.Metrics, version string) *Handler {
	return &Handler{
		catalog:   catalog,
		log:       log,
		metrics:   m,
		version:   version,
		startTime: time.Now(),
	}
}

// RegisterRoutes attaches the operation routes to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/app/{id}", h.handleApp).Methods(http.MethodGet)
	r.HandleFunc("/list/{collection}", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/search", h.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/developer/{devId}", h.handleDeveloper).Methods(http.MethodGet)
	r.HandleFunc("/reviews/{id}", h.handleReviews).Methods(http.MethodGet)
	r.HandleFunc("/similar/{id}", h.handleSimilar).Methods(http.MethodGet)
	r.HandleFunc("/privacy/{id}", h.handlePrivacy).Methods(http.MethodGet)
	r.HandleFunc("/version-history/{id}", h.handleVersionHistory).Methods(http.MethodGet)
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
}

func (h *Handler) handleApp(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := appstore.AppParams{
		ID:      mux.Vars(r)["id"],
		Ratings: q.Get("ratings") == "true",
		Country: q.Get("country"),
		Lang:    q.Get("lang"),
	}

	result, err := h.catalog.App(r.Context(), p)
	if err != nil {
		h.failClassified(w, r, "app", err)
		return
	}
	h.succeed(w, "app", result)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := appstore.ListParams{
		Collection: mux.Vars(r)["collection"],
		Country:    q.Get("country"),
	}

	var ok bool
	if p.Category, ok = h.intQuery(w, r, "category"); !ok {
		return
	}
	if p.Num, ok = h.intQuery(w, r, "num"); !ok {
		return
	}

	result, err := h.catalog.List(r.Context(), p)
	if err != nil {
		h.failInternal(w, r, "list", err)
		return
	}
	h.succeed(w, "list", result)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := appstore.SearchParams{
		Term:    q.Get("term"),
		Country: q.Get("country"),
	}

	var ok bool
	if p.Num, ok = h.intQuery(w, r, "num"); !ok {
		return
	}
	if p.Page, ok = h.intQuery(w, r, "page"); !ok {
		return
	}

	result, err := h.catalog.Search(r.Context(), p)
	if err != nil {
		h.failInternal(w, r, "search", err)
		return
	}
	h.succeed(w, "search", result)
}

func (h *Handler) handleDeveloper(w http.ResponseWriter, r *http.Request) {
	p := appstore.DeveloperParams{
		DevID:   mux.Vars(r)["devId"],
		Country: r.URL.Query().Get("country"),
	}

	result, err := h.catalog.Developer(r.Context(), p)
	if err != nil {
		h.failClassified(w, r, "developer", err)
		return
	}
	h.succeed(w, "developer", result)
}

func (h *Handler) handleReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := appstore.ReviewsParams{
		ID:      mux.Vars(r)["id"],
		Sort:    q.Get("sort"),
		Country: q.Get("country"),
	}

	var ok bool
	if p.Page, ok = h.intQuery(w, r, "page"); !ok {
		return
	}

	result, err := h.catalog.Reviews(r.Context(), p)
	if err != nil {
		h.failInternal(w, r, "reviews", err)
		return
	}
	h.succeed(w, "reviews", result)
}

func (h *Handler) handleSimilar(w http.ResponseWriter, r *http.Request) {
	p := appstore.IDParams{
		ID:      mux.Vars(r)["id"],
		Country: r.URL.Query().Get("country"),
	}

	result, err := h.catalog.Similar(r.Context(), p)
	if err != nil {
		h.failInternal(w, r, "similar", err)
		return
	}
	h.succeed(w, "similar", result)
}

func (h *Handler) handlePrivacy(w http.ResponseWriter, r *http.Request) {
	p := appstore.IDParams{
		ID:      mux.Vars(r)["id"],
		Country: r.URL.Query().Get("country"),
	}

	result, err := h.catalog.Privacy(r.Context(), p)
	if err != nil {
		h.failClassified(w, r, "privacy", err)
		return
	}
	h.succeed(w, "privacy", result)
}

func (h *Handler) handleVersionHistory(w http.ResponseWriter, r *http.Request) {
	p := appstore.IDParams{
		ID:      mux.Vars(r)["id"],
		Country: r.URL.Query().Get("country"),
	}

	result, err := h.catalog.VersionHistory(r.Context(), p)
	if err != nil {
		h.failClassified(w, r, "versionHistory", err)
		return
	}
	h.succeed(w, "versionHistory", result)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "appstore-gateway",
		"version": h.version,
		"uptime":  time.Since(h.startTime).String(),
	})
}
