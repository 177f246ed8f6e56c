// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hostaway_sync/internal/app"
	"hostaway_sync/internal/domain"
)

const (
	readTimeout = 15 * time.Second
	// a full sync walks every listing; give it room
	adminTimeout = 5 * time.Minute
	maxBodyBytes = 1 << 20
)

type Handlers struct {
	Q       *app.QueryService
	Sync    *app.SyncService
	Prices  *app.PriceService
	Booking *app.BookingService

	MapsKey    string
	AdminToken string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type syncResponse struct {
	Status  string              `json:"status"`
	Summary *domain.SyncSummary `json:"summary,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Group(func(r chi.Router) {
		r.Use(Timeout(readTimeout))
		r.Get("/v1/properties", h.searchProperties)
		r.Get("/v1/properties/{slug}", h.getProperty)
		r.Get("/v1/listings/{listingID}/price", h.getPrice)
		r.Post("/v1/bookings", h.createBooking)
		r.Get("/v1/amenities", h.listAmenities)
		r.Get("/v1/cities", h.listCities)
		r.Get("/v1/client-config", h.clientConfig)
	})

	s.mux.Route("/v1/admin", func(r chi.Router) {
		r.Use(RequireToken(h.AdminToken))
		r.Use(Timeout(adminTimeout))
		r.Post("/sync", h.runSync)
		r.Put("/amenities/active", h.setActiveAmenities)
		r.Get("/stats", h.stats)
		r.Get("/slug", h.resolveSlug)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrSyncInProgress):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrAuthenticationFailed),
		errors.Is(err, domain.ErrFetchFailed),
		errors.Is(err, domain.ErrPriceUnavailable),
		errors.Is(err, domain.ErrBookingFailed):
		writeProblem(w, http.StatusBadGateway, "Upstream Error", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
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

// writeWithETag answers 304 when the client already holds this representation.
func writeWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON body")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return false
	}
	return true
}

// queryInt parses an optional non-negative integer parameter.
func queryInt(r *http.Request, name string) (int, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (h *Handlers) searchProperties(w http.ResponseWriter, r *http.Request) {
	q := domain.SearchQuery{Location: r.URL.Query().Get("location")}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"adults", &q.Adults}, {"children", &q.Children}, {"infants", &q.Infants}} {
		n, ok := queryInt(r, p.name)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Invalid "+p.name, p.name+" must be a non-negative integer")
			return
		}
		*p.dst = n
	}
	// amenities=WiFi,Pool and repeated amenity=WiFi are both accepted
	for _, v := range r.URL.Query()["amenities"] {
		q.Amenities = append(q.Amenities, strings.Split(v, ",")...)
	}
	q.Amenities = append(q.Amenities, r.URL.Query()["amenity"]...)

	out, err := h.Q.Search(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getProperty(w http.ResponseWriter, r *http.Request) {
	p, err := h.Q.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeWithETag(w, r, p)
}

func (h *Handlers) getPrice(w http.ResponseWriter, r *http.Request) {
	quote, err := h.Prices.LookupPrice(r.Context(),
		chi.URLParam(r, "listingID"),
		r.URL.Query().Get("check_in"),
		r.URL.Query().Get("check_out"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}
	res, err := h.Booking.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handlers) listAmenities(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))
	out, err := h.Q.Amenities(r.Context(), activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeWithETag(w, r, out)
}

func (h *Handlers) listCities(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Cities(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []string{}
	}
	writeWithETag(w, r, out)
}

func (h *Handlers) clientConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"maps_api_key": h.MapsKey})
}

func (h *Handlers) runSync(w http.ResponseWriter, r *http.Request) {
	// the run outlives a dropped client or the admin timeout
	sum, err := h.Sync.TryRunSync(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, domain.ErrSyncInProgress):
		writeError(w, err)
	case err != nil:
		writeJSON(w, http.StatusBadGateway, syncResponse{Status: domain.SyncStatusFailed, Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, syncResponse{Status: sum.Status(), Summary: &sum})
	}
}

type activeAmenitiesRequest struct {
	AmenityIDs []string `json:"amenity_ids"`
}

func (h *Handlers) setActiveAmenities(w http.ResponseWriter, r *http.Request) {
	var req activeAmenitiesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.Q.SetActiveAmenities(r.Context(), req.AmenityIDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Q.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handlers) resolveSlug(w http.ResponseWriter, r *http.Request) {
	slug, err := h.Sync.ResolveSlug(r.Context(), r.URL.Query().Get("title"), r.URL.Query().Get("listing_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"slug": slug})
}
