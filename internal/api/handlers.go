package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"maestro/internal/domain"
	"maestro/internal/metrics"
	"maestro/internal/models"
	"maestro/internal/search"
)

// handleBookings serves POST /api/v1/bookings (create) and
// GET /api/v1/bookings?performer_id=|agency_id= (listing).
func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")

	switch r.Method {
	case http.MethodPost:
		s.createBooking(w, r)
	case http.MethodGet:
		s.listBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type createBookingRequest struct {
	PerformerID  int64  `json:"performer_id"`
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Date         string `json:"date"`
	Service      string `json:"service"`
	Details      string `json:"details"`
	Price        int64  `json:"price"`
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	var body createBookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var date time.Time
	if raw := strings.TrimSpace(body.Date); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	request := &models.BookingRequest{
		PerformerID:  body.PerformerID,
		CustomerID:   body.CustomerID,
		CustomerName: body.CustomerName,
		Date:         date,
		Service:      body.Service,
		Details:      body.Details,
		Price:        body.Price,
	}

	if err := s.bookings.CreateBooking(r.Context(), request); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if raw := q.Get("performer_id"); raw != "" {
		performerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid performer_id")
			return
		}
		bookings, err := s.bookings.ListPerformerBookings(r.Context(), performerID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
		return
	}

	if raw := q.Get("agency_id"); raw != "" {
		agencyID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid agency_id")
			return
		}
		bookings, err := s.bookings.ListAgencyBookings(r.Context(), agencyID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
		return
	}

	writeError(w, http.StatusBadRequest, "performer_id or agency_id is required")
}

// handleBookingByID serves GET /api/v1/bookings/{id} and the decision
// endpoints POST /api/v1/bookings/{id}/accept|reject|cancel.
func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	requestID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		booking, err := s.bookings.GetBooking(r.Context(), requestID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
		return
	}

	if len(parts) != 2 || r.Method != http.MethodPost {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var body struct {
		PerformerID int64 `json:"performer_id"`
		CustomerID  int64 `json:"customer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var booking *models.BookingRequest
	var err error
	switch parts[1] {
	case "accept":
		booking, err = s.bookings.AcceptBooking(r.Context(), requestID, body.PerformerID)
	case "reject":
		booking, err = s.bookings.RejectBooking(r.Context(), requestID, body.PerformerID)
	case "cancel":
		booking, err = s.bookings.CancelBooking(r.Context(), requestID, body.CustomerID)
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// handleModeration serves the per-kind queues:
//
//	GET  /api/v1/moderation/{kind}            pending items
//	GET  /api/v1/moderation/{kind}/count      queue badge
//	POST /api/v1/moderation/{kind}            submit
//	POST /api/v1/moderation/{kind}/{id}/approve|reject
func (s *HTTPServer) handleModeration(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("moderation")

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/moderation/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	kind, err := models.ParseModerationKind(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		items, err := s.moderation.ListPending(r.Context(), kind)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case len(parts) == 1 && r.Method == http.MethodPost:
		s.submitModeration(w, r, kind)

	case len(parts) == 2 && parts[1] == "count" && r.Method == http.MethodGet:
		count, err := s.moderation.PendingCount(r.Context(), kind)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"kind": kind, "count": count})

	case len(parts) == 3 && r.Method == http.MethodPost:
		s.decideModeration(w, r, parts[1], parts[2])

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

type submitModerationRequest struct {
	PerformerID int64                    `json:"performer_id"`
	Payload     models.ModerationPayload `json:"payload"`
}

func (s *HTTPServer) submitModeration(w http.ResponseWriter, r *http.Request, kind models.ModerationKind) {
	var body submitModerationRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := s.moderation.Submit(r.Context(), kind, body.PerformerID, body.Payload)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *HTTPServer) decideModeration(w http.ResponseWriter, r *http.Request, itemID, action string) {
	switch action {
	case "approve":
		if err := s.moderation.Approve(r.Context(), itemID); err != nil {
			writeDomainError(w, err)
			return
		}
	case "reject":
		var body struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.moderation.Reject(r.Context(), itemID, body.Reason); err != nil {
			writeDomainError(w, err)
			return
		}
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "ok"})
}

// handleSearch serves GET /api/v1/performers/search with the canonical
// filter query parameters.
func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("search")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filter := search.Parse(r.URL.Query())
	performers, err := s.performers.Search(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":      filter.Encode(),
		"performers": performers,
	})
}

func (s *HTTPServer) handlePerformerByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("performers")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/performers/"), "/")
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid performer id")
		return
	}

	performer, err := s.performers.GetPerformer(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, performer)
}

// handleCities serves GET /api/v1/cities?q=<prefix>.
func (s *HTTPServer) handleCities(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("cities")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	cities := s.performers.AutocompleteCities(r.URL.Query().Get("q"))
	if cities == nil {
		cities = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cities": cities})
}

// writeDomainError maps domain sentinels onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
