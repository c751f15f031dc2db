package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/apperr"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/event"
	"github.com/Shivanand-hulikatti/event-reg-and-ticketing/internal/store"
)

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	var draft event.EventDraft
	if err := decodeJSON(r, &draft); err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.InvalidInput, "malformed request body", err))
		return
	}

	created, err := s.events.CreateEvent(r.Context(), principal.UserID, draft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, eventPayload(*created))
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, apperr.New(apperr.InvalidInput, "invalid event id"))
		return
	}

	view, err := s.events.GetEvent(r.Context(), id, PrincipalFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, viewPayload(view))
}

func (s *Server) handleEventStats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, apperr.New(apperr.InvalidInput, "invalid event id"))
		return
	}

	stats, err := s.events.Stats(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, statsPayload(stats))
}

func (s *Server) handleListUpcoming(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := event.ListFilter{
		Search:    q.Get("search"),
		Location:  q.Get("location"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Page:      queryInt(q, "page", 1),
		Limit:     queryInt(q, "limit", 10),
	}
	if v := q.Get("min_capacity"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.MinCapacity = &n
		}
	}
	if v := q.Get("max_capacity"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.MaxCapacity = &n
		}
	}
	if v := q.Get("date_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.DateFrom = &t
		}
	}
	if v := q.Get("date_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.DateTo = &t
		}
	}

	page, err := s.events.ListUpcoming(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, pagePayload(page))
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, apperr.New(apperr.InvalidInput, "invalid event id"))
		return
	}

	var patch event.EventPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.InvalidInput, "malformed request body", err))
		return
	}

	principal := PrincipalFromContext(r.Context())
	updated, err := s.events.UpdateEvent(r.Context(), principal.UserID, id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, eventPayload(*updated))
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, apperr.New(apperr.InvalidInput, "invalid event id"))
		return
	}

	principal := PrincipalFromContext(r.Context())
	if err := s.events.DeleteEvent(r.Context(), principal.UserID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "event deleted")
}

func (s *Server) handleListOwned(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	events, err := s.events.ListOwned(r.Context(), principal.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]eventDTO, len(events))
	for i, e := range events {
		out[i] = eventPayload(e)
	}
	writeData(w, http.StatusOK, out)
}

func queryInt(q interface{ Get(string) string }, key string, fallback int) int {
	v := q.Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

type eventDTO struct {
	ID                   int64     `json:"id"`
	Title                string    `json:"title"`
	Description          *string   `json:"description,omitempty"`
	DateTime             time.Time `json:"date_time"`
	Location             *string   `json:"location,omitempty"`
	Capacity             int       `json:"capacity"`
	CurrentRegistrations int       `json:"current_registrations"`
	AvailableSpots       int       `json:"available_spots"`
	IsFull               bool      `json:"is_full"`
	CreatedBy            int64     `json:"created_by"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func eventPayload(e store.Event) eventDTO {
	return eventDTO{
		ID:                   e.ID,
		Title:                e.Title,
		Description:          e.Description,
		DateTime:             e.DateTime,
		Location:             e.Location,
		Capacity:             e.Capacity,
		CurrentRegistrations: e.CurrentRegistrations,
		AvailableSpots:       e.AvailableSpots(),
		IsFull:               e.IsFull(),
		CreatedBy:            e.CreatedBy,
		IsActive:             e.IsActive,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

type permissionsDTO struct {
	CanEdit      bool `json:"can_edit"`
	IsRegistered bool `json:"is_registered"`
	CanRegister  bool `json:"can_register"`
}

func viewPayload(v *event.View) map[string]any {
	payload := map[string]any{
		"event":            eventPayload(v.Event),
		"available_spots":  v.AvailableSpots,
		"is_full":          v.IsFull,
		"time_until_event": v.TimeUntilEvent.Seconds(),
		"has_started":      v.HasStarted,
		"user_permissions": permissionsDTO{
			CanEdit:      v.Permissions.CanEdit,
			IsRegistered: v.Permissions.IsRegistered,
			CanRegister:  v.Permissions.CanRegister,
		},
	}
	if v.Registrants != nil {
		payload["registrants"] = v.Registrants
	} else {
		payload["registrant_count"] = v.RegistrantCount
	}
	return payload
}

func statsPayload(st *event.Stats) map[string]any {
	return map[string]any{
		"event_id":                         st.EventID,
		"capacity":                         st.Capacity,
		"confirmed_registrations":          st.Counts.Confirmed,
		"cancelled_registrations":          st.Counts.Cancelled,
		"waitlist_registrations":           st.Counts.Waitlist,
		"pending_registrations":            st.Counts.Pending,
		"registration_rate_percentage":     st.RegistrationRatePercentage,
		"first_registration":               st.FirstRegistration,
		"latest_registration":              st.LatestRegistration,
		"average_registration_delay_hours": st.AverageRegistrationDelayHours,
		"capacity_utilization": map[string]any{
			"used":            st.CapacityUtilization.Used,
			"available":       st.CapacityUtilization.Available,
			"percentage_full": st.CapacityUtilization.PercentageFull,
		},
		"time_until_event_seconds": st.TimeUntilEvent.Seconds(),
		"is_event_soon":            st.IsEventSoon,
		"timeline":                 st.Timeline,
		"recent_registrations":     st.RecentRegistrations,
	}
}

func pagePayload(p *event.Page) map[string]any {
	out := make([]eventDTO, len(p.Events))
	for i, e := range p.Events {
		out[i] = eventPayload(e)
	}
	return map[string]any{
		"events":   out,
		"page":     p.Page,
		"limit":    p.Limit,
		"total":    p.Total,
		"has_next": p.HasNext,
		"has_prev": p.HasPrev,
	}
}
