package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/JaceG/dealbreaker-backend/internal/domain"

	"github.com/google/uuid"
)

// Handler exposes the history engine over the existing REST endpoint shapes.
type Handler struct {
	service *Service
}

// NewHandler wraps the service with its REST surface.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the history routes on the mux. The filter routes are
// registered alongside the parameterized flag route; the literal segments win
// precedence.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /history/filter/byUser", h.filterByUser)
	mux.HandleFunc("GET /history/filter/advanced", h.filterAdvanced)
	mux.HandleFunc("GET /history/{profileId}/{flagId}", h.listByFlag)
	mux.HandleFunc("POST /history", h.create)
	mux.HandleFunc("POST /history/{historyId}/attachment", h.addAttachment)
	mux.HandleFunc("POST /history/sync", h.sync)
}

func (h *Handler) listByFlag(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListByFlag(r.Context(), r.PathValue("profileId"), r.PathValue("flagId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var raw RawChange
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "invalid request body"})
		return
	}

	entry, err := h.service.Ingest(r.Context(), raw)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) addAttachment(w http.ResponseWriter, r *http.Request) {
	historyID, err := uuid.Parse(r.PathValue("historyId"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Message: "History entry not found"})
		return
	}

	var body struct {
		Attachment string `json:"attachment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "invalid request body"})
		return
	}

	entry, err := h.service.AppendAttachment(r.Context(), historyID, body.Attachment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "invalid request body"})
		return
	}

	result, err := h.service.Sync(r.Context(), body["changes"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   result.Count,
		"results": result.Entries,
	})
}

func (h *Handler) filterByUser(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	var query domain.UserQuery
	if raw := params.Get("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Message: "invalid userId"})
			return
		}
		query.ID = &id
	}
	query.Name = params.Get("name")
	query.Email = params.Get("email")

	role := domain.RoleAny
	switch params.Get("isCreator") {
	case "true":
		role = domain.RoleCreator
	case "false":
		role = domain.RoleSubject
	}

	entries, err := h.service.FilterByUser(r.Context(), query, role)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(entries),
		"histories": entries,
	})
}

func (h *Handler) filterAdvanced(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseAdvancedFilter(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: err.Error()})
		return
	}

	entries, err := h.service.FilterAdvanced(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(entries),
		"histories": entries,
	})
}

// ParseAdvancedFilter builds the advanced filter from query parameters. It is
// shared with the export surface, which accepts the same criteria.
func ParseAdvancedFilter(params url.Values) (domain.AdvancedHistoryFilter, error) {
	var filter domain.AdvancedHistoryFilter

	if raw := params.Get("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return domain.AdvancedHistoryFilter{}, fmt.Errorf("invalid userId")
		}
		filter.UserID = &id
	}
	if raw := params.Get("creatorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return domain.AdvancedHistoryFilter{}, fmt.Errorf("invalid creatorId")
		}
		filter.CreatorID = &id
	}

	filter.Name = params.Get("name")
	filter.Email = params.Get("email")
	filter.FlagID = params.Get("flagId")

	if raw := params.Get("startDate"); raw != "" {
		ts, ok := ParseTimestamp(raw)
		if !ok {
			return domain.AdvancedHistoryFilter{}, fmt.Errorf("invalid startDate")
		}
		filter.StartDate = &ts
	}
	if raw := params.Get("endDate"); raw != "" {
		ts, ok := ParseTimestamp(raw)
		if !ok {
			return domain.AdvancedHistoryFilter{}, fmt.Errorf("invalid endDate")
		}
		filter.EndDate = &ts
	}

	return filter, nil
}

type errorBody struct {
	Message  string `json:"message"`
	Received string `json:"received,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var missing *MissingFieldError
	if errors.As(err, &missing) {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: missing.Error()})
		return
	}

	var invalidEnum *InvalidEnumError
	if errors.As(err, &invalidEnum) {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: invalidEnum.Error(), Received: invalidEnum.Received})
		return
	}

	var invalidRequest *InvalidRequestError
	if errors.As(err, &invalidRequest) {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: invalidRequest.Error()})
		return
	}

	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Message: "History entry not found"})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorBody{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
