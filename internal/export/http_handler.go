package export

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/JaceG/dealbreaker-backend/internal/history"
)

// Handler exposes history export as a download endpoint. It accepts the same
// query parameters as the advanced filter plus an optional format.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with a GET endpoint.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter, err := history.ParseAdvancedFilter(r.URL.Query())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	format, err := ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	filename := fmt.Sprintf("flag-history-%s.%s", time.Now().Format("20060102-150405"), format)
	switch format {
	case FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
	case FormatXLSX:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	count, err := h.service.Export(r.Context(), filter, format, w)
	if err != nil {
		// Headers may already be written; log and abort the stream.
		log.Printf("[EXPORT] Failed to export history: %v", err)
		return
	}
	log.Printf("[EXPORT] Wrote %d history rows as %s", count, format)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
