package commentary

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/neonsnake/internal/registry"
)

// Handler serves the commentary contract over HTTP: POST {"score": n}
// answers {"commentary": "..."}; failures answer {"error": "..."}.
type Handler struct {
	backend registry.Commentator
	logger  *log.Logger
}

// NewHandler wraps a backend.
func NewHandler(backend registry.Commentator, logger *log.Logger) *Handler {
	return &Handler{backend: backend, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Error: "Method Not Allowed"})
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Error: "invalid request body"})
		return
	}
	if req.Score < 0 {
		writeJSON(w, http.StatusBadRequest, Response{Error: "score must not be negative"})
		return
	}

	text, err := h.backend.Summarize(r.Context(), req.Score)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("Commentary backend failed", "score", req.Score, "error", err)
		}
		writeJSON(w, http.StatusInternalServerError, Response{Error: "commentary processing failed"})
		return
	}

	writeJSON(w, http.StatusOK, Response{Commentary: text})
}

func writeJSON(w http.ResponseWriter, status int, v Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
