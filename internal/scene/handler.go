package scene

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vertexforge/vertexforge/internal/collab"
	"github.com/vertexforge/vertexforge/internal/document"
	"github.com/vertexforge/vertexforge/internal/engine"
	"github.com/vertexforge/vertexforge/internal/middleware"
)

const maxImportSize = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes registers the scene endpoints on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/schema/shape.json", h.Schema).Methods("GET")

	s := r.PathPrefix("/scenes/{sceneId}").Subrouter()
	s.HandleFunc("", h.Get).Methods("GET")
	s.HandleFunc("/ops", h.ListOps).Methods("GET")
	s.HandleFunc("/ops", h.SubmitOps).Methods("POST")
	s.HandleFunc("/render", h.Render).Methods("GET")
	s.HandleFunc("/hit", h.HitTest).Methods("GET")
	s.HandleFunc("/import", h.Import).Methods("POST")
	s.HandleFunc("/shapes/{shapeId}", h.ExportShape).Methods("GET")
	s.HandleFunc("/shapes/{shapeId}/bounds", h.Bounds).Methods("GET")
	s.HandleFunc("/shapes/{shapeId}/hull", h.Hull).Methods("GET")
}

type submitRequest struct {
	Operations []collab.Operation `json:"operations"`
}

type submitResponse struct {
	Applied []Applied `json:"applied"`
	Error   string    `json:"error,omitempty"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Get(mux.Vars(r)["sceneId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) ListOps(w http.ResponseWriter, r *http.Request) {
	var since int64
	if s := r.URL.Query().Get("since"); s != "" {
		var err error
		if since, err = strconv.ParseInt(s, 10, 64); err != nil || since < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "since must be a non-negative integer"})
			return
		}
	}

	ops, err := h.service.OpsSince(mux.Vars(r)["sceneId"], since)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ops)
}

func (h *Handler) SubmitOps(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	sceneID := mux.Vars(r)["sceneId"]

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Operations) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "operations are required"})
		return
	}

	applied, err := h.service.Submit(sceneID, userID, req.Operations)
	if err != nil {
		// Earlier operations in the batch were applied and are reported.
		writeJSON(w, statusFor(err), submitResponse{Applied: applied, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Applied: applied})
}

func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	view := engine.ViewSolid
	if v := r.URL.Query().Get("view"); v != "" {
		var err error
		if view, err = engine.ParseViewMode(v); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "view must be solid or wireframe"})
			return
		}
	}

	commands, err := h.service.Render(mux.Vars(r)["sceneId"], view)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if commands == nil {
		commands = []engine.DrawCommand{}
	}
	writeJSON(w, http.StatusOK, commands)
}

func (h *Handler) HitTest(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "x and y must be numbers"})
		return
	}

	id, err := h.service.HitTest(mux.Vars(r)["sceneId"], x, y)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"shapeId": id})
}

func (h *Handler) ExportShape(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	format, err := document.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be json or yaml"})
		return
	}

	data, err := h.service.ExportShape(vars["sceneId"], vars["shapeId"], format)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	format, err := document.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be json or yaml"})
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request too large"})
		return
	}

	applied, err := h.service.Import(mux.Vars(r)["sceneId"], userID, data, format)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, applied)
}

func (h *Handler) Bounds(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rect, err := h.service.Bounds(vars["sceneId"], vars["shapeId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rect)
}

func (h *Handler) Hull(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	points, err := h.service.Hull(vars["sceneId"], vars["shapeId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points})
}

func (h *Handler) Schema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	w.Write(document.SchemaJSON())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadInput), errors.Is(err, ErrTooMany):
		return http.StatusBadRequest
	case errors.Is(err, ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func handleServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("service error", "error", err)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
