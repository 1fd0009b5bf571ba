package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/vertexforge/vertexforge/internal/collab"
	"github.com/vertexforge/vertexforge/internal/document"
	"github.com/vertexforge/vertexforge/internal/engine"
	"github.com/vertexforge/vertexforge/internal/typeid"
)

// SceneSource gives read access to live scenes.
type SceneSource interface {
	RenderScene(sceneID string, view engine.ViewMode) ([]engine.DrawCommand, error)
	SceneDocument(sceneID string) (document.Scene, error)
}

type Handler struct {
	scenes SceneSource
	size   int
}

func NewHandler(scenes SceneSource, size int) *Handler {
	return &Handler{scenes: scenes, size: size}
}

// Preview renders a scene to PNG. Query parameters: size (pixels) and view
// (solid or wireframe).
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	sceneID, ok := sceneParam(w, r)
	if !ok {
		return
	}

	size := h.size
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < MinSize || n > MaxSize {
			http.Error(w, fmt.Sprintf("invalid size: must be between %d and %d", MinSize, MaxSize), http.StatusBadRequest)
			return
		}
		size = n
	}

	view := engine.ViewSolid
	if v := r.URL.Query().Get("view"); v != "" {
		var err error
		if view, err = engine.ParseViewMode(v); err != nil {
			http.Error(w, "invalid view: must be solid or wireframe", http.StatusBadRequest)
			return
		}
	}

	commands, err := h.scenes.RenderScene(sceneID, view)
	if err != nil {
		sceneError(w, sceneID, err)
		return
	}

	img := Rasterize(commands, Options{Size: size})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		slog.Error("encode preview", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// Download serves the whole scene document as an attachment named after
// the scene.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	sceneID, ok := sceneParam(w, r)
	if !ok {
		return
	}

	format, err := document.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, "invalid format: must be json or yaml", http.StatusBadRequest)
		return
	}

	scene, err := h.scenes.SceneDocument(sceneID)
	if err != nil {
		sceneError(w, sceneID, err)
		return
	}

	data, err := document.Marshal(scene, format)
	if err != nil {
		slog.Error("marshal scene", "scene", sceneID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, FileName(scene.Name), format))
	w.Write(data)
}

func sceneParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	sceneID := mux.Vars(r)["sceneId"]
	if err := typeid.Validate(sceneID, typeid.PrefixScene); err != nil {
		http.Error(w, "invalid scene id", http.StatusBadRequest)
		return "", false
	}
	return sceneID, true
}

func sceneError(w http.ResponseWriter, sceneID string, err error) {
	if errors.Is(err, collab.ErrHubFull) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	slog.Error("load scene", "scene", sceneID, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// FileName turns a scene name into a safe file name.
func FileName(name string) string {
	if name == "" {
		name = "scene"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
