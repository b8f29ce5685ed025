package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lumabench/lumabench/backend-go/internal/engine"
	"github.com/lumabench/lumabench/backend-go/internal/optics"
)

const maxDocumentSize = 4 << 20 // 4MB

// Handler traces posted documents with the service-configured bounds;
// per-request overrides start from those, not from the library defaults.
type Handler struct {
	bounds optics.Config
}

func NewHandler(bounds optics.Config) *Handler {
	return &Handler{bounds: bounds}
}

type exportRequest struct {
	Document json.RawMessage `json:"document"`
	Name     string          `json:"name"`

	// Optional trace overrides
	MaxBounces   *int     `json:"maxBounces,omitempty"`
	MaxRays      *int     `json:"maxRays,omitempty"`
	MinIntensity *float64 `json:"minIntensity,omitempty"`
	IgnoreDecay  bool     `json:"ignoreDecay,omitempty"`
}

// ExportSVG traces the posted document server-side and streams back a
// standalone SVG rendering of the bench.
func (h *Handler) ExportSVG(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize)

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Document) == 0 {
		http.Error(w, "document is required", http.StatusBadRequest)
		return
	}

	name := req.Name
	if name == "" {
		name = "bench"
	}
	// Sanitize filename
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)

	eng := engine.NewEngine()
	cfg := h.bounds
	if req.MaxBounces != nil {
		cfg.MaxBounces = *req.MaxBounces
	}
	if req.MaxRays != nil {
		cfg.MaxRays = *req.MaxRays
	}
	if req.MinIntensity != nil {
		cfg.MinIntensity = *req.MinIntensity
	}
	eng.SetTraceBounds(cfg.MaxBounces, cfg.MaxRays, cfg.MinIntensity)
	eng.SetIgnoreDecay(req.IgnoreDecay)

	if err := eng.LoadDocument(string(req.Document)); err != nil {
		http.Error(w, fmt.Sprintf("invalid document: %v", err), http.StatusBadRequest)
		return
	}

	doc := eng.Document()
	svg := RenderSVG(eng.DrawCommands(), float64(doc.Bench.Width), float64(doc.Bench.Height))

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.svg"`, name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(svg)); err != nil {
		slog.Debug("write svg response", "error", err)
		return
	}

	slog.Info("export complete", "name", name, "bytes", len(svg))
}
