package engine

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/lumabench/lumabench/backend-go/internal/document"
	"github.com/lumabench/lumabench/backend-go/internal/geom"
	"github.com/lumabench/lumabench/backend-go/internal/optics"
)

// Engine owns a bench document, the compiled optics scene and the latest
// trace. It processes commands from the frontend and returns query results.
//
// Invalidation is an explicit revision counter: every mutation bumps rev, and
// a query that needs trace output re-runs the trace when rev has moved past
// tracedRev. There is no partial-result resumption; an invalidated trace is
// simply re-run from scratch.
type Engine struct {
	doc *document.BenchDocument

	// Compiled scene, rebuilt from the document on structural changes.
	components []optics.Component // sorted by id for deterministic traces
	byID       map[string]optics.Component

	trace     *optics.Result
	cfg       optics.Config
	rev       int
	tracedRev int

	// Selection state (backend owns this).
	selection []string
}

// NewEngine creates an engine with the default trace bounds.
func NewEngine() *Engine {
	return &Engine{
		byID: make(map[string]optics.Component),
		cfg:  optics.DefaultConfig(),
	}
}

// SetTraceBounds overrides the trace caps, typically from service config.
func (e *Engine) SetTraceBounds(maxBounces, maxRays int, minIntensity float64) {
	if maxBounces > 0 {
		e.cfg.MaxBounces = maxBounces
	}
	if maxRays > 0 {
		e.cfg.MaxRays = maxRays
	}
	if minIntensity > 0 {
		e.cfg.MinIntensity = minIntensity
	}
	e.rev++
}

// SetIgnoreDecay toggles the always-trace diagnostic mode that disables
// intensity pruning.
func (e *Engine) SetIgnoreDecay(on bool) {
	e.cfg.IgnoreDecay = on
	e.rev++
}

// LoadDocument loads a bench document from JSON, resetting selection.
func (e *Engine) LoadDocument(jsonData string) error {
	var doc document.BenchDocument
	if err := json.Unmarshal([]byte(jsonData), &doc); err != nil {
		return err
	}

	e.doc = &doc
	e.selection = nil
	e.rev++
	return e.rebuild()
}

// UpdateDocument reloads the document while preserving selection, used when
// the document changes under collaborative editing.
func (e *Engine) UpdateDocument(jsonData string) error {
	var doc document.BenchDocument
	if err := json.Unmarshal([]byte(jsonData), &doc); err != nil {
		return err
	}

	e.doc = &doc
	e.rev++
	return e.rebuild()
}

// LoadSampleDocument loads the built-in demo bench.
func (e *Engine) LoadSampleDocument(projectID string) {
	e.doc = document.NewSampleDocument(projectID, "Untitled bench")
	e.selection = nil
	e.rev++
	// The sample document only contains known component types.
	_ = e.rebuild()
}

// rebuild compiles the document's blueprints into live components.
func (e *Engine) rebuild() error {
	e.components = e.components[:0]
	e.byID = make(map[string]optics.Component)

	if e.doc == nil {
		return nil
	}

	ids := make([]string, 0, len(e.doc.Components))
	for id := range e.doc.Components {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		c, err := optics.FromBlueprint(e.doc.Components[id])
		if err != nil {
			return fmt.Errorf("compile component %s: %w", id, err)
		}
		e.components = append(e.components, c)
		e.byID[id] = c
	}

	return nil
}

// Retrace re-runs the propagation pass if anything changed since the last
// one. Detector accumulators are reset so readings reflect a single pass.
func (e *Engine) Retrace() {
	if e.doc == nil {
		return
	}
	if e.trace != nil && e.tracedRev == e.rev {
		return
	}

	for _, c := range e.components {
		if d, ok := c.(*optics.Detector); ok {
			d.ResetReading()
		}
	}

	e.trace = optics.Trace(e.components, e.emitRays(), e.cfg)
	e.tracedRev = e.rev
}

// emitRays creates the initial ray per source, in stable source order.
func (e *Engine) emitRays() []*optics.Ray {
	ids := make([]string, 0, len(e.doc.Sources))
	for id := range e.doc.Sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rays := make([]*optics.Ray, 0, len(ids))
	for _, id := range ids {
		src := e.doc.Sources[id]
		r := optics.NewRay(
			geom.NewVec2(src.X, src.Y),
			geom.FromAngle(src.Angle),
			src.WavelengthNm,
			src.Intensity,
			0,
			1.0,
			src.ID,
		)
		if src.PolarizationAngle != nil {
			r.EnsureJones(*src.PolarizationAngle)
		}
		rays = append(rays, r)
	}
	return rays
}

// --- Mutations (frontend → backend) ---

// MoveComponent updates a component's position in both the document and the
// compiled scene, invalidating the trace.
func (e *Engine) MoveComponent(id string, x, y float64) error {
	c, bp, err := e.lookup(id)
	if err != nil {
		return err
	}

	c.SetPosition(geom.NewVec2(x, y))
	bp.X, bp.Y = x, y
	e.doc.Components[id] = bp
	e.rev++
	return nil
}

// RotateComponent updates a component's orientation angle in radians.
func (e *Engine) RotateComponent(id string, radians float64) error {
	c, bp, err := e.lookup(id)
	if err != nil {
		return err
	}

	c.SetAngle(radians)
	bp.Angle = radians
	e.doc.Components[id] = bp
	e.rev++
	return nil
}

// SetComponentProperty validates and applies a property edit. The clamped
// value is read back from the component so the document never stores an
// out-of-range parameter.
func (e *Engine) SetComponentProperty(id, name string, value float64) error {
	c, bp, err := e.lookup(id)
	if err != nil {
		return err
	}

	if err := c.SetProperty(name, value); err != nil {
		return err
	}

	bp.Params = optics.ToBlueprint(c).Params
	e.doc.Components[id] = bp
	e.rev++
	return nil
}

// AddComponent compiles and inserts a new blueprint.
func (e *Engine) AddComponent(bp optics.Blueprint) error {
	if e.doc == nil {
		return fmt.Errorf("no document loaded")
	}
	if _, exists := e.doc.Components[bp.ID]; exists {
		return fmt.Errorf("component %s already exists", bp.ID)
	}

	c, err := optics.FromBlueprint(bp)
	if err != nil {
		return err
	}

	e.doc.Components[bp.ID] = optics.ToBlueprint(c)
	e.byID[bp.ID] = c
	e.components = insertSorted(e.components, c)
	e.rev++
	return nil
}

// RemoveComponent deletes a component from the document and the scene.
func (e *Engine) RemoveComponent(id string) error {
	if _, _, err := e.lookup(id); err != nil {
		return err
	}

	delete(e.doc.Components, id)
	delete(e.byID, id)
	for i, c := range e.components {
		if c.ID() == id {
			e.components = append(e.components[:i], e.components[i+1:]...)
			break
		}
	}
	e.rev++
	return nil
}

// SetSelection sets the selected component IDs.
func (e *Engine) SetSelection(ids []string) {
	e.selection = ids
}

func (e *Engine) lookup(id string) (optics.Component, optics.Blueprint, error) {
	if e.doc == nil {
		return nil, optics.Blueprint{}, fmt.Errorf("no document loaded")
	}
	c, ok := e.byID[id]
	if !ok {
		return nil, optics.Blueprint{}, fmt.Errorf("component not found: %s", id)
	}
	return c, e.doc.Components[id], nil
}

func insertSorted(components []optics.Component, c optics.Component) []optics.Component {
	i := sort.Search(len(components), func(i int) bool {
		return components[i].ID() >= c.ID()
	})
	components = append(components, nil)
	copy(components[i+1:], components[i:])
	components[i] = c
	return components
}

// --- Queries (frontend ← backend) ---

// Revision returns the current mutation counter, read by schedulers that
// decide whether a redraw is needed.
func (e *Engine) Revision() int {
	return e.rev
}

// Render retraces if needed and returns draw commands as JSON.
func (e *Engine) Render() string {
	if e.doc == nil {
		return "[]"
	}

	e.Retrace()
	commands := CompileDrawCommands(e.doc, e.components, e.trace)
	result, _ := DrawCommandsToJSON(commands)
	return result
}

// DrawCommands retraces if needed and returns the command buffer directly,
// for in-process callers like the SVG exporter.
func (e *Engine) DrawCommands() []DrawCommand {
	if e.doc == nil {
		return nil
	}
	e.Retrace()
	return CompileDrawCommands(e.doc, e.components, e.trace)
}

// HitTest returns the ID of the topmost component whose bounding box contains
// the point, or empty string. Later ids sit on top, matching draw order.
func (e *Engine) HitTest(x, y float64) string {
	for i := len(e.components) - 1; i >= 0; i-- {
		if e.components[i].BoundingBox().Expand(hitSlop).Contains(x, y) {
			return e.components[i].ID()
		}
	}
	return ""
}

// GetSelectionBounds returns the combined bounding box of the selection as
// JSON. Flat components contribute zero-area boxes, which are still valid
// extents.
func (e *Engine) GetSelectionBounds() string {
	bounds := geom.EmptyRect()
	for _, id := range e.selection {
		if c, ok := e.byID[id]; ok {
			bounds = bounds.Union(c.BoundingBox())
		}
	}
	if bounds.IsEmpty() {
		bounds = geom.Rect{}
	}
	data, _ := json.Marshal(bounds)
	return string(data)
}

// GetSelection returns the current selection as JSON.
func (e *Engine) GetSelection() string {
	data, _ := json.Marshal(e.selection)
	return string(data)
}

// GetProperties returns a component's property schema as JSON, consumed by
// the inspector panel.
func (e *Engine) GetProperties(id string) string {
	c, ok := e.byID[id]
	if !ok {
		return "[]"
	}
	data, _ := json.Marshal(c.Properties())
	return string(data)
}

// GetDetectorReadings retraces if needed and returns the accumulated reading
// per detector id as JSON.
func (e *Engine) GetDetectorReadings() string {
	e.Retrace()

	readings := make(map[string]optics.Reading)
	for _, c := range e.components {
		if d, ok := c.(*optics.Detector); ok {
			readings[d.ID()] = d.Reading()
		}
	}
	data, _ := json.Marshal(readings)
	return string(data)
}

// GetBench returns the bench canvas metadata as JSON.
func (e *Engine) GetBench() string {
	if e.doc == nil {
		return "{}"
	}
	data, _ := json.Marshal(e.doc.Bench)
	return string(data)
}

// GetDocument returns the full document as JSON (for sync/debugging).
func (e *Engine) GetDocument() string {
	if e.doc == nil {
		return "{}"
	}
	data, _ := json.Marshal(e.doc)
	return string(data)
}

// Document exposes the live document to in-process callers like the export
// pipeline. Callers must not mutate it.
func (e *Engine) Document() *document.BenchDocument {
	return e.doc
}

// TraceResult retraces if needed and returns the latest result.
func (e *Engine) TraceResult() *optics.Result {
	e.Retrace()
	return e.trace
}

// hitSlop pads bounding boxes during hit testing so thin segments remain
// clickable.
const hitSlop = 6.0
